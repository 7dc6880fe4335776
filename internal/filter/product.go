package filter

import (
	"net/url"
	"strconv"

	"crm/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var productSortFields = []SortField[domain.Product]{
	{Name: "created_at", Column: "p.created_at", Cast: "timestamptz", Key: func(p *domain.Product) string { return timeKey(p.CreatedAt) }},
	{Name: "name", Column: "p.name", Cast: "text", Key: func(p *domain.Product) string { return p.Name }},
	{Name: "price", Column: "p.price", Cast: "numeric", Key: func(p *domain.Product) string { return p.Price.String() }},
	{Name: "stock", Column: "p.stock", Cast: "integer", Key: func(p *domain.Product) string { return strconv.Itoa(p.Stock) }},
}

// ProductFilter selects products
type ProductFilter struct {
	NameIContains *string
	PriceGTE      *decimal.Decimal
	PriceLTE      *decimal.Decimal
	StockGTE      *int
	StockLTE      *int
	OrderBy       Ordering[domain.Product]
}

// ParseProductFilter reads a ProductFilter from query parameters
func ParseProductFilter(values url.Values) (ProductFilter, error) {
	var f ProductFilter

	p, err := newParams(values, "name_icontains", "price_gte", "price_lte", "stock_gte", "stock_lte")
	if err != nil {
		return f, err
	}

	f.NameIContains = p.string("name_icontains")
	if f.PriceGTE, err = p.decimal("price_gte"); err != nil {
		return f, err
	}
	if f.PriceLTE, err = p.decimal("price_lte"); err != nil {
		return f, err
	}
	if f.StockGTE, err = p.int("stock_gte"); err != nil {
		return f, err
	}
	if f.StockLTE, err = p.int("stock_lte"); err != nil {
		return f, err
	}

	f.OrderBy, err = ProductOrdering(values.Get(ParamOrderBy))
	return f, err
}

// ProductOrdering resolves an order_by value for products
func ProductOrdering(value string) (Ordering[domain.Product], error) {
	return parseOrdering(value, "-created_at", "p.id", func(p *domain.Product) uuid.UUID { return p.ID }, productSortFields...)
}

func (f ProductFilter) Apply(p *Predicate) {
	if f.NameIContains != nil {
		p.Add("p.name ILIKE ?", Contains(*f.NameIContains))
	}
	if f.PriceGTE != nil {
		p.Add("p.price >= ?", *f.PriceGTE)
	}
	if f.PriceLTE != nil {
		p.Add("p.price <= ?", *f.PriceLTE)
	}
	if f.StockGTE != nil {
		p.Add("p.stock >= ?", *f.StockGTE)
	}
	if f.StockLTE != nil {
		p.Add("p.stock <= ?", *f.StockLTE)
	}
}
