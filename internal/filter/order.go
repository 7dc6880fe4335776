package filter

import (
	"net/url"
	"time"

	"crm/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var orderSortFields = []SortField[domain.Order]{
	{Name: "order_date", Column: "o.order_date", Cast: "timestamptz", Key: func(o *domain.Order) string { return timeKey(o.OrderDate) }},
	{Name: "total_amount", Column: "o.total_amount", Cast: "numeric", Key: func(o *domain.Order) string { return o.TotalAmount.String() }},
}

// OrderFilter selects orders. CustomerName and ProductName traverse the
// customer and product relations.
type OrderFilter struct {
	CustomerName   *string
	ProductName    *string
	TotalAmountGTE *decimal.Decimal
	OrderDateGTE   *time.Time
	OrderBy        Ordering[domain.Order]
}

// ParseOrderFilter reads an OrderFilter from query parameters
func ParseOrderFilter(values url.Values) (OrderFilter, error) {
	var f OrderFilter

	p, err := newParams(values, "customer_name", "product_name", "total_amount_gte", "order_date_gte")
	if err != nil {
		return f, err
	}

	f.CustomerName = p.string("customer_name")
	f.ProductName = p.string("product_name")
	if f.TotalAmountGTE, err = p.decimal("total_amount_gte"); err != nil {
		return f, err
	}
	if f.OrderDateGTE, err = p.time("order_date_gte"); err != nil {
		return f, err
	}

	f.OrderBy, err = OrderOrdering(values.Get(ParamOrderBy))
	return f, err
}

// OrderOrdering resolves an order_by value for orders
func OrderOrdering(value string) (Ordering[domain.Order], error) {
	return parseOrdering(value, "-order_date", "o.id", func(o *domain.Order) uuid.UUID { return o.ID }, orderSortFields...)
}

// Apply adds the filter's conditions to p. The query must join customers
// as c; product names are matched through an EXISTS so an order matching
// several products is returned once.
func (f OrderFilter) Apply(p *Predicate) {
	if f.CustomerName != nil {
		p.Add("c.name ILIKE ?", Contains(*f.CustomerName))
	}
	if f.ProductName != nil {
		p.Add(`EXISTS (
			SELECT 1 FROM order_products op
			JOIN products pp ON pp.id = op.product_id
			WHERE op.order_id = o.id AND pp.name ILIKE ?
		)`, Contains(*f.ProductName))
	}
	if f.TotalAmountGTE != nil {
		p.Add("o.total_amount >= ?", *f.TotalAmountGTE)
	}
	if f.OrderDateGTE != nil {
		p.Add("o.order_date >= ?", *f.OrderDateGTE)
	}
}
