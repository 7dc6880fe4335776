package filter

import (
	"net/url"
	"time"

	"crm/internal/domain"

	"github.com/google/uuid"
)

var customerSortFields = []SortField[domain.Customer]{
	{Name: "created_at", Column: "c.created_at", Cast: "timestamptz", Key: func(c *domain.Customer) string { return timeKey(c.CreatedAt) }},
	{Name: "name", Column: "c.name", Cast: "text", Key: func(c *domain.Customer) string { return c.Name }},
}

// CustomerFilter selects customers
type CustomerFilter struct {
	NameIContains  *string
	EmailIContains *string
	CreatedAtGTE   *time.Time
	CreatedAtLTE   *time.Time
	PhonePattern   *string
	OrderBy        Ordering[domain.Customer]
}

// ParseCustomerFilter reads a CustomerFilter from query parameters
func ParseCustomerFilter(values url.Values) (CustomerFilter, error) {
	var f CustomerFilter

	p, err := newParams(values, "name_icontains", "email_icontains", "created_at_gte", "created_at_lte", "phone_pattern")
	if err != nil {
		return f, err
	}

	f.NameIContains = p.string("name_icontains")
	f.EmailIContains = p.string("email_icontains")
	f.PhonePattern = p.string("phone_pattern")
	if f.CreatedAtGTE, err = p.time("created_at_gte"); err != nil {
		return f, err
	}
	if f.CreatedAtLTE, err = p.time("created_at_lte"); err != nil {
		return f, err
	}

	f.OrderBy, err = CustomerOrdering(values.Get(ParamOrderBy))
	return f, err
}

// CustomerOrdering resolves an order_by value for customers
func CustomerOrdering(value string) (Ordering[domain.Customer], error) {
	return parseOrdering(value, "-created_at", "c.id", func(c *domain.Customer) uuid.UUID { return c.ID }, customerSortFields...)
}

// Apply adds the filter's conditions to p. Date bounds are inclusive of the
// whole day.
func (f CustomerFilter) Apply(p *Predicate) {
	if f.NameIContains != nil {
		p.Add("c.name ILIKE ?", Contains(*f.NameIContains))
	}
	if f.EmailIContains != nil {
		p.Add("c.email ILIKE ?", Contains(*f.EmailIContains))
	}
	if f.CreatedAtGTE != nil {
		p.Add("c.created_at >= ?", startOfDay(*f.CreatedAtGTE))
	}
	if f.CreatedAtLTE != nil {
		p.Add("c.created_at < ?", startOfDay(*f.CreatedAtLTE).AddDate(0, 0, 1))
	}
	if f.PhonePattern != nil {
		p.Add("c.phone LIKE ?", HasPrefix(*f.PhonePattern))
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
