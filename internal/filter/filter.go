// Package filter translates typed filter descriptors into SQL predicates
// and keyset orderings. Request parameters are parsed strictly: unknown keys
// and malformed values are rejected.
package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"crm/internal/domain"
	"crm/internal/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pagination parameters accepted by every list operation
const (
	ParamFirst   = "first"
	ParamAfter   = "after"
	ParamOrderBy = "order_by"
)

// Predicate accumulates AND-combined SQL conditions. Conditions are written
// with '?' placeholders which are numbered ($1, $2, ...) as they are added.
type Predicate struct {
	conds []string
	args  []any
}

// Add appends a condition; each '?' in cond consumes one of args.
func (p *Predicate) Add(cond string, args ...any) {
	var b strings.Builder
	next := 0
	for _, r := range cond {
		if r == '?' && next < len(args) {
			p.args = append(p.args, args[next])
			next++
			b.WriteString("$" + strconv.Itoa(len(p.args)))
			continue
		}
		b.WriteRune(r)
	}
	p.conds = append(p.conds, b.String())
}

// Where renders the WHERE clause, or an empty string when unconstrained.
func (p *Predicate) Where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.conds, " AND ")
}

// Args returns the positional arguments in placeholder order.
func (p *Predicate) Args() []any {
	return p.args
}

// Placeholder returns the placeholder for an argument appended after the
// current ones, e.g. for LIMIT.
func (p *Predicate) Placeholder(arg any) string {
	p.args = append(p.args, arg)
	return "$" + strconv.Itoa(len(p.args))
}

// SortField describes a sortable column of T
type SortField[T any] struct {
	Name   string
	Column string
	Cast   string
	Key    func(*T) string
}

// Ordering is a sort field plus direction; rows are always tie-broken by id
type Ordering[T any] struct {
	Field    SortField[T]
	Desc     bool
	IDColumn string
	ID       func(*T) uuid.UUID
}

// String renders the ordering the way it is accepted in order_by.
func (o Ordering[T]) String() string {
	if o.Desc {
		return "-" + o.Field.Name
	}
	return o.Field.Name
}

// OrderBy renders the ORDER BY clause.
func (o Ordering[T]) OrderBy() string {
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, %s %s", o.Field.Column, dir, o.IDColumn, dir)
}

// After constrains p to rows strictly after the cursor position. A cursor
// produced under a different ordering is rejected.
func (o Ordering[T]) After(p *Predicate, token string) error {
	if token == "" {
		return nil
	}

	cursor, err := pagination.DecodeCursor(token)
	if err != nil || cursor.Order != o.String() {
		return domain.NewValidationError(ParamAfter, "invalid cursor")
	}
	if _, err := uuid.Parse(cursor.ID); err != nil {
		return domain.NewValidationError(ParamAfter, "invalid cursor")
	}

	op := ">"
	if o.Desc {
		op = "<"
	}
	p.Add(fmt.Sprintf("(%s, %s) %s (?::text::%s, ?::text::uuid)", o.Field.Column, o.IDColumn, op, o.Field.Cast), cursor.Key, cursor.ID)
	return nil
}

// Cursor returns the continuation cursor positioned at row.
func (o Ordering[T]) Cursor(row *T) pagination.Cursor {
	return pagination.Cursor{
		ID:    o.ID(row).String(),
		Key:   o.Field.Key(row),
		Order: o.String(),
	}
}

// parseOrdering resolves an order_by value against the allowed fields.
func parseOrdering[T any](value string, def string, idColumn string, id func(*T) uuid.UUID, fields ...SortField[T]) (Ordering[T], error) {
	if value == "" {
		value = def
	}

	desc := strings.HasPrefix(value, "-")
	name := strings.TrimPrefix(value, "-")
	for _, f := range fields {
		if f.Name == name {
			return Ordering[T]{Field: f, Desc: desc, IDColumn: idColumn, ID: id}, nil
		}
	}

	allowed := make([]string, 0, len(fields))
	for _, f := range fields {
		allowed = append(allowed, f.Name)
	}
	return Ordering[T]{}, domain.NewValidationError(ParamOrderBy, "unknown sort key %q (allowed: %s)", value, strings.Join(allowed, ", "))
}

// params reads query parameters, rejecting keys outside the allowed set.
type params struct {
	values url.Values
}

func newParams(values url.Values, allowed ...string) (params, error) {
	known := map[string]bool{ParamFirst: true, ParamAfter: true, ParamOrderBy: true}
	for _, k := range allowed {
		known[k] = true
	}

	var unknown []string
	for k, v := range values {
		if !known[k] {
			unknown = append(unknown, k)
			continue
		}
		if len(v) > 1 {
			return params{}, domain.NewValidationError(k, "parameter given more than once")
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return params{}, domain.NewValidationError(unknown[0], "unknown filter key(s): %s", strings.Join(unknown, ", "))
	}

	return params{values: values}, nil
}

func (p params) has(key string) bool {
	_, ok := p.values[key]
	return ok
}

func (p params) string(key string) *string {
	if !p.has(key) {
		return nil
	}
	v := p.values.Get(key)
	return &v
}

func (p params) decimal(key string) (*decimal.Decimal, error) {
	if !p.has(key) {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(p.values.Get(key)))
	if err != nil {
		return nil, domain.NewValidationError(key, "must be a decimal number")
	}
	return &d, nil
}

func (p params) int(key string) (*int, error) {
	if !p.has(key) {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.values.Get(key)))
	if err != nil {
		return nil, domain.NewValidationError(key, "must be an integer")
	}
	return &n, nil
}

func (p params) time(key string) (*time.Time, error) {
	if !p.has(key) {
		return nil, nil
	}
	t, err := ParseTime(p.values.Get(key))
	if err != nil {
		return nil, domain.NewValidationError(key, "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}
	return &t, nil
}

// ParseTime accepts a calendar date or an RFC 3339 timestamp.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}

// Contains builds an ILIKE pattern matching value as a literal substring.
func Contains(value string) string {
	return "%" + escapeLike(value) + "%"
}

// HasPrefix builds a LIKE pattern matching value as a literal prefix.
func HasPrefix(value string) string {
	return escapeLike(value) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

func timeKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
