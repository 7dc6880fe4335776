// Package pagination implements forward keyset pagination with opaque
// continuation tokens.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Pagination is a normalized page request
type Pagination struct {
	PageToken string
	PageSize  int
}

// Cursor marks the last row of a page: its sort key and its id
type Cursor struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Order string `json:"order"`
}

// PageInfo describes where the next page starts
type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

// Page is one page of results
type Page[T any] struct {
	Items    []*T     `json:"items"`
	PageInfo PageInfo `json:"page_info"`
}

// Parse builds a Pagination from the raw "first" and "after" parameters
func Parse(first, after string) (Pagination, error) {
	page := Pagination{PageToken: after, PageSize: DefaultPageSize}
	if first == "" {
		return page, nil
	}

	size, err := strconv.Atoi(first)
	if err != nil || size < 1 {
		return page, errors.New("first must be a positive integer")
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	page.PageSize = size
	return page, nil
}

// Limit is the number of rows to fetch: one extra row tells whether a next
// page exists.
func (p Pagination) Limit() int {
	return p.PageSize + 1
}

func EncodeCursor(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.ID == "" {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// BuildPage trims the extra lookahead row and encodes the cursor of the last
// returned row when more rows exist.
func BuildPage[T any](rows []*T, page Pagination, extractCursor func(*T) Cursor) (Page[T], error) {
	result := Page[T]{Items: rows}
	if result.Items == nil {
		result.Items = []*T{}
	}
	if len(rows) <= page.PageSize {
		return result, nil
	}

	result.Items = rows[:page.PageSize]
	token, err := EncodeCursor(extractCursor(result.Items[len(result.Items)-1]))
	if err != nil {
		return result, err
	}

	result.PageInfo = PageInfo{NextPageToken: token, HasMore: true}
	return result, nil
}
