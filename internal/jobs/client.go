package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"crm/internal/domain"
	"crm/internal/pagination"
)

// Client calls the CRM HTTP API on behalf of scheduled jobs
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client with a bounded per-request timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// StatusError reports a non-2xx API response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Hello calls the hello endpoint and returns the response status code
func (c *Client) Hello(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/hello", nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// RestockProducts triggers the low-stock restock mutation
func (c *Client) RestockProducts(ctx context.Context) (*domain.RestockPayload, error) {
	var payload domain.RestockPayload
	if err := c.do(ctx, http.MethodPost, "/api/products/restock", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// OrdersSince returns one page of orders dated on or after since
func (c *Client) OrdersSince(ctx context.Context, since time.Time, pageSize int, after string) (*pagination.Page[domain.Order], error) {
	q := url.Values{}
	q.Set("order_date_gte", since.UTC().Format(time.RFC3339))
	q.Set("order_by", "order_date")
	q.Set("first", strconv.Itoa(pageSize))
	if after != "" {
		q.Set("after", after)
	}

	var page pagination.Page[domain.Order]
	if err := c.do(ctx, http.MethodGet, "/api/orders?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Aggregate fetches customer and order counts and total revenue
func (c *Client) Aggregate(ctx context.Context) (*domain.OrderAggregate, error) {
	var agg domain.OrderAggregate
	if err := c.do(ctx, http.MethodGet, "/api/orders/aggregate", &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
