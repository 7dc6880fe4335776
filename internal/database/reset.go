package database

import (
	"context"
	"fmt"
)

// Truncate removes every customer, product and order
func Truncate(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, `TRUNCATE TABLE order_products, orders, products, customers`); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
