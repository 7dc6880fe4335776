package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"crm/internal/database"
	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

const orderColumns = "o.id, o.customer_id, o.order_date, o.total_amount, o.created_at"

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, q database.Querier, order *domain.Order) error
	AddProducts(ctx context.Context, q database.Querier, orderID uuid.UUID, productIDs []uuid.UUID) error
	UpdateTotal(ctx context.Context, q database.Querier, orderID uuid.UUID, total decimal.Decimal) error
	FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, q database.Querier, f filter.OrderFilter, page pagination.Pagination) ([]*domain.Order, error)
	Aggregate(ctx context.Context, q database.Querier) (*domain.OrderAggregate, error)
}

type orderRepository struct{}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

// Create inserts the order row without its product associations
func (r *orderRepository) Create(ctx context.Context, q database.Querier, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, order_date, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.ExecContext(
		ctx,
		query,
		order.ID,
		order.CustomerID,
		order.OrderDate,
		order.TotalAmount,
		order.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// AddProducts associates products with an order using a single batch insert
func (r *orderRepository) AddProducts(ctx context.Context, q database.Querier, orderID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}

	values := make([]string, len(productIDs))
	args := []any{orderID}
	for i, productID := range productIDs {
		values[i] = fmt.Sprintf("($1, $%d)", i+2)
		args = append(args, productID)
	}

	query := `
		INSERT INTO order_products (order_id, product_id)
		VALUES ` + strings.Join(values, ", ") + `
		ON CONFLICT DO NOTHING
	`

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to add order products: %w", err)
	}

	return nil
}

// UpdateTotal persists a recomputed order total
func (r *orderRepository) UpdateTotal(ctx context.Context, q database.Querier, orderID uuid.UUID, total decimal.Decimal) error {
	result, err := q.ExecContext(ctx, `UPDATE orders SET total_amount = $2 WHERE id = $1`, orderID, total)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// FindByID retrieves an order with its customer and products
func (r *orderRepository) FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `, ` + customerColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`

	order, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadProducts(ctx, q, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// List retrieves one page of orders matching f, plus one lookahead row,
// each with its customer and products
func (r *orderRepository) List(ctx context.Context, q database.Querier, f filter.OrderFilter, page pagination.Pagination) ([]*domain.Order, error) {
	var p filter.Predicate
	f.Apply(&p)
	if err := f.OrderBy.After(&p, page.PageToken); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		%s
		%s
		LIMIT %s
	`, orderColumns, customerColumns, p.Where(), f.OrderBy.OrderBy(), p.Placeholder(page.Limit()))

	rows, err := q.QueryContext(ctx, query, p.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.loadProducts(ctx, q, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// Aggregate counts customers and orders and sums order totals
func (r *orderRepository) Aggregate(ctx context.Context, q database.Querier) (*domain.OrderAggregate, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM customers),
			COUNT(*),
			COALESCE(SUM(total_amount), 0)
		FROM orders
	`

	agg := &domain.OrderAggregate{}
	if err := q.QueryRowContext(ctx, query).Scan(&agg.CustomersCount, &agg.OrdersCount, &agg.TotalRevenue); err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	return agg, nil
}

func (r *orderRepository) loadProducts(ctx context.Context, q database.Querier, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]uuid.UUID, len(orders))
	for i, order := range orders {
		order.Products = []*domain.Product{}
		byID[order.ID] = order
		ids[i] = order.ID
	}

	query := `
		SELECT ` + productColumns + `, op.order_id
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = ANY($1::text[]::uuid[])
		ORDER BY p.name, p.id
	`

	rows, err := q.QueryContext(ctx, query, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("failed to load order products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		product, err := scanProduct(rows, &orderID)
		if err != nil {
			return fmt.Errorf("failed to scan order product: %w", err)
		}
		if order, ok := byID[orderID]; ok {
			order.Products = append(order.Products, product)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order products: %w", err)
	}

	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	customer, err := scanCustomerAfter(row,
		&order.ID,
		&order.CustomerID,
		&order.OrderDate,
		&order.TotalAmount,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Customer = customer
	return order, nil
}

// scanCustomerAfter scans leading columns into lead, then the customer columns.
func scanCustomerAfter(row rowScanner, lead ...any) (*domain.Customer, error) {
	customer := &domain.Customer{}
	dest := append(lead,
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.CreatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return customer, nil
}
