package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crm/internal/database"
	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/pagination"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

const productColumns = "p.id, p.name, p.price, p.stock, p.created_at"

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, q database.Querier, product *domain.Product) error
	FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Product, error)
	FindByIDs(ctx context.Context, q database.Querier, ids []uuid.UUID) ([]*domain.Product, error)
	List(ctx context.Context, q database.Querier, f filter.ProductFilter, page pagination.Pagination) ([]*domain.Product, error)
	Restock(ctx context.Context, q database.Querier, threshold, quantity int) ([]*domain.Product, error)
}

type productRepository struct{}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository() ProductRepository {
	return &productRepository{}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, q database.Querier, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, price, stock, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		product.Stock,
		product.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDs retrieves the products with the given IDs. Missing IDs are
// simply absent from the result.
func (r *productRepository) FindByIDs(ctx context.Context, q database.Querier, ids []uuid.UUID) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1::text[]::uuid[])`

	rows, err := q.QueryContext(ctx, query, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find products by IDs: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// List retrieves one page of products matching f, plus one lookahead row
func (r *productRepository) List(ctx context.Context, q database.Querier, f filter.ProductFilter, page pagination.Pagination) ([]*domain.Product, error) {
	var p filter.Predicate
	f.Apply(&p)
	if err := f.OrderBy.After(&p, page.PageToken); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		%s
		%s
		LIMIT %s
	`, productColumns, p.Where(), f.OrderBy.OrderBy(), p.Placeholder(page.Limit()))

	rows, err := q.QueryContext(ctx, query, p.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Restock adds quantity to the stock of every product below threshold and
// returns the updated products ordered by name.
func (r *productRepository) Restock(ctx context.Context, q database.Querier, threshold, quantity int) ([]*domain.Product, error) {
	query := `
		WITH updated AS (
			UPDATE products
			SET stock = stock + $1
			WHERE stock < $2
			RETURNING id, name, price, stock, created_at
		)
		SELECT ` + productColumns + ` FROM updated p
		ORDER BY p.name, p.id
	`

	rows, err := q.QueryContext(ctx, query, quantity, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to restock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func scanProduct(row rowScanner, extra ...any) (*domain.Product, error) {
	product := &domain.Product{}
	dest := append([]any{
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Stock,
		&product.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return product, nil
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
