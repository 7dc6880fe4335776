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
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerAlreadyExists = errors.New("customer with this email already exists")
)

const customerColumns = "c.id, c.name, c.email, c.phone, c.created_at"

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, q database.Querier, customer *domain.Customer) error
	ExistsByEmail(ctx context.Context, q database.Querier, email string) (bool, error)
	FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, q database.Querier, f filter.CustomerFilter, page pagination.Pagination) ([]*domain.Customer, error)
}

type customerRepository struct{}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository() CustomerRepository {
	return &customerRepository{}
}

// Create inserts a new customer. A duplicate email yields a
// domain.ConflictError wrapping ErrCustomerAlreadyExists.
func (r *customerRepository) Create(ctx context.Context, q database.Querier, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := q.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.CreatedAt,
	)

	if err != nil {
		if database.IsUniqueViolation(err, "customers_email_key") {
			return &domain.ConflictError{
				Message: fmt.Sprintf("email %s already exists", customer.Email),
				Err:     ErrCustomerAlreadyExists,
			}
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// ExistsByEmail reports whether a customer with this exact email exists
func (r *customerRepository) ExistsByEmail(ctx context.Context, q database.Querier, email string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check customer email: %w", err)
	}
	return exists, nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c WHERE c.id = $1`

	customer, err := scanCustomer(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return customer, nil
}

// List retrieves one page of customers matching f. It fetches one row past
// the page size so the caller can tell whether another page exists.
func (r *customerRepository) List(ctx context.Context, q database.Querier, f filter.CustomerFilter, page pagination.Pagination) ([]*domain.Customer, error) {
	var p filter.Predicate
	f.Apply(&p)
	if err := f.OrderBy.After(&p, page.PageToken); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM customers c
		%s
		%s
		LIMIT %s
	`, customerColumns, p.Where(), f.OrderBy.OrderBy(), p.Placeholder(page.Limit()))

	rows, err := q.QueryContext(ctx, query, p.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	return scanCustomerAfter(row)
}
