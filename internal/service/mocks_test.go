package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"crm/internal/database"
	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/pagination"
	"crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock transactor runs fn without a real transaction
type mockTransactor struct {
	commits   int
	rollbacks int
}

func (m *mockTransactor) WithTx(ctx context.Context, fn func(q database.Querier) error) error {
	if err := fn(nil); err != nil {
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

func (m *mockTransactor) Savepoint(ctx context.Context, q database.Querier, name string, fn func() error) error {
	return fn()
}

// Mock repositories for testing
type mockCustomerRepository struct {
	mu        sync.Mutex
	customers map[string]*domain.Customer
	// store errors keyed by email
	failures map[string]error
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[string]*domain.Customer)}
}

func (m *mockCustomerRepository) Create(ctx context.Context, q database.Querier, customer *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failures[customer.Email]; ok {
		return err
	}
	if _, exists := m.customers[customer.Email]; exists {
		return &domain.ConflictError{
			Message: fmt.Sprintf("email %s already exists", customer.Email),
			Err:     repository.ErrCustomerAlreadyExists,
		}
	}
	m.customers[customer.Email] = customer
	return nil
}

func (m *mockCustomerRepository) ExistsByEmail(ctx context.Context, q database.Querier, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.customers[email]
	return exists, nil
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (m *mockCustomerRepository) List(ctx context.Context, q database.Querier, f filter.CustomerFilter, page pagination.Pagination) ([]*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > page.Limit() {
		out = out[:page.Limit()]
	}
	return out, nil
}

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, q database.Querier, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) FindByIDs(ctx context.Context, q database.Querier, ids []uuid.UUID) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) List(ctx context.Context, q database.Querier, f filter.ProductFilter, page pagination.Pagination) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductRepository) Restock(ctx context.Context, q database.Querier, threshold, quantity int) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if p.Stock < threshold {
			p.Stock += quantity
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type mockOrderRepository struct {
	orders map[uuid.UUID]*domain.Order
	lines  map[uuid.UUID][]uuid.UUID
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[uuid.UUID]*domain.Order),
		lines:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, q database.Querier, order *domain.Order) error {
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepository) AddProducts(ctx context.Context, q database.Querier, orderID uuid.UUID, productIDs []uuid.UUID) error {
	m.lines[orderID] = append(m.lines[orderID], productIDs...)
	return nil
}

func (m *mockOrderRepository) UpdateTotal(ctx context.Context, q database.Querier, orderID uuid.UUID, total decimal.Decimal) error {
	o, ok := m.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.TotalAmount = total
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, q database.Querier, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockOrderRepository) List(ctx context.Context, q database.Querier, f filter.OrderFilter, page pagination.Pagination) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderRepository) Aggregate(ctx context.Context, q database.Querier) (*domain.OrderAggregate, error) {
	agg := &domain.OrderAggregate{OrdersCount: int64(len(m.orders)), TotalRevenue: decimal.Zero}
	for _, o := range m.orders {
		agg.TotalRevenue = agg.TotalRevenue.Add(o.TotalAmount)
	}
	return agg, nil
}
