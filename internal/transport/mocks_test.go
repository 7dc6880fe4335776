package transport

import (
	"context"

	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/pagination"
)

type mockCustomerService struct {
	create func(domain.CustomerInput) (*domain.CustomerPayload, error)
	bulk   func([]domain.CustomerInput) (*domain.BulkCustomersPayload, error)
	get    func(string) (*domain.Customer, error)
	list   func(filter.CustomerFilter, pagination.Pagination) (pagination.Page[domain.Customer], error)
}

func (m *mockCustomerService) CreateCustomer(ctx context.Context, input domain.CustomerInput) (*domain.CustomerPayload, error) {
	return m.create(input)
}

func (m *mockCustomerService) BulkCreateCustomers(ctx context.Context, inputs []domain.CustomerInput) (*domain.BulkCustomersPayload, error) {
	return m.bulk(inputs)
}

func (m *mockCustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return m.get(id)
}

func (m *mockCustomerService) ListCustomers(ctx context.Context, f filter.CustomerFilter, page pagination.Pagination) (pagination.Page[domain.Customer], error) {
	return m.list(f, page)
}

type mockProductService struct {
	create  func(domain.ProductInput) (*domain.ProductPayload, error)
	restock func() (*domain.RestockPayload, error)
	get     func(string) (*domain.Product, error)
	list    func(filter.ProductFilter, pagination.Pagination) (pagination.Page[domain.Product], error)
}

func (m *mockProductService) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.ProductPayload, error) {
	return m.create(input)
}

func (m *mockProductService) UpdateLowStockProducts(ctx context.Context) (*domain.RestockPayload, error) {
	return m.restock()
}

func (m *mockProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return m.get(id)
}

func (m *mockProductService) ListProducts(ctx context.Context, f filter.ProductFilter, page pagination.Pagination) (pagination.Page[domain.Product], error) {
	return m.list(f, page)
}

type mockOrderService struct {
	create    func(domain.OrderInput) (*domain.OrderPayload, error)
	get       func(string) (*domain.Order, error)
	list      func(filter.OrderFilter, pagination.Pagination) (pagination.Page[domain.Order], error)
	aggregate func() (*domain.OrderAggregate, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, input domain.OrderInput) (*domain.OrderPayload, error) {
	return m.create(input)
}

func (m *mockOrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return m.get(id)
}

func (m *mockOrderService) ListOrders(ctx context.Context, f filter.OrderFilter, page pagination.Pagination) (pagination.Page[domain.Order], error) {
	return m.list(f, page)
}

func (m *mockOrderService) AggregateOrders(ctx context.Context) (*domain.OrderAggregate, error) {
	return m.aggregate()
}
