package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm/internal/clock"
	"crm/internal/database"
	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/pagination"
	"crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService defines the order mutations and queries
type OrderService interface {
	CreateOrder(ctx context.Context, input domain.OrderInput) (*domain.OrderPayload, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, f filter.OrderFilter, page pagination.Pagination) (pagination.Page[domain.Order], error)
	AggregateOrders(ctx context.Context) (*domain.OrderAggregate, error)
}

type orderService struct {
	tx        database.Transactor
	db        database.Querier
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	clock     clock.Clock
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	tx database.Transactor,
	db database.Querier,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	clk clock.Clock,
) OrderService {
	return &orderService{
		tx:        tx,
		db:        db,
		orders:    orders,
		customers: customers,
		products:  products,
		clock:     clk,
	}
}

var errNoProducts = errors.New("no products selected")

// CreateOrder places an order for an existing customer over existing
// products. Duplicate product ids collapse to one line. The total is the sum
// of the distinct products' prices. Unknown ids fail with NotFoundError and
// nothing is written.
func (s *orderService) CreateOrder(ctx context.Context, input domain.OrderInput) (*domain.OrderPayload, error) {
	customerID, err := uuid.Parse(strings.TrimSpace(input.CustomerID))
	if err != nil {
		return nil, &domain.NotFoundError{Entity: "customer", ID: input.CustomerID, Message: MsgInvalidCustomer}
	}

	productIDs, err := distinctProductIDs(input.ProductIDs)
	if err != nil {
		return nil, err
	}

	orderDate := s.clock.Now()
	if input.OrderDate != nil {
		orderDate = input.OrderDate.UTC()
	}

	var order *domain.Order
	err = s.tx.WithTx(ctx, func(q database.Querier) error {
		customer, err := s.customers.FindByID(ctx, q, customerID)
		if err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return &domain.NotFoundError{Entity: "customer", ID: input.CustomerID, Message: MsgInvalidCustomer}
			}
			return err
		}

		if len(productIDs) == 0 {
			return errNoProducts
		}

		products, err := s.resolveProducts(ctx, q, productIDs)
		if err != nil {
			return err
		}

		order = &domain.Order{
			ID:          uuid.New(),
			CustomerID:  customer.ID,
			OrderDate:   orderDate,
			TotalAmount: decimal.Zero,
			CreatedAt:   s.clock.Now(),
		}
		if err := s.orders.Create(ctx, q, order); err != nil {
			return err
		}
		if err := s.orders.AddProducts(ctx, q, order.ID, productIDs); err != nil {
			return err
		}

		order.TotalAmount = domain.SumPrices(products)
		if err := s.orders.UpdateTotal(ctx, q, order.ID, order.TotalAmount); err != nil {
			return err
		}

		order.Customer = customer
		order.Products = products
		return nil
	})

	if errors.Is(err, errNoProducts) {
		return &domain.OrderPayload{Success: false, Errors: []string{MsgNoProducts}}, nil
	}
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &domain.OrderPayload{Order: order, Success: true, Errors: []string{}}, nil
}

// resolveProducts loads products in the requested order and fails on the
// first id that does not resolve.
func (s *orderService) resolveProducts(ctx context.Context, q database.Querier, ids []uuid.UUID) ([]*domain.Product, error) {
	found, err := s.products.FindByIDs(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	products := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, &domain.NotFoundError{
				Entity:  "product",
				ID:      id.String(),
				Message: fmt.Sprintf(MsgInvalidProductFm, id),
			}
		}
		products = append(products, p)
	}
	return products, nil
}

// GetOrder looks an order up by its identifier
func (s *orderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, s.db, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, &domain.NotFoundError{Entity: "order", ID: id}
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// ListOrders returns one page of orders matching f
func (s *orderService) ListOrders(ctx context.Context, f filter.OrderFilter, page pagination.Pagination) (pagination.Page[domain.Order], error) {
	rows, err := s.orders.List(ctx, s.db, f, page)
	if err != nil {
		return pagination.Page[domain.Order]{}, err
	}
	return pagination.BuildPage(rows, page, f.OrderBy.Cursor)
}

// AggregateOrders returns customer and order counts and total revenue
func (s *orderService) AggregateOrders(ctx context.Context) (*domain.OrderAggregate, error) {
	agg, err := s.orders.Aggregate(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}
	return agg, nil
}

// distinctProductIDs parses ids and drops repeats, keeping first occurrence
func distinctProductIDs(raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, &domain.NotFoundError{
				Entity:  "product",
				ID:      value,
				Message: fmt.Sprintf(MsgInvalidProductFm, value),
			}
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
