package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"crm/internal/domain"
	"crm/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderCount is the number of random orders created by Run
const OrderCount = 5

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// Customers are the sample customers
var Customers = []domain.CustomerInput{
	{Name: "Alice Johnson", Email: "alice@example.com", Phone: strPtr("+1234567890")},
	{Name: "Bob Smith", Email: "bob@example.com", Phone: strPtr("123-456-7890")},
	{Name: "Charlie Brown", Email: "charlie@example.com"},
}

// Products are the sample products
var Products = []domain.ProductInput{
	{Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: intPtr(10)},
	{Name: "Smartphone", Price: decimal.RequireFromString("599.99"), Stock: intPtr(25)},
	{Name: "Headphones", Price: decimal.RequireFromString("199.99"), Stock: intPtr(50)},
}

// Result lists what Run created
type Result struct {
	Customers []*domain.Customer
	Products  []*domain.Product
	Orders    []*domain.Order
}

// Seeder fills an empty database with sample data through the services so
// every record passes the same validation as API input
type Seeder struct {
	Customers service.CustomerService
	Products  service.ProductService
	Orders    service.OrderService
	Rand      *rand.Rand
	Logger    *zap.Logger
}

// Run creates the sample customers and products, then OrderCount orders
// each for a random customer over a random non-empty product subset
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	for _, input := range Customers {
		payload, err := s.Customers.CreateCustomer(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to seed customer %s: %w", input.Email, err)
		}
		if !payload.Success {
			return nil, fmt.Errorf("customer %s rejected: %s", input.Email, strings.Join(payload.Errors, "; "))
		}
		res.Customers = append(res.Customers, payload.Customer)
	}

	for _, input := range Products {
		payload, err := s.Products.CreateProduct(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to seed product %s: %w", input.Name, err)
		}
		if !payload.Success {
			return nil, fmt.Errorf("product %s rejected: %s", input.Name, strings.Join(payload.Errors, "; "))
		}
		res.Products = append(res.Products, payload.Product)
	}

	for i := 0; i < OrderCount; i++ {
		customer := res.Customers[s.Rand.IntN(len(res.Customers))]
		picked := s.sample(res.Products)

		ids := make([]string, len(picked))
		for j, p := range picked {
			ids[j] = p.ID.String()
		}

		payload, err := s.Orders.CreateOrder(ctx, domain.OrderInput{CustomerID: customer.ID.String(), ProductIDs: ids})
		if err != nil {
			return nil, fmt.Errorf("failed to seed order: %w", err)
		}
		if !payload.Success {
			return nil, fmt.Errorf("order rejected: %s", strings.Join(payload.Errors, "; "))
		}
		res.Orders = append(res.Orders, payload.Order)
	}

	s.Logger.Info("Seeding complete",
		zap.Int("customers", len(res.Customers)),
		zap.Int("products", len(res.Products)),
		zap.Int("orders", len(res.Orders)),
	)
	return res, nil
}

// sample returns between 1 and len(products) distinct products
func (s *Seeder) sample(products []*domain.Product) []*domain.Product {
	k := 1 + s.Rand.IntN(len(products))
	picked := make([]*domain.Product, 0, k)
	for _, idx := range s.Rand.Perm(len(products))[:k] {
		picked = append(picked, products[idx])
	}
	return picked
}
