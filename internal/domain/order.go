package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order over one or more products
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CustomerID  uuid.UUID       `json:"customer_id" db:"customer_id"`
	Customer    *Customer       `json:"customer,omitempty"`
	Products    []*Product      `json:"products"`
	OrderDate   time.Time       `json:"order_date" db:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// OrderInput is the data accepted when creating an order. There is no total
// field: the total is always derived from the products.
type OrderInput struct {
	CustomerID string     `json:"customer_id" validate:"required"`
	ProductIDs []string   `json:"product_ids"`
	OrderDate  *time.Time `json:"order_date,omitempty"`
}

// OrderAggregate summarizes customers, orders and revenue
type OrderAggregate struct {
	CustomersCount int64           `json:"customers_count"`
	OrdersCount    int64           `json:"orders_count"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

// SumPrices returns the sum of the products' prices.
func SumPrices(products []*Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}
