package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the stock level below which a product is restocked
	LowStockThreshold = 10

	// RestockQuantity is added to every low-stock product on restock
	RestockQuantity = 10

	// PriceScale is the number of decimal places a price may carry
	PriceScale = 2

	// MaxStock is the largest stock the products table can hold
	MaxStock = math.MaxInt32
)

// MaxPrice is the exclusive upper bound of a DECIMAL(10,2) price
var MaxPrice = decimal.New(1, 8)

// Product represents a product in the catalog
type Product struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ProductInput is the data accepted when creating a product
type ProductInput struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Stock *int            `json:"stock,omitempty"`
}
