package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"crm/internal/clock"
	"crm/internal/database"
	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/pagination"
	"crm/internal/repository"

	"github.com/google/uuid"
)

// ProductService defines the product mutations and queries
type ProductService interface {
	CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.ProductPayload, error)
	UpdateLowStockProducts(ctx context.Context) (*domain.RestockPayload, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, f filter.ProductFilter, page pagination.Pagination) (pagination.Page[domain.Product], error)
}

type productService struct {
	tx    database.Transactor
	db    database.Querier
	repo  repository.ProductRepository
	clock clock.Clock
}

// NewProductService creates a new instance of ProductService
func NewProductService(tx database.Transactor, db database.Querier, repo repository.ProductRepository, clk clock.Clock) ProductService {
	return &productService{tx: tx, db: db, repo: repo, clock: clk}
}

// CreateProduct stores a product with a positive price of at most two decimal
// places below MaxPrice. Stock defaults to 0 and must fit the stock column.
func (s *productService) CreateProduct(ctx context.Context, input domain.ProductInput) (*domain.ProductPayload, error) {
	var errs []string
	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, MsgNameRequired)
	} else if utf8.RuneCountInString(input.Name) > domain.MaxNameLength {
		errs = append(errs, MsgNameTooLong)
	}

	switch {
	case !input.Price.IsPositive():
		errs = append(errs, MsgPriceNotPositive)
	case !input.Price.Equal(input.Price.Round(domain.PriceScale)):
		errs = append(errs, MsgPriceScale)
	case input.Price.GreaterThanOrEqual(domain.MaxPrice):
		errs = append(errs, MsgPriceTooLarge)
	}

	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	if stock < 0 {
		errs = append(errs, MsgNegativeStock)
	} else if stock > domain.MaxStock {
		errs = append(errs, MsgStockTooLarge)
	}

	if len(errs) > 0 {
		return &domain.ProductPayload{Success: false, Errors: errs}, nil
	}

	product := &domain.Product{
		ID:        uuid.New(),
		Name:      input.Name,
		Price:     input.Price,
		Stock:     stock,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, s.db, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &domain.ProductPayload{Product: product, Success: true, Errors: []string{}}, nil
}

// UpdateLowStockProducts adds the restock quantity to every product whose
// stock is below the threshold, in one transaction.
func (s *productService) UpdateLowStockProducts(ctx context.Context) (*domain.RestockPayload, error) {
	var updated []*domain.Product

	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		var err error
		updated, err = s.repo.Restock(ctx, q, domain.LowStockThreshold, domain.RestockQuantity)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restock products: %w", err)
	}

	if updated == nil {
		updated = []*domain.Product{}
	}

	return &domain.RestockPayload{
		UpdatedProducts: updated,
		Message:         fmt.Sprintf("Restocked %d products", len(updated)),
		Success:         true,
	}, nil
}

// GetProduct looks a product up by its identifier
func (s *productService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, &domain.NotFoundError{Entity: "product", ID: id}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// ListProducts returns one page of products matching f
func (s *productService) ListProducts(ctx context.Context, f filter.ProductFilter, page pagination.Pagination) (pagination.Page[domain.Product], error) {
	rows, err := s.repo.List(ctx, s.db, f, page)
	if err != nil {
		return pagination.Page[domain.Product]{}, err
	}
	return pagination.BuildPage(rows, page, f.OrderBy.Cursor)
}
