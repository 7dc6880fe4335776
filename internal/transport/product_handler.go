package transport

import (
	"net/http"

	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/metrics"
	"crm/internal/middleware"
	"crm/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	metrics        *metrics.Registry
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, reg *metrics.Registry, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		metrics:        reg,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		mutations := withLimiter(r, limit)
		mutations.Post("/", h.CreateProduct)
		mutations.Post("/restock", h.RestockProducts)
	})
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductInput

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	payload, err := h.productService.CreateProduct(r.Context(), req)
	respondMutation(w, r, h.logger, h.metrics, "create_product", http.StatusCreated, productResult{payload}, payload, err)
}

// RestockProducts raises the stock of every low-stock product
func (h *ProductHandler) RestockProducts(w http.ResponseWriter, r *http.Request) {
	payload, err := h.productService.UpdateLowStockProducts(r.Context())
	if err != nil {
		h.metrics.ObserveMutation("update_low_stock_products", metrics.OutcomeError)
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.metrics.ObserveMutation("update_low_stock_products", metrics.OutcomeSuccess)
	h.metrics.ObserveRestock(len(payload.UpdatedProducts))
	h.logger.Info("Products restocked", zap.Int("count", len(payload.UpdatedProducts)))
	middleware.RespondWithJSON(w, http.StatusOK, payload)
}

// GetProduct handles product lookup by id
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListProducts handles filtered, paginated product listing
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseProductFilter(r.URL.Query())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	page, err := parsePage(r)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	result, err := h.productService.ListProducts(r.Context(), f, page)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
