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

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	metrics      *metrics.Registry
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, reg *metrics.Registry, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		metrics:      reg,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/aggregate", h.AggregateOrders)
		r.Get("/{id}", h.GetOrder)

		withLimiter(r, limit).Post("/", h.CreateOrder)
	})
}

// CreateOrder handles order creation
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderInput

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	payload, err := h.orderService.CreateOrder(r.Context(), req)
	if err == nil && payload.Success {
		h.logger.Info("Order created",
			zap.String("order_id", payload.Order.ID.String()),
			zap.String("total_amount", payload.Order.TotalAmount.StringFixed(2)),
		)
	}
	respondMutation(w, r, h.logger, h.metrics, "create_order", http.StatusCreated, orderResult{payload}, payload, err)
}

// GetOrder handles order lookup by id
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListOrders handles filtered, paginated order listing
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseOrderFilter(r.URL.Query())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	page, err := parsePage(r)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	result, err := h.orderService.ListOrders(r.Context(), f, page)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// AggregateOrders reports customer and order counts and revenue
func (h *OrderHandler) AggregateOrders(w http.ResponseWriter, r *http.Request) {
	agg, err := h.orderService.AggregateOrders(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, agg)
}
