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

// BulkCustomersRequest represents the bulk customer creation payload
type BulkCustomersRequest struct {
	Customers []domain.CustomerInput `json:"customers"`
}

// CustomerHandler handles HTTP requests for customer operations
type CustomerHandler struct {
	customerService service.CustomerService
	metrics         *metrics.Registry
	logger          *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, reg *metrics.Registry, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		metrics:         reg,
		logger:          logger,
	}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.ListCustomers)
		r.Get("/{id}", h.GetCustomer)

		mutations := withLimiter(r, limit)
		mutations.Post("/", h.CreateCustomer)
		mutations.Post("/bulk", h.BulkCreateCustomers)
	})
}

// CreateCustomer handles single customer creation
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerInput

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Customer validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	payload, err := h.customerService.CreateCustomer(r.Context(), req)
	if err == nil && payload.Success {
		h.logger.Info("Customer created", zap.String("customer_id", payload.Customer.ID.String()))
	}
	respondMutation(w, r, h.logger, h.metrics, "create_customer", http.StatusCreated, customerResult{payload}, payload, err)
}

// BulkCreateCustomers handles batch creation. Valid records are kept even
// when others are rejected, so the response is 200 with per-record errors.
func (h *CustomerHandler) BulkCreateCustomers(w http.ResponseWriter, r *http.Request) {
	var req BulkCustomersRequest

	if err := middleware.Decode(r, &req); err != nil {
		h.logger.Debug("Bulk customer decode failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	payload, err := h.customerService.BulkCreateCustomers(r.Context(), req.Customers)
	if err != nil {
		h.metrics.ObserveMutation("bulk_create_customers", metrics.OutcomeError)
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	outcome := metrics.OutcomeSuccess
	if !payload.Success {
		outcome = metrics.OutcomeRejected
	}
	h.metrics.ObserveMutation("bulk_create_customers", outcome)

	h.logger.Info("Customers bulk created",
		zap.Int("created", len(payload.Customers)),
		zap.Int("rejected", len(payload.Errors)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, payload)
}

// GetCustomer handles customer lookup by id
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customerService.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

// ListCustomers handles filtered, paginated customer listing
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	f, err := filter.ParseCustomerFilter(r.URL.Query())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	page, err := parsePage(r)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	result, err := h.customerService.ListCustomers(r.Context(), f, page)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
