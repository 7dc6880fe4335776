package transport

import (
	"net/http"

	"crm/internal/domain"
	"crm/internal/metrics"
	"crm/internal/middleware"
	"crm/internal/pagination"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HelloResponse is returned by the hello endpoint
type HelloResponse struct {
	Hello string `json:"hello"`
}

// Greeting is the fixed hello response
const Greeting = "Hello, CRM"

// RegisterHelloRoute registers GET /api/hello
func RegisterHelloRoute(r chi.Router) {
	r.Get("/api/hello", func(w http.ResponseWriter, r *http.Request) {
		middleware.RespondWithJSON(w, http.StatusOK, HelloResponse{Hello: Greeting})
	})
}

// mutationResult is implemented by every mutation payload
type mutationResult interface {
	succeeded() bool
}

type customerResult struct{ *domain.CustomerPayload }
type productResult struct{ *domain.ProductPayload }
type orderResult struct{ *domain.OrderPayload }

func (p customerResult) succeeded() bool { return p.Success }
func (p productResult) succeeded() bool  { return p.Success }
func (p orderResult) succeeded() bool    { return p.Success }

// respondMutation writes a mutation payload: successStatus when it was
// applied, 422 when it was rejected. Hard failures go through the domain
// error mapping.
func respondMutation(w http.ResponseWriter, r *http.Request, logger *zap.Logger, reg *metrics.Registry, name string, successStatus int, result mutationResult, payload interface{}, err error) {
	if err != nil {
		reg.ObserveMutation(name, metrics.OutcomeError)
		middleware.RespondWithDomainError(w, r, logger, err)
		return
	}

	if !result.succeeded() {
		reg.ObserveMutation(name, metrics.OutcomeRejected)
		logger.Debug("Mutation rejected", zap.String("mutation", name), zap.Any("payload", payload))
		middleware.RespondWithJSON(w, http.StatusUnprocessableEntity, payload)
		return
	}

	reg.ObserveMutation(name, metrics.OutcomeSuccess)
	middleware.RespondWithJSON(w, successStatus, payload)
}

// parsePage reads the "first" and "after" query parameters
func parsePage(r *http.Request) (pagination.Pagination, error) {
	q := r.URL.Query()
	page, err := pagination.Parse(q.Get("first"), q.Get("after"))
	if err != nil {
		return page, domain.NewValidationError("first", "%s", err.Error())
	}
	return page, nil
}

// withLimiter applies limit to mutation routes when rate limiting is on
func withLimiter(r chi.Router, limit func(http.Handler) http.Handler) chi.Router {
	if limit == nil {
		return r
	}
	return r.With(limit)
}
