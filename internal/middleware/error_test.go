package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// statuses the API answers with outside of 2xx
var apiErrorStatuses = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusServiceUnavailable,
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestProperty_ErrorEnvelope(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every error carries status text, message and an RFC3339 timestamp", prop.ForAll(
		func(idx int, message string) bool {
			status := apiErrorStatuses[idx]

			w := httptest.NewRecorder()
			RespondWithError(w, status, message)

			if w.Code != status || w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if response.Error.Code != http.StatusText(status) || response.Error.Message != message {
				return false
			}
			_, err := time.Parse(time.RFC3339, response.Error.Timestamp)
			return err == nil && response.Error.Details == nil
		},
		gen.IntRange(0, len(apiErrorStatuses)-1),
		gen.AlphaString(),
	))

	properties.Property("details survive the round trip", prop.ForAll(
		func(key, value string) bool {
			w := httptest.NewRecorder()
			RespondWithErrorDetails(w, http.StatusBadRequest, "invalid filter", map[string]interface{}{key: value})

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			return response.Error.Details[key] == value
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{{Field: "email", Message: "email is required"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w)
	assert.Equal(t, "validation failed", response.Error.Message)

	fields, ok := response.Error.Details["validation_errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, fields, 1)
	assert.Equal(t, "email", fields[0].(map[string]interface{})["field"])
}

func TestRespondWithJSONWritesPayload(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusCreated, domain.ProductPayload{Success: true, Errors: []string{}})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"product":null,"success":true,"errors":[]}`, w.Body.String())
}

func TestRespondWithDomainError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", domain.NewValidationError("first", "must be positive"), http.StatusBadRequest, "first: must be positive"},
		{"not found", &domain.NotFoundError{Entity: "customer", ID: "x", Message: "Invalid customer ID"}, http.StatusNotFound, "Invalid customer ID"},
		{"wrapped not found", fmt.Errorf("lookup: %w", &domain.NotFoundError{Entity: "order", ID: "y"}), http.StatusNotFound, "order y not found"},
		{"conflict", &domain.ConflictError{Message: "Email already exists"}, http.StatusConflict, "Email already exists"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/customers", nil)

			RespondWithDomainError(w, r, zap.NewNop(), tc.err)

			require.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.message, decodeError(t, w).Error.Message)
		})
	}
}

func TestRespondWithDomainErrorReportsField(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithDomainError(w, httptest.NewRequest(http.MethodGet, "/api/products", nil), zap.NewNop(),
		domain.NewValidationError("price_gte", "invalid decimal %q", "cheap"))

	response := decodeError(t, w)
	assert.Equal(t, "price_gte", response.Error.Details["field"])
}

func TestErrorHandlingMiddlewareRecoversPanics(t *testing.T) {
	handler := ErrorHandlingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeError(t, w).Error.Message)
}

func TestCORSPreflight(t *testing.T) {
	handler := CORSMiddleware([]string{"https://crm.example.com"}, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodOptions, "/api/customers", nil)
	r.Header.Set("Origin", "https://crm.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "https://crm.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
