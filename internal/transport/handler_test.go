package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/metrics"
	"crm/internal/middleware"
	"crm/internal/pagination"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	router    chi.Router
	metrics   *metrics.Registry
	customers *mockCustomerService
	products  *mockProductService
	orders    *mockOrderService
}

func newTestAPI() *testAPI {
	api := &testAPI{
		router:    chi.NewRouter(),
		metrics:   metrics.NewRegistry(),
		customers: &mockCustomerService{},
		products:  &mockProductService{},
		orders:    &mockOrderService{},
	}
	logger := zap.NewNop()

	RegisterHelloRoute(api.router)
	NewCustomerHandler(api.customers, api.metrics, logger).RegisterRoutes(api.router, nil)
	NewProductHandler(api.products, api.metrics, logger).RegisterRoutes(api.router, nil)
	NewOrderHandler(api.orders, api.metrics, logger).RegisterRoutes(api.router, nil)
	return api
}

func (api *testAPI) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func TestHello(t *testing.T) {
	api := newTestAPI()

	w := api.do(http.MethodGet, "/api/hello", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HelloResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hello, CRM", resp.Hello)
}

func TestCreateCustomerStatuses(t *testing.T) {
	api := newTestAPI()
	api.customers.create = func(in domain.CustomerInput) (*domain.CustomerPayload, error) {
		if in.Email == "taken@example.com" {
			return &domain.CustomerPayload{Success: false, Errors: []string{"Email already exists"}}, nil
		}
		return &domain.CustomerPayload{
			Customer: &domain.Customer{ID: uuid.New(), Name: in.Name, Email: in.Email},
			Success:  true,
			Errors:   []string{},
		}, nil
	}

	w := api.do(http.MethodPost, "/api/customers", `{"name": "Alice", "email": "alice@example.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/api/customers", `{"name": "Alice", "email": "taken@example.com"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var payload domain.CustomerPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.False(t, payload.Success)
	assert.Equal(t, []string{"Email already exists"}, payload.Errors)

	w = api.do(http.MethodPost, "/api/customers", `{"name": "Alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/customers", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(api.metrics.Mutations.WithLabelValues("create_customer", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(api.metrics.Mutations.WithLabelValues("create_customer", metrics.OutcomeRejected)))
}

func TestBulkCreateCustomersReturnsPartialSuccess(t *testing.T) {
	api := newTestAPI()
	var received []domain.CustomerInput
	api.customers.bulk = func(in []domain.CustomerInput) (*domain.BulkCustomersPayload, error) {
		received = in
		return &domain.BulkCustomersPayload{
			Customers: []*domain.Customer{{ID: uuid.New(), Name: in[0].Name, Email: in[0].Email}},
			Success:   false,
			Errors:    []string{"Record 2: Phone number format 'x' is invalid"},
		}, nil
	}

	w := api.do(http.MethodPost, "/api/customers/bulk",
		`{"customers": [{"name": "Bob", "email": "bob@example.com"}, {"name": "Bad", "email": "bad@example.com", "phone": "x"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, received, 2)
	assert.Equal(t, "x", *received[1].Phone)

	var payload domain.BulkCustomersPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Len(t, payload.Customers, 1)
	assert.Len(t, payload.Errors, 1)
}

func TestGetCustomerErrors(t *testing.T) {
	api := newTestAPI()
	api.customers.get = func(id string) (*domain.Customer, error) {
		if id == "bad" {
			return nil, domain.NewValidationError("id", "invalid identifier %q", id)
		}
		return nil, &domain.NotFoundError{Entity: "customer", ID: id}
	}

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/customers/bad", "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/customers/"+uuid.NewString(), "").Code)
}

func TestListCustomersParsesFilterAndPage(t *testing.T) {
	api := newTestAPI()
	var gotFilter filter.CustomerFilter
	var gotPage pagination.Pagination
	api.customers.list = func(f filter.CustomerFilter, p pagination.Pagination) (pagination.Page[domain.Customer], error) {
		gotFilter, gotPage = f, p
		return pagination.Page[domain.Customer]{
			Items:    []*domain.Customer{{ID: uuid.New(), Name: "Alice"}},
			PageInfo: pagination.PageInfo{HasMore: false},
		}, nil
	}

	w := api.do(http.MethodGet, "/api/customers?name_icontains=ali&order_by=name&first=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotFilter.NameIContains)
	assert.Equal(t, "ali", *gotFilter.NameIContains)
	assert.Equal(t, "name", gotFilter.OrderBy.String())
	assert.Equal(t, 2, gotPage.PageSize)

	var page pagination.Page[domain.Customer]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Items, 1)
	assert.False(t, page.PageInfo.HasMore)
}

func TestListRejectsBadQueries(t *testing.T) {
	api := newTestAPI()

	for _, target := range []string{
		"/api/customers?unknown=1",
		"/api/customers?first=0",
		"/api/products?price_gte=abc",
		"/api/orders?order_by=-name",
	} {
		w := api.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)

		var resp middleware.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), target)
		assert.NotEmpty(t, resp.Error.Message, target)
	}
}

func TestCreateProductRejectionIs422(t *testing.T) {
	api := newTestAPI()
	api.products.create = func(in domain.ProductInput) (*domain.ProductPayload, error) {
		if !in.Price.IsPositive() {
			return &domain.ProductPayload{Success: false, Errors: []string{"Price must be positive"}}, nil
		}
		return &domain.ProductPayload{Product: &domain.Product{ID: uuid.New(), Name: in.Name, Price: in.Price}, Success: true}, nil
	}

	assert.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/products", `{"name": "Laptop", "price": "999.99", "stock": 5}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.do(http.MethodPost, "/api/products", `{"name": "Free", "price": "0"}`).Code)
}

func TestRestockCountsProducts(t *testing.T) {
	api := newTestAPI()
	api.products.restock = func() (*domain.RestockPayload, error) {
		return &domain.RestockPayload{
			UpdatedProducts: []*domain.Product{{Name: "Headphones", Stock: 15}, {Name: "Mouse", Stock: 12}},
			Message:         "Restocked 2 products",
			Success:         true,
		}, nil
	}

	w := api.do(http.MethodPost, "/api/products/restock", "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload domain.RestockPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "Restocked 2 products", payload.Message)
	assert.Equal(t, 2.0, testutil.ToFloat64(api.metrics.ProductsRestocked))
}

func TestCreateOrderStatuses(t *testing.T) {
	api := newTestAPI()
	customerID := uuid.New()
	api.orders.create = func(in domain.OrderInput) (*domain.OrderPayload, error) {
		switch {
		case in.CustomerID != customerID.String():
			return nil, &domain.NotFoundError{Entity: "customer", ID: in.CustomerID, Message: "Invalid customer ID"}
		case len(in.ProductIDs) == 0:
			return &domain.OrderPayload{Success: false, Errors: []string{"At least one valid product must be selected"}}, nil
		default:
			return &domain.OrderPayload{Order: &domain.Order{ID: uuid.New(), TotalAmount: decimal.RequireFromString("25.50")}, Success: true}, nil
		}
	}

	w := api.do(http.MethodPost, "/api/orders", `{"customer_id": "`+customerID.String()+`", "product_ids": ["`+uuid.NewString()+`"]}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/api/orders", `{"customer_id": "`+customerID.String()+`", "product_ids": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/api/orders", `{"customer_id": "`+uuid.NewString()+`", "product_ids": []}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid customer ID", resp.Error.Message)
}

func TestCreateOrderIgnoresClientTotal(t *testing.T) {
	api := newTestAPI()
	called := false
	api.orders.create = func(in domain.OrderInput) (*domain.OrderPayload, error) {
		called = true
		return &domain.OrderPayload{
			Order:   &domain.Order{ID: uuid.New(), TotalAmount: decimal.RequireFromString("25.50")},
			Success: true,
			Errors:  []string{},
		}, nil
	}

	body := `{"customer_id": "` + uuid.NewString() + `", "product_ids": ["` + uuid.NewString() + `"], "total_amount": "1.00"}`
	w := api.do(http.MethodPost, "/api/orders", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, called)

	var payload domain.OrderPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "25.5", payload.Order.TotalAmount.String())
}

func TestEngineFailuresAre500(t *testing.T) {
	api := newTestAPI()
	api.orders.aggregate = func() (*domain.OrderAggregate, error) {
		return nil, errors.New("connection refused")
	}

	w := api.do(http.MethodGet, "/api/orders/aggregate", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestAggregateRouteIsNotShadowedByID(t *testing.T) {
	api := newTestAPI()
	api.orders.aggregate = func() (*domain.OrderAggregate, error) {
		return &domain.OrderAggregate{CustomersCount: 3, OrdersCount: 5, TotalRevenue: decimal.RequireFromString("100.00")}, nil
	}
	api.orders.get = func(id string) (*domain.Order, error) {
		t.Fatalf("aggregate routed to GetOrder with %q", id)
		return nil, nil
	}

	w := api.do(http.MethodGet, "/api/orders/aggregate", "")
	require.Equal(t, http.StatusOK, w.Code)

	var agg domain.OrderAggregate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agg))
	assert.Equal(t, int64(5), agg.OrdersCount)
}

// Page sizes outside 1..100 are rejected or clamped, never passed through
func TestProperty_PageSizeIsBounded(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("first is clamped to the maximum page size", prop.ForAll(
		func(first int) bool {
			api := newTestAPI()
			var got pagination.Pagination
			api.products.list = func(f filter.ProductFilter, p pagination.Pagination) (pagination.Page[domain.Product], error) {
				got = p
				return pagination.Page[domain.Product]{Items: []*domain.Product{}}, nil
			}

			w := api.do(http.MethodGet, "/api/products?first="+strconv.Itoa(first), "")
			if first < 1 {
				return w.Code == http.StatusBadRequest
			}
			return w.Code == http.StatusOK && got.PageSize >= 1 && got.PageSize <= pagination.MaxPageSize
		},
		gen.IntRange(-10, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
