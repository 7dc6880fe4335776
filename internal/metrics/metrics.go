package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mutation outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Registry holds the CRM collectors on a private prometheus registry
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	Mutations         *prometheus.CounterVec
	ProductsRestocked prometheus.Counter

	JobRuns     *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_http_requests_total",
		Help: "HTTP requests by method, route pattern and status.",
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_mutations_total",
		Help: "Mutations by name and outcome.",
	}, []string{"mutation", "outcome"})
	restocked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_products_restocked_total",
		Help: "Products whose stock was raised by a restock.",
	})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_job_runs_total",
		Help: "Scheduled job runs by job and outcome.",
	}, []string{"job", "outcome"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_job_duration_seconds",
		Help:    "Scheduled job latency.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"job"})

	r.MustRegister(httpRequests, httpDuration, mutations, restocked, jobRuns, jobDuration)
	return &Registry{
		reg:               r,
		HTTPRequests:      httpRequests,
		HTTPDuration:      httpDuration,
		Mutations:         mutations,
		ProductsRestocked: restocked,
		JobRuns:           jobRuns,
		JobDuration:       jobDuration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ObserveMutation counts one mutation outcome. A nil registry is a no-op.
func (r *Registry) ObserveMutation(mutation, outcome string) {
	if r == nil {
		return
	}
	r.Mutations.WithLabelValues(mutation, outcome).Inc()
}

// ObserveRestock counts restocked products
func (r *Registry) ObserveRestock(n int) {
	if r == nil {
		return
	}
	r.ProductsRestocked.Add(float64(n))
}

// ObserveJob records a job run
func (r *Registry) ObserveJob(job string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.JobRuns.WithLabelValues(job, outcome).Inc()
	r.JobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

// ObserveRequest records a finished HTTP request
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(method, route, http.StatusText(status)).Inc()
	r.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
