package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	LoanOperationsTotal     *prometheus.CounterVec
	ValidationFailuresTotal *prometheus.CounterVec
	EventsPublishedTotal    *prometheus.CounterVec
}

type LoanBookMetrics struct {
	Loans     *prometheus.GaugeVec
	Principal *prometheus.GaugeVec
	LastRun   prometheus.Gauge
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_service_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_service_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_service_db_query_duration_seconds",
				Help:    "Histogram of storage query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"store", "query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		LoanOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_service_loan_operations_total",
				Help: "Total number of loan operations by outcome.",
			},
			[]string{"operation", "status"},
		),
		ValidationFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_service_validation_failures_total",
				Help: "Total number of loan business rule violations by code.",
			},
			[]string{"code"},
		),
		EventsPublishedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_service_events_published_total",
				Help: "Total number of domain events published by routing key and outcome.",
			},
			[]string{"routing_key", "status"},
		),
	}

	LoanBook = LoanBookMetrics{
		Loans: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loan_book_loans",
				Help: "Number of stored loans per loan type at the last snapshot.",
			},
			[]string{"type"},
		),
		Principal: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loan_book_principal",
				Help: "Sum of loan amounts per loan type at the last snapshot.",
			},
			[]string{"type"},
		),
		LastRun: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "loan_book_last_run_timestamp_seconds",
				Help: "Unix time of the last successful loan book snapshot.",
			},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordDBQuery(store, queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(store, queryName, status).Observe(duration.Seconds())
}

func RecordLoanOperation(operation, status string) {
	Business.LoanOperationsTotal.WithLabelValues(operation, status).Inc()
}

func RecordValidationFailure(code string) {
	Business.ValidationFailuresTotal.WithLabelValues(code).Inc()
}

func RecordEventPublished(routingKey, status string) {
	Business.EventsPublishedTotal.WithLabelValues(routingKey, status).Inc()
}

func SetLoanBook(loanType string, count int, principal float64) {
	LoanBook.Loans.WithLabelValues(loanType).Set(float64(count))
	LoanBook.Principal.WithLabelValues(loanType).Set(principal)
}

func MarkLoanBookRun(t time.Time) {
	LoanBook.LastRun.Set(float64(t.Unix()))
}

// QueryStatus maps an error to the status label used by RecordDBQuery.
func QueryStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
