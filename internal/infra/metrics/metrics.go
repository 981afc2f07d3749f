package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graindesk_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graindesk_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graindesk_fetch_cache_lookups_total",
		Help: "Fetch cache lookups by resource and result (hit, stale, miss).",
	}, []string{"resource", "result"})

	FetchRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graindesk_fetch_retries_total",
		Help: "Retried fetch attempts by resource.",
	}, []string{"resource"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graindesk_exports_total",
		Help: "Generated export files by kind and format.",
	}, []string{"kind", "format"})

	AccountingCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graindesk_accounting_callbacks_total",
		Help: "Accounting OAuth callbacks by result.",
	}, []string{"result"})

	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graindesk_invoices_created_total",
		Help: "Invoices pushed to the accounting provider.",
	})
)
