package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for lunamail.
type Metrics struct {
	EmailsSentTotal     prometheus.Counter
	EmailsFailedTotal   prometheus.Counter
	ContactsImported    prometheus.Counter
	ImportRowsRejected  prometheus.Counter
	CampaignsSentTotal  prometheus.Counter

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered on a private
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		EmailsSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lunamail_emails_sent_total",
			Help: "Total number of successfully delivered campaign emails",
		}),
		EmailsFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lunamail_emails_failed_total",
			Help: "Total number of failed campaign email deliveries",
		}),
		ContactsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lunamail_contacts_imported_total",
			Help: "Total number of contacts created via CSV import",
		}),
		ImportRowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lunamail_import_rows_rejected_total",
			Help: "Total number of CSV rows rejected during import",
		}),
		CampaignsSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lunamail_campaigns_sent_total",
			Help: "Total number of bulk send operations",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lunamail_http_requests_total",
				Help: "HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lunamail_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.EmailsSentTotal,
		m.EmailsFailedTotal,
		m.ContactsImported,
		m.ImportRowsRejected,
		m.CampaignsSentTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
	)

	return m
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
