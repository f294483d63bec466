package publisher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for processed events.
const (
	ResultPublished     = "published"
	ResultIgnored       = "ignored"
	ResultUnsupported   = "unsupported"
	ResultMalformed     = "malformed"
	ResultNotApplicable = "not_applicable"
	ResultLookupFailed  = "lookup_failed"
	ResultResolveFailed = "resolve_failed"
	ResultWriteFailed   = "write_failed"
)

// Metrics provides observability for the publish pipeline.
type Metrics struct {
	EventsTotal     *prometheus.CounterVec
	PublishDuration prometheus.Histogram
}

// NewMetrics creates a Metrics instance with all pipeline metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "openfga_publisher_events_total",
			Help: "Events processed, labeled by outcome",
		}, []string{"result"}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "openfga_publisher_publish_duration_seconds",
			Help:    "Duration of tuple writes to the authorization store",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncResult records one processed event with its outcome.
func (m *Metrics) IncResult(result string) {
	m.EventsTotal.WithLabelValues(result).Inc()
}

// ObservePublish records the duration of one write call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePublish(start time.Time) {
	m.PublishDuration.Observe(time.Since(start).Seconds())
}
