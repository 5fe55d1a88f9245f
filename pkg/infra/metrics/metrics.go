package metrics

import (
	"net/http"
	"strconv"

	"github.com/m-mizutani/themepreview/pkg/domain/interfaces"
	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "themepreview"

// Metrics keeps the Prometheus collectors of the webhook server on its own registry
type Metrics struct {
	registry       *prometheus.Registry
	webhookEvents  *prometheus.CounterVec
	commentActions *prometheus.CounterVec
}

var _ interfaces.MetricsRecorder = (*Metrics)(nil)

// New creates the collectors and registers them together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Webhook events received, by event type and whether they refresh a preview.",
			},
			[]string{"type", "supported"},
		),
		commentActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comment_actions_total",
				Help:      "Reconciliations of the preview comment, by resulting action.",
			},
			[]string{"action"},
		),
	}

	m.registry.MustRegister(
		m.webhookEvents,
		m.commentActions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterInFlight exports fn as the number of running preview refreshes
func (m *Metrics) RegisterInFlight(fn func() int64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_in_flight",
			Help:      "Preview refreshes currently running in the background.",
		},
		func() float64 { return float64(fn()) },
	))
}

// ObserveWebhookEvent counts a received webhook event
func (m *Metrics) ObserveWebhookEvent(eventType model.WebhookEventType, supported bool) {
	m.webhookEvents.WithLabelValues(string(eventType), strconv.FormatBool(supported)).Inc()
}

// ObserveCommentAction counts a finished reconciliation
func (m *Metrics) ObserveCommentAction(action model.CommentAction) {
	m.commentActions.WithLabelValues(string(action)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
