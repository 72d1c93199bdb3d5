package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-retail-dashboard/components/dashboard"
)

const metricsNamespace = "retail_dashboard"

// PrometheusTelemetry counts dashboard events and per-slot refresh outcomes.
type PrometheusTelemetry struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusTelemetry registers the dashboard collectors on a private
// registry. A nil registry gets a fresh one.
func NewPrometheusTelemetry(registry *prometheus.Registry) (*PrometheusTelemetry, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	t := &PrometheusTelemetry{
		registry: registry,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Dashboard telemetry events by name.",
		}, []string{"event"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "slot_refresh_total",
			Help:      "Slot refresh outcomes by view, slot and outcome.",
		}, []string{"view", "slot", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "view_refresh_duration_seconds",
			Help:      "Time spent fetching and rendering one view refresh cycle.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
	}
	for _, c := range []prometheus.Collector{t.events, t.outcomes, t.duration} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("observability: register collector: %w", err)
		}
	}
	return t, nil
}

// Record implements dashboard.Telemetry.
func (t *PrometheusTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.events.WithLabelValues(event).Inc()
	switch event {
	case "dashboard.refresh.slot":
		t.outcomes.WithLabelValues(label(payload, "view"), label(payload, "slot"), label(payload, "outcome")).Inc()
	case "dashboard.refresh.complete":
		if ms, ok := payload["duration_ms"].(int64); ok {
			t.duration.WithLabelValues(label(payload, "view")).Observe(float64(ms) / 1000)
		}
	}
}

// Registry exposes the underlying registry.
func (t *PrometheusTelemetry) Registry() *prometheus.Registry {
	return t.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (t *PrometheusTelemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

func label(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

var _ dashboard.Telemetry = (*PrometheusTelemetry)(nil)
