package observability

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-retail-dashboard/components/dashboard"
)

// ZerologTelemetry writes every dashboard event as a structured log line.
type ZerologTelemetry struct {
	Logger zerolog.Logger
}

// NewZerologTelemetry wraps logger.
func NewZerologTelemetry(logger zerolog.Logger) *ZerologTelemetry {
	return &ZerologTelemetry{Logger: logger}
}

// Record implements dashboard.Telemetry. Failures log at warn, panics at
// error, per-slot bookkeeping at debug and everything else at info.
func (t *ZerologTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.Logger.WithLevel(levelFor(event)).Fields(payload).Msg(event)
}

func levelFor(event string) zerolog.Level {
	switch {
	case strings.HasSuffix(event, ".panic"):
		return zerolog.ErrorLevel
	case strings.Contains(event, "fail"), strings.HasSuffix(event, ".error"),
		strings.HasSuffix(event, ".unknown_slot"), strings.HasSuffix(event, ".unknown_view"),
		strings.HasSuffix(event, ".clamped"):
		return zerolog.WarnLevel
	case strings.HasPrefix(event, "dashboard.chart."), event == "dashboard.refresh.slot",
		event == "dashboard.panel.event":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Fanout forwards events to several sinks in order.
type Fanout []dashboard.Telemetry

// Record implements dashboard.Telemetry.
func (f Fanout) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range f {
		if sink != nil {
			sink.Record(ctx, event, payload)
		}
	}
}

var (
	_ dashboard.Telemetry = (*ZerologTelemetry)(nil)
	_ dashboard.Telemetry = Fanout(nil)
)
