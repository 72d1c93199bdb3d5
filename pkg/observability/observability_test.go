package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-retail-dashboard/components/dashboard"
	"github.com/goliatone/go-retail-dashboard/pkg/observability"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := observability.NewLogger(observability.LoggerConfig{Format: "json", Level: "debug", Out: &buf})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	logger.Debug().Str("view", "home").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "hello" || line["view"] != "home" || line["service"] != "dashboard" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestNewLoggerRejectsBadInput(t *testing.T) {
	if _, err := observability.NewLogger(observability.LoggerConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := observability.NewLogger(observability.LoggerConfig{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestZerologTelemetryLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := observability.NewLogger(observability.LoggerConfig{Format: "json", Level: "info", Out: &buf})
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	telemetry := observability.NewZerologTelemetry(logger)
	ctx := context.Background()

	telemetry.Record(ctx, "dashboard.chart.created", map[string]any{"slot": "products"})
	if buf.Len() != 0 {
		t.Fatalf("expected debug event to be filtered, got %q", buf.String())
	}
	telemetry.Record(ctx, "dashboard.refresh.failed", map[string]any{"slot": "products", "error": "boom"})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["level"] != "warn" || line["message"] != "dashboard.refresh.failed" || line["error"] != "boom" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestPrometheusTelemetryExposesCounters(t *testing.T) {
	telemetry, err := observability.NewPrometheusTelemetry(nil)
	if err != nil {
		t.Fatalf("NewPrometheusTelemetry returned error: %v", err)
	}
	var sink dashboard.Telemetry = observability.Fanout{nil, telemetry}
	ctx := context.Background()
	sink.Record(ctx, "dashboard.refresh.slot", map[string]any{"view": "reports", "slot": "products", "outcome": "ready"})
	sink.Record(ctx, "dashboard.refresh.slot", map[string]any{"view": "reports", "slot": "products", "outcome": "ready"})
	sink.Record(ctx, "dashboard.refresh.complete", map[string]any{"view": "reports", "duration_ms": int64(120)})

	rec := httptest.NewRecorder()
	telemetry.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`retail_dashboard_slot_refresh_total{outcome="ready",slot="products",view="reports"} 2`,
		`retail_dashboard_events_total{event="dashboard.refresh.slot"} 2`,
		`retail_dashboard_view_refresh_duration_seconds_count{view="reports"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, text)
		}
	}
}

func TestPrometheusTelemetryDuplicateRegistration(t *testing.T) {
	first, err := observability.NewPrometheusTelemetry(nil)
	if err != nil {
		t.Fatalf("NewPrometheusTelemetry returned error: %v", err)
	}
	if _, err := observability.NewPrometheusTelemetry(first.Registry()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
