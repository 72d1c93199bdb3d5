package analytics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL + "/", APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestHTTPClientFetchLatestReportNested(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reports/latest" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		io.WriteString(w, `{"type":"daily_insights","data":{
			"metrics":{"average_order_value":52.5,"conversion_rate":0.347,"retention_rate":0.62},
			"best_performing_products":[{"name":"Trail Shoes","sales_count":120}],
			"conversion_by_segment":[{"segment":"loyal","conversion_rate":0.3}],
			"engagement_heatmap":[{"segment":"loyal","category":"shoes","engagement_score":0.8}]}}`)
	})

	report, err := client.FetchLatestReport(context.Background())
	if err != nil {
		t.Fatalf("fetch report: %v", err)
	}
	if report.Type != "daily_insights" {
		t.Fatalf("unexpected type %q", report.Type)
	}
	if report.Metrics.AverageOrderValue.StringFixed(2) != "52.50" {
		t.Fatalf("unexpected aov %s", report.Metrics.AverageOrderValue)
	}
	if len(report.BestPerformingProducts) != 1 || report.BestPerformingProducts[0].SalesCount != 120 {
		t.Fatalf("unexpected products %#v", report.BestPerformingProducts)
	}
	if len(report.EngagementHeatmap) != 1 || report.EngagementHeatmap[0].EngagementScore != 0.8 {
		t.Fatalf("unexpected heatmap %#v", report.EngagementHeatmap)
	}
}

func TestHTTPClientFetchLatestReportTopLevel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"type":"weekly","metrics":{"average_order_value":"10.10","conversion_rate":0.1,"retention_rate":0.2},"best_performing_products":[]}`)
	})
	report, err := client.FetchLatestReport(context.Background())
	if err != nil {
		t.Fatalf("fetch report: %v", err)
	}
	if report.Metrics.AverageOrderValue.StringFixed(2) != "10.10" || report.Metrics.RetentionRate != 0.2 {
		t.Fatalf("unexpected metrics %#v", report.Metrics)
	}
}

func TestHTTPClientErrorPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"No reports found"}`)
	})
	_, err := client.FetchLatestReport(context.Background())
	payload, ok := dashboard.AsPayloadError(err)
	if !ok {
		t.Fatalf("expected payload error, got %v", err)
	}
	if payload.Status != http.StatusNotFound || payload.Message != "No reports found" {
		t.Fatalf("unexpected payload %#v", payload)
	}
}

func TestHTTPClientServerErrorWithoutPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down")
	})
	_, err := client.FetchSegments(context.Background())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected remote error, got %v", err)
	}
	if _, ok := dashboard.AsPayloadError(err); ok {
		t.Fatalf("plain 5xx must not be a payload error")
	}
}

func TestHTTPClientRejectsMalformedShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"segments":[{"segment_tag":"loyal","count":"ten"}]}`)
	})
	_, err := client.FetchSegments(context.Background())
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected invalid payload error, got %v", err)
	}
}

func TestHTTPClientSkipValidationAcceptsOffSchemaBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"segments":[{"segment_tag":"loyal","count":-3}]}`)
	}))
	t.Cleanup(server.Close)

	strict, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := strict.FetchSegments(context.Background()); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected schema rejection, got %v", err)
	}

	lenient, err := NewHTTPClient(HTTPConfig{
		BaseURL:        server.URL,
		Validator:      NewSchemaValidator(),
		SkipValidation: true,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	segments, err := lenient.FetchSegments(context.Background())
	if err != nil {
		t.Fatalf("expected body to pass without validation, got %v", err)
	}
	if len(segments) != 1 || segments[0].SegmentTag != "loyal" {
		t.Fatalf("unexpected segments: %+v", segments)
	}
}

func TestHTTPClientRejectsNonJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>oops</html>")
	})
	if _, err := client.FetchSegments(context.Background()); err == nil {
		t.Fatalf("expected parse failure")
	}
}

func TestHTTPClientFetchHealthUnhealthy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"status":"unhealthy","error":"database is locked"}`)
	})
	status, err := client.FetchHealth(context.Background())
	if err != nil {
		t.Fatalf("fetch health: %v", err)
	}
	if status.Healthy() || status.Error != "database is locked" {
		t.Fatalf("unexpected status %#v", status)
	}
	if status.CheckedAt.IsZero() {
		t.Fatalf("expected check time")
	}
}

func TestHTTPClientFetchHealthTimestamp(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"healthy","timestamp":"2024-05-01T10:00:00Z"}`)
	})
	status, err := client.FetchHealth(context.Background())
	if err != nil {
		t.Fatalf("fetch health: %v", err)
	}
	if !status.Healthy() || !status.CheckedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected status %#v", status)
	}
}

func TestHTTPClientFetchRecommendations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/recommendations/C 01" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"segment":{"segment_tag":"loyal","score":0.9},
			"recommendations":[{"product":{"product_id":"P1","name":"Shoes","category":"footwear","price":89.9},"confidence_score":0.75}]}`)
	})
	set, err := client.FetchRecommendations(context.Background(), "C 01")
	if err != nil {
		t.Fatalf("fetch recommendations: %v", err)
	}
	if set.CustomerID != "C 01" || set.Segment.SegmentTag != "loyal" {
		t.Fatalf("unexpected set %#v", set)
	}
	if len(set.Recommendations) != 1 || set.Recommendations[0].Product.Price.StringFixed(2) != "89.90" {
		t.Fatalf("unexpected recommendations %#v", set.Recommendations)
	}
}

func TestHTTPClientTrackEvent(t *testing.T) {
	var body string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/track_event" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		io.WriteString(w, `{"status":"success"}`)
	})
	err := client.TrackEvent(context.Background(), dashboard.TrackEventInput{CustomerID: "C1", ProductID: "P1", EventType: "view"})
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if !strings.Contains(body, `"customer_id":"C1"`) || !strings.Contains(body, `"event_type":"view"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestHTTPClientUploadDataset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		for _, field := range []string{"customers", "products"} {
			if _, header, err := r.FormFile(field); err != nil || !strings.HasSuffix(header.Filename, ".csv") {
				t.Fatalf("missing %s file: %v", field, err)
			}
		}
		if _, _, err := r.FormFile("events"); err == nil {
			t.Fatalf("events file was not sent")
		}
		io.WriteString(w, `{"status":"success"}`)
	})
	err := client.UploadDataset(context.Background(), dashboard.UploadRequest{
		Customers: &dashboard.UploadFile{Filename: "customers.csv", Body: strings.NewReader("customer_id\nC1\n")},
		Products:  &dashboard.UploadFile{Filename: "products.csv", Body: strings.NewReader("product_id\nP1\n")},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
}

func TestHTTPClientUploadFailurePayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Invalid file type. Only CSV files are allowed."}`)
	})
	err := client.UploadDataset(context.Background(), dashboard.UploadRequest{
		Customers: &dashboard.UploadFile{Filename: "customers.csv"},
		Products:  &dashboard.UploadFile{Filename: "products.csv"},
	})
	payload, ok := dashboard.AsPayloadError(err)
	if !ok || payload.Message != "Invalid file type. Only CSV files are allowed." {
		t.Fatalf("expected payload error, got %v", err)
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}
