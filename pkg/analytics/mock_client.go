package analytics

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
	"github.com/shopspring/decimal"
)

// MockData seeds deterministic analytics responses for tests or local demos.
type MockData struct {
	Health          dashboard.HealthStatus
	Report          dashboard.Report
	Segments        []dashboard.SegmentCount
	Recommendations map[string]dashboard.RecommendationSet
}

// MockClient implements Client using in-memory fixtures. Unknown customers
// answer with a 404 payload error like the live API.
type MockClient struct {
	mu       sync.RWMutex
	data     MockData
	tracked  []dashboard.TrackEventInput
	uploaded []string
}

// NewMockClient builds a mock analytics client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// FetchHealth returns the configured health status.
func (c *MockClient) FetchHealth(context.Context) (dashboard.HealthStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status := c.data.Health
	if status.CheckedAt.IsZero() {
		status.CheckedAt = time.Now()
	}
	return status, nil
}

// FetchLatestReport returns the configured report.
func (c *MockClient) FetchLatestReport(context.Context) (dashboard.Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Report.Type == "" {
		return dashboard.Report{}, &dashboard.PayloadError{Status: 404, Message: "No reports found"}
	}
	return cloneReport(c.data.Report), nil
}

// FetchSegments returns the configured segment counts.
func (c *MockClient) FetchSegments(context.Context) ([]dashboard.SegmentCount, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dashboard.SegmentCount(nil), c.data.Segments...), nil
}

// FetchRecommendations returns the fixture for customerID.
func (c *MockClient) FetchRecommendations(_ context.Context, customerID string) (dashboard.RecommendationSet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.data.Recommendations[customerID]
	if !ok {
		return dashboard.RecommendationSet{}, &dashboard.PayloadError{Status: 404, Message: "Customer not found"}
	}
	set.CustomerID = customerID
	set.Recommendations = append([]dashboard.Recommendation(nil), set.Recommendations...)
	return set, nil
}

// TrackEvent records the event.
func (c *MockClient) TrackEvent(_ context.Context, input dashboard.TrackEventInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracked = append(c.tracked, input)
	return nil
}

// UploadDataset drains the files and records their names.
func (c *MockClient) UploadDataset(_ context.Context, req dashboard.UploadRequest) error {
	if req.Customers == nil || req.Products == nil {
		return &dashboard.PayloadError{Status: 400, Message: "Missing required files"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, file := range []*dashboard.UploadFile{req.Customers, req.Products, req.Events} {
		if file == nil {
			continue
		}
		if file.Body != nil {
			if _, err := io.Copy(io.Discard, file.Body); err != nil {
				return fmt.Errorf("analytics: read %s: %w", file.Filename, err)
			}
		}
		c.uploaded = append(c.uploaded, file.Filename)
	}
	return nil
}

// Tracked returns the recorded events.
func (c *MockClient) Tracked() []dashboard.TrackEventInput {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dashboard.TrackEventInput(nil), c.tracked...)
}

// Uploaded returns the names of uploaded files.
func (c *MockClient) Uploaded() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.uploaded...)
}

func cloneReport(report dashboard.Report) dashboard.Report {
	out := report
	out.BestPerformingProducts = append([]dashboard.ProductPerformance(nil), report.BestPerformingProducts...)
	out.ConversionBySegment = append([]dashboard.SegmentConversion(nil), report.ConversionBySegment...)
	out.EngagementHeatmap = append([]dashboard.EngagementCell(nil), report.EngagementHeatmap...)
	return out
}

// DemoData returns a small retail dataset for local runs.
func DemoData() MockData {
	price := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }
	return MockData{
		Health: dashboard.HealthStatus{Status: "healthy"},
		Report: dashboard.Report{
			Type: "daily_insights",
			Metrics: dashboard.MetricsSnapshot{
				AverageOrderValue: price("64.25"),
				ConversionRate:    0.347,
				RetentionRate:     0.58,
			},
			BestPerformingProducts: []dashboard.ProductPerformance{
				{Name: "Trail Running Shoes", SalesCount: 182},
				{Name: "Waterproof Jacket", SalesCount: 141},
				{Name: "Merino Socks", SalesCount: 97},
			},
			ConversionBySegment: []dashboard.SegmentConversion{
				{Segment: "loyal", ConversionRate: 0.42},
				{Segment: "new", ConversionRate: 0.18},
				{Segment: "at_risk", ConversionRate: 0.07},
			},
			EngagementHeatmap: []dashboard.EngagementCell{
				{Segment: "loyal", Category: "footwear", EngagementScore: 0.91},
				{Segment: "loyal", Category: "outerwear", EngagementScore: 0.64},
				{Segment: "new", Category: "footwear", EngagementScore: 0.38},
				{Segment: "at_risk", Category: "accessories", EngagementScore: 0.12},
			},
		},
		Segments: []dashboard.SegmentCount{
			{SegmentTag: "loyal", Count: 120},
			{SegmentTag: "new", Count: 80},
			{SegmentTag: "at_risk", Count: 40},
		},
		Recommendations: map[string]dashboard.RecommendationSet{
			"C001": {
				Segment: dashboard.CustomerSegment{SegmentTag: "loyal", Score: 0.87},
				Recommendations: []dashboard.Recommendation{
					{Product: dashboard.Product{ProductID: "P010", Name: "Trail Running Shoes", Category: "footwear", Price: price("119.00")}, ConfidenceScore: 0.93},
					{Product: dashboard.Product{ProductID: "P022", Name: "Merino Socks", Category: "accessories", Price: price("14.50")}, ConfidenceScore: 0.71},
				},
			},
		},
	}
}
