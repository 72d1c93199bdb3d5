package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

var errNetwork = errors.New("connection refused")

type stubClient struct {
	mu sync.Mutex

	health       HealthStatus
	healthErr    error
	report       Report
	reportErr    error
	segments     []SegmentCount
	segmentsErr  error
	recs         RecommendationSet
	recsFor      map[string]RecommendationSet
	recsErr      error
	trackErr     error
	uploadErr    error
	uploadHook   func()
	reportPanics bool

	reportCalls atomic.Int32
	recCalls    atomic.Int32
	trackCalls  atomic.Int32
	uploadCalls atomic.Int32
	tracked     []TrackEventInput
}

func (c *stubClient) FetchHealth(context.Context) (HealthStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health, c.healthErr
}

func (c *stubClient) FetchLatestReport(context.Context) (Report, error) {
	c.reportCalls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reportPanics {
		panic("decoder exploded")
	}
	return c.report, c.reportErr
}

func (c *stubClient) FetchSegments(context.Context) ([]SegmentCount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.segments, c.segmentsErr
}

func (c *stubClient) FetchRecommendations(_ context.Context, customerID string) (RecommendationSet, error) {
	c.recCalls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.recsFor[customerID]; ok {
		return set, c.recsErr
	}
	return c.recs, c.recsErr
}

func (c *stubClient) TrackEvent(_ context.Context, input TrackEventInput) error {
	c.trackCalls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracked = append(c.tracked, input)
	return c.trackErr
}

func (c *stubClient) UploadDataset(context.Context, UploadRequest) error {
	c.uploadCalls.Add(1)
	if c.uploadHook != nil {
		c.uploadHook()
	}
	return c.uploadErr
}

func (c *stubClient) setReport(r Report, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = r
	c.reportErr = err
}

func (c *stubClient) setPanics(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reportPanics = on
}

// hookedPanelStore runs onPut after every write, outside the store lock.
type hookedPanelStore struct {
	*InMemoryPanelStore
	onPut func(Panel)
}

func (s *hookedPanelStore) Put(panel Panel) {
	s.InMemoryPanelStore.Put(panel)
	if s.onPut != nil {
		s.onPut(panel)
	}
}

func sampleReport() Report {
	return Report{
		Type: "daily_insights",
		Metrics: MetricsSnapshot{
			AverageOrderValue: decimal.RequireFromString("52.5"),
			ConversionRate:    0.347,
			RetentionRate:     0.62,
		},
		BestPerformingProducts: []ProductPerformance{
			{Name: "Trail Shoes", SalesCount: 120},
			{Name: "Rain Jacket", SalesCount: 80},
		},
		ConversionBySegment: []SegmentConversion{
			{Segment: "loyal", ConversionRate: 0.347},
			{Segment: "new", ConversionRate: 0.12},
		},
		EngagementHeatmap: []EngagementCell{
			{Segment: "loyal", Category: "shoes", EngagementScore: 0.8},
			{Segment: "new", Category: "outerwear", EngagementScore: 0.3},
		},
	}
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
	loads  []map[string]any
}

func (t *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
	t.loads = append(t.loads, payload)
}

func (t *recordingTelemetry) has(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.events {
		if e == event {
			return true
		}
	}
	return false
}

type countingRenderer struct {
	calls atomic.Int32
	err   error
}

func (r *countingRenderer) Render(_ context.Context, containerID string, spec ChartSpec) (string, error) {
	r.calls.Add(1)
	if r.err != nil {
		return "", r.err
	}
	return "<div id=\"" + containerID + "\">" + string(spec.Kind) + "</div>", nil
}

type countingCache struct {
	calls int32
	html  string
}

func (c *countingCache) GetOrRender(_ string, render func() (string, error)) (string, error) {
	if c.html != "" {
		return c.html, nil
	}
	atomic.AddInt32(&c.calls, 1)
	html, err := render()
	if err == nil {
		c.html = html
	}
	return html, err
}
