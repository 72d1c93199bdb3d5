package dashboard

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// HealthClient checks whether the analytics backend is reachable.
type HealthClient interface {
	FetchHealth(ctx context.Context) (HealthStatus, error)
}

// ReportClient loads the latest insights report.
type ReportClient interface {
	FetchLatestReport(ctx context.Context) (Report, error)
}

// SegmentClient loads the customer segment distribution.
type SegmentClient interface {
	FetchSegments(ctx context.Context) ([]SegmentCount, error)
}

// RecommendationClient loads personalized recommendations for a customer.
type RecommendationClient interface {
	FetchRecommendations(ctx context.Context, customerID string) (RecommendationSet, error)
}

// EventClient submits customer interaction events.
type EventClient interface {
	TrackEvent(ctx context.Context, input TrackEventInput) error
}

// UploadClient submits CSV datasets to the backend.
type UploadClient interface {
	UploadDataset(ctx context.Context, req UploadRequest) error
}

// AnalyticsClient is the union of every endpoint the dashboard consumes.
type AnalyticsClient interface {
	HealthClient
	ReportClient
	SegmentClient
	RecommendationClient
	EventClient
	UploadClient
}

// RefreshHook notifies transports (WebSocket/SSE) about panel changes.
type RefreshHook interface {
	PanelUpdated(ctx context.Context, event PanelEvent) error
}

// HealthStatus is the narrowed /api/health payload.
type HealthStatus struct {
	Status    string
	Error     string
	CheckedAt time.Time
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// MetricsSnapshot carries the headline KPIs of a report. It has no identity
// across refreshes and is replaced wholesale.
type MetricsSnapshot struct {
	AverageOrderValue decimal.Decimal
	ConversionRate    float64
	RetentionRate     float64
}

// ProductPerformance is one entry of the best performing products ranking.
type ProductPerformance struct {
	Name       string
	SalesCount int
}

// SegmentConversion is the conversion rate observed for a customer segment.
type SegmentConversion struct {
	Segment        string
	ConversionRate float64
}

// EngagementCell is a sparse (segment, category) engagement score.
type EngagementCell struct {
	Segment         string
	Category        string
	EngagementScore float64
}

// Report is the narrowed /api/reports/latest payload.
type Report struct {
	Type                   string
	Metrics                MetricsSnapshot
	BestPerformingProducts []ProductPerformance
	ConversionBySegment    []SegmentConversion
	EngagementHeatmap      []EngagementCell
}

// SegmentCount is one row of the /api/segments payload.
type SegmentCount struct {
	SegmentTag string
	Count      int
}

// CustomerSegment is the segment a customer was assigned to.
type CustomerSegment struct {
	SegmentTag string
	Score      float64
}

// Product is the catalog entry attached to a recommendation.
type Product struct {
	ProductID string
	Name      string
	Category  string
	Price     decimal.Decimal
}

// Recommendation pairs a product with the model confidence.
type Recommendation struct {
	Product         Product
	ConfidenceScore float64
}

// RecommendationSet is the narrowed /api/recommendations/{id} payload.
type RecommendationSet struct {
	CustomerID      string
	Segment         CustomerSegment
	Recommendations []Recommendation
}

// TrackEventInput is posted to /api/track_event.
type TrackEventInput struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	EventType  string `json:"event_type"`
}

// UploadFile is a single multipart file part.
type UploadFile struct {
	Filename string
	Body     io.Reader
}

// UploadRequest groups the dataset files posted to /api/upload.
type UploadRequest struct {
	Customers *UploadFile
	Products  *UploadFile
	Events    *UploadFile
}

// PanelEvent describes panel changes transports might care about.
type PanelEvent struct {
	View         string        `json:"view"`
	Slot         string        `json:"slot"`
	Reason       string        `json:"reason"`
	Panel        *Panel        `json:"panel,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// NotificationLevel mirrors the toast styles shown to the user.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a transient toast message.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
