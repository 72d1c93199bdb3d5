package analytics

import (
	"time"

	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
	"github.com/shopspring/decimal"
)

type healthResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func (r healthResponse) toStatus(now time.Time) dashboard.HealthStatus {
	checked := now
	if ts, err := time.Parse(time.RFC3339, r.Timestamp); err == nil {
		checked = ts
	}
	return dashboard.HealthStatus{Status: r.Status, Error: r.Error, CheckedAt: checked}
}

type metricsWire struct {
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	ConversionRate    float64         `json:"conversion_rate"`
	RetentionRate     float64         `json:"retention_rate"`
}

type productWire struct {
	Name       string `json:"name"`
	SalesCount int    `json:"sales_count"`
}

type conversionWire struct {
	Segment        string  `json:"segment"`
	ConversionRate float64 `json:"conversion_rate"`
}

type heatmapWire struct {
	Segment         string  `json:"segment"`
	Category        string  `json:"category"`
	EngagementScore float64 `json:"engagement_score"`
}

type insightsWire struct {
	Metrics                metricsWire      `json:"metrics"`
	BestPerformingProducts []productWire    `json:"best_performing_products"`
	ConversionBySegment    []conversionWire `json:"conversion_by_segment"`
	EngagementHeatmap      []heatmapWire    `json:"engagement_heatmap"`
}

// reportResponse accepts insights at the top level or nested under "data".
type reportResponse struct {
	Type string        `json:"type"`
	Data *insightsWire `json:"data"`
	insightsWire
}

func (r reportResponse) toReport() dashboard.Report {
	insights := r.insightsWire
	if r.Data != nil {
		insights = *r.Data
	}
	report := dashboard.Report{
		Type: r.Type,
		Metrics: dashboard.MetricsSnapshot{
			AverageOrderValue: insights.Metrics.AverageOrderValue,
			ConversionRate:    insights.Metrics.ConversionRate,
			RetentionRate:     insights.Metrics.RetentionRate,
		},
		BestPerformingProducts: make([]dashboard.ProductPerformance, len(insights.BestPerformingProducts)),
		ConversionBySegment:    make([]dashboard.SegmentConversion, len(insights.ConversionBySegment)),
		EngagementHeatmap:      make([]dashboard.EngagementCell, len(insights.EngagementHeatmap)),
	}
	for i, p := range insights.BestPerformingProducts {
		report.BestPerformingProducts[i] = dashboard.ProductPerformance{Name: p.Name, SalesCount: p.SalesCount}
	}
	for i, c := range insights.ConversionBySegment {
		report.ConversionBySegment[i] = dashboard.SegmentConversion{Segment: c.Segment, ConversionRate: c.ConversionRate}
	}
	for i, h := range insights.EngagementHeatmap {
		report.EngagementHeatmap[i] = dashboard.EngagementCell{
			Segment:         h.Segment,
			Category:        h.Category,
			EngagementScore: h.EngagementScore,
		}
	}
	return report
}

type segmentsResponse struct {
	Segments []struct {
		SegmentTag string `json:"segment_tag"`
		Count      int    `json:"count"`
	} `json:"segments"`
}

func (r segmentsResponse) toSegments() []dashboard.SegmentCount {
	out := make([]dashboard.SegmentCount, len(r.Segments))
	for i, s := range r.Segments {
		out[i] = dashboard.SegmentCount{SegmentTag: s.SegmentTag, Count: s.Count}
	}
	return out
}

type recommendationsResponse struct {
	CustomerID string `json:"customer_id"`
	Segment    struct {
		SegmentTag string  `json:"segment_tag"`
		Score      float64 `json:"score"`
	} `json:"segment"`
	Recommendations []struct {
		Product struct {
			ProductID string          `json:"product_id"`
			Name      string          `json:"name"`
			Category  string          `json:"category"`
			Price     decimal.Decimal `json:"price"`
		} `json:"product"`
		ConfidenceScore float64 `json:"confidence_score"`
	} `json:"recommendations"`
}

func (r recommendationsResponse) toSet(requested string) dashboard.RecommendationSet {
	set := dashboard.RecommendationSet{
		CustomerID: r.CustomerID,
		Segment: dashboard.CustomerSegment{
			SegmentTag: r.Segment.SegmentTag,
			Score:      r.Segment.Score,
		},
		Recommendations: make([]dashboard.Recommendation, len(r.Recommendations)),
	}
	if set.CustomerID == "" {
		set.CustomerID = requested
	}
	for i, rec := range r.Recommendations {
		set.Recommendations[i] = dashboard.Recommendation{
			Product: dashboard.Product{
				ProductID: rec.Product.ProductID,
				Name:      rec.Product.Name,
				Category:  rec.Product.Category,
				Price:     rec.Product.Price,
			},
			ConfidenceScore: rec.ConfidenceScore,
		}
	}
	return set
}
