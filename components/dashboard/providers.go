package dashboard

import (
	"context"
	"strconv"
	"time"
)

// HomeProvider reports backend health and the latest report type. Each slot
// fails independently.
type HomeProvider struct {
	health  HealthClient
	reports ReportClient
	now     func() time.Time
}

// NewHomeProvider wires the health and report clients.
func NewHomeProvider(health HealthClient, reports ReportClient) *HomeProvider {
	return &HomeProvider{health: health, reports: reports, now: time.Now}
}

// Fetch implements Provider.
func (p *HomeProvider) Fetch(ctx context.Context, meta ViewContext) (ViewData, error) {
	return ViewData{
		SlotHealth:   p.healthContent(ctx),
		SlotActivity: p.activityContent(ctx),
	}, nil
}

func (p *HomeProvider) healthContent(ctx context.Context) SlotContent {
	if p.health == nil {
		return SlotContent{Err: errMissingClient}
	}
	status, err := p.health.FetchHealth(ctx)
	if err != nil {
		if payload, ok := AsPayloadError(err); ok {
			return errorContent("System is unhealthy: " + payload.Message)
		}
		return SlotContent{Err: err}
	}
	if !status.Healthy() {
		return errorContent("System is unhealthy: " + status.Error)
	}
	checked := status.CheckedAt
	if checked.IsZero() {
		checked = p.now()
	}
	return SlotContent{
		State:   PanelReady,
		Message: MsgHealthy,
		Fields: []Field{
			{Label: "Status", Value: status.Status},
			{Label: "Last checked", Value: checked.Format(time.Kitchen)},
		},
	}
}

func (p *HomeProvider) activityContent(ctx context.Context) SlotContent {
	if p.reports == nil {
		return SlotContent{Err: errMissingClient}
	}
	report, err := p.reports.FetchLatestReport(ctx)
	if err != nil {
		if _, ok := AsPayloadError(err); ok {
			return SlotContent{State: PanelEmpty, Message: MsgNoRecentActivity}
		}
		return SlotContent{Err: err}
	}
	return SlotContent{
		State:   PanelReady,
		Message: MsgLatestReport,
		Fields:  []Field{{Label: "Type", Value: report.Type}},
	}
}

// ReportsProvider renders KPIs and the three report charts from one fetch.
type ReportsProvider struct {
	client ReportClient
}

// NewReportsProvider wires the report client.
func NewReportsProvider(client ReportClient) *ReportsProvider {
	return &ReportsProvider{client: client}
}

// Fetch implements Provider.
func (p *ReportsProvider) Fetch(ctx context.Context, meta ViewContext) (ViewData, error) {
	if p.client == nil {
		return nil, errMissingClient
	}
	report, err := p.client.FetchLatestReport(ctx)
	if err != nil {
		if _, ok := AsPayloadError(err); ok {
			msg := meta.View.ErrorMessage
			if msg == "" {
				msg = MsgReportError
			}
			return ViewData{
				SlotMetrics:           errorContent(msg),
				SlotProducts:          errorContent(msg),
				SlotConversion:        errorContent(msg),
				SlotEngagementHeatmap: errorContent(msg),
			}, nil
		}
		return nil, err
	}
	return ReportViewData(report, meta.View), nil
}

// ReportViewData reshapes a report into the reports view slots.
func ReportViewData(report Report, view ViewDefinition) ViewData {
	grid := BuildHeatmapGrid(report.EngagementHeatmap)
	return ViewData{
		SlotMetrics: {
			State: PanelReady,
			Fields: []Field{
				{Label: "Average Order Value", Value: FormatCurrency(report.Metrics.AverageOrderValue)},
				{Label: "Conversion Rate", Value: FormatPercent(report.Metrics.ConversionRate)},
				{Label: "Retention Rate", Value: FormatPercent(report.Metrics.RetentionRate)},
			},
		},
		SlotProducts: {
			State: PanelReady,
			Chart: &ChartSpec{
				Kind:       ChartBar,
				Title:      slotTitle(view, SlotProducts),
				SeriesName: "Sales",
				ValueAxis:  LabelSalesAxis,
				Series:     ProductSeries(report.BestPerformingProducts),
			},
		},
		SlotConversion: {
			State: PanelReady,
			Chart: &ChartSpec{
				Kind:       ChartBar,
				Title:      slotTitle(view, SlotConversion),
				SeriesName: "Conversion Rate",
				ValueAxis:  LabelConversionAxis,
				Scale:      100,
				Series:     ConversionSeries(report.ConversionBySegment),
			},
		},
		SlotEngagementHeatmap: {
			State: PanelReady,
			Chart: &ChartSpec{
				Kind:       ChartHeatmap,
				Title:      slotTitle(view, SlotEngagementHeatmap),
				SeriesName: "Engagement",
				Heatmap:    &grid,
			},
		},
	}
}

// SegmentsProvider renders the segment distribution doughnut and table.
type SegmentsProvider struct {
	client SegmentClient
}

// NewSegmentsProvider wires the segment client.
func NewSegmentsProvider(client SegmentClient) *SegmentsProvider {
	return &SegmentsProvider{client: client}
}

// Fetch implements Provider. Payload errors are shown verbatim.
func (p *SegmentsProvider) Fetch(ctx context.Context, meta ViewContext) (ViewData, error) {
	if p.client == nil {
		return nil, errMissingClient
	}
	segments, err := p.client.FetchSegments(ctx)
	if err != nil {
		if payload, ok := AsPayloadError(err); ok {
			return ViewData{
				SlotSegmentsDistribution: errorContent(payload.Message),
				SlotSegmentsDetails:      errorContent(payload.Message),
			}, nil
		}
		return nil, err
	}

	shares := SegmentDistribution(segments)
	rows := make([][]string, len(shares))
	for i, share := range shares {
		rows[i] = []string{share.SegmentTag, strconv.Itoa(share.Count), share.Percent + "%"}
	}
	return ViewData{
		SlotSegmentsDistribution: {
			State: PanelReady,
			Chart: &ChartSpec{
				Kind:       ChartDoughnut,
				Title:      MsgSegmentChartTitle,
				SeriesName: "Segments",
				Slices:     shares,
			},
		},
		SlotSegmentsDetails: {
			State: PanelReady,
			Rows:  rows,
		},
	}, nil
}

func slotTitle(view ViewDefinition, code string) string {
	if slot, ok := view.Slot(code); ok && slot.Title != "" {
		return slot.Title
	}
	return code
}
