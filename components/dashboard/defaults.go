package dashboard

import "time"

// View codes.
const (
	ViewHome            = "home"
	ViewReports         = "reports"
	ViewSegments        = "segments"
	ViewRecommendations = "recommendations"
	ViewUpload          = "upload"
)

// Slot codes.
const (
	SlotHealth               = "health"
	SlotActivity             = "activity"
	SlotMetrics              = "metrics"
	SlotProducts             = "products"
	SlotConversion           = "conversion"
	SlotEngagementHeatmap    = "engagement-heatmap"
	SlotSegmentsDistribution = "segments-distribution"
	SlotSegmentsDetails      = "segments-details"
	SlotRecommendations      = "recommendations"
)

// Static user-facing messages.
const (
	MsgHealthy              = "System is healthy"
	MsgHealthError          = "Error checking system health"
	MsgLatestReport         = "Latest Report"
	MsgNoRecentActivity     = "No recent activity found"
	MsgActivityError        = "Error loading recent activity"
	MsgReportError          = "Failed to load report data. Please try again later."
	MsgSegmentChartTitle    = "Customer Segment Distribution"
	MsgSegmentError         = "Error loading segment data"
	MsgRecommendationsError = "Error loading recommendations"
	MsgEventTracked         = "Event tracked successfully"
	MsgUploadSuccess        = "Files uploaded successfully!"
	MsgUploadErrorPrefix    = "Error uploading files: "
	MsgMissingCustomerID    = "Please enter a customer ID"
	MsgMissingFiles         = "Please upload both customers.csv and products.csv files"
	MsgInvalidFileType      = "Please upload a CSV file"
	LabelSalesAxis          = "Number of Sales"
	LabelConversionAxis     = "Conversion Rate (%)"
)

// Default refresh cadences.
const (
	DefaultHomeInterval    = 30 * time.Second
	DefaultReportsInterval = 5 * time.Minute
)

// DefaultViewDefinitions returns the built-in dashboard pages.
func DefaultViewDefinitions() []ViewDefinition {
	return []ViewDefinition{
		{
			Code:        ViewHome,
			Name:        "Home",
			Description: "Backend health and the latest report",
			Interval:    DefaultHomeInterval,
			Slots: []SlotDefinition{
				{Code: SlotHealth, Title: "System Health", ErrorMessage: MsgHealthError},
				{Code: SlotActivity, Title: "Recent Activity", ErrorMessage: MsgActivityError},
			},
		},
		{
			Code:         ViewReports,
			Name:         "Reports",
			Description:  "Key metrics, product performance and engagement",
			Interval:     DefaultReportsInterval,
			ErrorMessage: MsgReportError,
			Slots: []SlotDefinition{
				{Code: SlotMetrics, Title: "Key Metrics"},
				{Code: SlotProducts, Title: "Best Performing Products", Kind: ChartBar},
				{Code: SlotConversion, Title: "Conversion by Segment", Kind: ChartBar},
				{Code: SlotEngagementHeatmap, Title: "Engagement Heatmap", Kind: ChartHeatmap},
			},
		},
		{
			Code:         ViewSegments,
			Name:         "Segments",
			Description:  "Customer segment distribution",
			LoadOnce:     true,
			ErrorMessage: MsgSegmentError,
			Slots: []SlotDefinition{
				{Code: SlotSegmentsDistribution, Title: MsgSegmentChartTitle, Kind: ChartDoughnut},
				{Code: SlotSegmentsDetails, Title: "Segment Details"},
			},
		},
		{
			Code:         ViewRecommendations,
			Name:         "Recommendations",
			Description:  "Personalized product recommendations",
			OnDemand:     true,
			ErrorMessage: MsgRecommendationsError,
			Slots: []SlotDefinition{
				{Code: SlotRecommendations, Title: "Recommendations"},
			},
		},
		{
			Code:        ViewUpload,
			Name:        "Upload Data",
			Description: "Upload customers, products and events CSV files",
			OnDemand:    true,
		},
	}
}

// RegisterDefaultProviders wires the built-in providers for views that have
// none yet.
func RegisterDefaultProviders(reg *Registry, client AnalyticsClient) error {
	if reg == nil || client == nil {
		return nil
	}
	defaults := map[string]Provider{
		ViewHome:     NewHomeProvider(client, client),
		ViewReports:  NewReportsProvider(client),
		ViewSegments: NewSegmentsProvider(client),
	}
	for view, provider := range defaults {
		if _, ok := reg.Provider(view); ok {
			continue
		}
		if _, ok := reg.View(view); !ok {
			continue
		}
		if err := reg.RegisterProvider(view, provider); err != nil {
			return err
		}
	}
	return nil
}
