// Package analytics connects the dashboard to the retail analytics API.
package analytics

import (
	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

// Client is the full set of analytics calls the dashboard makes.
type Client interface {
	dashboard.AnalyticsClient
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
