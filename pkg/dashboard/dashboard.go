package dashboard

import (
	core "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Panel is the rendered state of one slot.
type Panel = core.Panel

// NavItem is one entry of the page navigation.
type NavItem = core.NavItem

// AnalyticsClient is the backend contract the service consumes.
type AnalyticsClient = core.AnalyticsClient

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Navigation returns the built-in pages in menu order.
func Navigation() []NavItem {
	return core.DefaultNavigation()
}
