package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

// ViewPanelsInput identifies a view.
type ViewPanelsInput struct {
	View string `json:"view"`
}

type viewService interface {
	Panels(view string) ([]dashboard.Panel, error)
}

// ViewPanelsQuery lists the panels of a view in slot order.
type ViewPanelsQuery struct {
	service viewService
}

// NewViewPanelsQuery builds the query.
func NewViewPanelsQuery(service viewService) *ViewPanelsQuery {
	return &ViewPanelsQuery{service: service}
}

var _ gocommand.Querier[ViewPanelsInput, []dashboard.Panel] = (*ViewPanelsQuery)(nil)

// Query resolves the view's panels.
func (q *ViewPanelsQuery) Query(_ context.Context, input ViewPanelsInput) ([]dashboard.Panel, error) {
	return q.service.Panels(input.View)
}

// RecommendationsInput identifies the customer to look up.
type RecommendationsInput struct {
	CustomerID string `json:"customer_id"`
}

type recommendationService interface {
	LookupRecommendations(ctx context.Context, customerID string) (dashboard.Panel, error)
}

// RecommendationsQuery loads a customer's recommendations panel.
type RecommendationsQuery struct {
	service recommendationService
}

// NewRecommendationsQuery builds the query.
func NewRecommendationsQuery(service recommendationService) *RecommendationsQuery {
	return &RecommendationsQuery{service: service}
}

var _ gocommand.Querier[RecommendationsInput, dashboard.Panel] = (*RecommendationsQuery)(nil)

// Query runs the lookup.
func (q *RecommendationsQuery) Query(ctx context.Context, input RecommendationsInput) (dashboard.Panel, error) {
	return q.service.LookupRecommendations(ctx, input.CustomerID)
}
