package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

// PanelInput identifies a single slot.
type PanelInput struct {
	Slot string `json:"slot"`
}

type panelService interface {
	PanelFor(slot string) (dashboard.Panel, error)
}

// PanelQuery returns the current state of one slot.
type PanelQuery struct {
	service panelService
}

// NewPanelQuery builds the query.
func NewPanelQuery(service panelService) *PanelQuery {
	return &PanelQuery{service: service}
}

var _ gocommand.Querier[PanelInput, dashboard.Panel] = (*PanelQuery)(nil)

// Query resolves the slot's panel.
func (q *PanelQuery) Query(_ context.Context, input PanelInput) (dashboard.Panel, error) {
	return q.service.PanelFor(input.Slot)
}
