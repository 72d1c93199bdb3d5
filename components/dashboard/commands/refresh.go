package commands

import (
	"context"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"
)

// RefreshPanelInput names either a single slot or a whole view.
type RefreshPanelInput struct {
	Slot string `json:"slot,omitempty"`
	View string `json:"view,omitempty"`
}

type refreshService interface {
	ValidateSlot(slot string) error
	Refresh(ctx context.Context, slot string)
	RefreshView(ctx context.Context, view string)
}

// RefreshPanelCommand re-fetches and re-renders dashboard panels. Fetch
// failures end up as panel state, so only invalid input is an error.
type RefreshPanelCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshPanelCommand creates the command.
func NewRefreshPanelCommand(service refreshService, telemetry Telemetry) *RefreshPanelCommand {
	return &RefreshPanelCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshPanelInput] = (*RefreshPanelCommand)(nil)

// Execute refreshes the slot, or every slot of the view when no slot is set.
func (c *RefreshPanelCommand) Execute(ctx context.Context, msg RefreshPanelInput) error {
	if err := requireService(c.service != nil, "refresh"); err != nil {
		return err
	}
	slot := strings.TrimSpace(msg.Slot)
	view := strings.TrimSpace(msg.View)
	switch {
	case slot != "":
		if err := c.service.ValidateSlot(slot); err != nil {
			return err
		}
		c.service.Refresh(ctx, slot)
	case view != "":
		c.service.RefreshView(ctx, view)
	default:
		return fmt.Errorf("%w: refresh requires a slot or view", ErrInvalidInput)
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"slot": slot,
		"view": view,
	})
	return nil
}
