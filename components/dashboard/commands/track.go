package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

type trackService interface {
	TrackEvent(ctx context.Context, input dashboard.TrackEventInput) (dashboard.Notification, error)
}

// TrackEventCommand forwards customer interactions to the analytics API.
type TrackEventCommand struct {
	service   trackService
	telemetry Telemetry
}

// NewTrackEventCommand creates the command.
func NewTrackEventCommand(service trackService, telemetry Telemetry) *TrackEventCommand {
	return &TrackEventCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.TrackEventInput] = (*TrackEventCommand)(nil)

// Execute tracks the event. The service raises the toast notification.
func (c *TrackEventCommand) Execute(ctx context.Context, msg dashboard.TrackEventInput) error {
	if err := requireService(c.service != nil, "track"); err != nil {
		return err
	}
	if _, err := c.service.TrackEvent(ctx, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.track", map[string]any{
		"customer_id": msg.CustomerID,
		"product_id":  msg.ProductID,
	})
	return nil
}
