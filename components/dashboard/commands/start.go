package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

// StartDashboardInput optionally applies a view manifest before starting the
// refresh tasks. An empty Views list starts every scheduled view.
type StartDashboardInput struct {
	ManifestPath string
	Views        []string
}

type startService interface {
	Registry() *dashboard.Registry
	Start(ctx context.Context) error
	StartView(ctx context.Context, view string) error
}

// StartDashboardCommand prepares the view registry and starts refreshing.
type StartDashboardCommand struct {
	service   startService
	telemetry Telemetry
}

// NewStartDashboardCommand creates the command.
func NewStartDashboardCommand(service startService, telemetry Telemetry) *StartDashboardCommand {
	return &StartDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[StartDashboardInput] = (*StartDashboardCommand)(nil)

// Execute loads the manifest, if any, and starts the requested views.
func (c *StartDashboardCommand) Execute(ctx context.Context, msg StartDashboardInput) error {
	if err := requireService(c.service != nil, "start"); err != nil {
		return err
	}
	if msg.ManifestPath != "" {
		if _, err := c.service.Registry().LoadManifestFile(msg.ManifestPath); err != nil {
			return err
		}
		c.telemetry.Record(ctx, "dashboard.manifest.loaded", map[string]any{"path": msg.ManifestPath})
	}
	if len(msg.Views) == 0 {
		if err := c.service.Start(ctx); err != nil {
			return err
		}
	}
	for _, view := range msg.Views {
		if err := c.service.StartView(ctx, view); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "dashboard.command.start", map[string]any{"views": msg.Views})
	return nil
}
