package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-retail-dashboard/components/dashboard"
)

// UploadDatasetInput carries the files and receives the outcome shown to the user.
type UploadDatasetInput struct {
	Request dashboard.UploadRequest
	Result  *dashboard.UploadResult
}

type uploadService interface {
	SubmitUpload(ctx context.Context, req dashboard.UploadRequest) (dashboard.UploadResult, error)
}

// UploadDatasetCommand validates and submits dataset CSV files.
type UploadDatasetCommand struct {
	service   uploadService
	telemetry Telemetry
}

// NewUploadDatasetCommand creates the command.
func NewUploadDatasetCommand(service uploadService, telemetry Telemetry) *UploadDatasetCommand {
	return &UploadDatasetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UploadDatasetInput] = (*UploadDatasetCommand)(nil)

// Execute submits the upload. The notification is written to msg.Result even
// when the upload fails.
func (c *UploadDatasetCommand) Execute(ctx context.Context, msg UploadDatasetInput) error {
	if err := requireService(c.service != nil, "upload"); err != nil {
		return err
	}
	result, err := c.service.SubmitUpload(ctx, msg.Request)
	if msg.Result != nil {
		*msg.Result = result
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.upload", map[string]any{
		"message": result.Notification.Message,
	})
	return nil
}
