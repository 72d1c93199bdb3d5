package commands

import (
	"context"
	"errors"
)

// ErrInvalidInput rejects command messages that name nothing to act on.
var ErrInvalidInput = errors.New("commands: invalid input")

// Telemetry allows commands to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

func requireService(ok bool, name string) error {
	if !ok {
		return errMissingService(name)
	}
	return nil
}

type errMissingService string

func (e errMissingService) Error() string {
	return string(e) + " command requires service"
}
