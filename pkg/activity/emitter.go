package activity

import "context"

// DefaultChannel is used when neither the event nor the config names one.
const DefaultChannel = "dashboard"

// Config toggles activity emission.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter applies Config to a set of hooks.
type Emitter struct {
	hooks  Hooks
	config Config
}

// NewEmitter builds an emitter; the channel defaults to "dashboard".
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, config: cfg}
}

// Enabled reports whether events will reach at least one hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.config.Enabled && len(e.hooks) > 0
}

// Emit sends the event when enabled.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if !e.Enabled() {
		return nil
	}
	if evt.Channel == "" {
		evt.Channel = e.config.Channel
	}
	return e.hooks.Notify(ctx, evt)
}
