// Package observability carries the logging and metrics sinks the dashboard
// service reports into through its Telemetry interface.
package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// LoggerConfig selects the output format and minimum level.
type LoggerConfig struct {
	Format string
	Level  string
	Out    io.Writer
}

// NewLogger builds a timestamped zerolog logger. Console output is meant
// for local runs; JSON is what log shippers expect.
func NewLogger(cfg LoggerConfig) (zerolog.Logger, error) {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("observability: invalid log level %q: %w", raw, err)
		}
		level = parsed
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("observability: unsupported log format %q", cfg.Format)
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "dashboard").Logger(), nil
}
