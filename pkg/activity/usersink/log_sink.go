package usersink

import (
	"context"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogSink writes go-users activity records as structured log lines. It is
// the sink dashctl uses when no activity store is attached.
type LogSink struct {
	Logger zerolog.Logger
}

// Log implements Sink.
func (s LogSink) Log(_ context.Context, record types.ActivityRecord) error {
	entry := s.Logger.Info().
		Str("verb", record.Verb).
		Str("object_type", record.ObjectType).
		Str("object_id", record.ObjectID).
		Str("channel", record.Channel).
		Time("occurred_at", record.OccurredAt)
	if record.ActorID != uuid.Nil {
		entry = entry.Str("actor_id", record.ActorID.String())
	}
	if record.TenantID != uuid.Nil {
		entry = entry.Str("tenant_id", record.TenantID.String())
	}
	entry.Fields(record.Data).Msg("user activity")
	return nil
}
