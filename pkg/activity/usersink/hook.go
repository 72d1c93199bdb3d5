package usersink

import (
	"context"
	"fmt"

	"github.com/goliatone/go-retail-dashboard/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink is the subset of the go-users activity sink the hook needs.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook forwards dashboard activity into a go-users activity sink.
type Hook struct {
	Sink Sink
}

// Notify implements activity.Hook. Identifiers that are not UUIDs (customer
// ids from the analytics backend, for example) map to uuid.Nil and are kept
// verbatim in the record data.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	if !evt.Valid() {
		return nil
	}

	data := make(map[string]any, len(evt.Metadata)+4)
	for k, v := range evt.Metadata {
		data[k] = v
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = append([]string(nil), evt.Recipients...)
	}

	record := types.ActivityRecord{
		ActorID:    parseID(evt.ActorID, "actor_id", data),
		UserID:     parseID(evt.UserID, "user_id", data),
		TenantID:   parseID(evt.TenantID, "tenant_id", data),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	}
	if err := h.Sink.Log(ctx, record); err != nil {
		return fmt.Errorf("usersink: log activity %s: %w", evt.Verb, err)
	}
	return nil
}

func parseID(raw, key string, data map[string]any) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		data[key] = raw
		return uuid.Nil
	}
	return id
}
