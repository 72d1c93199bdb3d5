package activity

import (
	"context"
	"testing"
)

type recordingHook struct {
	events []Event
}

func (h *recordingHook) Notify(_ context.Context, evt Event) error {
	h.events = append(h.events, evt)
	return nil
}

func TestEmitterDefaultsChannelAndEmits(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true})
	if !em.Enabled() {
		t.Fatalf("expected emitter enabled")
	}
	err := em.Emit(context.Background(), Event{
		Verb:       "dashboard.event.track",
		ObjectType: "customer_event",
		ObjectID:   "C001",
	})
	if err != nil {
		t.Fatalf("emit returned error: %v", err)
	}
	if len(hook.events) != 1 {
		t.Fatalf("expected event emitted, got %d", len(hook.events))
	}
	if hook.events[0].Channel != "dashboard" {
		t.Fatalf("expected default channel dashboard, got %q", hook.events[0].Channel)
	}
}

func TestEmitterDisabledWithoutHooks(t *testing.T) {
	em := NewEmitter(nil, Config{Enabled: true})
	if em.Enabled() {
		t.Fatalf("expected emitter disabled without hooks")
	}
}

func TestEmitterKeepsConfiguredChannel(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{Enabled: true, Channel: "retail"})
	if err := em.Emit(context.Background(), Event{Verb: "dashboard.upload", ObjectType: "dataset"}); err != nil {
		t.Fatalf("emit returned error: %v", err)
	}
	if len(hook.events) != 1 || hook.events[0].Channel != "retail" {
		t.Fatalf("expected channel retail, got %+v", hook.events)
	}
}

func TestEmitterSkipsWhenDisabled(t *testing.T) {
	hook := &recordingHook{}
	em := NewEmitter(Hooks{hook}, Config{})
	_ = em.Emit(context.Background(), Event{Verb: "dashboard.upload", ObjectType: "dataset"})
	if len(hook.events) != 0 {
		t.Fatalf("expected no events when disabled")
	}
}
