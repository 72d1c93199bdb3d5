package dashboard

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ChartHandle is a rendered chart instance owned by a slot.
type ChartHandle struct {
	ID        string
	Slot      string
	Kind      ChartKind
	HTML      string
	CreatedAt time.Time

	destroyed atomic.Bool
}

func newChartHandle(slot string, kind ChartKind) *ChartHandle {
	return &ChartHandle{
		ID:        "chart-" + uuid.NewString(),
		Slot:      slot,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// Destroy releases the instance. It is safe to call more than once.
func (h *ChartHandle) Destroy() {
	if h == nil {
		return
	}
	h.destroyed.Store(true)
}

// Live reports whether the handle has not been destroyed.
func (h *ChartHandle) Live() bool {
	return h != nil && !h.destroyed.Load()
}

// ChartRegistry tracks the single live chart per slot.
type ChartRegistry struct {
	mu      sync.Mutex
	handles map[string]*ChartHandle
	created atomic.Int64
}

// NewChartRegistry returns an empty registry.
func NewChartRegistry() *ChartRegistry {
	return &ChartRegistry{handles: make(map[string]*ChartHandle)}
}

// Current returns the live handle for a slot.
func (r *ChartRegistry) Current(slot string) (*ChartHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[slot]
	return h, ok
}

// Destroy tears down the slot's chart, if any, and reports whether one existed.
func (r *ChartRegistry) Destroy(slot string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[slot]
	if !ok {
		return false
	}
	h.Destroy()
	delete(r.handles, slot)
	return true
}

// Install registers a freshly rendered handle, destroying whatever the slot
// held before. Overlapping refreshes of a slot therefore still leave one live
// instance.
func (r *ChartRegistry) Install(h *ChartHandle) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.handles[h.Slot]; ok && prev != h {
		prev.Destroy()
	}
	r.handles[h.Slot] = h
	r.created.Add(1)
}

// Live counts live handles for the slot.
func (r *ChartRegistry) Live(slot string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[slot]; ok && h.Live() {
		return 1
	}
	return 0
}

// Created returns how many handles were ever installed.
func (r *ChartRegistry) Created() int64 {
	return r.created.Load()
}

// DestroyAll tears down every slot.
func (r *ChartRegistry) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slot, h := range r.handles {
		h.Destroy()
		delete(r.handles, slot)
	}
}
