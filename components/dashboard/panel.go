package dashboard

import (
	"sort"
	"sync"
	"time"
)

// PanelState is the visual state of a slot container.
type PanelState string

const (
	PanelLoading PanelState = "loading"
	PanelReady   PanelState = "ready"
	PanelEmpty   PanelState = "empty"
	PanelError   PanelState = "error"
)

// Field is a label/value pair shown in a panel (metric cards, badges).
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Panel is the rendered state of one container, keyed by slot.
type Panel struct {
	Slot        string     `json:"slot"`
	View        string     `json:"view"`
	ContainerID string     `json:"container_id"`
	Title       string     `json:"title"`
	State       PanelState `json:"state"`
	Message     string     `json:"message,omitempty"`
	Fields      []Field    `json:"fields,omitempty"`
	Rows        [][]string `json:"rows,omitempty"`
	ChartID     string     `json:"chart_id,omitempty"`
	ChartKind   ChartKind  `json:"chart_kind,omitempty"`
	ChartHTML   string     `json:"chart_html,omitempty"`
	Stale       bool       `json:"stale"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Cycle       int64      `json:"cycle"`
}

// HasChart reports whether the panel currently shows a chart.
func (p Panel) HasChart() bool {
	return p.ChartID != ""
}

func clonePanel(p Panel) Panel {
	out := p
	if p.Fields != nil {
		out.Fields = append([]Field(nil), p.Fields...)
	}
	if p.Rows != nil {
		out.Rows = make([][]string, len(p.Rows))
		for i, row := range p.Rows {
			out.Rows[i] = append([]string(nil), row...)
		}
	}
	return out
}

// PanelStore keeps the latest panel per slot. Writes are last-write-wins.
type PanelStore interface {
	Get(slot string) (Panel, bool)
	Put(panel Panel)
	List(view string) []Panel
}

// InMemoryPanelStore is the default PanelStore.
type InMemoryPanelStore struct {
	mu     sync.RWMutex
	panels map[string]Panel
}

// NewInMemoryPanelStore returns an empty store.
func NewInMemoryPanelStore() *InMemoryPanelStore {
	return &InMemoryPanelStore{panels: make(map[string]Panel)}
}

// Get returns a copy of the slot's panel.
func (s *InMemoryPanelStore) Get(slot string) (Panel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.panels[slot]
	if !ok {
		return Panel{}, false
	}
	return clonePanel(p), true
}

// Put replaces the slot's panel.
func (s *InMemoryPanelStore) Put(panel Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panels[panel.Slot] = clonePanel(panel)
}

// List returns the panels of a view sorted by slot. An empty view lists all.
func (s *InMemoryPanelStore) List(view string) []Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Panel, 0, len(s.panels))
	for _, p := range s.panels {
		if view != "" && p.View != view {
			continue
		}
		out = append(out, clonePanel(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}
