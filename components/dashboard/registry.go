package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ettle/strcase"
)

// ViewHook lets packages register views/providers during init().
type ViewHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []ViewHook
)

// RegisterViewHook registers a hook executed against new registries.
func RegisterViewHook(h ViewHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// SlotDefinition describes one container of a view.
type SlotDefinition struct {
	Code         string    `json:"code" yaml:"code"`
	Title        string    `json:"title,omitempty" yaml:"title,omitempty"`
	Kind         ChartKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// ContainerID is the DOM id of the slot container.
func (s SlotDefinition) ContainerID() string {
	id := strcase.ToCamel(s.Code)
	if s.Kind != "" {
		id += "Chart"
	}
	return id
}

// ViewDefinition describes a dashboard page and how often it refreshes.
type ViewDefinition struct {
	Code         string           `json:"code" yaml:"code"`
	Name         string           `json:"name" yaml:"name"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	Interval     time.Duration    `json:"interval,omitempty" yaml:"interval,omitempty"`
	LoadOnce     bool             `json:"load_once,omitempty" yaml:"load_once,omitempty"`
	OnDemand     bool             `json:"on_demand,omitempty" yaml:"on_demand,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Slots        []SlotDefinition `json:"slots,omitempty" yaml:"slots,omitempty"`
}

// Slot returns the named slot definition.
func (v ViewDefinition) Slot(code string) (SlotDefinition, bool) {
	for _, slot := range v.Slots {
		if slot.Code == code {
			return slot, true
		}
	}
	return SlotDefinition{}, false
}

// SlotErrorMessage is the static failure text shown in a slot.
func (v ViewDefinition) SlotErrorMessage(code string) string {
	if slot, ok := v.Slot(code); ok && slot.ErrorMessage != "" {
		return slot.ErrorMessage
	}
	return v.ErrorMessage
}

// Scheduled reports whether the view refreshes on its own.
func (v ViewDefinition) Scheduled() bool {
	return !v.OnDemand && (v.Interval > 0 || v.LoadOnce)
}

// Registry holds view definitions, their providers and the slot index.
type Registry struct {
	mu        sync.RWMutex
	views     map[string]ViewDefinition
	providers map[string]Provider
	slots     map[string]string
}

// NewRegistry builds a registry with the default views and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		views:     map[string]ViewDefinition{},
		providers: map[string]Provider{},
		slots:     map[string]string{},
	}
	for _, def := range DefaultViewDefinitions() {
		_ = reg.RegisterView(def)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered view hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterView stores a view definition, replacing any previous one.
// Slot codes are normalized to kebab case.
func (r *Registry) RegisterView(def ViewDefinition) error {
	def.Code = normalizeCode(def.Code)
	if def.Code == "" {
		return fmt.Errorf("dashboard: view code is required")
	}
	if def.Interval < 0 {
		return fmt.Errorf("dashboard: view %s interval cannot be negative", def.Code)
	}
	slots := make([]SlotDefinition, len(def.Slots))
	for i, slot := range def.Slots {
		slot.Code = normalizeCode(slot.Code)
		if slot.Code == "" {
			return fmt.Errorf("dashboard: view %s slot %d is missing a code", def.Code, i)
		}
		slots[i] = slot
	}
	def.Slots = slots

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, slot := range def.Slots {
		if owner, ok := r.slots[slot.Code]; ok && owner != def.Code {
			return fmt.Errorf("dashboard: slot %s already belongs to view %s", slot.Code, owner)
		}
	}
	if prev, ok := r.views[def.Code]; ok {
		for _, slot := range prev.Slots {
			delete(r.slots, slot.Code)
		}
	}
	r.views[def.Code] = def
	for _, slot := range def.Slots {
		r.slots[slot.Code] = def.Code
	}
	return nil
}

// RegisterProvider associates a provider with a view.
func (r *Registry) RegisterProvider(view string, provider Provider) error {
	view = normalizeCode(view)
	if view == "" {
		return fmt.Errorf("dashboard: view code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("dashboard: provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.views[view]; !ok {
		return fmt.Errorf("dashboard: view %s not found", view)
	}
	r.providers[view] = provider
	return nil
}

// View fetches a view definition by code.
func (r *Registry) View(code string) (ViewDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.views[normalizeCode(code)]
	return def, ok
}

// Provider fetches the provider registered for a view.
func (r *Registry) Provider(view string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[normalizeCode(view)]
	return p, ok
}

// ViewForSlot resolves the view owning a slot.
func (r *Registry) ViewForSlot(slot string) (ViewDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, ok := r.slots[normalizeCode(slot)]
	if !ok {
		return ViewDefinition{}, false
	}
	def, ok := r.views[code]
	return def, ok
}

// Views returns all definitions sorted by code.
func (r *Registry) Views() []ViewDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ViewDefinition, 0, len(r.views))
	for _, def := range r.views {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return strcase.ToKebab(code)
}
