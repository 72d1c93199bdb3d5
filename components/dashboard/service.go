package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-retail-dashboard/pkg/activity"
)

const defaultErrorMessage = "Failed to load data. Please try again later."

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Client         AnalyticsClient
	Registry       *Registry
	Charts         ChartRenderer
	ChartRegistry  *ChartRegistry
	Panels         PanelStore
	Scheduler      *Scheduler
	RefreshHook    RefreshHook
	Telemetry      Telemetry
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
	Now            func() time.Time
}

// Service refreshes dashboard slots from the analytics API and keeps the
// rendered panel and chart state per slot.
type Service struct {
	opts     Options
	activity *activity.Emitter
	upload   *UploadForm
	cycles   atomic.Int64

	// slotLocks holds one *sync.Mutex per slot code.
	slotLocks sync.Map
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Charts == nil {
		opts.Charts = NewEChartsRenderer()
	}
	if opts.ChartRegistry == nil {
		opts.ChartRegistry = NewChartRegistry()
	}
	if opts.Panels == nil {
		opts.Panels = NewInMemoryPanelStore()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewScheduler()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	_ = RegisterDefaultProviders(opts.Registry, opts.Client)
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
		upload:   NewUploadForm(),
	}
}

// Registry exposes the view registry.
func (s *Service) Registry() *Registry {
	return s.opts.Registry
}

// ChartRegistry exposes the per-slot chart handles.
func (s *Service) ChartRegistry() *ChartRegistry {
	return s.opts.ChartRegistry
}

// Panel returns the current panel for a slot.
func (s *Service) Panel(slot string) (Panel, bool) {
	return s.opts.Panels.Get(normalizeCode(slot))
}

// PanelFor returns the slot's panel, or a loading panel when the slot was
// never refreshed.
func (s *Service) PanelFor(slot string) (Panel, error) {
	slot = normalizeCode(slot)
	def, ok := s.opts.Registry.ViewForSlot(slot)
	if !ok {
		return Panel{}, fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	if p, ok := s.opts.Panels.Get(slot); ok {
		return p, nil
	}
	return s.basePanel(def, slot), nil
}

// Panels returns the current panels of a view in slot definition order.
// Slots that were never refreshed are reported as loading.
func (s *Service) Panels(view string) ([]Panel, error) {
	def, ok := s.opts.Registry.View(view)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
	out := make([]Panel, 0, len(def.Slots))
	for _, slot := range def.Slots {
		if p, ok := s.opts.Panels.Get(slot.Code); ok {
			out = append(out, p)
			continue
		}
		out = append(out, s.basePanel(def, slot.Code))
	}
	return out, nil
}

// Refresh re-fetches and re-renders a single slot. It never returns an error:
// failures end up as panel state and telemetry.
func (s *Service) Refresh(ctx context.Context, slot string) {
	slot = normalizeCode(slot)
	def, ok := s.opts.Registry.ViewForSlot(slot)
	if !ok {
		s.recordTelemetry(ctx, "dashboard.refresh.unknown_slot", map[string]any{"slot": slot})
		return
	}
	s.refresh(ctx, def, []string{slot})
}

// RefreshView refreshes every slot of a view from a single fetch.
func (s *Service) RefreshView(ctx context.Context, view string) {
	def, ok := s.opts.Registry.View(view)
	if !ok {
		s.recordTelemetry(ctx, "dashboard.refresh.unknown_view", map[string]any{"view": view})
		return
	}
	slots := make([]string, len(def.Slots))
	for i, slot := range def.Slots {
		slots[i] = slot.Code
	}
	s.refresh(ctx, def, slots)
}

// ValidateSlot reports whether the slot is known.
func (s *Service) ValidateSlot(slot string) error {
	if _, ok := s.opts.Registry.ViewForSlot(slot); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	return nil
}

func (s *Service) refresh(ctx context.Context, def ViewDefinition, slots []string) {
	if len(slots) == 0 {
		return
	}
	cycle := s.cycles.Add(1)
	started := s.opts.Now()

	// destroying names the slot whose chart apply has started tearing down.
	var destroying string
	applied := make(map[string]bool, len(slots))

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("dashboard: refresh panic: %v", r)
			s.recordTelemetry(ctx, "dashboard.refresh.panic", map[string]any{
				"view":  def.Code,
				"error": err.Error(),
			})
			for _, slot := range slots {
				switch {
				case applied[slot]:
				case slot == destroying:
					s.showError(ctx, def, slot, cycle, def.SlotErrorMessage(slot))
				default:
					s.markStale(ctx, def, slot, cycle, err)
				}
			}
		}
	}()

	s.recordTelemetry(ctx, "dashboard.refresh.start", map[string]any{
		"view":  def.Code,
		"slots": slots,
		"cycle": cycle,
	})

	provider, ok := s.opts.Registry.Provider(def.Code)
	if !ok || provider == nil {
		for _, slot := range slots {
			s.markStale(ctx, def, slot, cycle, errMissingProvider)
		}
		return
	}

	data, err := provider.Fetch(ctx, ViewContext{View: def, Cycle: cycle})
	if err != nil {
		for _, slot := range slots {
			s.markStale(ctx, def, slot, cycle, err)
		}
		return
	}

	for _, slot := range slots {
		content, ok := data[slot]
		if !ok {
			content = SlotContent{State: PanelEmpty}
		}
		s.apply(ctx, def, slot, content, cycle, func() { destroying = slot })
		applied[slot] = true
	}

	s.recordTelemetry(ctx, "dashboard.refresh.complete", map[string]any{
		"view":        def.Code,
		"cycle":       cycle,
		"duration_ms": s.opts.Now().Sub(started).Milliseconds(),
	})
}

// apply replaces the slot's visual state with freshly fetched content.
// onDestroy runs right before the previous chart is torn down. Content from a
// cycle older than the one already published is dropped.
func (s *Service) apply(ctx context.Context, def ViewDefinition, slot string, content SlotContent, cycle int64, onDestroy func()) {
	if content.Err != nil {
		s.markStale(ctx, def, slot, cycle, content.Err)
		return
	}

	unlock := s.lockSlot(slot)
	defer unlock()
	if s.superseded(slot, cycle) {
		s.recordOutcome(ctx, def, slot, "superseded")
		return
	}

	panel := s.basePanel(def, slot)
	panel.State = content.State
	if panel.State == "" || panel.State == PanelLoading {
		panel.State = PanelReady
	}
	panel.Message = content.Message
	panel.Fields = content.Fields
	panel.Rows = content.Rows
	panel.Cycle = cycle

	if onDestroy != nil {
		onDestroy()
	}
	if panel.State == PanelError || content.Chart == nil {
		s.destroyChart(ctx, slot)
		s.publish(ctx, def, panel, "refresh")
		s.recordOutcome(ctx, def, slot, string(panel.State))
		return
	}

	s.destroyChart(ctx, slot)
	spec := *content.Chart
	s.flagHeatmap(ctx, slot, spec)

	handle := newChartHandle(slot, spec.Kind)
	html, err := s.opts.Charts.Render(ctx, panel.ContainerID, spec)
	if err != nil {
		panel.State = PanelError
		panel.Message = s.errorMessage(def, slot)
		s.recordTelemetry(ctx, "dashboard.chart.render_failed", map[string]any{
			"slot":  slot,
			"kind":  string(spec.Kind),
			"error": err.Error(),
		})
		s.publish(ctx, def, panel, "refresh")
		s.recordOutcome(ctx, def, slot, "render_failed")
		return
	}
	handle.HTML = html
	s.opts.ChartRegistry.Install(handle)
	s.recordTelemetry(ctx, "dashboard.chart.created", map[string]any{
		"slot":     slot,
		"kind":     string(spec.Kind),
		"chart_id": handle.ID,
	})

	panel.ChartID = handle.ID
	panel.ChartKind = spec.Kind
	panel.ChartHTML = html
	s.publish(ctx, def, panel, "refresh")
	s.recordOutcome(ctx, def, slot, string(panel.State))
}

// markStale keeps whatever the slot showed last (including its chart) and
// flags it with the static error text.
func (s *Service) markStale(ctx context.Context, def ViewDefinition, slot string, cycle int64, cause error) {
	unlock := s.lockSlot(slot)
	defer unlock()
	panel, ok := s.opts.Panels.Get(slot)
	if ok && panel.Cycle > cycle {
		s.recordOutcome(ctx, def, slot, "superseded")
		return
	}
	if !ok {
		panel = s.basePanel(def, slot)
	}
	panel.State = PanelError
	panel.Message = s.errorMessage(def, slot)
	panel.Stale = true
	panel.Cycle = cycle
	panel.UpdatedAt = s.opts.Now().UTC()
	s.recordTelemetry(ctx, "dashboard.refresh.failed", map[string]any{
		"view":  def.Code,
		"slot":  slot,
		"error": cause.Error(),
	})
	s.publishPanel(ctx, def, panel, "stale")
	s.recordOutcome(ctx, def, slot, "stale")
}

func (s *Service) showError(ctx context.Context, def ViewDefinition, slot string, cycle int64, message string) {
	unlock := s.lockSlot(slot)
	defer unlock()
	if s.superseded(slot, cycle) {
		return
	}
	s.destroyChart(ctx, slot)
	panel := s.basePanel(def, slot)
	panel.State = PanelError
	panel.Message = message
	if panel.Message == "" {
		panel.Message = defaultErrorMessage
	}
	panel.Cycle = cycle
	s.publish(ctx, def, panel, "error")
}

// lockSlot serializes chart install and panel publish for one slot.
func (s *Service) lockSlot(slot string) func() {
	v, _ := s.slotLocks.LoadOrStore(slot, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// superseded reports whether a later cycle already published the slot.
func (s *Service) superseded(slot string, cycle int64) bool {
	p, ok := s.opts.Panels.Get(slot)
	return ok && p.Cycle > cycle
}

func (s *Service) destroyChart(ctx context.Context, slot string) {
	current, ok := s.opts.ChartRegistry.Current(slot)
	if !ok {
		return
	}
	if s.opts.ChartRegistry.Destroy(slot) {
		s.recordTelemetry(ctx, "dashboard.chart.destroyed", map[string]any{
			"slot":     slot,
			"chart_id": current.ID,
		})
	}
}

func (s *Service) flagHeatmap(ctx context.Context, slot string, spec ChartSpec) {
	if spec.Kind != ChartHeatmap || spec.Heatmap == nil {
		return
	}
	clamped := 0
	for _, row := range spec.Heatmap.Values {
		for _, v := range row {
			if _, ok := HeatmapAlpha(v); !ok {
				clamped++
			}
		}
	}
	if clamped > 0 {
		s.recordTelemetry(ctx, "dashboard.heatmap.clamped", map[string]any{
			"slot":  slot,
			"cells": clamped,
		})
	}
}

func (s *Service) basePanel(def ViewDefinition, slot string) Panel {
	slotDef, ok := def.Slot(slot)
	if !ok {
		slotDef = SlotDefinition{Code: slot}
	}
	title := slotDef.Title
	if title == "" {
		title = slot
	}
	return Panel{
		Slot:        slot,
		View:        def.Code,
		ContainerID: slotDef.ContainerID(),
		Title:       title,
		State:       PanelLoading,
		UpdatedAt:   s.opts.Now().UTC(),
	}
}

func (s *Service) errorMessage(def ViewDefinition, slot string) string {
	if msg := def.SlotErrorMessage(slot); msg != "" {
		return msg
	}
	return defaultErrorMessage
}

// publish stores a fresh panel and notifies the refresh hook.
func (s *Service) publish(ctx context.Context, def ViewDefinition, panel Panel, reason string) {
	panel.Stale = false
	panel.UpdatedAt = s.opts.Now().UTC()
	s.publishPanel(ctx, def, panel, reason)
}

func (s *Service) publishPanel(ctx context.Context, def ViewDefinition, panel Panel, reason string) {
	s.opts.Panels.Put(panel)
	s.notify(ctx, PanelEvent{
		View:   def.Code,
		Slot:   panel.Slot,
		Reason: reason,
		Panel:  &panel,
	})
}

func (s *Service) notify(ctx context.Context, event PanelEvent) {
	if err := s.opts.RefreshHook.PanelUpdated(ctx, event); err != nil {
		s.recordTelemetry(ctx, "dashboard.refresh_hook.error", map[string]any{
			"slot":  event.Slot,
			"error": err.Error(),
		})
	}
}

// NotifyPanelUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyPanelUpdated(ctx context.Context, event PanelEvent) error {
	if err := s.opts.RefreshHook.PanelUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.panel.event", map[string]any{
		"view":   event.View,
		"slot":   event.Slot,
		"reason": event.Reason,
	})
	return nil
}

func (s *Service) recordOutcome(ctx context.Context, def ViewDefinition, slot, outcome string) {
	s.recordTelemetry(ctx, "dashboard.refresh.slot", map[string]any{
		"view":    def.Code,
		"slot":    slot,
		"outcome": outcome,
	})
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) emitActivity(ctx context.Context, evt activity.Event) {
	if !s.activity.Enabled() {
		return
	}
	meta := activityContextFrom(ctx)
	if evt.ActorID == "" {
		evt.ActorID = meta.ActorID
	}
	if evt.UserID == "" {
		evt.UserID = meta.UserID
	}
	if evt.TenantID == "" {
		evt.TenantID = meta.TenantID
	}
	if err := s.activity.Emit(ctx, evt); err != nil {
		s.recordTelemetry(ctx, "dashboard.activity.error", map[string]any{
			"verb":  evt.Verb,
			"error": err.Error(),
		})
	}
}

type noopRefreshHook struct{}

func (noopRefreshHook) PanelUpdated(context.Context, PanelEvent) error {
	return nil
}
