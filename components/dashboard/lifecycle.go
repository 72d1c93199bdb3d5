package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// Start schedules every view that refreshes on its own.
func (s *Service) Start(ctx context.Context) error {
	var errs []error
	for _, def := range s.opts.Registry.Views() {
		if !def.Scheduled() {
			continue
		}
		if err := s.StartView(ctx, def.Code); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartView schedules the refresh task of one view. Views refreshed once
// (segments) run a single cycle; on-demand views cannot be scheduled.
func (s *Service) StartView(ctx context.Context, view string) error {
	def, ok := s.opts.Registry.View(view)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
	if def.OnDemand {
		return fmt.Errorf("dashboard: view %s refreshes on demand only", def.Code)
	}
	interval := def.Interval
	if def.LoadOnce {
		interval = 0
	}
	code := def.Code
	if err := s.opts.Scheduler.Schedule(ctx, code, interval, func(runCtx context.Context) {
		s.RefreshView(runCtx, code)
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.view.start", map[string]any{
		"view":        code,
		"interval_ms": interval.Milliseconds(),
	})
	return nil
}

// StopView cancels the view's refresh task. It reports whether one was running.
func (s *Service) StopView(view string) bool {
	stopped := s.opts.Scheduler.Stop(normalizeCode(view))
	if stopped {
		s.recordTelemetry(context.Background(), "dashboard.view.stop", map[string]any{"view": normalizeCode(view)})
	}
	return stopped
}

// Close stops all refresh tasks and destroys every chart.
func (s *Service) Close() error {
	s.opts.Scheduler.StopAll()
	s.opts.ChartRegistry.DestroyAll()
	return nil
}
