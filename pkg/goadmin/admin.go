package goadmin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	activitypkg "github.com/goliatone/go-retail-dashboard/pkg/activity"
	dashboardpkg "github.com/goliatone/go-retail-dashboard/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Path     string
	Icon     string
	Position int
}

// Config wires the dashboard service and its pages into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	// RoutePrefix names the admin routes, one per page ("admin.dashboard.reports").
	RoutePrefix    string
	BasePath       string
	Navigation     []dashboardpkg.NavItem
	ActivityHooks  activitypkg.Hooks
	ActivityConfig activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg      Config
	activity *activitypkg.Emitter
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.RoutePrefix == "" {
		cfg.RoutePrefix = "admin.dashboard"
	}
	if len(cfg.Navigation) == 0 {
		cfg.Navigation = dashboardpkg.Navigation()
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	return &Admin{cfg: cfg, activity: activitypkg.NewEmitter(cfg.ActivityHooks, cfg.ActivityConfig)}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// MenuItems lists the entries Bootstrap seeds, in navigation order.
func (a *Admin) MenuItems() []MenuItem {
	items := make([]MenuItem, 0, len(a.cfg.Navigation))
	for idx, nav := range a.cfg.Navigation {
		path := a.cfg.BasePath + nav.Route
		if path == "" {
			path = "/"
		}
		items = append(items, MenuItem{
			Label:    nav.Label,
			Route:    a.cfg.RoutePrefix + "." + nav.View,
			Path:     path,
			Icon:     nav.Icon,
			Position: idx + 1,
		})
	}
	return items
}

// Bootstrap seeds one menu entry per dashboard page when enabled. Every
// entry is attempted; failures are joined.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard || a.cfg.MenuBuilder == nil {
		return nil
	}
	var errs []error
	seeded := 0
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			errs = append(errs, fmt.Errorf("goadmin: menu item %s: %w", item.Route, err))
			continue
		}
		seeded++
	}
	if seeded > 0 {
		_ = a.activity.Emit(ctx, activitypkg.Event{
			Verb:       "dashboard.menu.seed",
			ObjectType: "menu",
			ObjectID:   a.cfg.MenuCode,
			Metadata:   map[string]any{"items": seeded},
		})
	}
	return errors.Join(errs...)
}
