package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-retail-dashboard/components/dashboard"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-retail-dashboard/components/dashboard/queries"
	"github.com/goliatone/go-retail-dashboard/pkg/config"
)

const shutdownTimeout = 15 * time.Second

type serveCmd struct {
	Addr     string   `help:"Listen address for pages and API." env:"DASHBOARD_ADDR"`
	OpsAddr  string   `name:"ops-addr" help:"Listen address for /metrics, /healthz and the SSE stream."`
	BasePath string   `name:"base-path" help:"Path prefix for every dashboard route."`
	Manifest string   `type:"path" help:"View manifest YAML applied before the refresh loops start."`
	Theme    string   `help:"ECharts theme name."`
	Assets   string   `name:"assets-host" help:"Host serving the ECharts JavaScript assets."`
	Activity bool     `help:"Emit activity events."`
	Views    []string `help:"Only start these views (default: every scheduled view)."`
}

func (cmd *serveCmd) Run(g *Globals) error {
	overrides := config.Overrides{
		Addr:         cmd.Addr,
		OpsAddr:      cmd.OpsAddr,
		BasePath:     cmd.BasePath,
		ManifestPath: cmd.Manifest,
		Theme:        cmd.Theme,
		AssetsHost:   cmd.Assets,
	}
	if cmd.Activity {
		overrides.ActivityEnabled = &cmd.Activity
	}
	cfg, err := g.load(overrides)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hook := dashboard.NewBroadcastHook()
	defer hook.Close()
	rt, err := newRuntime(cfg, hook)
	if err != nil {
		return err
	}
	defer rt.Close()
	logger := rt.logger

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("dashctl: templates: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  rt.service,
		Registry: rt.service.Registry(),
		Renderer: renderer,
		BasePath: cfg.Server.BasePath,
	})
	api := &httpapi.Handlers{
		Refresh:         commands.NewRefreshPanelCommand(rt.service, rt.telemetry),
		Track:           commands.NewTrackEventCommand(rt.service, rt.telemetry),
		Upload:          commands.NewUploadDatasetCommand(rt.service, rt.telemetry),
		Panel:           queries.NewPanelQuery(rt.service),
		Recommendations: queries.NewRecommendationsQuery(rt.service),
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        api,
		Broadcast:  hook,
		BasePath:   cfg.Server.BasePath,
	}); err != nil {
		return fmt.Errorf("dashctl: register routes: %w", err)
	}

	start := commands.NewStartDashboardCommand(rt.service, rt.telemetry)
	if err := start.Execute(ctx, commands.StartDashboardInput{
		ManifestPath: cfg.Dashboard.ManifestPath,
		Views:        cmd.Views,
	}); err != nil {
		return fmt.Errorf("dashctl: start dashboard: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("base_path", cfg.Server.BasePath).Msg("dashboard listening")
		errCh <- server.Serve(cfg.Server.Addr)
	}()

	var ops *http.Server
	if cfg.Server.OpsAddr != "" {
		ops = &http.Server{
			Addr:              cfg.Server.OpsAddr,
			Handler:           opsMux(rt, hook),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.Server.OpsAddr).Msg("ops server listening")
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("dashctl: ops server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if ops != nil {
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("ops server shutdown")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("dashboard server shutdown")
	}
	return runErr
}

func opsMux(rt *runtime, hook *dashboard.BroadcastHook) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/events", hook.ServeSSE)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
