package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-retail-dashboard/components/dashboard"
	"github.com/goliatone/go-retail-dashboard/pkg/activity"
	"github.com/goliatone/go-retail-dashboard/pkg/activity/usersink"
	"github.com/goliatone/go-retail-dashboard/pkg/analytics"
	"github.com/goliatone/go-retail-dashboard/pkg/config"
	"github.com/goliatone/go-retail-dashboard/pkg/observability"
)

// Globals are shared by every subcommand and override the config file.
type Globals struct {
	Config    string `type:"path" help:"YAML configuration file." env:"DASHBOARD_CONFIG"`
	BaseURL   string `name:"base-url" help:"Analytics API base URL." env:"ANALYTICS_API_URL"`
	APIKey    string `name:"api-key" help:"Bearer token for the analytics API." env:"ANALYTICS_API_KEY"`
	Demo      bool   `help:"Serve built-in demo data instead of calling the analytics API."`
	LogFormat string `name:"log-format" help:"Log format (console, json)."`
	LogLevel  string `name:"log-level" help:"Minimum log level."`
}

type cli struct {
	Globals

	Serve     serveCmd     `cmd:"" help:"Serve the dashboard pages, JSON API and live updates."`
	Refresh   refreshCmd   `cmd:"" help:"Refresh a view or slot once and print the resulting panels."`
	Upload    uploadCmd    `cmd:"" help:"Upload dataset CSV files to the analytics API."`
	Track     trackCmd     `cmd:"" help:"Record a customer interaction event."`
	Recommend recommendCmd `cmd:"" help:"Look up product recommendations for a customer."`
	View      viewCmd      `cmd:"" help:"Manage the view manifest."`
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("dashctl"),
		kong.Description("Retail analytics dashboard server and tooling."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&app.Globals)
	ctx.FatalIfErrorf(err)
}

func (g *Globals) load(overrides config.Overrides) (config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return config.Config{}, err
	}
	overrides.BaseURL = g.BaseURL
	overrides.APIKey = g.APIKey
	overrides.LogFormat = g.LogFormat
	overrides.LogLevel = g.LogLevel
	if g.Demo {
		overrides.Demo = &g.Demo
	}
	return cfg.Apply(overrides)
}

// runtime holds the collaborators one process run shares.
type runtime struct {
	cfg       config.Config
	logger    zerolog.Logger
	metrics   *observability.PrometheusTelemetry
	telemetry dashboard.Telemetry
	cache     *dashboard.RistrettoCache
	service   *dashboard.Service
}

func newRuntime(cfg config.Config, hook dashboard.RefreshHook) (*runtime, error) {
	logger, err := observability.NewLogger(observability.LoggerConfig{
		Format: cfg.Logging.Format,
		Level:  cfg.Logging.Level,
	})
	if err != nil {
		return nil, err
	}
	metrics, err := observability.NewPrometheusTelemetry(nil)
	if err != nil {
		return nil, err
	}
	telemetry := observability.Fanout{observability.NewZerologTelemetry(logger), metrics}

	client, err := newAnalyticsClient(cfg)
	if err != nil {
		return nil, err
	}
	cache, err := dashboard.NewRistrettoCache(cfg.Dashboard.ChartCacheBytes, cfg.Dashboard.ChartCacheTTL)
	if err != nil {
		return nil, err
	}
	chartOpts := []dashboard.EChartsOption{
		dashboard.WithChartCache(cache),
		dashboard.WithChartAssetsHost(dashboard.ResolveEChartsAssetsHost(cfg.Dashboard.AssetsHost)),
	}
	if cfg.Dashboard.Theme != "" {
		chartOpts = append(chartOpts, dashboard.WithChartTheme(cfg.Dashboard.Theme))
	}

	service := dashboard.NewService(dashboard.Options{
		Client:        client,
		Charts:        dashboard.NewEChartsRenderer(chartOpts...),
		RefreshHook:   hook,
		Telemetry:     telemetry,
		ActivityHooks: activityHooks(cfg.Activity, logger),
		ActivityConfig: activity.Config{
			Enabled: cfg.Activity.Enabled,
			Channel: cfg.Activity.Channel,
		},
	})
	return &runtime{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		telemetry: telemetry,
		cache:     cache,
		service:   service,
	}, nil
}

func (rt *runtime) loadManifest() error {
	if rt.cfg.Dashboard.ManifestPath == "" {
		return nil
	}
	_, err := rt.service.Registry().LoadManifestFile(rt.cfg.Dashboard.ManifestPath)
	return err
}

func (rt *runtime) Close() {
	_ = rt.service.Close()
	rt.cache.Close()
}

func newAnalyticsClient(cfg config.Config) (analytics.Client, error) {
	var client analytics.Client
	if cfg.Analytics.Demo {
		client = analytics.NewMockClient(analytics.DemoData())
	} else {
		httpClient, err := analytics.NewHTTPClient(analytics.HTTPConfig{
			BaseURL:        cfg.Analytics.BaseURL,
			APIKey:         cfg.Analytics.APIKey,
			HTTPClient:     &http.Client{Timeout: cfg.Analytics.Timeout},
			SkipValidation: cfg.Analytics.SkipValidation,
		})
		if err != nil {
			return nil, err
		}
		client = httpClient
	}
	if cfg.Analytics.ReportCacheTTL > 0 {
		client = analytics.NewSharedReportClient(client, cfg.Analytics.ReportCacheTTL)
	}
	return client, nil
}

// activityHooks returns the log hook, plus the go-users sink when
// activity.user_sink is set.
func activityHooks(cfg config.ActivityConfig, logger zerolog.Logger) activity.Hooks {
	hooks := activity.Hooks{activityLogHook(logger)}
	if cfg.UserSink {
		hooks = append(hooks, usersink.Hook{Sink: usersink.LogSink{Logger: logger}})
	}
	return hooks
}

func activityLogHook(logger zerolog.Logger) activity.Hook {
	return activity.HookFunc(func(_ context.Context, evt activity.Event) error {
		logger.Info().
			Str("verb", evt.Verb).
			Str("actor_id", evt.ActorID).
			Str("tenant_id", evt.TenantID).
			Str("object_type", evt.ObjectType).
			Str("object_id", evt.ObjectID).
			Str("channel", evt.Channel).
			Fields(evt.Metadata).
			Msg("activity")
		return nil
	})
}

func printJSON(out io.Writer, v any) error {
	if out == nil {
		out = os.Stdout
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("dashctl: encode output: %w", err)
	}
	return nil
}
