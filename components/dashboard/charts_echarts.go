package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	heatmapColorLow    = "rgba(255, 99, 132, 0)"
	heatmapColorHigh   = "rgba(255, 99, 132, 1)"
)

// ThemeResolver selects a chart theme per request.
type ThemeResolver func(context.Context) string

// EChartsRenderer renders chart specs into go-echarts HTML fragments.
type EChartsRenderer struct {
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// EChartsOption customizes renderer behavior.
type EChartsOption func(*EChartsRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) EChartsOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsOption {
	return func(r *EChartsRenderer) {
		r.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per request.
func WithChartThemeResolver(resolver ThemeResolver) EChartsOption {
	return func(r *EChartsRenderer) {
		r.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// NewEChartsRenderer builds a renderer with a five minute render cache.
func NewEChartsRenderer(options ...EChartsOption) *EChartsRenderer {
	r := &EChartsRenderer{
		cache:      NewChartCache(5 * time.Minute),
		theme:      types.ThemeWesteros,
		assetsHost: ResolveEChartsAssetsHost(""),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render implements ChartRenderer.
func (r *EChartsRenderer) Render(ctx context.Context, containerID string, spec ChartSpec) (string, error) {
	theme := r.resolveTheme(ctx)
	renderFn := func() (string, error) {
		return r.render(containerID, theme, spec)
	}
	if r.cache == nil {
		return renderFn()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", containerID, spec.Kind, theme, specHash(spec))
	return r.cache.GetOrRender(key, renderFn)
}

func (r *EChartsRenderer) render(containerID, theme string, spec ChartSpec) (string, error) {
	switch spec.Kind {
	case ChartBar:
		return r.renderBar(containerID, theme, spec)
	case ChartHeatmap:
		return r.renderHeatmap(containerID, theme, spec)
	case ChartDoughnut:
		return r.renderDoughnut(containerID, theme, spec)
	default:
		return "", fmt.Errorf("dashboard: unsupported chart type: %s", spec.Kind)
	}
}

func (r *EChartsRenderer) renderBar(containerID, theme string, spec ChartSpec) (string, error) {
	scale := spec.Scale
	if scale == 0 {
		scale = 1
	}
	labels := make([]string, len(spec.Series))
	data := make([]opts.BarData, len(spec.Series))
	for i, point := range spec.Series {
		labels[i] = point.Label
		data[i] = opts.BarData{Name: point.Label, Value: scaleValue(point.Value, scale)}
	}

	bar := charts.NewBar()
	global := r.globalOptions(containerID, theme, spec)
	global = append(global, charts.WithYAxisOpts(opts.YAxis{Name: spec.ValueAxis, Min: 0}))
	bar.SetGlobalOptions(global...)
	bar.SetXAxis(labels)
	bar.AddSeries(seriesName(spec), data)
	return renderChart(bar)
}

func (r *EChartsRenderer) renderHeatmap(containerID, theme string, spec ChartSpec) (string, error) {
	if spec.Heatmap == nil {
		return "", fmt.Errorf("dashboard: heatmap grid is required")
	}
	grid := spec.Heatmap
	data := make([]opts.HeatMapData, 0, grid.Cells())
	for i, row := range grid.Values {
		for j, value := range row {
			alpha, _ := HeatmapAlpha(value)
			data = append(data, opts.HeatMapData{
				Name:  fmt.Sprintf("Engagement: %.2f", value),
				Value: [3]any{j, i, alpha},
			})
		}
	}

	hm := charts.NewHeatMap()
	global := r.globalOptions(containerID, theme, spec)
	global = append(global,
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: grid.Categories}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: grid.Segments}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: []string{heatmapColorLow, heatmapColorHigh}},
		}),
	)
	hm.SetGlobalOptions(global...)
	hm.SetXAxis(grid.Categories)
	hm.AddSeries(seriesName(spec), data)
	return renderChart(hm)
}

func (r *EChartsRenderer) renderDoughnut(containerID, theme string, spec ChartSpec) (string, error) {
	data := make([]opts.PieData, len(spec.Slices))
	for i, slice := range spec.Slices {
		data[i] = opts.PieData{Name: slice.Label, Value: slice.Count}
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalOptions(containerID, theme, spec)...)
	pie.AddSeries(seriesName(spec), data)
	pie.SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "75%"}}))
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalOptions(containerID, theme string, spec ChartSpec) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:   theme,
		Width:   "100%",
		Height:  defaultChartHeight,
		ChartID: containerID,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title, Subtitle: spec.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(spec.Kind == ChartDoughnut)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func (r *EChartsRenderer) resolveTheme(ctx context.Context) string {
	if r.themeResolver != nil {
		if theme := strings.TrimSpace(r.themeResolver(ctx)); theme != "" {
			return theme
		}
	}
	if r.theme != "" {
		return r.theme
	}
	return types.ThemeWesteros
}

// scaleValue multiplies and rounds to four decimals so 0.347*100 draws as 34.7.
func scaleValue(v, scale float64) float64 {
	return math.Round(v*scale*1e4) / 1e4
}

func seriesName(spec ChartSpec) string {
	if spec.SeriesName != "" {
		return spec.SeriesName
	}
	if spec.Title != "" {
		return spec.Title
	}
	return "Series"
}
