package dashboard

import "context"

// ChartKind identifies how a slot is drawn.
type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartHeatmap  ChartKind = "heatmap"
	ChartDoughnut ChartKind = "doughnut"
)

// ChartSpec is a reshaped, renderer-agnostic chart description.
type ChartSpec struct {
	Kind       ChartKind
	Title      string
	Subtitle   string
	SeriesName string

	// ValueAxis names the value axis of bar charts.
	ValueAxis string
	// Scale multiplies bar values when drawing; 0 means 1.
	Scale float64

	Series  []SeriesPoint
	Heatmap *HeatmapGrid
	Slices  []SegmentShare
}

// ChartRenderer turns a spec into embeddable HTML. The container id is
// stable per slot so identical specs render identical markup.
type ChartRenderer interface {
	Render(ctx context.Context, containerID string, spec ChartSpec) (string, error)
}

// ChartRendererFunc adapts a function into a ChartRenderer.
type ChartRendererFunc func(ctx context.Context, containerID string, spec ChartSpec) (string, error)

// Render implements ChartRenderer.
func (fn ChartRendererFunc) Render(ctx context.Context, containerID string, spec ChartSpec) (string, error) {
	return fn(ctx, containerID, spec)
}
