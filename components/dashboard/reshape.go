package dashboard

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// SeriesPoint is a labeled value on a bar chart.
type SeriesPoint struct {
	Label string
	Value float64
}

// HeatmapGrid is a dense segment x category matrix.
// Values[i][j] is the score for Segments[i] and Categories[j].
type HeatmapGrid struct {
	Segments   []string
	Categories []string
	Values     [][]float64
}

// Cells returns the number of cells in the grid.
func (g HeatmapGrid) Cells() int {
	n := 0
	for _, row := range g.Values {
		n += len(row)
	}
	return n
}

// SegmentShare is one slice of the segment distribution doughnut.
type SegmentShare struct {
	SegmentTag string
	Count      int
	Percent    string
	Label      string
}

// FormatPercent renders a ratio as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatCurrency renders an amount as dollars with two decimals.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatScore renders a model score with two decimals.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// ProductSeries maps the product ranking onto a bar series, keeping server order.
func ProductSeries(products []ProductPerformance) []SeriesPoint {
	out := make([]SeriesPoint, len(products))
	for i, p := range products {
		out[i] = SeriesPoint{Label: p.Name, Value: float64(p.SalesCount)}
	}
	return out
}

// ConversionSeries maps segment conversion rates onto a bar series. Values
// stay fractional; scaling to percent happens at render time.
func ConversionSeries(rows []SegmentConversion) []SeriesPoint {
	out := make([]SeriesPoint, len(rows))
	for i, r := range rows {
		out[i] = SeriesPoint{Label: r.Segment, Value: r.ConversionRate}
	}
	return out
}

// BuildHeatmapGrid densifies sparse engagement cells. Axes keep the order in
// which each segment and category first appears; missing pairs are 0 and a
// repeated pair keeps its first score.
func BuildHeatmapGrid(cells []EngagementCell) HeatmapGrid {
	segIndex := map[string]int{}
	catIndex := map[string]int{}
	grid := HeatmapGrid{}
	for _, c := range cells {
		if _, ok := segIndex[c.Segment]; !ok {
			segIndex[c.Segment] = len(grid.Segments)
			grid.Segments = append(grid.Segments, c.Segment)
		}
		if _, ok := catIndex[c.Category]; !ok {
			catIndex[c.Category] = len(grid.Categories)
			grid.Categories = append(grid.Categories, c.Category)
		}
	}

	grid.Values = make([][]float64, len(grid.Segments))
	for i := range grid.Values {
		grid.Values[i] = make([]float64, len(grid.Categories))
	}

	seen := map[[2]int]bool{}
	for _, c := range cells {
		key := [2]int{segIndex[c.Segment], catIndex[c.Category]}
		if seen[key] {
			continue
		}
		seen[key] = true
		grid.Values[key[0]][key[1]] = c.EngagementScore
	}
	return grid
}

// HeatmapAlpha maps an engagement score onto an opacity in [0,1]. The second
// return value is false when the score was outside that range and got clamped.
func HeatmapAlpha(value float64) (float64, bool) {
	switch {
	case math.IsNaN(value):
		return 0, false
	case value < 0:
		return 0, false
	case value > 1:
		return 1, false
	default:
		return value, true
	}
}

// HeatmapCellColor returns the fill color for a heatmap cell.
func HeatmapCellColor(value float64) string {
	alpha, _ := HeatmapAlpha(value)
	return fmt.Sprintf("rgba(255, 99, 132, %s)", trimFloat(alpha))
}

// SegmentDistribution computes doughnut slices with one-decimal percentages.
// A zero total yields "0.0" for every segment.
func SegmentDistribution(segments []SegmentCount) []SegmentShare {
	total := 0
	for _, s := range segments {
		total += s.Count
	}
	out := make([]SegmentShare, len(segments))
	for i, s := range segments {
		pct := 0.0
		if total > 0 {
			pct = float64(s.Count) / float64(total) * 100
		}
		formatted := fmt.Sprintf("%.1f", pct)
		out[i] = SegmentShare{
			SegmentTag: s.SegmentTag,
			Count:      s.Count,
			Percent:    formatted,
			Label:      fmt.Sprintf("%s (%s%%)", s.SegmentTag, formatted),
		}
	}
	return out
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
