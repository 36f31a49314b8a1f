package market

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/vanguard/internal/common"
	"github.com/bobmcallan/vanguard/internal/models"
)

// Sparkline colours follow the trend direction.
var (
	colorUp      = drawing.ColorFromHex("10b981") // emerald-500
	colorDown    = drawing.ColorFromHex("ef4444") // red-500
	colorHistory = drawing.ColorFromHex("2563eb") // blue-600
)

// RenderHistoryChart renders a PNG area chart of a reconstructed value history.
// Returns raw PNG bytes.
func RenderHistoryChart(points []models.PerformancePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]float64, len(points))
	yValues := make([]float64, len(points))
	labels := make([]string, len(points))
	for i, p := range points {
		xValues[i] = float64(i)
		yValues[i] = p.Value
		labels[i] = p.Date
	}

	series := chart.ContinuousSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: colorHistory,
			StrokeWidth: 2.5,
			FillColor:   colorHistory.WithAlpha(48),
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  "Portfolio Performance",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					i := int(f)
					if i >= 0 && i < len(labels) && float64(i) == f {
						return labels[i]
					}
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Range: yRange(yValues),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return common.FormatMoney(f)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	return render(graph)
}

// RenderSparkline renders a small axis-less PNG of a trend, green when the
// trend ends at or above where it started and red otherwise.
func RenderSparkline(trend []float64) ([]byte, error) {
	if len(trend) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(trend))
	}

	xValues := make([]float64, len(trend))
	for i := range trend {
		xValues[i] = float64(i)
	}

	color := colorUp
	if trend[len(trend)-1] < trend[0] {
		color = colorDown
	}

	graph := chart.Chart{
		Width:  120,
		Height: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 2, Left: 2, Right: 2, Bottom: 2},
		},
		XAxis: chart.XAxis{Style: chart.Hidden()},
		YAxis: chart.YAxis{Style: chart.Hidden(), Range: yRange(trend)},
		Series: []chart.Series{chart.ContinuousSeries{
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 1.5,
			},
			XValues: xValues,
			YValues: trend,
		}},
	}

	return render(graph)
}

// yRange pins the axis around a flat series, which go-chart refuses to auto-range.
func yRange(values []float64) chart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo != hi {
		return nil
	}
	pad := 1.0
	if lo != 0 {
		pad = abs(lo) * 0.01
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func render(graph chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
