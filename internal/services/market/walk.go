// Package market synthesizes live prices, trends, histories and the fixed market snapshot
package market

import (
	"math/rand/v2"
	"time"

	"github.com/bobmcallan/vanguard/internal/models"
)

// Volatility fractions
const (
	LiveVolatility = 0.002

	sparklineMinStart  = 50.0
	sparklineStartSpan = 50.0
	sparklineStepLow   = -0.04
	sparklineStepSpan  = 0.10
)

// historySpec describes how a timeframe's history is reconstructed.
type historySpec struct {
	points     int
	interval   time.Duration
	volatility float64
	layout     string
}

var historySpecs = map[models.Timeframe]historySpec{
	models.Timeframe1D: {points: 24, interval: time.Hour, volatility: 0.005, layout: "15:04"},
	models.Timeframe1W: {points: 7, interval: 24 * time.Hour, volatility: 0.015, layout: "Jan 2"},
	models.Timeframe1M: {points: 30, interval: 24 * time.Hour, volatility: 0.02, layout: "Jan 2"},
	models.Timeframe1Y: {points: 12, interval: 30 * 24 * time.Hour, volatility: 0.05, layout: "Jan"},
}

// Walker produces random-walk values from an injected random source.
// A Walker is not safe for concurrent use; each session owns one.
type Walker struct {
	rng *rand.Rand
}

// NewWalker returns a Walker drawing from rng.
func NewWalker(rng *rand.Rand) *Walker {
	return &Walker{rng: rng}
}

// NewSeededWalker returns a Walker with a deterministic PCG source.
func NewSeededWalker(seed uint64) *Walker {
	return NewWalker(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// uniform draws from [-v, +v).
func (w *Walker) uniform(v float64) float64 {
	return w.rng.Float64()*2*v - v
}

// Step returns current × (1+u), u drawn uniformly from [-v, +v].
func (w *Walker) Step(current, v float64) float64 {
	return current * (1 + w.uniform(v))
}

// LivePrice applies one live tick at the default volatility.
func (w *Walker) LivePrice(current float64) float64 {
	return w.Step(current, LiveVolatility)
}

// Sparkline returns a fresh trend of exactly models.TrendLength points.
func (w *Walker) Sparkline() []float64 {
	points := make([]float64, models.TrendLength)
	val := sparklineMinStart + w.rng.Float64()*sparklineStartSpan
	for i := range points {
		val *= 1 + sparklineStepLow + w.rng.Float64()*sparklineStepSpan
		points[i] = val
	}
	return points
}

// FlatTrend returns a trend holding a constant value, used for cash.
func FlatTrend(value float64) []float64 {
	points := make([]float64, models.TrendLength)
	for i := range points {
		points[i] = value
	}
	return points
}

// ShiftTrend drops the oldest point and appends price, keeping the length.
// An empty trend stays empty.
func ShiftTrend(trend []float64, price float64) []float64 {
	if len(trend) == 0 {
		return trend
	}
	next := make([]float64, len(trend))
	copy(next, trend[1:])
	next[len(next)-1] = price
	return next
}

// History reconstructs a value history ending at current. It walks backwards
// from now, dividing by a random factor at each step, so the last point is
// exactly current.
func (w *Walker) History(tf models.Timeframe, current float64, now time.Time) []models.PerformancePoint {
	spec, ok := historySpecs[tf]
	if !ok {
		spec = historySpecs[models.Timeframe1M]
	}

	points := make([]models.PerformancePoint, spec.points)
	price := current
	for i := 0; i < spec.points; i++ {
		at := now.Add(-time.Duration(i) * spec.interval)
		points[spec.points-1-i] = models.PerformancePoint{
			Date:  at.Format(spec.layout),
			Value: price,
		}
		price /= 1 + w.uniform(spec.volatility)
	}
	return points
}
