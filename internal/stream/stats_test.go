package stream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subzero-monitor/telemetry/internal/domain"
)

type point struct {
	temp  float64
	power float64
}

var pointFields = []Field[point]{
	{Name: "temp", Value: func(p point) float64 { return p.temp }},
	{Name: "power", Value: func(p point) float64 { return p.power }},
}

func TestComputeStatsEmptyHistoryYieldsZeros(t *testing.T) {
	stats := ComputeStats(nil, pointFields)

	require.Len(t, stats, 2)
	for name, s := range stats {
		assert.Zerof(t, s.Avg, "%s avg", name)
		assert.Zerof(t, s.Min, "%s min", name)
		assert.Zerof(t, s.Max, "%s max", name)
		assert.Falsef(t, math.IsNaN(s.Avg), "%s avg must never be NaN", name)
	}
}

func TestComputeStats(t *testing.T) {
	history := []point{
		{temp: -18, power: 300},
		{temp: -12, power: 450},
		{temp: -15, power: 150},
	}

	stats := ComputeStats(history, pointFields)

	assert.InDelta(t, -15.0, stats["temp"].Avg, 1e-9)
	assert.Equal(t, -18.0, stats["temp"].Min)
	assert.Equal(t, -12.0, stats["temp"].Max)
	assert.InDelta(t, 300.0, stats["power"].Avg, 1e-9)
	assert.Equal(t, 150.0, stats["power"].Min)
	assert.Equal(t, 450.0, stats["power"].Max)
}

func TestComputeStatsSingleReading(t *testing.T) {
	stats := ComputeStats([]point{{temp: -18, power: 300}}, pointFields)

	assert.Equal(t, domain.FieldStats{Avg: -18, Min: -18, Max: -18}, stats["temp"])
}

func TestComputeStatsNegativeOnlyValues(t *testing.T) {
	history := []point{{temp: -20}, {temp: -25}}

	stats := ComputeStats(history, pointFields[:1])

	assert.Equal(t, -25.0, stats["temp"].Min)
	assert.Equal(t, -20.0, stats["temp"].Max)
}
