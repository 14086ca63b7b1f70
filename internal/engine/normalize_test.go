package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-heatmap/internal/engine"
)

func TestNormalize_EmptyTable(t *testing.T) {
	h := engine.Normalize(engine.NewCountTable(engine.Gregorian()))

	require.Len(t, h.MonthWeights, 12)
	for m, w := range h.MonthWeights {
		assert.Zero(t, w, "month %d", m)
	}
	for m, row := range h.DayIntensities {
		for d, v := range row {
			assert.Equal(t, engine.EmptyIntensity, v, "month %d day %d", m, d)
		}
	}
}

func TestDayIntensity(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, engine.EmptyIntensity},
		{1, 25},
		{2, 35},
		{3, 45},
		{6, 75},
		{7, 80},
		{20, 80},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.DayIntensity(tt.count), "count %d", tt.count)
	}
}

func TestNormalize_Scenario(t *testing.T) {
	table := engine.Aggregate(engine.Gregorian(), people("2000-05-02", "1999-05-02", "1970-01-01"))
	h := engine.Normalize(table)

	assert.Equal(t, 80, h.MonthWeights[4], "busiest month")
	assert.Equal(t, 30, h.MonthWeights[0])
	assert.Zero(t, h.MonthWeights[11])

	assert.Equal(t, 35.0, h.DayIntensities[4][1])
	assert.Equal(t, 25.0, h.DayIntensities[0][0])
	assert.Equal(t, engine.EmptyIntensity, h.DayIntensities[0][1])
}

func TestNormalize_Ranges(t *testing.T) {
	input := people("2000-01-01", "2000-01-01", "2000-01-01", "2000-01-01",
		"2000-03-03", "2000-06-06", "2000-06-07", "2000-02-29", "2000-12-31")
	h := engine.Normalize(engine.Aggregate(engine.Gregorian(), input))

	for _, w := range h.MonthWeights {
		assert.GreaterOrEqual(t, w, 0)
		assert.LessOrEqual(t, w, 80)
		assert.Zero(t, w%10)
	}
	for _, row := range h.DayIntensities {
		for _, v := range row {
			if v == engine.EmptyIntensity {
				continue
			}
			assert.GreaterOrEqual(t, v, 25.0)
			assert.LessOrEqual(t, v, 80.0)
		}
	}
}

func TestNormalize_IsDeterministic(t *testing.T) {
	table := engine.Aggregate(engine.Gregorian(), engine.ExamplePeople())

	assert.Equal(t, engine.Normalize(table), engine.Normalize(table))
	assert.Equal(t, engine.Normalize(table).MonthWeights, engine.MonthWeights(table))
}
