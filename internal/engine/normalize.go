package engine

import (
	"math"

	"github.com/tartampluch/birthday-heatmap/internal/config"
)

// EmptyIntensity is the day intensity of a day nobody was born on.
// Every non-empty day has an intensity of at least 25.
const EmptyIntensity float64 = config.EmptyDayIntensity

// Heatmap is the numeric output consumed by presentation layers.
type Heatmap struct {
	// MonthWeights holds one weight per month, a multiple of 10 in [0, 80].
	MonthWeights []int `json:"month_weights"`
	// DayIntensities mirrors the CountTable shape. Values are EmptyIntensity or in [25, 80].
	DayIntensities [][]float64 `json:"day_intensities"`
}

// Normalize derives month weights and day intensities from a CountTable.
func Normalize(t *CountTable) Heatmap {
	h := Heatmap{
		MonthWeights:   MonthWeights(t),
		DayIntensities: make([][]float64, t.Months()),
	}
	for m, row := range t.days {
		intensities := make([]float64, len(row))
		for d, c := range row {
			intensities[d] = DayIntensity(c)
		}
		h.DayIntensities[m] = intensities
	}
	return h
}

// MonthWeights scales every month total against the busiest month.
// When nothing was counted all weights are 0.
func MonthWeights(t *CountTable) []int {
	totals := make([]int, t.Months())
	maxTotal := 0
	for m := range totals {
		totals[m] = t.MonthTotal(m)
		maxTotal = max(maxTotal, totals[m])
	}

	weights := make([]int, len(totals))
	if maxTotal == 0 {
		for m := range weights {
			weights[m] = config.MinMonthWeight
		}
		return weights
	}

	for m, total := range totals {
		weights[m] = monthWeight(total, maxTotal)
	}
	return weights
}

// monthWeight computes round(total/max*100) - 20, rounded to a multiple of 10
// and floored at 0. maxTotal must be positive.
func monthWeight(total, maxTotal int) int {
	ratio := float64(total) / float64(maxTotal)
	w := roundHalfUp(ratio*config.MonthWeightScale) - config.MonthWeightOffset
	w = roundHalfUp(w/config.MonthWeightStep) * config.MonthWeightStep
	if w < config.MinMonthWeight || math.IsNaN(w) {
		return config.MinMonthWeight
	}
	return int(w)
}

// DayIntensity maps a day counter to (count+1.5)*10 capped at 80.
// A zero count gives EmptyIntensity.
func DayIntensity(count int) float64 {
	if count == 0 {
		return EmptyIntensity
	}
	return math.Min((float64(count)+config.DayIntensityBias)*config.DayIntensityScale, config.MaxDayIntensity)
}

// roundHalfUp rounds to the nearest integer, halves toward +Inf (-2.5 gives -2).
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
