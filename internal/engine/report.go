package engine

import (
	"encoding/json"
	"fmt"

	"github.com/tartampluch/birthday-heatmap/internal/config"
)

// MonthReport is the per-month view served to presentation clients.
type MonthReport struct {
	Name        string    `json:"name"`
	Total       int       `json:"total"`
	Weight      int       `json:"weight"`
	Counts      []int     `json:"counts"`
	Intensities []float64 `json:"intensities"`
}

// Report is the JSON document describing a Result.
type Report struct {
	People         int            `json:"people"`
	Stats          AggregateStats `json:"stats"`
	EmptyIntensity float64        `json:"empty_intensity"`
	Months         []MonthReport  `json:"months"`
}

// Report flattens a Result into one entry per month.
func (r Result) Report() Report {
	rep := Report{
		People:         len(r.People),
		Stats:          r.Stats,
		EmptyIntensity: EmptyIntensity,
	}
	if r.Table == nil {
		return rep
	}

	counts := r.Table.Rows()
	rep.Months = make([]MonthReport, len(counts))
	for i, m := range r.Calendar.Months() {
		rep.Months[i] = MonthReport{
			Name:        m.Name,
			Total:       r.Table.MonthTotal(i),
			Weight:      r.Heatmap.MonthWeights[i],
			Counts:      counts[i],
			Intensities: r.Heatmap.DayIntensities[i],
		}
	}
	return rep
}

// MarshalReport encodes the Report of r as JSON.
func MarshalReport(r Result) ([]byte, error) {
	data, err := json.Marshal(r.Report())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrReportEncode, err)
	}
	return data, nil
}
