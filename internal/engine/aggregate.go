package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tartampluch/birthday-heatmap/internal/config"
	"golang.org/x/sync/errgroup"
)

// ErrTableShape is returned when merging tables built from different calendars.
var ErrTableShape = errors.New(config.ErrTableShape)

// CountTable holds one counter per calendar day, grouped by month.
// Month and day indexes of the accessors are 0-based.
type CountTable struct {
	days [][]int
}

// AggregateStats describes what happened to each record of an aggregation pass.
// Counted + Unparseable + OutOfRange == Records.
type AggregateStats struct {
	Records     int `json:"records"`
	Counted     int `json:"counted"`
	Unparseable int `json:"unparseable"`
	OutOfRange  int `json:"out_of_range"`
}

// NewCountTable returns an all-zero table shaped like cal.
func NewCountTable(cal Calendar) *CountTable {
	days := make([][]int, cal.Len())
	for i, m := range cal.months {
		days[i] = make([]int, m.Days)
	}
	return &CountTable{days: days}
}

// Months returns the number of month rows.
func (t *CountTable) Months() int {
	return len(t.days)
}

// Days returns the number of day counters of the 0-based month.
func (t *CountTable) Days(month int) int {
	if month < 0 || month >= len(t.days) {
		return 0
	}
	return len(t.days[month])
}

// Count returns the counter at the 0-based month/day, or 0 outside the table.
func (t *CountTable) Count(month, day int) int {
	if day < 0 || day >= t.Days(month) {
		return 0
	}
	return t.days[month][day]
}

// MonthTotal is the MonthWeight of the 0-based month: the sum of its day counters.
func (t *CountTable) MonthTotal(month int) int {
	if month < 0 || month >= len(t.days) {
		return 0
	}
	sum := 0
	for _, c := range t.days[month] {
		sum += c
	}
	return sum
}

// Total is the sum of every counter.
func (t *CountTable) Total() int {
	sum := 0
	for m := range t.days {
		sum += t.MonthTotal(m)
	}
	return sum
}

// Rows returns a deep copy of the counters.
func (t *CountTable) Rows() [][]int {
	out := make([][]int, len(t.days))
	for i, row := range t.days {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// increment bumps the 1-based month/day. It reports false, touching nothing,
// when the cell does not exist.
func (t *CountTable) increment(month, day int) bool {
	if month < 1 || month > len(t.days) {
		return false
	}
	row := t.days[month-1]
	if day < 1 || day > len(row) {
		return false
	}
	row[day-1]++
	return true
}

// Merge adds every counter of other into t.
func (t *CountTable) Merge(other *CountTable) error {
	if len(t.days) != len(other.days) {
		return ErrTableShape
	}
	for m := range t.days {
		if len(t.days[m]) != len(other.days[m]) {
			return ErrTableShape
		}
	}
	for m, row := range other.days {
		for d, c := range row {
			t.days[m][d] += c
		}
	}
	return nil
}

// Aggregate counts how many people share each calendar day.
// Records whose birthday has no usable month/day are skipped silently.
func Aggregate(cal Calendar, people []Person) *CountTable {
	t, _ := AggregateWithStats(cal, people)
	return t
}

// AggregateWithStats is Aggregate plus a breakdown of skipped records.
// Out-of-range month/day values are skipped rather than written.
func AggregateWithStats(cal Calendar, people []Person) (*CountTable, AggregateStats) {
	t := NewCountTable(cal)
	stats := AggregateStats{Records: len(people)}

	for _, p := range people {
		month, day, ok := parseMonthDay(p.Birthday)
		if !ok {
			stats.Unparseable++
			slog.Debug(config.MsgSkippedRecord,
				config.LogKeyComponent, config.CompAggr,
				config.LogKeyValue, p.Birthday)
			continue
		}
		if !t.increment(month, day) {
			stats.OutOfRange++
			slog.Debug(config.MsgOutOfRange,
				config.LogKeyComponent, config.CompAggr,
				config.LogKeyMonth, month,
				config.LogKeyDay, day)
			continue
		}
		stats.Counted++
	}

	return t, stats
}

// AggregateAll aggregates several independent inputs concurrently.
// Each batch is counted into its own table; the partial tables are merged once
// every worker is done, so no counter is shared between goroutines.
func AggregateAll(ctx context.Context, cal Calendar, batches [][]Person) (*CountTable, AggregateStats, error) {
	partials := make([]*CountTable, len(batches))
	partialStats := make([]AggregateStats, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.MaxAggregateWorkers)

	for i, batch := range batches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[i], partialStats[i] = AggregateWithStats(cal, batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, AggregateStats{}, err
	}

	total := NewCountTable(cal)
	var stats AggregateStats
	for i, p := range partials {
		if err := total.Merge(p); err != nil {
			return nil, AggregateStats{}, err
		}
		stats.add(partialStats[i])
	}

	slog.Debug(config.MsgMerged,
		config.LogKeyComponent, config.CompAggr,
		config.LogKeyBatches, len(batches),
		config.LogKeyCounted, stats.Counted)
	return total, stats, nil
}

func (s *AggregateStats) add(o AggregateStats) {
	s.Records += o.Records
	s.Counted += o.Counted
	s.Unparseable += o.Unparseable
	s.OutOfRange += o.OutOfRange
}

// parseMonthDay reads the second and third "-"-separated components of a
// birthday. The first component (usually the year) is ignored.
func parseMonthDay(birthday string) (month, day int, ok bool) {
	parts := strings.Split(birthday, config.BirthdaySeparator)
	if len(parts) < 3 {
		return 0, 0, false
	}
	month, ok = parseLeadingInt(parts[1])
	if !ok {
		return 0, 0, false
	}
	day, ok = parseLeadingInt(parts[2])
	if !ok {
		return 0, 0, false
	}
	return month, day, true
}

// parseLeadingInt reads an optionally signed run of decimal digits after
// leading whitespace and ignores whatever follows ("02\r" and "02T10:00" both
// give 2). It reports false when no digit is present or the value overflows.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n\f\v")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	const limit = 1 << 31
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		if n >= limit {
			return 0, false
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
