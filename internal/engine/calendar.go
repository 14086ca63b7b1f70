package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tartampluch/birthday-heatmap/internal/config"
	"gopkg.in/yaml.v3"
)

// ErrInvalidCalendar is returned for structurally invalid calendar definitions.
var ErrInvalidCalendar = errors.New(config.ErrCalendarInvalid)

// Month is one calendar month: a display name and its number of days.
type Month struct {
	Name string `yaml:"name" json:"name"`
	Days int    `yaml:"days" json:"days"`
}

// Calendar is an immutable, validated list of twelve months.
// The zero value is not usable; build one with NewCalendar, Gregorian or LoadCalendar.
type Calendar struct {
	months []Month
}

// calendarFile is the YAML layout accepted by LoadCalendar.
type calendarFile struct {
	Months []Month `yaml:"months"`
}

// NewCalendar validates months and returns a Calendar owning a private copy.
func NewCalendar(months []Month) (Calendar, error) {
	if len(months) != config.MonthsPerYear {
		return Calendar{}, fmt.Errorf("%w: %s (got %d)", ErrInvalidCalendar, config.ErrCalendarMonths, len(months))
	}
	for i, m := range months {
		if m.Days < config.MinMonthDays || m.Days > config.MaxMonthDays {
			return Calendar{}, fmt.Errorf("%w: %s (month %d %q has %d)",
				ErrInvalidCalendar, config.ErrCalendarDays, i+1, m.Name, m.Days)
		}
	}

	cp := make([]Month, len(months))
	copy(cp, months)
	return Calendar{months: cp}, nil
}

// Gregorian returns the default calendar. February has 29 days.
func Gregorian() Calendar {
	months := make([]Month, config.MonthsPerYear)
	for i := range months {
		months[i] = Month{Name: config.GregorianMonthNames[i], Days: config.GregorianMonthDays[i]}
	}
	return Calendar{months: months}
}

// LoadCalendar decodes a YAML calendar definition:
//
//	months:
//	  - name: January
//	    days: 31
//	  ...
func LoadCalendar(r io.Reader) (Calendar, error) {
	var f calendarFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return Calendar{}, fmt.Errorf("%s: %w", config.ErrCalendarDecode, err)
	}

	cal, err := NewCalendar(f.Months)
	if err != nil {
		return Calendar{}, err
	}

	slog.Debug(config.MsgCalendarLoaded,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyValue, cal.TotalDays())
	return cal, nil
}

// Len returns the number of months (0 for the zero value).
func (c Calendar) Len() int {
	return len(c.months)
}

// Months returns a copy of the month list.
func (c Calendar) Months() []Month {
	out := make([]Month, len(c.months))
	copy(out, c.months)
	return out
}

// Month returns the 1-based month.
func (c Calendar) Month(month int) (Month, bool) {
	if month < 1 || month > len(c.months) {
		return Month{}, false
	}
	return c.months[month-1], true
}

// DaysIn returns the day count of the 1-based month, or 0 when out of range.
func (c Calendar) DaysIn(month int) int {
	m, ok := c.Month(month)
	if !ok {
		return 0
	}
	return m.Days
}

// Contains reports whether month/day (both 1-based) is a cell of the calendar.
func (c Calendar) Contains(month, day int) bool {
	return day >= 1 && day <= c.DaysIn(month)
}

// TotalDays is the number of day cells across all months.
func (c Calendar) TotalDays() int {
	n := 0
	for _, m := range c.months {
		n += m.Days
	}
	return n
}
