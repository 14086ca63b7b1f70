package engine

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/tartampluch/birthday-heatmap/internal/config"
	"github.com/teambition/rrule-go"
)

// uidNamespace seeds the name-based UUIDs used as event UIDs, so that a given
// person keeps the same UID across exports.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.UIDNamespace))

// EncodeCalendar renders people as an iCalendar feed with one yearly
// recurring all-day event per person whose birthday has a usable month/day.
func (g *Generator) EncodeCalendar(people []Person) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := time.Now()
	if g.Clock != nil {
		now = g.Clock.Now()
	}
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, p := range people {
		start, ok := g.firstOccurrence(p.Birthday)
		if !ok {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, eventUID(p))
		event.Props.SetText(config.PropSummary, fmt.Sprintf(config.FallbackSummary, p.Name))
		event.Props.Set(dtStampProp)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(start)
		event.Props.Set(dtStartProp)
		event.Props.SetRecurrenceRule(&rrule.ROption{Freq: rrule.YEARLY})

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgExported,
		config.LogKeyComponent, config.CompExport,
		config.LogKeyFormat, config.ExtICS,
		config.LogKeyRecords, len(cal.Children))
	return buf.Bytes(), nil
}

// firstOccurrence returns the date of the first event of a birthday series.
// The birth year is used when it parses, otherwise the leap-year fallback.
// Month/day must be a cell of the generator's calendar.
func (g *Generator) firstOccurrence(birthday string) (time.Time, bool) {
	month, day, ok := parseMonthDay(birthday)
	if !ok || !g.calendar().Contains(month, day) {
		return time.Time{}, false
	}

	year := config.DefaultLeapYear
	if y, ok := parseLeadingInt(strings.SplitN(birthday, config.BirthdaySeparator, 2)[0]); ok && y > 0 {
		year = y
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// Feb 29 in a non-leap birth year: anchor the series on a leap year.
		t = time.Date(config.DefaultLeapYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}
	return t, true
}

func eventUID(p Person) string {
	input := fmt.Sprintf(config.FormatUIDInput, p.Name, p.Birthday)
	return fmt.Sprintf(config.FormatUID, uuid.NewSHA1(uidNamespace, []byte(input)), config.ICalDomain)
}

// EncodeCards writes people as vCard 4.0. People lacking a name or a birthday
// are left out, matching what ParseCards would keep.
func EncodeCards(w io.Writer, people []Person) error {
	enc := vcard.NewEncoder(w)
	written := 0
	for _, p := range people {
		if p.Name == "" || p.Birthday == "" {
			continue
		}

		card := make(vcard.Card)
		card.SetValue(vcard.FieldFormattedName, p.Name)
		card.SetValue(vcard.FieldBirthday, p.Birthday)
		vcard.ToV4(card)

		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
		written++
	}

	slog.Debug(config.MsgExported,
		config.LogKeyComponent, config.CompExport,
		config.LogKeyFormat, config.ExtVCF,
		config.LogKeyRecords, written)
	return nil
}
