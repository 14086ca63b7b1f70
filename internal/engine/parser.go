package engine

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/tartampluch/birthday-heatmap/internal/config"
)

// Format identifies one of the supported input encodings.
type Format string

const (
	FormatDelimited Format = config.MimeCSV
	FormatCards     Format = config.MimeVCard
)

// ErrUnsupportedFormat is returned when a format tag or file name cannot be mapped to a decoder.
var ErrUnsupportedFormat = errors.New(config.ErrFormatUnsupport)

var (
	cardNameRe = regexp.MustCompile(config.CardNamePattern)
	cardBdayRe = regexp.MustCompile(config.CardBdayPattern)
)

// ParseDelimited decodes "name;birthday" lines.
// Every non-empty line yields a Person. A line without a birthday field is kept
// with an empty Birthday; the aggregator skips it later.
func ParseDelimited(text string) []Person {
	var people []Person
	for _, line := range strings.Split(text, config.LineSeparator) {
		p, ok := decodeDelimitedLine(line)
		if !ok {
			continue
		}
		people = append(people, p)
	}
	return people
}

// decodeDelimitedLine returns false only for blank lines.
func decodeDelimitedLine(line string) (Person, bool) {
	line = strings.TrimSuffix(line, config.CarriageReturn)
	if line == "" {
		return Person{}, false
	}

	fields := strings.Split(line, config.DelimitedSeparator)
	p := Person{Name: fields[0]}
	if len(fields) > 1 {
		p.Birthday = fields[1]
	}
	return p, true
}

// ParseCards extracts FN and BDAY from every BEGIN:VCARD block.
// Unlike ParseDelimited, a card missing either field is dropped.
func ParseCards(text string) []Person {
	chunks := strings.Split(text, config.CardBeginMarker)
	if len(chunks) < 2 {
		return nil
	}

	var people []Person
	// chunks[0] is whatever precedes the first marker.
	for _, chunk := range chunks[1:] {
		p, ok := decodeCard(chunk)
		if !ok {
			continue
		}
		people = append(people, p)
	}
	return people
}

func decodeCard(chunk string) (Person, bool) {
	name, ok := firstCapture(cardNameRe, chunk)
	if !ok {
		return Person{}, false
	}
	bday, ok := firstCapture(cardBdayRe, chunk)
	if !ok {
		return Person{}, false
	}
	return Person{Name: name, Birthday: bday}, true
}

// firstCapture returns the first submatch of re in s, without a trailing CR.
// An empty capture counts as missing.
func firstCapture(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	v := strings.TrimSuffix(m[1], config.CarriageReturn)
	return v, v != ""
}

// ParseFormat maps a declared format tag (MIME type or short name) to a Format.
func ParseFormat(tag string) (Format, error) {
	t := strings.ToLower(strings.TrimSpace(tag))
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		t = mt
	}

	switch t {
	case config.MimeCSV, config.FormatNameCSV:
		return FormatDelimited, nil
	case config.MimeVCard, config.MimeVCardX, config.FormatNameVCF, config.FormatNameCard:
		return FormatCards, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

// DetectFormat picks a Format from a file name or URL path extension.
func DetectFormat(name string) (Format, error) {
	// Drop a query string so that "people.vcf?token=x" still resolves.
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	switch strings.ToLower(path.Ext(name)) {
	case config.ExtCSV, config.ExtTXT:
		return FormatDelimited, nil
	case config.ExtVCF, config.ExtVCard:
		return FormatCards, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// SniffFormat guesses the format from the content itself.
func SniffFormat(text string) Format {
	if strings.Contains(text, config.CardBeginMarker) {
		return FormatCards
	}
	return FormatDelimited
}

// Parse decodes text with the decoder registered for format.
func Parse(format Format, text string) ([]Person, error) {
	switch format {
	case FormatDelimited:
		return ParseDelimited(text), nil
	case FormatCards:
		return ParseCards(text), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}
