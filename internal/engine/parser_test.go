package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-heatmap/internal/engine"
)

// -----------------------------------------------------------------------------
// Delimited Text
// -----------------------------------------------------------------------------

func TestParseDelimited_Basic(t *testing.T) {
	people := engine.ParseDelimited("Alice;1990-05-02\nBob;1985-12-25")

	assert.Equal(t, []engine.Person{
		{Name: "Alice", Birthday: "1990-05-02"},
		{Name: "Bob", Birthday: "1985-12-25"},
	}, people)
}

func TestParseDelimited_Cases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []engine.Person
	}{
		{
			name:  "Windows line endings are stripped",
			input: "Alice;1990-05-02\r\nBob;1985-12-25\r\n",
			want: []engine.Person{
				{Name: "Alice", Birthday: "1990-05-02"},
				{Name: "Bob", Birthday: "1985-12-25"},
			},
		},
		{
			name:  "Missing birthday is kept with an empty field",
			input: "Carol\nDan;2001-01-01",
			want: []engine.Person{
				{Name: "Carol", Birthday: ""},
				{Name: "Dan", Birthday: "2001-01-01"},
			},
		},
		{
			name:  "Blank lines are ignored",
			input: "\n\nAlice;1990-05-02\n\r\n\n",
			want:  []engine.Person{{Name: "Alice", Birthday: "1990-05-02"}},
		},
		{
			name:  "Extra fields are ignored",
			input: "Eve;1970-07-07;friend;extra",
			want:  []engine.Person{{Name: "Eve", Birthday: "1970-07-07"}},
		},
		{
			name:  "Duplicates are not merged",
			input: "Sam;2000-01-01\nSam;2000-01-01",
			want: []engine.Person{
				{Name: "Sam", Birthday: "2000-01-01"},
				{Name: "Sam", Birthday: "2000-01-01"},
			},
		},
		{
			name:  "Garbage birthday is passed through untouched",
			input: "Zed;not a date",
			want:  []engine.Person{{Name: "Zed", Birthday: "not a date"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ParseDelimited(tt.input))
		})
	}
}

func TestParseDelimited_Empty(t *testing.T) {
	assert.Empty(t, engine.ParseDelimited(""))
	assert.Empty(t, engine.ParseDelimited("\r\n\n"))
}

// -----------------------------------------------------------------------------
// Cards
// -----------------------------------------------------------------------------

func TestParseCards_DropsIncompleteCards(t *testing.T) {
	blob := "BEGIN:VCARD\nVERSION:3.0\nFN:John Doe\nBDAY:2000-01-01\nEND:VCARD\n" +
		"BEGIN:VCARD\nVERSION:3.0\nFN:No Birthday\nEND:VCARD\n"

	people := engine.ParseCards(blob)

	require.Len(t, people, 1)
	assert.Equal(t, engine.Person{Name: "John Doe", Birthday: "2000-01-01"}, people[0])
}

func TestParseCards_Cases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []engine.Person
	}{
		{
			name:  "CRLF values are trimmed",
			input: "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Jane Doe\r\nBDAY:1990-05-02\r\nEND:VCARD\r\n",
			want:  []engine.Person{{Name: "Jane Doe", Birthday: "1990-05-02"}},
		},
		{
			name:  "Preamble before the first marker is discarded",
			input: "FN:Ghost BDAY:1900-01-01\nBEGIN:VCARD\nFN:Real\nBDAY:1980-03-03\nEND:VCARD",
			want:  []engine.Person{{Name: "Real", Birthday: "1980-03-03"}},
		},
		{
			name:  "Missing name drops the card",
			input: "BEGIN:VCARD\nBDAY:1980-03-03\nEND:VCARD",
			want:  nil,
		},
		{
			name:  "Empty name drops the card",
			input: "BEGIN:VCARD\nFN:\nBDAY:1980-03-03\nEND:VCARD",
			want:  nil,
		},
		{
			name:  "First occurrence wins",
			input: "BEGIN:VCARD\nFN:First\nFN:Second\nBDAY:1980-03-03\nBDAY:1999-09-09\nEND:VCARD",
			want:  []engine.Person{{Name: "First", Birthday: "1980-03-03"}},
		},
		{
			name: "Order follows input",
			input: "BEGIN:VCARD\nFN:B\nBDAY:2000-02-02\nEND:VCARD\n" +
				"BEGIN:VCARD\nFN:A\nBDAY:2000-01-01\nEND:VCARD\n",
			want: []engine.Person{
				{Name: "B", Birthday: "2000-02-02"},
				{Name: "A", Birthday: "2000-01-01"},
			},
		},
		{
			name:  "No marker at all",
			input: "FN:Loose\nBDAY:1990-01-01",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ParseCards(tt.input))
		})
	}
}

// -----------------------------------------------------------------------------
// Format Resolution
// -----------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	tests := []struct {
		tag     string
		want    engine.Format
		wantErr bool
	}{
		{"text/csv", engine.FormatDelimited, false},
		{"csv", engine.FormatDelimited, false},
		{"text/vcard", engine.FormatCards, false},
		{"text/vcard; charset=utf-8", engine.FormatCards, false},
		{"TEXT/X-VCARD", engine.FormatCards, false},
		{"vcf", engine.FormatCards, false},
		{"application/json", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := engine.ParseFormat(tt.tag)
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    engine.Format
		wantErr bool
	}{
		{"people.csv", engine.FormatDelimited, false},
		{"notes.txt", engine.FormatDelimited, false},
		{"/home/me/Contacts.VCF", engine.FormatCards, false},
		{"export.vcard", engine.FormatCards, false},
		{"https://dav.example.com/book/all.vcf?token=secret", engine.FormatCards, false},
		{"readme.md", "", true},
		{"no-extension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.DetectFormat(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSniffFormat(t *testing.T) {
	assert.Equal(t, engine.FormatCards, engine.SniffFormat("junk\nBEGIN:VCARD\nFN:x\n"))
	assert.Equal(t, engine.FormatDelimited, engine.SniffFormat("Alice;1990-05-02"))
	assert.Equal(t, engine.FormatDelimited, engine.SniffFormat(""))
}

func TestParse_Dispatch(t *testing.T) {
	people, err := engine.Parse(engine.FormatDelimited, "A;2000-01-01")
	require.NoError(t, err)
	assert.Len(t, people, 1)

	people, err = engine.Parse(engine.FormatCards, "BEGIN:VCARD\nFN:A\nBDAY:2000-01-01\nEND:VCARD")
	require.NoError(t, err)
	assert.Len(t, people, 1)

	_, err = engine.Parse(engine.Format("application/pdf"), "whatever")
	assert.ErrorIs(t, err, engine.ErrUnsupportedFormat)
}
