package ui

import (
	"strconv"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits from the keyboard.
// Pasted text is not filtered; attach a Validator where that matters.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates a new instance of NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything but 0-9.
func (e *NumericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// Value returns the entry as a non-negative integer, or fallback when the
// text is empty or not a number.
func (e *NumericalEntry) Value(fallback int) int {
	n, err := strconv.Atoi(e.Text)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// SetValue replaces the text with n.
func (e *NumericalEntry) SetValue(n int) {
	e.SetText(strconv.Itoa(n))
}
