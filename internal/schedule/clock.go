package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinutesPerDay = 24 * 60

	// DefaultDurationMinutes is used for appointments booked without a length.
	DefaultDurationMinutes = 30
)

// ParseError reports a wall-clock value that could not be read.
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Value, e.Reason)
}

// InvalidDurationError reports a negative appointment length.
type InvalidDurationError struct {
	ID       string
	Duration int
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %d for appointment %q: must not be negative", e.Duration, e.ID)
}

// MissingRecordError reports a null entry in an appointment list.
type MissingRecordError struct {
	Index int
}

func (e *MissingRecordError) Error() string {
	return fmt.Sprintf("appointment %d is missing", e.Index)
}

// ParseClock converts a wall-clock string into minutes since midnight.
//
// The canonical form is 24-hour "H:MM" or "HH:MM". A trailing AM/PM marker
// (any case, optional space) switches to 12-hour reading, so "9:30 PM" and
// "21:30" parse to the same value.
func ParseClock(s string) (int, error) {
	raw := s
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, &ParseError{Value: raw, Reason: "empty"}
	}

	meridiem := ""
	upper := strings.ToUpper(v)
	if strings.HasSuffix(upper, "AM") || strings.HasSuffix(upper, "PM") {
		meridiem = upper[len(upper)-2:]
		v = strings.TrimSpace(v[:len(v)-2])
	}

	hh, mm, ok := strings.Cut(v, ":")
	if !ok {
		return 0, &ParseError{Value: raw, Reason: "expected H:MM"}
	}
	if len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, &ParseError{Value: raw, Reason: "expected H:MM"}
	}

	if !digits(hh) || !digits(mm) {
		return 0, &ParseError{Value: raw, Reason: "expected H:MM"}
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 {
		return 0, &ParseError{Value: raw, Reason: "invalid hour"}
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, &ParseError{Value: raw, Reason: "minute out of range"}
	}

	switch meridiem {
	case "":
		if hour > 23 {
			return 0, &ParseError{Value: raw, Reason: "hour out of range"}
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, &ParseError{Value: raw, Reason: "hour out of range for 12-hour clock"}
		}
		hour %= 12
		if meridiem == "PM" {
			hour += 12
		}
	}

	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight in the canonical HH:MM form.
func FormatClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock parses s and returns its canonical form.
func NormalizeClock(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// ResolveDuration applies the default length to unset durations.
func ResolveDuration(id string, minutes int) (int, error) {
	switch {
	case minutes < 0:
		return 0, &InvalidDurationError{ID: id, Duration: minutes}
	case minutes == 0:
		return DefaultDurationMinutes, nil
	default:
		return minutes, nil
	}
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsInputError reports whether err stems from a malformed appointment
// record rather than an infrastructure failure.
func IsInputError(err error) bool {
	var pe *ParseError
	var de *InvalidDurationError
	var me *MissingRecordError
	return errors.As(err, &pe) || errors.As(err, &de) || errors.As(err, &me)
}
