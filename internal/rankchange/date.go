package rankchange

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate parses a free-form upstream date into a calendar date at UTC
// midnight. All-digit input is read as YYYYMMDD (8 digits), epoch seconds
// (9-11 digits) or epoch milliseconds (12+ digits); anything else goes
// through dateparse, with zone-less values read as UTC.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &FormatError{Field: "date", Reason: "empty date"}
	}

	// pandas to_json 은 epoch ms 로 내려줌
	if isDigits(s) {
		return parseNumericDate(s)
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, &FormatError{Field: "date", Value: raw, Reason: "unrecognized date format"}
	}
	return calendarDate(t), nil
}

// FormatDisplay renders a calendar date as month-day
func FormatDisplay(t time.Time) string {
	return t.Format(DisplayLayout)
}

func parseNumericDate(s string) (time.Time, error) {
	switch {
	case len(s) == 8:
		t, err := time.Parse("20060102", s)
		if err != nil {
			return time.Time{}, &FormatError{Field: "date", Value: s, Reason: "invalid YYYYMMDD date"}
		}
		return t, nil
	case len(s) >= 9 && len(s) <= 11:
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, &FormatError{Field: "date", Value: s, Reason: "invalid epoch seconds"}
		}
		return calendarDate(time.Unix(sec, 0).UTC()), nil
	case len(s) >= 12 && len(s) <= 16:
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, &FormatError{Field: "date", Value: s, Reason: "invalid epoch milliseconds"}
		}
		return calendarDate(time.UnixMilli(ms).UTC()), nil
	}
	return time.Time{}, &FormatError{Field: "date", Value: s, Reason: "unrecognized numeric date"}
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
