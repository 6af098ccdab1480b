package parser

import (
	"regexp"
	"strconv"
	"time"
)

// TwoDigitYearPivot splits two-digit years between centuries: values below
// the pivot expand to 20xx, the rest to 19xx.
const TwoDigitYearPivot = 70

var datePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})$`)

// leadingDatePattern matches a dd/mm/yy[yy] date at the start of a line,
// tolerating the dash separator some OCR output produces.
var leadingDatePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})\b`)

// NormalizeDate parses a dd/mm/yy or dd/mm/yyyy token. Two-digit years
// expand around TwoDigitYearPivot. Returns false for anything that is not a
// calendar date.
func NormalizeDate(s string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if len(m[3]) == 2 {
		if year < TwoDigitYearPivot {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// LeadingDate extracts a date token from the start of a line, returning the
// parsed date and the rest of the line.
func LeadingDate(line string) (time.Time, string, bool) {
	m := leadingDatePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, line, false
	}
	t, ok := NormalizeDate(m[0])
	if !ok {
		return time.Time{}, line, false
	}
	return t, line[len(m[0]):], true
}

// FormatDate renders a date the way statements print them. The zero time
// renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
