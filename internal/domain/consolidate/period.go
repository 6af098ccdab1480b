package consolidate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = []string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

var (
	monthYearPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(monthNames, "|") + `)\s*[-—]\s*(\d{4})\b`)
	looseDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
)

// InferPeriod resolves the (year, month) a statement belongs to. Explicit
// values win, then the earliest parsed row, then period markers in the raw
// text. Returns (0, 0) when nothing applies.
func InferPeriod(in Input) (year, month int) {
	if in.Year != 0 && in.Month != 0 {
		return in.Year, in.Month
	}

	minY, minM := 0, 0
	for _, tx := range in.Statement.Rows {
		if tx.Year == 0 || tx.Month == 0 {
			continue
		}
		if minY == 0 || tx.Year < minY || (tx.Year == minY && tx.Month < minM) {
			minY, minM = tx.Year, tx.Month
		}
	}
	if minY != 0 {
		return minY, minM
	}

	var earliest time.Time
	for _, tx := range in.Statement.Rows {
		if tx.Date.IsZero() {
			continue
		}
		if earliest.IsZero() || tx.Date.Before(earliest) {
			earliest = tx.Date
		}
	}
	if !earliest.IsZero() {
		return earliest.Year(), int(earliest.Month())
	}

	for _, line := range in.RawLines {
		if m := monthYearPattern.FindStringSubmatch(line); m != nil {
			name := strings.ToUpper(m[1])
			y, _ := strconv.Atoi(m[2])
			for i, mn := range monthNames {
				if mn == name {
					return y, i + 1
				}
			}
		}
	}

	for _, line := range in.RawLines {
		m := looseDatePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if y < 100 {
			y += 2000
		}
		if mo >= 1 && mo <= 12 {
			return y, mo
		}
	}

	return 0, 0
}
