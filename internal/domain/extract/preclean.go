package extract

import (
	"regexp"
	"strings"
)

// Boilerplate lines banks print on every page. Dropped before parsing so
// page furniture never reaches the row heuristics.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*hoja\s*\d+(\s*/\s*\d+)?\s*$`),
	regexp.MustCompile(`(?i)^\s*p[aáà]gina\s*\d+(\s*/\s*\d+)?\s*$`),
	regexp.MustCompile(`(?i)^\s*fecha de descarga\s*$`),
	regexp.MustCompile(`(?i)^\s*home banking\s*$`),
	regexp.MustCompile(`(?i)^\s*contact( center)?\s*$`),
}

var innerSpaces = regexp.MustCompile(`[ \t]+`)

func lightline(line string) string {
	line = strings.ReplaceAll(line, "\u00a0", " ")
	return strings.TrimSpace(innerSpaces.ReplaceAllString(line, " "))
}

func isProbablyNoise(line string) bool {
	if len(line) < 3 {
		return true
	}
	for _, p := range noisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// precleanLines normalizes whitespace and strips page furniture.
func precleanLines(lines []string) []string {
	var out []string
	for _, ln := range lines {
		ln = lightline(ln)
		if ln == "" || isProbablyNoise(ln) {
			continue
		}
		out = append(out, ln)
	}
	return out
}
