// Package bank resolves which institution issued a statement. Filenames are
// trusted over document content because statement bodies routinely mention
// unrelated institutions (transfer counterparties, card networks).
package bank

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Code identifies an institution. CodeGeneric is the unknown sentinel that
// routes to the fallback parser.
type Code = string

// CodeGeneric is returned when no institution could be resolved.
const CodeGeneric Code = "GENERIC"

// maxFuzzyRank bounds how much OCR noise a filename token may carry and
// still match an allow-listed bank.
const maxFuzzyRank = 2

// FileMetadata is the structured metadata recovered from a
// COMPANY-BANK-[EXTRAS]-PERIOD filename.
type FileMetadata struct {
	Company string
	Bank    Code
	Extras  []string
	Period  string
}

// IsZero reports whether the filename pattern failed to match.
func (m FileMetadata) IsZero() bool {
	return m.Company == "" && m.Bank == "" && m.Period == ""
}

// Classifier resolves institution codes from filenames and text samples.
type Classifier struct {
	aliases *aliasEngine
	log     *slog.Logger
}

// NewClassifier builds a classifier with the default alias tables.
func NewClassifier(log *slog.Logger) *Classifier {
	return &Classifier{aliases: newAliasEngine(bankAliases), log: log}
}

// Classify resolves an institution code in priority order: structured
// filename metadata, filename token scan, filename alias scan, content alias
// scan, generic.
func (c *Classifier) Classify(filename, textSample string) (Code, FileMetadata) {
	meta := ParseFilenameMetadata(filename)
	if meta.Bank != "" {
		return meta.Bank, meta
	}

	if code := detectFromFilenameTokens(filename); code != "" {
		c.log.Debug("bank matched from filename token",
			slog.String("file", filename), slog.String("bank", code))
		return code, meta
	}

	if code := c.aliases.Match(filenameAliasText(filename)); code != "" {
		c.log.Debug("bank matched from filename alias",
			slog.String("file", filename), slog.String("bank", code))
		return code, meta
	}

	if code := c.aliases.Match(textSample); code != "" {
		c.log.Debug("bank matched from content alias", slog.String("bank", code))
		return code, meta
	}

	return CodeGeneric, meta
}

// filenameAliasText prepares a filename for alias matching: separators become
// spaces so multi-word phrases like "MERCADO PAGO" can hit.
func filenameAliasText(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(stem)
}

var periodSeparators = regexp.MustCompile(`[-/]{2,}`)

// ParseFilenameMetadata parses the COMPANY-BANK-[EXTRAS]-PERIOD convention:
// COMPANY, BANK and PERIOD are mandatory, EXTRAS (account number, type) are
// optional, and PERIOD may combine months and years (SEP+OCT+NOV2025,
// ENE-JUNIO2025). Returns the zero value when the pattern does not hold.
func ParseFilenameMetadata(filename string) FileMetadata {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := strings.ToUpper(stem)
	name = strings.NewReplacer("_", "-", " ", "-").Replace(name)

	var parts []string
	for _, p := range strings.Split(name, "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 3 {
		return FileMetadata{}
	}

	bankIdx := -1
	for i, part := range parts {
		for _, known := range KnownBanks {
			if part == known {
				bankIdx = i
				break
			}
		}
		if bankIdx >= 0 {
			break
		}
	}
	if bankIdx < 0 || bankIdx >= len(parts)-1 {
		return FileMetadata{}
	}

	company := strings.Join(parts[:bankIdx], "-")
	var extras []string
	if len(parts) > bankIdx+2 {
		extras = parts[bankIdx+1 : len(parts)-1]
	}

	period := parts[len(parts)-1]
	period = strings.NewReplacer("+", "/", "_", "/").Replace(period)
	period = periodSeparators.ReplaceAllString(period, "/")

	if !containsMonthToken(period) && !containsYear(period) && len(parts) > bankIdx+1 {
		period = parts[len(parts)-2] + "-" + parts[len(parts)-1]
	}

	return FileMetadata{
		Company: titleCase(company),
		Bank:    parts[bankIdx],
		Extras:  extras,
		Period:  titleCase(period),
	}
}

// detectFromFilenameTokens scans filename segments against the allow-list:
// exact substring first, then a tight fuzzy match to absorb OCR noise in
// scanned-and-renamed files.
func detectFromFilenameTokens(filename string) Code {
	if filename == "" {
		return ""
	}
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := strings.ToUpper(stem)
	name = strings.NewReplacer("_", "-", " ", "-").Replace(name)

	tokens := strings.Split(name, "-")
	for _, token := range tokens {
		for _, known := range KnownBanks {
			if strings.Contains(token, known) {
				return known
			}
		}
	}
	for _, token := range tokens {
		if len(token) < 3 {
			continue
		}
		for _, known := range KnownBanks {
			if rank := fuzzy.RankMatchFold(known, token); rank >= 0 && rank <= maxFuzzyRank {
				return known
			}
		}
	}
	return ""
}

var yearPattern = regexp.MustCompile(`\d{4}`)

func containsYear(s string) bool {
	return yearPattern.MatchString(s)
}

func containsMonthToken(s string) bool {
	for _, m := range monthTokens {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == ' ' || r == '-' || r == '/' || r == '_':
			upperNext = true
			b.WriteRune(r)
		case upperNext:
			b.WriteString(strings.ToUpper(string(r)))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
