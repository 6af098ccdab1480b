// Package money normalizes locale-formatted statement amounts into exact
// decimals and validates ISO-4217 currency codes. Argentine statements use
// `.` as thousands separator and `,` as decimal separator, with negatives
// written as a leading `-`, a trailing `-`, or parentheses.
package money

import (
	"fmt"
	"regexp"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed whenever a statement carries no currency marker.
const DefaultCurrency = "ARS"

var (
	// AmountPattern matches locale-formatted amounts inside free text,
	// e.g. "1.234.567,89", "-$ 200,00", "1 000,00".
	AmountPattern = regexp.MustCompile(`-?(?:\$\s?)?\d{1,3}(?:[.\s]\d{3})*,\d{2}-?`)

	// StrictAmountPattern matches a bare amount with no symbols, used to pick
	// balances off "SALDO AL ..." lines.
	StrictAmountPattern = regexp.MustCompile(`-?\d{1,3}(?:\.\d{3})*,\d{2}-?`)
)

// unicode minus lookalikes that OCR output tends to produce
var minusReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-")

// ParseStatementAmount converts a locale-formatted amount string into a
// signed decimal. It accepts currency symbols, NBSP padding, parenthesized
// negatives and trailing minus signs.
func ParseStatementAmount(s string) (decimal.Decimal, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	t = minusReplacer.Replace(t)
	t = strings.ReplaceAll(t, "\u00a0", " ")
	t = strings.ReplaceAll(t, "$", "")
	t = strings.ReplaceAll(t, " ", "")

	neg := false
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		neg = true
		t = strings.TrimSuffix(strings.TrimPrefix(t, "("), ")")
	}
	if strings.HasPrefix(t, "-") || strings.HasSuffix(t, "-") {
		neg = true
	}
	t = strings.ReplaceAll(t, "-", "")

	// thousands `.` out, decimal `,` to `.`
	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, ",", ".")

	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// NormalizeCurrency uppercases a currency code and validates it against the
// ISO-4217 table. Unknown or empty codes fall back to DefaultCurrency.
func NormalizeCurrency(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return DefaultCurrency
	}
	if gomoney.GetCurrency(c) == nil {
		return DefaultCurrency
	}
	return c
}
