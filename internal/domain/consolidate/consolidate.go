// Package consolidate merges parsed statements from many files into one
// ordered table. Ordering is bank, then year, then month, then date, with a
// stable fallback on input order so reruns over the same files produce
// byte-identical output.
package consolidate

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/parser"
)

// UnknownBank labels rows whose institution could not be resolved.
const UnknownBank = "DESCONOCIDO"

// Input is one parsed statement plus the context needed to place its rows.
// Year and Month, when set, override period inference.
type Input struct {
	Statement parser.Statement
	RawLines  []string
	Year      int
	Month     int
}

// Row is one consolidated output row. Exported fields are the display
// columns, in output order; unexported fields carry the sort keys.
type Row struct {
	Date      string `csv:"fecha"`
	Month     string `csv:"mes"`
	Year      string `csv:"año"`
	Detail    string `csv:"detalle"`
	Reference string `csv:"referencia"`
	Debit     string `csv:"debito"`
	Credit    string `csv:"credito"`
	Balance   string `csv:"saldo"`
	Currency  string `csv:"moneda"`
	Bank      string `csv:"banco"`
	Company   string `csv:"empresa"`
	Period    string `csv:"periodo"`
	File      string `csv:"archivo"`

	debit   decimal.Decimal
	credit  decimal.Decimal
	balance decimal.Decimal

	bankKey  string
	year     int
	month    int
	sortDate time.Time
	input    int
	seq      int
}

// Consolidator merges statements into the final ordered table.
type Consolidator struct {
	log *slog.Logger
}

// New returns a Consolidator.
func New(log *slog.Logger) *Consolidator {
	return &Consolidator{log: log}
}

// Consolidate flattens the inputs into rows and applies the final ordering.
// Consolidating the same inputs twice yields the same row sequence.
func (c *Consolidator) Consolidate(inputs []Input) []Row {
	var rows []Row
	for i, in := range inputs {
		year, month := InferPeriod(in)
		bankKey := NormalizeBank(in.Statement.Bank)
		if len(in.Statement.Rows) > 0 {
			c.log.Info("consolidating statement",
				slog.String("bank", bankKey),
				slog.String("file", in.Statement.SourceFile),
				slog.Int("year", year),
				slog.Int("month", month),
				slog.Int("rows", len(in.Statement.Rows)))
		}

		anchor := monthAnchor(year, month)
		lastDate := time.Time{}
		for seq, tx := range in.Statement.Rows {
			row := newRow(in.Statement, tx, year, month)
			row.bankKey = bankKey
			row.Bank = bankKey
			row.input = i
			row.seq = seq

			switch {
			case !tx.Date.IsZero():
				row.sortDate = tx.Date
				lastDate = tx.Date
			case !lastDate.IsZero():
				// Undated rows ride on the preceding dated row so closing
				// balances stay at the end of their statement.
				row.sortDate = lastDate
			default:
				row.sortDate = anchor
			}

			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return less(rows[a], rows[b])
	})
	return rows
}

// less orders rows by bank, year, month, date, then input order. A missing
// value on any key sorts after present values of that key.
func less(a, b Row) bool {
	if a.bankKey != b.bankKey {
		return a.bankKey < b.bankKey
	}
	if a.year != b.year {
		return intZeroLast(a.year, b.year)
	}
	if a.month != b.month {
		return intZeroLast(a.month, b.month)
	}
	if !a.sortDate.Equal(b.sortDate) {
		return dateZeroLast(a.sortDate, b.sortDate)
	}
	if a.input != b.input {
		return a.input < b.input
	}
	return a.seq < b.seq
}

func intZeroLast(a, b int) bool {
	if a == 0 {
		return false
	}
	if b == 0 {
		return true
	}
	return a < b
}

func dateZeroLast(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	if b.IsZero() {
		return true
	}
	return a.Before(b)
}

func newRow(st parser.Statement, tx parser.Transaction, year, month int) Row {
	rowYear, rowMonth := tx.Year, tx.Month
	if rowYear == 0 {
		rowYear = year
	}
	if rowMonth == 0 {
		rowMonth = month
	}

	r := Row{
		Date:      parser.FormatDate(tx.Date),
		Month:     intField(tx.Month),
		Year:      intField(tx.Year),
		Detail:    tx.Description,
		Reference: tx.Reference,
		Debit:     amountField(tx.Debit),
		Credit:    amountField(tx.Credit),
		Balance:   amountField(tx.Balance),
		Currency:  tx.Currency,
		Company:   st.Company,
		Period:    st.Period,
		File:      st.SourceFile,

		debit:   tx.Debit,
		credit:  tx.Credit,
		balance: tx.Balance,

		year:  rowYear,
		month: rowMonth,
	}
	if r.Currency == "" {
		r.Currency = st.Currency
	}
	return r
}

func intField(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func amountField(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

func monthAnchor(year, month int) time.Time {
	if year == 0 || month == 0 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// Institutions whose names appear with enough OCR noise and branding
// variants to need substring normalization.
var bankSubstrings = []string{
	"COMAFI", "ICBC", "MACRO", "GALICIA", "SANTANDER", "BBVA", "HSBC",
}

// NormalizeBank collapses institution name variants to a canonical label.
// Unknown but non-empty names pass through cleaned; empty ones become
// UnknownBank.
func NormalizeBank(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return UnknownBank
	}
	for _, known := range bankSubstrings {
		if strings.Contains(s, known) {
			return known
		}
	}
	return s
}
