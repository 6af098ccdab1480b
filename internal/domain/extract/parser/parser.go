// Package parser defines the contract every institution parser implements
// and the registry that dispatches by bank code. Parsers turn raw reader
// content into canonical statement rows; malformed rows are omitted and
// recorded, never fatal.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/bank"
	"github.com/FACorreiaa/statement-ledger/internal/pdfio"
)

// Transaction is one canonical statement row. A zero Date marks a balance
// or undated row. Movement rows have exactly one of Debit/Credit non-zero;
// balance rows have both zero and carry only Balance.
type Transaction struct {
	Date        time.Time
	Description string
	Reference   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
	Currency    string
	Month       int
	Year        int
}

// IsBalanceRow reports whether the row carries no movement.
func (t Transaction) IsBalanceRow() bool {
	return t.Debit.IsZero() && t.Credit.IsZero()
}

// Statement is the canonical table parsed from one document. Rows preserve
// source order until the consolidator resorts them.
type Statement struct {
	Bank       bank.Code
	Company    string
	Period     string
	Currency   string
	SourceFile string
	Rows       []Transaction
	Errors     []RowError
}

// RowError records one row that failed to normalize and was omitted.
type RowError struct {
	Line int
	Raw  string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v (%q)", e.Line, e.Err, e.Raw)
}

// ErrKeywordCollision marks a movement line matching both the debit and the
// credit hint tables; such rows are dropped and surfaced instead of guessed.
var ErrKeywordCollision = errors.New("line matches both debit and credit keyword hints")

// Content is whatever the reader produced for a document: text lines and/or
// raw tabular blocks.
type Content struct {
	Lines  []string
	Tables []pdfio.Table
}

// StatementParser is the contract every institution parser implements.
type StatementParser interface {
	Parse(content Content) (Statement, error)
}

// Detector is optionally implemented by parsers that can recognize their
// institution from raw text or a filename.
type Detector interface {
	Detect(text, filename string) bool
}

// Registry maps institution codes to parsers, with a mandatory generic
// fallback for unknown codes and failing parsers.
type Registry struct {
	parsers  map[bank.Code]StatementParser
	order    []bank.Code
	fallback StatementParser
	log      *slog.Logger
}

// NewRegistry builds a registry with the generic fallback and the built-in
// institution parsers registered.
func NewRegistry(log *slog.Logger) *Registry {
	r := &Registry{
		parsers:  make(map[bank.Code]StatementParser),
		fallback: NewGenericParser(),
		log:      log,
	}
	r.Register("MACRO", NewMacroParser())
	return r
}

// Register installs a parser for an institution code, replacing any
// previous one.
func (r *Registry) Register(code bank.Code, p StatementParser) {
	if _, exists := r.parsers[code]; !exists {
		r.order = append(r.order, code)
	}
	r.parsers[code] = p
}

// Lookup returns the parser for a code, falling back to the generic parser.
func (r *Registry) Lookup(code bank.Code) StatementParser {
	if p, ok := r.parsers[code]; ok {
		return p
	}
	return r.fallback
}

// DetectBank asks each registered parser that implements Detector whether
// the document is theirs. Returns CodeGeneric when none claims it.
func (r *Registry) DetectBank(text, filename string) bank.Code {
	for _, code := range r.order {
		d, ok := r.parsers[code].(Detector)
		if !ok {
			continue
		}
		if claimed := safeDetect(d, text, filename); claimed {
			return code
		}
	}
	return bank.CodeGeneric
}

// Dispatch parses content with the parser registered for code. A failing or
// panicking institution parser degrades to the generic fallback; a failing
// fallback degrades to an empty statement. Dispatch never returns an error.
func (r *Registry) Dispatch(code bank.Code, content Content) Statement {
	p := r.Lookup(code)

	st, err := safeParse(p, content)
	if err != nil && p != r.fallback {
		r.log.Warn("institution parser failed, using generic fallback",
			slog.String("bank", code), slog.Any("error", err))
		st, err = safeParse(r.fallback, content)
	}
	if err != nil {
		r.log.Error("parser failed, emitting empty statement",
			slog.String("bank", code), slog.Any("error", err))
		return Statement{Bank: code}
	}

	if st.Bank == "" {
		st.Bank = code
	}
	return st
}

func safeParse(p StatementParser, content Content) (st Statement, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parser panic: %v", rec)
		}
	}()
	return p.Parse(content)
}

func safeDetect(d Detector, text, filename string) (claimed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			claimed = false
		}
	}()
	return d.Detect(text, filename)
}
