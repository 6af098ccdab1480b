package parser

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-ledger/internal/pdfio"
	"github.com/FACorreiaa/statement-ledger/pkg/money"
)

// maxDescriptionLen caps row descriptions so one unsegmented OCR blob cannot
// swallow a whole page into a single cell.
const maxDescriptionLen = 200

// Keyword hints used to classify a movement line when the amount layout is
// ambiguous. A line matching both tables is dropped with ErrKeywordCollision.
var (
	genericDebitHints = []string{
		"DEBITO", "DÉBITO", "DEB.", "PAGO", "TRANSFERENCIA ENVIADA",
		"TRANSF. ENVIADA", "EXTRACCION", "EXTRACCIÓN", "RETIRO",
		"COMISION", "COMISIÓN", "IMPUESTO", "IVA", "PERCEPCION",
		"PERCEPCIÓN", "RETENCION", "RETENCIÓN", "CHEQUE PAGADO",
		"DEB. AUTOM", "DEBITO AUTOMATICO", "SIRCREB", "MANTENIMIENTO",
	}
	genericCreditHints = []string{
		"CREDITO", "CRÉDITO", "CRED.", "ACREDITACION", "ACREDITACIÓN",
		"DEPOSITO", "DEPÓSITO", "TRANSFERENCIA RECIBIDA",
		"TRANSF. RECIBIDA", "COBRO", "CHEQUE DEPOSITADO", "INTERESES GANADOS",
		"REINTEGRO", "DEVOLUCION", "DEVOLUCIÓN", "ACRED. HABERES",
	}
)

var (
	openingBalancePattern = regexp.MustCompile(`(?i)SALDO\s+(ANTERIOR|INICIAL|AL\s+INICIO)`)
	closingBalancePattern = regexp.MustCompile(`(?i)SALDO\s+(FINAL|ACTUAL|AL\s+CIERRE|AL\s+\d{1,2}[/-]\d{1,2})`)
	balanceKeywordPattern = regexp.MustCompile(`(?i)\bSALDO\b`)
	trailingRefPattern    = regexp.MustCompile(`(\d{6,})\s*$`)
)

// GenericParser is the fallback for institutions without a dedicated parser.
// It reads tabular blocks when the reader produced any, otherwise it
// normalizes text lines with layout heuristics shared by most statements.
type GenericParser struct{}

// NewGenericParser returns the shared fallback parser.
func NewGenericParser() *GenericParser {
	return &GenericParser{}
}

// Parse normalizes content into a statement. It never fails on malformed
// rows; those are omitted and recorded in Statement.Errors.
func (p *GenericParser) Parse(content Content) (Statement, error) {
	st := Statement{Currency: money.DefaultCurrency}

	if rows, errs, ok := p.parseTables(content.Tables); ok {
		st.Rows = rows
		st.Errors = errs
		return st, nil
	}

	st.Rows, st.Errors = p.parseLines(content.Lines)
	return st, nil
}

// parseLines walks text lines in order, turning dated movement lines and
// balance markers into rows.
func (p *GenericParser) parseLines(lines []string) ([]Transaction, []RowError) {
	var rows []Transaction
	var errs []RowError
	var opening, closing *Transaction

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		amounts := extractAmounts(line)

		if openingBalancePattern.MatchString(line) && len(amounts) > 0 {
			tx := balanceRow(line, amounts[len(amounts)-1])
			if opening == nil {
				opening = &tx
			}
			continue
		}
		if closingBalancePattern.MatchString(line) && len(amounts) > 0 {
			tx := balanceRow(line, amounts[len(amounts)-1])
			closing = &tx
			continue
		}

		date, rest, hasDate := LeadingDate(line)
		if !hasDate || len(amounts) == 0 {
			continue
		}

		tx, err := p.movementRow(date, line, rest, amounts)
		if err != nil {
			errs = append(errs, RowError{Line: i + 1, Raw: line, Err: err})
			continue
		}
		rows = append(rows, tx)
	}

	if opening != nil {
		rows = append([]Transaction{*opening}, rows...)
	}
	if closing != nil {
		rows = append(rows, *closing)
	}
	return rows, errs
}

// movementRow classifies the amounts on a dated line. Three amounts read as
// (debit, credit, balance); two as movement plus running balance, with the
// movement side decided by keyword hints, then sign, then magnitude; one as
// either a balance-only row or a signed movement.
func (p *GenericParser) movementRow(date time.Time, line, rest string, amounts []decimal.Decimal) (Transaction, error) {
	tx := Transaction{
		Date:     date,
		Currency: money.DefaultCurrency,
		Month:    int(date.Month()),
		Year:     date.Year(),
	}
	tx.Description, tx.Reference = describeLine(rest)

	switch {
	case len(amounts) >= 3:
		tx.Debit = amounts[0].Abs()
		tx.Credit = amounts[1].Abs()
		tx.Balance = amounts[2]
		if !tx.Debit.IsZero() && !tx.Credit.IsZero() {
			// Columnar layouts leave the unused side blank; two non-zero
			// movement cells means the columns were misread as one line.
			if tx.Debit.LessThan(tx.Credit) {
				tx.Credit = decimal.Zero
			} else {
				tx.Debit = decimal.Zero
			}
		}
	case len(amounts) == 2:
		movement, balance := amounts[0], amounts[1]
		tx.Balance = balance

		debitHit := matchesAny(line, genericDebitHints)
		creditHit := matchesAny(line, genericCreditHints)
		switch {
		case debitHit && creditHit:
			return Transaction{}, ErrKeywordCollision
		case debitHit:
			tx.Debit = movement.Abs()
		case creditHit:
			tx.Credit = movement.Abs()
		case movement.IsNegative():
			tx.Debit = movement.Abs()
		case movement.Abs().LessThan(balance.Abs()):
			tx.Credit = movement.Abs()
		default:
			tx.Debit = movement.Abs()
		}
	default:
		if balanceKeywordPattern.MatchString(line) {
			tx.Balance = amounts[0]
		} else if amounts[0].IsNegative() {
			tx.Debit = amounts[0].Abs()
		} else {
			tx.Credit = amounts[0]
		}
	}
	return tx, nil
}

// Column header tokens recognized when mapping tabular blocks.
var tableColumnTokens = map[string][]string{
	"date":    {"FECHA"},
	"desc":    {"CONCEPTO", "DESCRIPCION", "DESCRIPCIÓN", "DETALLE", "MOVIMIENTO", "OPERACION", "OPERACIÓN"},
	"ref":     {"COMPROBANTE", "REFERENCIA", "NRO", "N°", "NUMERO", "NÚMERO"},
	"debit":   {"DEBITO", "DÉBITO", "DEBITOS", "DÉBITOS", "EGRESO"},
	"credit":  {"CREDITO", "CRÉDITO", "CREDITOS", "CRÉDITOS", "INGRESO"},
	"balance": {"SALDO"},
}

type columnMap struct {
	date, desc, ref, debit, credit, balance int
}

// parseTables maps table columns by header keywords and reads the body rows.
// Returns ok=false when no table has a usable header.
func (p *GenericParser) parseTables(tables []pdfio.Table) ([]Transaction, []RowError, bool) {
	var rows []Transaction
	var errs []RowError
	usable := false

	for _, table := range tables {
		headerIdx, cols, ok := locateHeader(table)
		if !ok {
			continue
		}
		usable = true

		for i := headerIdx + 1; i < len(table); i++ {
			tx, skip, err := p.tableRow(table[i], cols)
			if skip {
				continue
			}
			if err != nil {
				errs = append(errs, RowError{Line: i + 1, Raw: strings.Join(table[i], " | "), Err: err})
				continue
			}
			rows = append(rows, tx)
		}
	}
	return rows, errs, usable
}

func (p *GenericParser) tableRow(row []string, cols columnMap) (Transaction, bool, error) {
	tx := Transaction{Currency: money.DefaultCurrency}

	if cols.date >= 0 && cols.date < len(row) {
		if d, ok := NormalizeDate(strings.TrimSpace(row[cols.date])); ok {
			tx.Date = d
			tx.Month = int(d.Month())
			tx.Year = d.Year()
		}
	}
	if cols.desc >= 0 && cols.desc < len(row) {
		tx.Description = truncate(strings.TrimSpace(row[cols.desc]), maxDescriptionLen)
	}
	if cols.ref >= 0 && cols.ref < len(row) {
		tx.Reference = strings.TrimSpace(row[cols.ref])
	}

	var parseErr error
	readAmount := func(col int) decimal.Decimal {
		if col < 0 || col >= len(row) {
			return decimal.Zero
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			return decimal.Zero
		}
		d, err := money.ParseStatementAmount(cell)
		if err != nil {
			parseErr = err
			return decimal.Zero
		}
		return d
	}

	tx.Debit = readAmount(cols.debit).Abs()
	tx.Credit = readAmount(cols.credit).Abs()
	tx.Balance = readAmount(cols.balance)

	if parseErr != nil {
		return Transaction{}, false, parseErr
	}
	if tx.Date.IsZero() && tx.Debit.IsZero() && tx.Credit.IsZero() && tx.Balance.IsZero() {
		return Transaction{}, true, nil
	}
	return tx, false, nil
}

func locateHeader(table pdfio.Table) (int, columnMap, bool) {
	for i, row := range table {
		cols := columnMap{date: -1, desc: -1, ref: -1, debit: -1, credit: -1, balance: -1}
		matched := 0
		for j, cell := range row {
			upper := strings.ToUpper(strings.TrimSpace(cell))
			if upper == "" {
				continue
			}
			for kind, tokens := range tableColumnTokens {
				if !containsAnyToken(upper, tokens) {
					continue
				}
				switch kind {
				case "date":
					if cols.date == -1 {
						cols.date = j
						matched++
					}
				case "desc":
					if cols.desc == -1 {
						cols.desc = j
						matched++
					}
				case "ref":
					if cols.ref == -1 {
						cols.ref = j
						matched++
					}
				case "debit":
					if cols.debit == -1 {
						cols.debit = j
						matched++
					}
				case "credit":
					if cols.credit == -1 {
						cols.credit = j
						matched++
					}
				case "balance":
					if cols.balance == -1 {
						cols.balance = j
						matched++
					}
				}
			}
		}
		if cols.date >= 0 && matched >= 3 {
			return i, cols, true
		}
	}
	return 0, columnMap{}, false
}

func balanceRow(line string, amount decimal.Decimal) Transaction {
	desc, _ := describeLine(line)
	return Transaction{
		Description: desc,
		Balance:     amount,
		Currency:    money.DefaultCurrency,
	}
}

// describeLine strips amounts from a line, pulls a trailing reference number
// and caps the remaining description.
func describeLine(line string) (desc, ref string) {
	cleaned := money.AmountPattern.ReplaceAllString(line, " ")
	if m := trailingRefPattern.FindStringSubmatch(cleaned); m != nil {
		ref = m[1]
		cleaned = cleaned[:len(cleaned)-len(m[0])]
	}
	desc = strings.Join(strings.Fields(cleaned), " ")
	return truncate(desc, maxDescriptionLen), ref
}

func extractAmounts(line string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, raw := range money.AmountPattern.FindAllString(line, -1) {
		d, err := money.ParseStatementAmount(raw)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesAny(line string, hints []string) bool {
	upper := strings.ToUpper(line)
	for _, h := range hints {
		if strings.Contains(upper, h) {
			return true
		}
	}
	return false
}

func containsAnyToken(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}
