package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-ledger/pkg/money"
)

// Movement classification tables for Banco Macro statements. Macro prints
// two-amount lines (movement plus running balance) for most operations, so
// the side has to be inferred from the operation wording.
var (
	macroCreditHints = []string{
		"N/C", "ACRED", "ACREDIT", "DEPOSITO", "DEPOSITO CANJE", "CR ",
		"PRISMA", "LIQ COMER", "TRANSFERENCIA", "TRANSF", "MACRONLINE",
		"MACROLINE", "CCERR", "VAR VARIOS",
	}
	macroDebitHints = []string{
		"N/D", "DEBITO", "DB ", "DBCR", "RETENCION", "SIRCREB", "IMPUESTO",
		"COMISION", "MANTENIMIENTO", "IVA", "SELLOS", "PAGO DE CHEQUE",
	}
	macroNoise = []string{
		"TOTAL COBRADO DEL IMP", "IIBB SIRCREB", "D. 409/2018", "IMPUESTO LEY",
		"S.E.U.O.", "CASA CENTRAL", "HOJA NRO", "INFORMACIÓN DE SU/S CUENTA/S",
		"INFORMACION DE SU/S CUENTA/S", "DESDE EL 01/", "______",
	}
	macroStructural = []string{
		"CUENTA CORRIENTE", "CLAVE BANCARIA", "DETALLE DE MOVIMIENTO",
		"PERIODO DEL EXTRACTO", "SALDOS CONSOLIDADOS", "TIPO CUENTA",
		"SUCURSAL", "MONEDA",
	}
)

// Macro credit operation identifiers share a fixed numeric prefix.
var macroCreditIDPattern = regexp.MustCompile(`\b5730\d{4,}\b`)

var (
	macroDatePattern       = regexp.MustCompile(`\d{2}/\d{2}/\d{2,4}`)
	macroOpeningPattern    = regexp.MustCompile(`(?i)SALDO ULTIMO EXTRACTO|SALDO ANTERIOR`)
	macroClosingPattern    = regexp.MustCompile(`(?i)SALDO FINAL|SALDO AL`)
	macroWhitespacePattern = regexp.MustCompile(`\s{2,}`)
)

// MacroParser parses Banco Macro account statements. The layout interleaves
// movements with legal boilerplate and consolidated-balance summaries, all of
// which has to be filtered before amounts can be read.
type MacroParser struct{}

// NewMacroParser returns a Banco Macro statement parser.
func NewMacroParser() *MacroParser {
	return &MacroParser{}
}

// Detect reports whether the document looks like a Macro statement.
func (p *MacroParser) Detect(text, filename string) bool {
	return strings.Contains(strings.ToUpper(text+" "+filename), "MACRO")
}

// Parse reads Macro text lines into a statement ordered opening balance,
// movements, closing balance.
func (p *MacroParser) Parse(content Content) (Statement, error) {
	st := Statement{Bank: "MACRO", Currency: money.DefaultCurrency}

	var movements []Transaction
	var opening, closing *Transaction

	for i, raw := range content.Lines {
		line := macroWhitespacePattern.ReplaceAllString(strings.TrimSpace(raw), " ")
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		if strings.HasPrefix(upper, "*") || strings.HasPrefix(upper, "- - -") {
			continue
		}
		if matchesAny(upper, macroNoise) || matchesAny(upper, macroStructural) {
			continue
		}

		if macroOpeningPattern.MatchString(line) {
			if tx, ok := macroBalanceRow("Saldo Anterior", line); ok && opening == nil {
				opening = &tx
			}
			continue
		}
		if macroClosingPattern.MatchString(line) {
			if tx, ok := macroBalanceRow("Saldo Final", line); ok {
				closing = &tx
			}
			continue
		}

		dateTok := macroDatePattern.FindString(line)
		if dateTok == "" {
			continue
		}
		date, ok := NormalizeDate(dateTok)
		if !ok {
			continue
		}

		amountsRaw := money.AmountPattern.FindAllString(line, -1)
		if len(amountsRaw) == 0 {
			continue
		}
		amounts := make([]decimal.Decimal, 0, len(amountsRaw))
		for _, a := range amountsRaw {
			d, err := money.ParseStatementAmount(a)
			if err != nil {
				st.Errors = append(st.Errors, RowError{Line: i + 1, Raw: line, Err: err})
				d = decimal.Zero
			}
			amounts = append(amounts, d)
		}

		tx := Transaction{
			Date:     date,
			Currency: money.DefaultCurrency,
			Month:    int(date.Month()),
			Year:     date.Year(),
		}
		tx.Description, tx.Reference = macroDescribe(line, dateTok, amountsRaw)

		switch {
		case len(amounts) >= 3:
			tx.Debit = amounts[len(amounts)-3].Abs()
			tx.Credit = amounts[len(amounts)-2].Abs()
			tx.Balance = amounts[len(amounts)-1]
		case len(amounts) == 2:
			movement, balance := amounts[0], amounts[1]
			tx.Balance = balance
			p.classifyMovement(&tx, upper, line, movement, balance)
		default:
			tx.Balance = amounts[0]
		}

		movements = append(movements, tx)
	}

	if opening != nil {
		st.Rows = append(st.Rows, *opening)
	}
	st.Rows = append(st.Rows, movements...)
	if closing != nil {
		st.Rows = append(st.Rows, *closing)
	}
	return st, nil
}

// classifyMovement decides the side of a two-amount line. Explicit operation
// codes win over hint tables, hint tables win over the magnitude heuristic.
func (p *MacroParser) classifyMovement(tx *Transaction, upper, line string, movement, balance decimal.Decimal) {
	looksCredit := matchesAny(upper, macroCreditHints) || macroCreditIDPattern.MatchString(line)
	looksDebit := matchesAny(upper, macroDebitHints)

	switch {
	case strings.Contains(upper, "N/D DBCR"):
		tx.Debit = movement.Abs()
	case strings.Contains(upper, "PRISMA") || strings.Contains(upper, "LIQ COMER"):
		tx.Credit = movement.Abs()
	case looksCredit && !looksDebit:
		tx.Credit = movement.Abs()
	case looksDebit && !looksCredit:
		tx.Debit = movement.Abs()
	case movement.Abs().LessThan(balance.Abs()):
		tx.Credit = movement.Abs()
	default:
		tx.Debit = movement.Abs()
	}
}

// macroBalanceRow builds an undated balance marker from a saldo line. Macro
// prints a trailing dash for negative balances which the amount pattern may
// keep outside the match.
func macroBalanceRow(label, line string) (Transaction, bool) {
	amountsRaw := money.AmountPattern.FindAllString(line, -1)
	if len(amountsRaw) == 0 {
		return Transaction{}, false
	}
	val, err := money.ParseStatementAmount(amountsRaw[len(amountsRaw)-1])
	if err != nil {
		return Transaction{}, false
	}
	if strings.Contains(line, "-") && val.IsPositive() {
		val = val.Neg()
	}
	return Transaction{
		Description: label,
		Balance:     val,
		Currency:    money.DefaultCurrency,
	}, true
}

func macroDescribe(line, dateTok string, amountsRaw []string) (desc, ref string) {
	cleaned := strings.Replace(line, dateTok, "", 1)
	for _, a := range amountsRaw {
		cleaned = strings.Replace(cleaned, a, "", 1)
	}
	if m := trailingRefPattern.FindStringSubmatch(cleaned); m != nil {
		ref = m[1]
		cleaned = cleaned[:len(cleaned)-len(m[0])]
	}
	desc = strings.Join(strings.Fields(cleaned), " ")
	return truncate(desc, maxDescriptionLen), ref
}
