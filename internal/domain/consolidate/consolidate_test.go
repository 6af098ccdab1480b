package consolidate

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-ledger/internal/domain/extract/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tx(date, desc, debit, credit, balance string) parser.Transaction {
	t := parser.Transaction{Description: desc, Currency: "ARS"}
	if date != "" {
		d, ok := parser.NormalizeDate(date)
		if !ok {
			panic("bad test date: " + date)
		}
		t.Date = d
		t.Month = int(d.Month())
		t.Year = d.Year()
	}
	if debit != "" {
		t.Debit = decimal.RequireFromString(debit)
	}
	if credit != "" {
		t.Credit = decimal.RequireFromString(credit)
	}
	if balance != "" {
		t.Balance = decimal.RequireFromString(balance)
	}
	return t
}

func statement(bank, file string, rows ...parser.Transaction) parser.Statement {
	return parser.Statement{
		Bank:       bank,
		Company:    "Acme",
		Currency:   "ARS",
		SourceFile: file,
		Rows:       rows,
	}
}

func macroJune() parser.Statement {
	return statement("MACRO", "acme-macro-junio.pdf",
		tx("", "Saldo Anterior", "", "", "15000"),
		tx("05/06/2024", "Deposito", "", "2000", "17000"),
		tx("15/06/2024", "Pago cheque", "1500", "", "15500"),
		tx("", "Saldo Final", "", "", "15500"),
	)
}

func macroJuly() parser.Statement {
	return statement("MACRO", "acme-macro-julio.pdf",
		tx("03/07/2024", "Transferencia", "", "1000", "16500"),
		tx("20/07/2024", "Impuesto", "200", "", "16300"),
	)
}

func comafiJune() parser.Statement {
	return statement("BANCO COMAFI", "acme-comafi-junio.pdf",
		tx("10/06/2024", "Acreditacion", "", "500", "500"),
	)
}

func TestConsolidateOrdering(t *testing.T) {
	c := New(testLogger())

	t.Run("banks grouped, months in order, balances pinned", func(t *testing.T) {
		rows := c.Consolidate([]Input{
			{Statement: macroJuly()},
			{Statement: comafiJune()},
			{Statement: macroJune()},
		})
		require.Len(t, rows, 7)

		var got []string
		for _, r := range rows {
			got = append(got, r.Bank+"|"+r.Detail)
		}
		assert.Equal(t, []string{
			"COMAFI|Acreditacion",
			"MACRO|Saldo Anterior",
			"MACRO|Deposito",
			"MACRO|Pago cheque",
			"MACRO|Saldo Final",
			"MACRO|Transferencia",
			"MACRO|Impuesto",
		}, got)
	})

	t.Run("all june rows precede july for the same bank", func(t *testing.T) {
		rows := c.Consolidate([]Input{
			{Statement: macroJuly()},
			{Statement: macroJune()},
		})
		lastJune := -1
		firstJuly := len(rows)
		for i, r := range rows {
			switch r.month {
			case 6:
				lastJune = i
			case 7:
				if i < firstJuly {
					firstJuly = i
				}
			}
		}
		assert.Less(t, lastJune, firstJuly)
	})

	t.Run("consolidation is idempotent", func(t *testing.T) {
		inputs := []Input{
			{Statement: macroJuly()},
			{Statement: comafiJune()},
			{Statement: macroJune()},
		}
		first := c.Consolidate(inputs)
		second := c.Consolidate(inputs)
		assert.Equal(t, first, second)
	})

	t.Run("statement without any period sorts last and stays contiguous", func(t *testing.T) {
		undated := statement("MACRO", "acme-macro-sinfecha.pdf",
			tx("", "Movimiento uno", "10", "", ""),
			tx("", "Movimiento dos", "", "20", ""),
			tx("", "Movimiento tres", "30", "", ""),
		)
		rows := c.Consolidate([]Input{
			{Statement: undated},
			{Statement: macroJune()},
		})
		require.Len(t, rows, 7)

		assert.Equal(t, "Movimiento uno", rows[4].Detail)
		assert.Equal(t, "Movimiento dos", rows[5].Detail)
		assert.Equal(t, "Movimiento tres", rows[6].Detail)
	})

	t.Run("unknown bank label", func(t *testing.T) {
		rows := c.Consolidate([]Input{
			{Statement: statement("", "misterio.pdf", tx("05/06/2024", "Mov", "1", "", ""))},
		})
		require.Len(t, rows, 1)
		assert.Equal(t, UnknownBank, rows[0].Bank)
	})

	t.Run("display fields", func(t *testing.T) {
		rows := c.Consolidate([]Input{{Statement: macroJune()}})
		require.Len(t, rows, 4)

		opening := rows[0]
		assert.Equal(t, "", opening.Date)
		assert.Equal(t, "", opening.Month)
		assert.Equal(t, "", opening.Debit)
		assert.Equal(t, "15000.00", opening.Balance)

		mov := rows[1]
		assert.Equal(t, "05/06/2024", mov.Date)
		assert.Equal(t, "6", mov.Month)
		assert.Equal(t, "2024", mov.Year)
		assert.Equal(t, "2000.00", mov.Credit)
		assert.Equal(t, "", mov.Debit)
		assert.Equal(t, "ARS", mov.Currency)
		assert.Equal(t, "Acme", mov.Company)
		assert.Equal(t, "acme-macro-junio.pdf", mov.File)
	})
}

func TestNormalizeBank(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MACRO", "MACRO"},
		{"Banco Macro S.A.", "MACRO"},
		{"  banco   comafi ", "COMAFI"},
		{"ICBC ARGENTINA", "ICBC"},
		{"BANCO DE LA NACION", "BANCO DE LA NACION"},
		{"", UnknownBank},
		{"   ", UnknownBank},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeBank(tt.in), "input %q", tt.in)
	}
}

func TestInferPeriod(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		y, m := InferPeriod(Input{Statement: macroJune(), Year: 2023, Month: 12})
		assert.Equal(t, 2023, y)
		assert.Equal(t, 12, m)
	})

	t.Run("row period fields", func(t *testing.T) {
		y, m := InferPeriod(Input{Statement: macroJune()})
		assert.Equal(t, 2024, y)
		assert.Equal(t, 6, m)
	})

	t.Run("row date fallback", func(t *testing.T) {
		st := statement("MACRO", "f.pdf", parser.Transaction{
			Date:        time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC),
			Description: "Mov",
		})
		y, m := InferPeriod(Input{Statement: st})
		assert.Equal(t, 2024, y)
		assert.Equal(t, 7, m)
	})

	t.Run("earliest row period wins regardless of row order", func(t *testing.T) {
		st := statement("MACRO", "f.pdf",
			parser.Transaction{Description: "Mov julio", Month: 7, Year: 2024},
			parser.Transaction{Description: "Mov junio", Month: 6, Year: 2024},
		)
		y, m := InferPeriod(Input{Statement: st})
		assert.Equal(t, 2024, y)
		assert.Equal(t, 6, m)
	})

	t.Run("earliest dated row wins in the date fallback", func(t *testing.T) {
		st := statement("MACRO", "f.pdf",
			parser.Transaction{Date: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), Description: "Mov"},
			parser.Transaction{Date: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), Description: "Mov"},
		)
		y, m := InferPeriod(Input{Statement: st})
		assert.Equal(t, 2024, y)
		assert.Equal(t, 6, m)
	})

	t.Run("month year marker in raw lines", func(t *testing.T) {
		y, m := InferPeriod(Input{RawLines: []string{"EXTRACTO", "JULIO - 2025"}})
		assert.Equal(t, 2025, y)
		assert.Equal(t, 7, m)
	})

	t.Run("loose date in raw lines", func(t *testing.T) {
		y, m := InferPeriod(Input{RawLines: []string{"Saldo al: 31/07/25"}})
		assert.Equal(t, 2025, y)
		assert.Equal(t, 7, m)
	})

	t.Run("nothing to infer", func(t *testing.T) {
		y, m := InferPeriod(Input{})
		assert.Zero(t, y)
		assert.Zero(t, m)
	})
}

func TestWriteXLSX(t *testing.T) {
	c := New(testLogger())
	rows := c.Consolidate([]Input{{Statement: macroJune()}})
	path := filepath.Join(t.TempDir(), "consolidado.xlsx")

	require.NoError(t, WriteXLSX(path, "", rows))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, len(rows)+1)
	assert.Equal(t, columnHeaders, got[0])

	// Row 3 is the deposit; credit is a numeric cell.
	credit, err := f.GetCellValue(SheetName, "G3")
	require.NoError(t, err)
	v, err := strconv.ParseFloat(credit, 64)
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, v, 0.001)

	bank, err := f.GetCellValue(SheetName, "J3")
	require.NoError(t, err)
	assert.Equal(t, "MACRO", bank)
}

func TestWriteCSV(t *testing.T) {
	c := New(testLogger())
	rows := c.Consolidate([]Input{{Statement: comafiJune()}})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "fecha,mes,año,detalle,referencia,debito,credito,saldo,moneda,banco,empresa,periodo,archivo", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "10/06/2024")
	assert.Contains(t, lines[1], "COMAFI")
	assert.Contains(t, lines[1], "500.00")
}
