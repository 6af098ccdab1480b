package consolidate

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// SheetName is the default name of the single sheet the workbook carries.
const SheetName = "Consolidado"

var columnHeaders = []string{
	"fecha", "mes", "año", "detalle", "referencia",
	"debito", "credito", "saldo", "moneda", "banco",
	"empresa", "periodo", "archivo",
}

// WriteXLSX writes the consolidated rows to a single-sheet workbook. Amount
// columns are written as numbers so spreadsheet formulas work on them.
func WriteXLSX(path, sheet string, rows []Row) error {
	if sheet == "" {
		sheet = SheetName
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(columnHeaders))
	for i, h := range columnHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cells := []interface{}{
			row.Date,
			numericCell(row.Month),
			numericCell(row.Year),
			row.Detail,
			row.Reference,
			amountCell(row.Debit, row.debit.InexactFloat64()),
			amountCell(row.Credit, row.credit.InexactFloat64()),
			amountCell(row.Balance, row.balance.InexactFloat64()),
			row.Currency,
			row.Bank,
			row.Company,
			row.Period,
			row.File,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func numericCell(display string) interface{} {
	if display == "" {
		return ""
	}
	n, err := strconv.Atoi(display)
	if err != nil {
		return display
	}
	return n
}

func amountCell(display string, value float64) interface{} {
	if display == "" {
		return ""
	}
	return value
}
