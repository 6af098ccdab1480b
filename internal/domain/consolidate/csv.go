package consolidate

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes the consolidated rows as CSV, columns in the same order as
// the workbook.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
