package linelist

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dsih-artpark/epipipeline-v2/internal/scalar"
)

// WriteCSV writes rows under the given columns. Missing and NA values become
// empty cells; other values use their String form, so dates come out in ISO
// form and region ids as e.g. "admin_0".
func WriteCSV(w io.Writer, columns []string, rows []Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(columns))
	for i, row := range rows {
		for j, col := range columns {
			record[j] = Cell(row[col])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Cell renders one value for CSV output.
func Cell(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	s, _ := scalar.Text(v)
	return s
}
