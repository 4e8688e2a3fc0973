package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// RegisterCSV writes r as a header row followed by one record per row.
func RegisterCSV(w io.Writer, r Report) error {
	if len(r.Rows) == 0 {
		return ErrNoRows
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(r.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range r.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
