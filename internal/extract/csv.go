package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// extractCSV converts CSV rows to tab-separated lines. Records with a
// variable number of fields are accepted; schedule exports are rarely tidy.
func extractCSV(content []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1

	var buf strings.Builder
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read CSV: %w", err)
		}
		buf.WriteString(strings.Join(record, "\t"))
		buf.WriteByte('\n')
	}
	return strings.TrimSpace(buf.String()), nil
}
