package attach

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

func decodeText(name string, data []byte) (Normalized, error) {
	if !utf8.Valid(data) {
		return Normalized{}, &DecodeError{Name: name, Err: errors.New("invalid UTF-8 byte sequence")}
	}
	return Normalized{MediaType: "text/plain", Text: string(data)}, nil
}

// decodeCSV parses the file and renders it as an aligned, deterministic text
// table. Parser diagnostics (line/column) are preserved in the error.
func decodeCSV(name string, data []byte) (Normalized, error) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return Normalized{}, &IngestionError{Name: name, Err: err}
	}
	if len(rows) == 0 {
		return Normalized{}, &IngestionError{Name: name, Err: errors.New("csv contains no records")}
	}
	return Normalized{MediaType: "text/csv", Text: renderTable(rows)}, nil
}

func renderTable(rows [][]string) string {
	widths := make([]int, 0)
	for _, row := range rows {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString(" | ")
			}
			if i < len(row)-1 {
				fmt.Fprintf(&b, "%-*s", widths[i], cell)
			} else {
				b.WriteString(cell)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// decodeJSON acts as a validating pretty-printer: parse, then re-serialize
// with stable two-space indentation.
func decodeJSON(name string, data []byte) (Normalized, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Normalized{}, &IngestionError{Name: name, Err: err}
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Normalized{}, &IngestionError{Name: name, Err: err}
	}
	return Normalized{MediaType: "application/json", Text: string(pretty)}, nil
}
