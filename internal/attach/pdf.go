package attach

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const pageSeparator = "\n\n"

// decodePDF extracts text per page and concatenates the pages in order.
// Password-protected and corrupt documents fail with an IngestionError.
func decodePDF(name string, data []byte) (out Normalized, err error) {
	// The parser panics on some malformed files instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			out = Normalized{}
			err = &IngestionError{Name: name, Err: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Normalized{}, &IngestionError{Name: name, Err: err}
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return Normalized{}, &IngestionError{Name: name, Err: fmt.Errorf("page %d: %w", i, err)}
		}
		if b.Len() > 0 {
			b.WriteString(pageSeparator)
		}
		b.WriteString(text)
	}

	if strings.TrimSpace(b.String()) == "" {
		return Normalized{}, &IngestionError{Name: name, Err: errors.New("no extractable text found in pdf")}
	}
	return Normalized{MediaType: "application/pdf", Text: b.String()}, nil
}
