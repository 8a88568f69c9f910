package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFText extracts text from a PDF byte stream page by page and returns the
// concatenation in page order. A page without an extractable text layer
// (scanned image, broken fonts) contributes an empty string rather than
// failing the whole document. The only failure mode is input that is not a
// well-formed PDF.
func PDFText(data []byte) (text string, pages int, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("parse pdf: %w", err)
	}

	pages = reader.NumPage()
	var buf bytes.Buffer
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable page, keep going with the rest.
			continue
		}
		buf.WriteString(pageText)
	}
	return buf.String(), pages, nil
}
