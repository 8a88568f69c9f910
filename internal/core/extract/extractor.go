package extract

import (
	"bytes"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"docchat/internal/core"
)

var _ core.DocumentExtractor = (*FileExtractor)(nil)

// FileExtractor converts uploaded files to plain text. PDFs go through the
// page-aware native parser; other supported formats fall back to docconv.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract returns the full extracted text, or an error when the input is not
// a well-formed document of the claimed content type.
func (e *FileExtractor) Extract(data []byte, contentType string) (string, error) {
	if mt, _, found := strings.Cut(contentType, ";"); found {
		contentType = mt
	}
	contentType = strings.TrimSpace(contentType)

	if contentType == "application/pdf" || contentType == "" {
		text, _, err := PDFText(data)
		return text, err
	}

	res, err := docconv.Convert(bytes.NewReader(data), contentType, false)
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	return res.Body, nil
}
