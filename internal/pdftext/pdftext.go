// Package pdftext extracts plain text from PDF documents.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract returns the document's text. Unreadable or corrupt input is an error,
// including inputs that make the parser panic.
func Extract(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdftext: %s: corrupt document: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdftext: open %s: %w", path, err)
	}
	defer f.Close()

	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdftext: read %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rd); err != nil {
		return "", fmt.Errorf("pdftext: read %s: %w", path, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
