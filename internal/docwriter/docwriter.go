// Package docwriter builds simple heading + paragraph PDF documents.
package docwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

type block struct {
	heading bool
	text    string
}

// Document collects blocks in order; nothing is rendered until Save.
type Document struct {
	blocks []block
}

func New() *Document { return &Document{} }

func (d *Document) AddHeading(text string) {
	d.blocks = append(d.blocks, block{heading: true, text: text})
}

func (d *Document) AddParagraph(text string) {
	d.blocks = append(d.blocks, block{text: text})
}

func (d *Document) Len() int { return len(d.blocks) }

// Save renders the document to path, creating parent directories. The file
// is written to a temp name first and renamed into place.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("docwriter: mkdir: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, b := range d.blocks {
		if b.heading {
			pdf.SetFont("Helvetica", "B", 16)
			pdf.MultiCell(0, 8, tr(b.text), "", "L", false)
			pdf.Ln(4)
			continue
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(b.text), "", "L", false)
		pdf.Ln(3)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("docwriter: render: %w", err)
	}

	tmp := path + ".tmp"
	if err := pdf.OutputFileAndClose(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("docwriter: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("docwriter: rename: %w", err)
	}
	return nil
}
