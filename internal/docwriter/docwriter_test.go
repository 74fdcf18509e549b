package docwriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveWritesPDF(t *testing.T) {
	d := New()
	d.AddHeading("Sam - Security Engineer Intern")
	d.AddParagraph("Hands-on SOC automation experience, café-tested.")
	if d.Len() != 2 {
		t.Fatalf("len = %d", d.Len())
	}

	path := filepath.Join(t.TempDir(), "tailored", "Security_Engineer_Intern.pdf")
	if err := d.Save(path); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", b[:8])
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
