package tailor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autoapply-engine/internal/config"
	"autoapply-engine/internal/domain"
)

type fakeGen struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (f *fakeGen) Generate(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

type fakeDoc struct {
	headings, paragraphs []string
	saved                string
	saveErr              error
}

func (d *fakeDoc) AddHeading(s string)   { d.headings = append(d.headings, s) }
func (d *fakeDoc) AddParagraph(s string) { d.paragraphs = append(d.paragraphs, s) }
func (d *fakeDoc) Save(p string) error {
	d.saved = p
	return d.saveErr
}

func newPipeline(t *testing.T, gen *fakeGen, doc *fakeDoc) *Pipeline {
	t.Helper()
	cfg := config.Default().Tailoring
	cfg.StagingDir = t.TempDir()
	cfg.MaxDescriptionChars = 10
	p := New(cfg, gen)
	p.Extract = func(string) (string, error) { return "Sam. SOC analyst. Go, Python.", nil }
	p.NewDocument = func() Document { return doc }
	return p
}

func TestTailorBuildsDocument(t *testing.T) {
	gen := &fakeGen{reply: "Sam brings SOC depth."}
	doc := &fakeDoc{}
	p := newPipeline(t, gen, doc)

	l := domain.Listing{ID: "99", Title: "Security Engineer / Intern", Description: "0123456789ABCDEF"}
	art, err := p.Tailor(context.Background(), "resume.pdf", l)
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(p.cfg.StagingDir, "Security_Engineer_Intern.pdf")
	if art.Path != want || doc.saved != want {
		t.Fatalf("path = %q saved=%q, want %q", art.Path, doc.saved, want)
	}
	if art.ListingID != "99" || art.Summary != "Sam brings SOC depth." {
		t.Fatalf("artifact = %+v", art)
	}
	if len(doc.headings) != 1 || doc.headings[0] != "Sam - Security Engineer / Intern" {
		t.Fatalf("headings = %v", doc.headings)
	}
	if doc.paragraphs[0] != "Sam brings SOC depth." {
		t.Fatalf("paragraphs = %v", doc.paragraphs)
	}
	if !strings.Contains(gen.user, "0123456789\n") || strings.Contains(gen.user, "ABCDEF") {
		t.Fatalf("description not truncated:\n%s", gen.user)
	}
	if !strings.Contains(gen.user, "SOC analyst") || !strings.Contains(gen.system, "Sam") {
		t.Fatalf("prompt missing profile or candidate")
	}
}

func TestTailorExtractionError(t *testing.T) {
	gen := &fakeGen{}
	p := newPipeline(t, gen, &fakeDoc{})
	p.Extract = func(string) (string, error) { return "", errors.New("bad xref") }

	_, err := p.Tailor(context.Background(), "resume.pdf", domain.Listing{Title: "x"})
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called after extraction failure")
	}
}

func TestTailorGenerationErrorPropagates(t *testing.T) {
	doc := &fakeDoc{}
	p := newPipeline(t, &fakeGen{err: errors.New("timeout")}, doc)

	_, err := p.Tailor(context.Background(), "resume.pdf", domain.Listing{Title: "x"})
	if !errors.Is(err, ErrTailoring) {
		t.Fatalf("err = %v, want ErrTailoring", err)
	}
	if doc.saved != "" {
		t.Fatalf("document saved after generation failure")
	}
}

func TestTailorSaveError(t *testing.T) {
	p := newPipeline(t, &fakeGen{reply: "ok"}, &fakeDoc{saveErr: errors.New("disk full")})
	if _, err := p.Tailor(context.Background(), "resume.pdf", domain.Listing{Title: "x"}); !errors.Is(err, ErrTailoring) {
		t.Fatalf("err = %v", err)
	}
}

func TestSanitizeTitle(t *testing.T) {
	cases := map[string]string{
		"Security Engineer Intern":     "Security_Engineer_Intern",
		"../../etc/passwd":             "etcpasswd",
		"  AI/ML   Engineer (Remote) ": "AIML_Engineer_Remote",
		"Ingénieur":                    "Ingnieur",
		"!!!":                          "listing",
	}
	for in, want := range cases {
		if got := SanitizeTitle(in); got != want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPurge(t *testing.T) {
	p := newPipeline(t, &fakeGen{}, &fakeDoc{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.Now = func() time.Time { return now }

	old := filepath.Join(p.cfg.StagingDir, "old.pdf")
	fresh := filepath.Join(p.cfg.StagingDir, "fresh.pdf")
	for _, f := range []string{old, fresh} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(old, now.Add(-25*time.Hour), now.Add(-25*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(fresh, now.Add(-time.Hour), now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	n, err := p.Purge()
	if err != nil || n != 1 {
		t.Fatalf("purged %d err=%v", n, err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("old artifact kept")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh artifact removed: %v", err)
	}
}

func TestPurgeMissingDir(t *testing.T) {
	p := newPipeline(t, &fakeGen{}, &fakeDoc{})
	p.cfg.StagingDir = filepath.Join(t.TempDir(), "absent")
	if n, err := p.Purge(); n != 0 || err != nil {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestPitchFallback(t *testing.T) {
	if got := NewPitcher(&fakeGen{err: errors.New("down")}, "Sam").Pitch(context.Background(), "SOC Analyst"); got != PitchFallback {
		t.Fatalf("got %q", got)
	}
	var nilPitcher *Pitcher
	if got := nilPitcher.Pitch(context.Background(), "x"); got != PitchFallback {
		t.Fatalf("got %q", got)
	}
	gen := &fakeGen{reply: "Hire Sam."}
	if got := NewPitcher(gen, "Sam").Pitch(context.Background(), "SOC Analyst"); got != "Hire Sam." || gen.user != "Job Title: SOC Analyst" {
		t.Fatalf("got %q user=%q", got, gen.user)
	}
}
