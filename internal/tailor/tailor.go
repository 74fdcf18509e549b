// Package tailor produces a per-listing application document from the base
// document and the listing text.
package tailor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"autoapply-engine/internal/config"
	"autoapply-engine/internal/docwriter"
	"autoapply-engine/internal/domain"
	"autoapply-engine/internal/llm"
	"autoapply-engine/internal/pdftext"
	"autoapply-engine/internal/scrape"
)

var (
	// ErrExtraction means the base document could not be read as text.
	ErrExtraction = errors.New("tailor: base document extraction failed")
	// ErrTailoring means generation or writing the tailored document failed.
	ErrTailoring = errors.New("tailor: tailoring failed")
)

// Document is the writer surface the pipeline needs.
type Document interface {
	AddHeading(text string)
	AddParagraph(text string)
	Save(path string) error
}

const summarySystem = `You are a career agent for %s. You write short, specific professional summaries for job applications.
Use only facts present in the candidate profile. Do not invent employers, titles, dates or certifications.
Answer with plain text only: no markdown, no headings, no preamble.`

const summaryUser = `### CANDIDATE PROFILE:
%s

### TARGET ROLE:
%s

### JOB DESCRIPTION:
%s

Write a 3 to 4 sentence professional summary that positions the candidate for this role.`

type Pipeline struct {
	cfg config.TailoringConfig
	gen llm.Generator

	Extract     func(path string) (string, error)
	NewDocument func() Document
	Now         func() time.Time
}

func New(cfg config.TailoringConfig, gen llm.Generator) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		gen:         gen,
		Extract:     pdftext.Extract,
		NewDocument: func() Document { return docwriter.New() },
		Now:         time.Now,
	}
}

// Tailor writes a document for one listing into the staging dir and returns it.
// Extraction failures wrap ErrExtraction; generation and write failures wrap ErrTailoring.
func (p *Pipeline) Tailor(ctx context.Context, basePath string, l domain.Listing) (domain.Artifact, error) {
	profile, err := p.Extract(basePath)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	profile = scrape.Truncate(strings.TrimSpace(profile), p.cfg.MaxProfileChars)
	if profile == "" {
		return domain.Artifact{}, fmt.Errorf("%w: %s has no extractable text", ErrExtraction, basePath)
	}

	desc := scrape.Truncate(strings.TrimSpace(l.Description), p.cfg.MaxDescriptionChars)
	if desc == "" {
		desc = "(not available)"
	}

	summary, err := p.gen.Generate(ctx,
		fmt.Sprintf(summarySystem, p.cfg.CandidateName),
		fmt.Sprintf(summaryUser, profile, l.Title, desc),
	)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: generate: %v", ErrTailoring, err)
	}

	doc := p.NewDocument()
	doc.AddHeading(p.cfg.CandidateName + " - " + l.Title)
	doc.AddParagraph(summary)
	doc.AddParagraph(profile)

	path := filepath.Join(p.cfg.StagingDir, SanitizeTitle(l.Title)+".pdf")
	if err := doc.Save(path); err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: save: %v", ErrTailoring, err)
	}

	log.Printf("[tailor] listing=%s wrote %s", l.ID, path)
	return domain.Artifact{
		ListingID: l.ID,
		Title:     l.Title,
		Summary:   summary,
		Path:      path,
		CreatedAt: p.Now(),
	}, nil
}

// SanitizeTitle keeps letters, digits and spaces, then joins words with
// underscores. Anything else, path separators included, is dropped.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ') {
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), "_")
	if out == "" {
		return "listing"
	}
	return out
}

// Purge removes staged artifacts older than the retention horizon.
func (p *Pipeline) Purge() (int, error) {
	if p.cfg.RetentionHours <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(p.cfg.StagingDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := p.Now().Add(-p.cfg.Retention())
	n := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(p.cfg.StagingDir, e.Name())); err != nil {
			log.Printf("[tailor] purge %s: %v", e.Name(), err)
			continue
		}
		n++
	}
	if n > 0 {
		log.Printf("[tailor] purged %d artifact(s) older than %s", n, p.cfg.Retention())
	}
	return n, nil
}
