// Package workflow runs one application pass: discover listings, skip the
// ones already applied to, filter, tailor, drive the apply modal, record.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"autoapply-engine/internal/apply"
	"autoapply-engine/internal/browser"
	"autoapply-engine/internal/config"
	"autoapply-engine/internal/domain"
	"autoapply-engine/internal/events"
	"autoapply-engine/internal/ledger"
	"autoapply-engine/internal/notify"
	"autoapply-engine/internal/scrape"
	"autoapply-engine/internal/store"
	"autoapply-engine/internal/tailor"
)

var (
	// ErrDiscovery aborts a pass whose search view never rendered listings.
	ErrDiscovery = errors.New("workflow: listing discovery failed")
	// ErrPreflight aborts a pass before the browser starts.
	ErrPreflight = errors.New("workflow: preflight failed")
)

// Browser opens the page a pass drives, plus a func to release it.
type Browser interface {
	Open(ctx context.Context) (browser.Page, func() error, error)
}

type Discoverer interface {
	Discover(ctx context.Context, topN int) ([]scrape.Card, error)
	Open(ctx context.Context, c scrape.Card, withDescription bool) (domain.Listing, error)
}

type Applier interface {
	Apply(ctx context.Context, listingID, document string) apply.Outcome
}

type Tailorer interface {
	Tailor(ctx context.Context, basePath string, l domain.Listing) (domain.Artifact, error)
}

// Stager prunes expired tailored artifacts.
type Stager interface {
	Purge() (int, error)
}

type Pitcher interface {
	Pitch(ctx context.Context, title string) string
}

type Publisher interface {
	Publish(evt string)
}

type Runner struct {
	cfg     config.Config
	browser Browser
	ledger  ledger.Ledger

	// Tailor is nil when tailoring is disabled.
	Tailor Tailorer
	// Staging is purged every pass, whether or not Tailor is set.
	Staging  Stager
	Pitch    Pitcher
	Notifier notify.Notifier
	// History stores one row per attempted listing; nil disables it.
	History func(ctx context.Context, a store.Attempt) error
	Events  Publisher

	NewScraper func(page browser.Page) Discoverer
	NewApplier func(page browser.Page) Applier
	Filter     func(title string) scrape.Verdict
	Sleep      func(ctx context.Context, d time.Duration) error
	Now        func() time.Time
}

// New wires the default collaborators; shots may be nil.
func New(cfg config.Config, b Browser, l ledger.Ledger, shots apply.Screenshotter) *Runner {
	opts := apply.OptionsFrom(cfg)
	return &Runner{
		cfg:      cfg,
		browser:  b,
		ledger:   l,
		Notifier: notify.Nop{},
		Staging:  tailor.New(cfg.Tailoring, nil),
		NewScraper: func(page browser.Page) Discoverer {
			return scrape.New(page, cfg)
		},
		NewApplier: func(page browser.Page) Applier {
			return apply.New(page, opts, shots)
		},
		Filter: func(title string) scrape.Verdict {
			return scrape.Classify(cfg.Filters, title)
		},
		Sleep: browser.Sleep,
		Now:   time.Now,
	}
}

// RunPass processes up to TopN listings and stops after the first submission.
// The cool-down always runs before it returns.
func (r *Runner) RunPass(ctx context.Context) (res *Result, err error) {
	res = &Result{ID: uuid.NewString(), StartedAt: r.Now(), Skipped: map[string]int{}}
	log.Printf("[pass] %s start", res.ID)
	r.publish(res.ID, events.PassStarted, nil)

	defer func() {
		res.FinishedAt = r.Now()
		if err != nil {
			res.Error = err.Error()
		}
		log.Printf("[pass] %s done candidates=%d attempts=%d submitted=%q err=%v",
			res.ID, res.Candidates, len(res.Attempts), res.Submitted, err)
		r.publish(res.ID, events.PassFinished, res)

		cool := r.cfg.Pass.Cooldown()
		log.Printf("[pass] cooling down %s", cool)
		_ = r.Sleep(ctx, cool)
	}()

	if r.Staging != nil {
		if _, perr := r.Staging.Purge(); perr != nil {
			log.Printf("[pass] purge staging: %v", perr)
		}
	}

	base := r.cfg.Tailoring.BaseDocument
	if _, serr := os.Stat(base); serr != nil {
		log.Printf("[pass] CRITICAL base document %s unavailable: %v", base, serr)
		return res, fmt.Errorf("%w: base document: %v", ErrPreflight, serr)
	}

	page, release, err := r.browser.Open(ctx)
	if err != nil {
		return res, fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if cerr := release(); cerr != nil {
			log.Printf("[pass] close browser: %v", cerr)
		}
	}()

	pages := r.NewScraper(page)
	machine := r.NewApplier(page)

	cards, err := pages.Discover(ctx, r.cfg.Pass.TopN)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}
	res.Candidates = len(cards)

	for _, c := range cards {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		done, err := r.process(ctx, res, pages, machine, c, base)
		if err != nil {
			return res, err
		}
		if done {
			break
		}
	}
	if res.Submitted == "" {
		log.Printf("[pass] %s no submission this pass", res.ID)
	}
	return res, nil
}

// process handles one card. done reports a submission; a non-nil error
// aborts the pass.
func (r *Runner) process(ctx context.Context, res *Result, pages Discoverer, machine Applier, c scrape.Card, base string) (done bool, err error) {
	if r.ledger.Has(ctx, c.ID) {
		res.skip(SkipAlreadyApplied)
		return false, nil
	}

	l, err := pages.Open(ctx, c, r.Tailor != nil)
	if err != nil {
		if errors.Is(err, browser.ErrSessionClosed) {
			return false, err
		}
		log.Printf("[pass] listing=%s open failed: %v", c.ID, err)
		res.skip(SkipOpenFailed)
		return false, nil
	}
	if l.Title == "" {
		log.Printf("[pass] listing=%s no title resolved", c.ID)
		res.skip(SkipNoTitle)
		return false, nil
	}

	v := r.Filter(l.Title)
	if !v.Eligible {
		log.Printf("[pass] listing=%s skip %q (%s)", l.ID, l.Title, v.Reason)
		res.skip(SkipFiltered)
		return false, nil
	}
	log.Printf("[pass] listing=%s eligible %q tags=%v", l.ID, l.Title, v.Tags)

	started := r.Now()
	document, tailored := base, false
	if r.Tailor != nil {
		art, terr := r.Tailor.Tailor(ctx, base, l)
		switch {
		case terr == nil:
			document, tailored = art.Path, true
		case errors.Is(terr, tailor.ErrExtraction):
			log.Printf("[pass] listing=%s ExtractionError, applying with base document: %v", l.ID, terr)
		default:
			log.Printf("[pass] listing=%s TailoringError, applying with base document: %v", l.ID, terr)
		}
	}

	pitch := tailor.PitchFallback
	if r.Pitch != nil {
		pitch = r.Pitch.Pitch(ctx, l.Title)
	}

	out := machine.Apply(ctx, l.ID, document)
	// Whatever the site saw is final; a cancelled pass must still record it.
	rctx := context.WithoutCancel(ctx)
	a := Attempt{
		ListingID: l.ID,
		Title:     l.Title,
		State:     out.State,
		Reason:    out.Reason,
		Steps:     out.Steps,
		Document:  document,
		Tailored:  tailored,
	}
	res.Attempts = append(res.Attempts, a)
	r.saveHistory(rctx, res.ID, a, v.Tags, out, started)
	r.publish(res.ID, events.AttemptFinished, a)

	if out.Err != nil && errors.Is(out.Err, browser.ErrSessionClosed) {
		return false, out.Err
	}
	if !out.Submitted() {
		return false, nil
	}

	res.Submitted = l.ID
	if err := r.ledger.Record(rctx, l.ID); err != nil {
		// the external submission already happened; surface, do not undo
		log.Printf("[ledger] LedgerWriteError listing=%s: %v", l.ID, err)
		res.LedgerError = err.Error()
	}

	label := notify.BaseDocumentLabel
	if tailored {
		label = filepath.Base(document)
	}
	nerr := r.Notifier.Notify(rctx, notify.Applied{
		ListingID: l.ID,
		Title:     l.Title,
		Document:  label,
		Pitch:     pitch,
		Tags:      v.Tags,
		AppliedAt: r.Now(),
	})
	if nerr != nil {
		log.Printf("[notify] listing=%s: %v", l.ID, nerr)
	}
	return true, nil
}

func (r *Runner) saveHistory(ctx context.Context, passID string, a Attempt, tags []string, out apply.Outcome, started time.Time) {
	if r.History == nil {
		return
	}
	row := store.Attempt{
		ID:         uuid.NewString(),
		PassID:     passID,
		ListingID:  a.ListingID,
		Title:      a.Title,
		Outcome:    string(out.State),
		Reason:     string(out.Reason),
		Steps:      out.Steps,
		Document:   a.Document,
		Tailored:   a.Tailored,
		Screenshot: out.Screenshot,
		Tags:       tags,
		StartedAt:  started,
		FinishedAt: r.Now(),
	}
	if out.Err != nil {
		row.Error = out.Err.Error()
	}
	if err := r.History(ctx, row); err != nil {
		log.Printf("[pass] history listing=%s: %v", a.ListingID, err)
	}
}

func (r *Runner) publish(passID, typ string, data any) {
	if r.Events == nil {
		return
	}
	r.Events.Publish(events.Encode(passID, typ, data))
}
