package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"
)

type LaunchOptions struct {
	ProfileDir string
	Headless   bool
	SlowMo     time.Duration
}

// Session is one persistent Chromium profile with a single visible page.
type Session struct {
	pw   *playwright.Playwright
	bc   playwright.BrowserContext
	page playwright.Page
}

// Launch starts Chromium on a persistent profile so the logged-in session survives restarts.
func Launch(opts LaunchOptions) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	bc, err := pw.Chromium.LaunchPersistentContext(opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium profile=%s: %w", opts.ProfileDir, err)
	}

	var page playwright.Page
	if pages := bc.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = bc.NewPage()
		if err != nil {
			_ = bc.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("open page: %w", err)
		}
	}

	return &Session{pw: pw, bc: bc, page: page}, nil
}

func (s *Session) Page() Page { return &pwPage{p: s.page} }

func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.bc != nil {
		errs = append(errs, s.bc.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}

type pwPage struct {
	p playwright.Page
}

func (w *pwPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := w.p.Goto(url)
	return translate(err)
}

func (w *pwPage) Query(ctx context.Context, selector string) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := w.p.QuerySelector(selector)
	if err != nil {
		return nil, translate(err)
	}
	if h == nil {
		return nil, nil
	}
	return &pwElement{h: h}, nil
}

func (w *pwPage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hs, err := w.p.QuerySelectorAll(selector)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]Element, 0, len(hs))
	for _, h := range hs {
		out = append(out, &pwElement{h: h})
	}
	return out, nil
}

func (w *pwPage) IsVisible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := w.p.IsVisible(selector)
	return ok, translate(err)
}

func (w *pwPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := w.p.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return translate(err)
}

func (w *pwPage) Screenshot(ctx context.Context, path string) error {
	_, err := w.p.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("[browser] screenshot path=%s err=%v", path, err)
	}
	return translate(err)
}

type pwElement struct {
	h playwright.ElementHandle
}

func (e *pwElement) Click(ctx context.Context, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(e.h.Click(playwright.ElementHandleClickOptions{Force: playwright.Bool(force)}))
}

func (e *pwElement) Attribute(ctx context.Context, name string) (string, error) {
	v, err := e.h.GetAttribute(name)
	return v, translate(err)
}

func (e *pwElement) InnerText(ctx context.Context) (string, error) {
	v, err := e.h.InnerText()
	return v, translate(err)
}

func (e *pwElement) InnerHTML(ctx context.Context) (string, error) {
	v, err := e.h.InnerHTML()
	return v, translate(err)
}

func (e *pwElement) SetInputFiles(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return translate(e.h.SetInputFiles(path))
}

func (e *pwElement) ScrollIntoView(ctx context.Context) error {
	return translate(e.h.ScrollIntoViewIfNeeded())
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	default:
		return err
	}
}
