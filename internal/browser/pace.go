package browser

import (
	"context"

	"golang.org/x/time/rate"
)

// PacedPage rate-limits the actions a human would perform (navigation, clicks,
// uploads) so the session never bursts faster than the configured pace.
// Reads (queries, visibility checks) pass straight through.
type PacedPage struct {
	Page
	lim *rate.Limiter
}

func NewPacedPage(p Page, actionsPerSec float64, burst int) *PacedPage {
	if burst <= 0 {
		burst = 1
	}
	return &PacedPage{Page: p, lim: rate.NewLimiter(rate.Limit(actionsPerSec), burst)}
}

func (pp *PacedPage) Navigate(ctx context.Context, url string) error {
	if err := pp.lim.Wait(ctx); err != nil {
		return err
	}
	return pp.Page.Navigate(ctx, url)
}

func (pp *PacedPage) Query(ctx context.Context, selector string) (Element, error) {
	el, err := pp.Page.Query(ctx, selector)
	if el == nil || err != nil {
		return nil, err
	}
	return &pacedElement{Element: el, lim: pp.lim}, nil
}

func (pp *PacedPage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := pp.Page.QueryAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &pacedElement{Element: el, lim: pp.lim}
	}
	return out, nil
}

type pacedElement struct {
	Element
	lim *rate.Limiter
}

func (e *pacedElement) Click(ctx context.Context, force bool) error {
	if err := e.lim.Wait(ctx); err != nil {
		return err
	}
	return e.Element.Click(ctx, force)
}

func (e *pacedElement) SetInputFiles(ctx context.Context, path string) error {
	if err := e.lim.Wait(ctx); err != nil {
		return err
	}
	return e.Element.SetInputFiles(ctx, path)
}
