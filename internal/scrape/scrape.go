// Package scrape discovers listing cards on the search view and reads a
// listing's detail pane.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"autoapply-engine/internal/browser"
	"autoapply-engine/internal/config"
	"autoapply-engine/internal/domain"
)

// ErrNoCards means the search view rendered no listing cards in time.
var ErrNoCards = errors.New("scrape: listing cards never rendered")

// Card is one listing card from the search results, in view order.
type Card struct {
	ID string
	el browser.Element
}

type Scraper struct {
	page      browser.Page
	sel       config.Selectors
	searchURL string
	timeout   time.Duration
	settle    time.Duration

	Sleep func(ctx context.Context, d time.Duration) error
}

func New(page browser.Page, cfg config.Config) *Scraper {
	return &Scraper{
		page:      page,
		sel:       cfg.Selectors,
		searchURL: cfg.Browser.SearchURL,
		timeout:   cfg.Pass.DiscoveryTimeout(),
		settle:    cfg.Pass.CardSettle(),
		Sleep:     browser.Sleep,
	}
}

// Discover loads the search view and returns up to topN cards that carry an id.
// topN counts identifiable cards, not cards in view: cards without an id
// cannot be deduplicated, so they are skipped and do not use up the budget.
// topN <= 0 returns every identifiable card.
func (s *Scraper) Discover(ctx context.Context, topN int) ([]Card, error) {
	if err := s.page.Navigate(ctx, s.searchURL); err != nil {
		return nil, fmt.Errorf("navigate search: %w", err)
	}
	if err := s.page.WaitForSelector(ctx, s.sel.Cards, s.timeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return nil, ErrNoCards
		}
		return nil, fmt.Errorf("wait for cards: %w", err)
	}

	els, err := s.page.QueryAll(ctx, s.sel.Cards)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}

	var out []Card
	for _, el := range els {
		if topN > 0 && len(out) >= topN {
			break
		}
		id, err := el.Attribute(ctx, s.sel.CardIDAttr)
		if err != nil {
			return nil, fmt.Errorf("card id: %w", err)
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, Card{ID: id, el: el})
	}
	log.Printf("[scrape] discovered %d card(s) (of %d on page)", len(out), len(els))
	return out, nil
}

// Open selects a card and reads the detail pane. An empty Title means no
// title variant resolved. The description is read only when withDescription is set.
func (s *Scraper) Open(ctx context.Context, c Card, withDescription bool) (domain.Listing, error) {
	l := domain.Listing{ID: c.ID}

	if err := c.el.ScrollIntoView(ctx); err != nil {
		return l, fmt.Errorf("scroll card %s: %w", c.ID, err)
	}
	if err := c.el.Click(ctx, false); err != nil {
		return l, fmt.Errorf("click card %s: %w", c.ID, err)
	}
	if err := s.Sleep(ctx, s.settle); err != nil {
		return l, err
	}

	title, err := browser.FirstText(ctx, s.page, s.sel.Title)
	if err != nil {
		return l, fmt.Errorf("title %s: %w", c.ID, err)
	}
	l.Title = CleanText(title)
	if l.Title == "" || !withDescription {
		return l, nil
	}

	html, err := browser.FirstHTML(ctx, s.page, s.sel.Description)
	if err != nil {
		return l, fmt.Errorf("description %s: %w", c.ID, err)
	}
	l.Description = PlainText(html)
	return l, nil
}
