package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"autoapply-engine/internal/browser"
	"autoapply-engine/internal/browser/browsertest"
	"autoapply-engine/internal/config"
)

func newScraper(page browser.Page) *Scraper {
	s := New(page, config.Default())
	s.Sleep = func(context.Context, time.Duration) error { return nil }
	return s
}

func card(id string) *browsertest.Element {
	return &browsertest.Element{Attrs: map[string]string{"data-job-id": id}}
}

func TestDiscoverTopNSkipsMissingIDs(t *testing.T) {
	cfg := config.Default()
	page := browsertest.NewPage()
	page.Set(cfg.Selectors.Cards, &browsertest.Element{})
	page.SetList(cfg.Selectors.Cards, card("1"), card(""), card("2"), card("3"), card("4"))

	cards, err := newScraper(page).Discover(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	if strings.Join(ids, ",") != "1,2,3" {
		t.Fatalf("ids = %v", ids)
	}
	if len(page.Navigated) != 1 || page.Navigated[0] != cfg.Browser.SearchURL {
		t.Fatalf("navigated = %v", page.Navigated)
	}
}

func TestDiscoverBudgetIgnoresLeadingCardsWithoutID(t *testing.T) {
	cfg := config.Default()
	page := browsertest.NewPage()
	page.Set(cfg.Selectors.Cards, &browsertest.Element{})
	page.SetList(cfg.Selectors.Cards, card(""), card("  "), &browsertest.Element{}, card("7"), card("8"), card("9"))

	cards, err := newScraper(page).Discover(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 || cards[0].ID != "7" || cards[1].ID != "8" {
		t.Fatalf("cards = %+v", cards)
	}

	all, err := newScraper(page).Discover(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("unbounded = %d cards", len(all))
	}
}

func TestDiscoverNoCards(t *testing.T) {
	page := browsertest.NewPage()
	_, err := newScraper(page).Discover(context.Background(), 5)
	if !errors.Is(err, ErrNoCards) {
		t.Fatalf("err = %v, want ErrNoCards", err)
	}
}

func TestDiscoverNavigateError(t *testing.T) {
	page := browsertest.NewPage()
	page.NavigateErr = browser.ErrSessionClosed
	_, err := newScraper(page).Discover(context.Background(), 5)
	if !errors.Is(err, browser.ErrSessionClosed) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenReadsTitleVariantsAndDescription(t *testing.T) {
	sel := config.Default().Selectors
	page := browsertest.NewPage()
	page.Set(sel.Title[0], &browsertest.Element{Text: "   "})
	page.Set(sel.Title[1], &browsertest.Element{Text: " Security Engineer Intern "})
	page.Set(sel.Description[0], &browsertest.Element{HTML: "<p>Build <b>things</b>.</p><ul><li>Go</li></ul>"})

	c := card("42")
	page.SetList(sel.Cards, c)
	page.Set(sel.Cards, c)
	cards, err := newScraper(page).Discover(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}

	l, err := newScraper(page).Open(context.Background(), cards[0], true)
	if err != nil {
		t.Fatal(err)
	}
	if l.ID != "42" || l.Title != "Security Engineer Intern" {
		t.Fatalf("listing = %+v", l)
	}
	if l.Description != "Build things.\n- Go" {
		t.Fatalf("description = %q", l.Description)
	}
	if c.Clicks != 1 || c.Scrolled != 1 {
		t.Fatalf("card clicks=%d scrolled=%d", c.Clicks, c.Scrolled)
	}
}

func TestOpenWithoutTitleSkipsDescription(t *testing.T) {
	sel := config.Default().Selectors
	page := browsertest.NewPage()
	page.QueryErr[sel.Description[0]] = errors.New("should not be queried")
	c := card("7")
	page.Set(sel.Cards, c)
	page.SetList(sel.Cards, c)
	cards, _ := newScraper(page).Discover(context.Background(), 5)

	l, err := newScraper(page).Open(context.Background(), cards[0], true)
	if err != nil {
		t.Fatal(err)
	}
	if l.Title != "" {
		t.Fatalf("title = %q", l.Title)
	}
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"just text":                            "just text",
		"<div>flat <span>markup</span></div>":  "flat markup",
		"<p>a</p><script>x()</script><p>b</p>": "a\nb",
		"<div><span>We need a Go engineer to build SOC automation.</span><br>5 years required.<ul><li>Kubernetes</li></ul></div>": "We need a Go engineer to build SOC automation.\n5 years required.\n- Kubernetes",
		"<div>Intro<div>Team <b>Blue</b></div>Outro</div>":                                                                        "Intro\nTeam Blue\nOutro",
		"<ul><li><p>nested</p></li><li></li></ul>after":                                                                           "- nested\nafter",
	}
	for in, want := range cases {
		if got := PlainText(in); got != want {
			t.Errorf("PlainText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
