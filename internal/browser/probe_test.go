package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"autoapply-engine/internal/browser"
	"autoapply-engine/internal/browser/browsertest"
)

func TestFirstPresentHonoursOrder(t *testing.T) {
	ctx := context.Background()
	page := browsertest.NewPage()
	page.Set("#next", &browsertest.Element{})
	page.Set("#submit", &browsertest.Element{})

	probes := append(browser.Probes("submit", "#submit"), browser.Probes("advance", "#next")...)
	pr, el, err := browser.FirstPresent(ctx, page, probes)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if el == nil || pr.Capability != "submit" {
		t.Fatalf("got %q, want submit", pr.Capability)
	}

	page.Remove("#submit")
	pr, _, _ = browser.FirstPresent(ctx, page, probes)
	if pr.Capability != "advance" {
		t.Fatalf("got %q, want advance", pr.Capability)
	}

	page.Remove("#next")
	pr, el, err = browser.FirstPresent(ctx, page, probes)
	if err != nil || el != nil || pr.Capability != "" {
		t.Fatalf("expected no match, got %q el=%v err=%v", pr.Capability, el, err)
	}
}

func TestFirstPresentPropagatesDriverErrors(t *testing.T) {
	page := browsertest.NewPage()
	boom := errors.New("boom")
	page.QueryErr["#a"] = boom
	_, _, err := browser.FirstPresent(context.Background(), page, browser.Probes("x", "#a", "#b"))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestFirstVisibleSkipsHidden(t *testing.T) {
	page := browsertest.NewPage()
	hidden := &browsertest.Element{Text: "hidden"}
	shown := &browsertest.Element{Text: "shown"}
	page.Set("a", hidden)
	page.Hide("a")
	page.Set("b", shown)

	el, sel, err := browser.FirstVisible(context.Background(), page, []string{"missing", "a", "b"})
	if err != nil {
		t.Fatalf("first visible: %v", err)
	}
	if sel != "b" || el != shown {
		t.Fatalf("got selector %q, want b", sel)
	}
}

func TestFirstTextSkipsBlank(t *testing.T) {
	page := browsertest.NewPage()
	page.Set("h2", &browsertest.Element{Text: "   "})
	page.Set("h1", &browsertest.Element{Text: "  Security Engineer \n"})

	got, err := browser.FirstText(context.Background(), page, []string{"h3", "h2", "h1"})
	if err != nil {
		t.Fatalf("first text: %v", err)
	}
	if got != "Security Engineer" {
		t.Fatalf("got %q", got)
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := browser.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPacedPageWrapsElements(t *testing.T) {
	page := browsertest.NewPage()
	btn := &browsertest.Element{}
	page.Set("button", btn)
	paced := browser.NewPacedPage(page, 1000, 5)

	el, err := paced.Query(context.Background(), "button")
	if err != nil || el == nil {
		t.Fatalf("query: el=%v err=%v", el, err)
	}
	if err := el.Click(context.Background(), true); err != nil {
		t.Fatalf("click: %v", err)
	}
	if btn.Clicks != 1 || btn.Forced != 1 {
		t.Fatalf("clicks=%d forced=%d", btn.Clicks, btn.Forced)
	}

	missing, err := paced.Query(context.Background(), "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing element should be nil, got %v", missing)
	}
}
