package browser

import (
	"context"
	"strings"
)

// Probe pairs a capability name with one selector that may expose it.
type Probe struct {
	Capability string
	Selector   string
}

// Probes expands selector variants into probes for one capability, keeping order.
func Probes(capability string, selectors ...string) []Probe {
	out := make([]Probe, 0, len(selectors))
	for _, s := range selectors {
		out = append(out, Probe{Capability: capability, Selector: s})
	}
	return out
}

// FirstPresent tries probes in order and returns the first one whose selector
// matches an element. A zero Probe and nil Element mean nothing matched.
func FirstPresent(ctx context.Context, p Page, probes []Probe) (Probe, Element, error) {
	for _, pr := range probes {
		el, err := p.Query(ctx, pr.Selector)
		if err != nil {
			return Probe{}, nil, err
		}
		if el != nil {
			return pr, el, nil
		}
	}
	return Probe{}, nil, nil
}

// FirstVisible returns the first selector variant that is currently visible.
func FirstVisible(ctx context.Context, p Page, selectors []string) (Element, string, error) {
	for _, s := range selectors {
		ok, err := p.IsVisible(ctx, s)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			continue
		}
		el, err := p.Query(ctx, s)
		if err != nil {
			return nil, "", err
		}
		if el != nil {
			return el, s, nil
		}
	}
	return nil, "", nil
}

// FirstText returns the trimmed inner text of the first variant that yields
// a non-empty string.
func FirstText(ctx context.Context, p Page, selectors []string) (string, error) {
	for _, s := range selectors {
		el, err := p.Query(ctx, s)
		if err != nil {
			return "", err
		}
		if el == nil {
			continue
		}
		txt, err := el.InnerText(ctx)
		if err != nil {
			return "", err
		}
		if txt = strings.TrimSpace(txt); txt != "" {
			return txt, nil
		}
	}
	return "", nil
}

// FirstHTML is FirstText for inner HTML.
func FirstHTML(ctx context.Context, p Page, selectors []string) (string, error) {
	for _, s := range selectors {
		el, err := p.Query(ctx, s)
		if err != nil {
			return "", err
		}
		if el == nil {
			continue
		}
		h, err := el.InnerHTML(ctx)
		if err != nil {
			return "", err
		}
		if h = strings.TrimSpace(h); h != "" {
			return h, nil
		}
	}
	return "", nil
}
