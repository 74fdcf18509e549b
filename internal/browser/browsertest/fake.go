// Package browsertest provides an in-memory browser.Page for tests.
package browsertest

import (
	"context"
	"os"
	"sync"
	"time"

	"autoapply-engine/internal/browser"
)

// Page is a scriptable fake. Elements are keyed by selector; a selector that
// is present is also visible unless Hidden marks it otherwise.
type Page struct {
	mu       sync.Mutex
	elements map[string]*Element
	lists    map[string][]browser.Element
	hidden   map[string]bool

	Navigated []string
	Shots     []string
	Waits     []string

	NavigateErr error
	QueryErr    map[string]error
	// WriteShots makes Screenshot create an empty file at the requested path.
	WriteShots bool
}

func NewPage() *Page {
	return &Page{
		elements: map[string]*Element{},
		lists:    map[string][]browser.Element{},
		hidden:   map[string]bool{},
		QueryErr: map[string]error{},
	}
}

func (p *Page) Set(selector string, el *Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = el
	delete(p.hidden, selector)
}

func (p *Page) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

// Hide keeps the element queryable but reports it as not visible.
func (p *Page) Hide(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hidden[selector] = true
}

func (p *Page) SetList(selector string, els ...*Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	p.lists[selector] = out
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Navigated = append(p.Navigated, url)
	return p.NavigateErr
}

func (p *Page) Query(ctx context.Context, selector string) (browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.QueryErr[selector]; err != nil {
		return nil, err
	}
	el, ok := p.elements[selector]
	if !ok {
		return nil, nil
	}
	return el, nil
}

func (p *Page) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.QueryErr[selector]; err != nil {
		return nil, err
	}
	return p.lists[selector], nil
}

func (p *Page) IsVisible(ctx context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.QueryErr[selector]; err != nil {
		return false, err
	}
	_, ok := p.elements[selector]
	return ok && !p.hidden[selector], nil
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	p.Waits = append(p.Waits, selector)
	p.mu.Unlock()
	ok, err := p.IsVisible(ctx, selector)
	if err != nil {
		return err
	}
	if !ok {
		return browser.ErrTimeout
	}
	return nil
}

func (p *Page) Screenshot(ctx context.Context, path string) error {
	p.mu.Lock()
	p.Shots = append(p.Shots, path)
	write := p.WriteShots
	p.mu.Unlock()
	if write {
		return os.WriteFile(path, nil, 0o644)
	}
	return nil
}

type Element struct {
	mu sync.Mutex

	Text  string
	HTML  string
	Attrs map[string]string

	ClickErr  error
	UploadErr error
	// OnClick runs after every successful click; use it to advance page state.
	OnClick func()

	Clicks   int
	Forced   int
	Uploads  []string
	Scrolled int
}

func (e *Element) Click(ctx context.Context, force bool) error {
	e.mu.Lock()
	if e.ClickErr != nil {
		e.mu.Unlock()
		return e.ClickErr
	}
	e.Clicks++
	if force {
		e.Forced++
	}
	hook := e.OnClick
	e.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Attrs[name], nil
}

func (e *Element) InnerText(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Text, nil
}

func (e *Element) InnerHTML(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.HTML, nil
}

func (e *Element) SetInputFiles(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.UploadErr != nil {
		return e.UploadErr
	}
	e.Uploads = append(e.Uploads, path)
	return nil
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Scrolled++
	return nil
}

func (e *Element) ClickCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Clicks
}
