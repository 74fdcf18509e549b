// Package browser is the narrow DOM surface the apply engine drives.
// Selector misses are ordinary results (nil element, false), never errors.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned by WaitForSelector when the selector never became visible.
	ErrTimeout = errors.New("browser: timed out waiting for selector")
	// ErrSessionClosed means the page or browser went away; nothing further can run on it.
	ErrSessionClosed = errors.New("browser: session closed")
)

type Element interface {
	Click(ctx context.Context, force bool) error
	// Attribute returns "" when the attribute is absent.
	Attribute(ctx context.Context, name string) (string, error)
	InnerText(ctx context.Context) (string, error)
	InnerHTML(ctx context.Context) (string, error)
	SetInputFiles(ctx context.Context, path string) error
	ScrollIntoView(ctx context.Context) error
}

type Page interface {
	Navigate(ctx context.Context, url string) error
	// Query returns (nil, nil) when nothing matches.
	Query(ctx context.Context, selector string) (Element, error)
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	IsVisible(ctx context.Context, selector string) (bool, error)
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	Screenshot(ctx context.Context, path string) error
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
