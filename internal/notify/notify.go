// Package notify announces successful applications. Delivery is best effort:
// callers log a returned error and carry on.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autoapply-engine/internal/config"
)

// BaseDocumentLabel names the untailored document in notifications.
const BaseDocumentLabel = "Base PDF"

// Applied describes one submitted application.
type Applied struct {
	ListingID string    `json:"listingId"`
	Title     string    `json:"title"`
	Document  string    `json:"document"`
	Pitch     string    `json:"pitch"`
	Tags      []string  `json:"tags,omitempty"`
	AppliedAt time.Time `json:"appliedAt"`
}

type Notifier interface {
	Notify(ctx context.Context, a Applied) error
}

// FormatApplied renders the chat message posted to the webhook.
func FormatApplied(a Applied) string {
	doc := a.Document
	if doc == "" {
		doc = BaseDocumentLabel
	}
	return fmt.Sprintf("🎯 **Applied:** %s\n**Resume:** %s\n**AI Pitch:** %s", a.Title, doc, a.Pitch)
}

type Nop struct{}

func (Nop) Notify(context.Context, Applied) error { return nil }

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, a Applied) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds the notifiers that have their endpoint configured.
func FromConfig(cfg config.NotifyConfig) (Notifier, func() error, error) {
	var (
		out     Multi
		closers []func() error
	)
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.WebhookURL != "" {
		out = append(out, NewWebhook(cfg.WebhookURL, timeout))
	}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, timeout)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, k)
		closers = append(closers, k.Close)
	}

	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
	if len(out) == 0 {
		return Nop{}, closeAll, nil
	}
	return out, closeAll, nil
}
