package apply

import (
	"context"
	"errors"
	"log"
	"time"

	"autoapply-engine/internal/browser"
	"autoapply-engine/internal/config"
)

type Options struct {
	AutoSubmit   bool
	MaxSteps     int
	ClickSettle  time.Duration
	StepSettle   time.Duration
	ModalTimeout time.Duration
	Selectors    config.Selectors
}

func OptionsFrom(cfg config.Config) Options {
	return Options{
		AutoSubmit:   cfg.Apply.AutoSubmit,
		MaxSteps:     cfg.Apply.MaxSteps,
		ClickSettle:  cfg.Apply.ClickSettle(),
		StepSettle:   cfg.Apply.StepSettle(),
		ModalTimeout: cfg.Apply.ModalTimeout(),
		Selectors:    cfg.Selectors,
	}
}

// Screenshotter captures a diagnostic image and returns where it went ("" when it could not).
type Screenshotter interface {
	Capture(ctx context.Context, page browser.Page, reason, listingID string) string
}

// Machine drives one listing's apply modal to Submitted, Declined or Failed.
type Machine struct {
	page  browser.Page
	opts  Options
	shots Screenshotter

	// Sleep is the settle-interval wait; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func New(page browser.Page, opts Options, shots Screenshotter) *Machine {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 9
	}
	return &Machine{page: page, opts: opts, shots: shots, Sleep: browser.Sleep}
}

// Apply runs the machine for one listing. document is offered to every upload control.
func (m *Machine) Apply(ctx context.Context, listingID, document string) Outcome {
	att := &Attempt{ListingID: listingID, Document: document, State: StateIdle}

	var (
		reason Reason
		err    error
	)
	for !att.State.Terminal() {
		var next State
		switch att.State {
		case StateIdle:
			next, reason, err = m.locateTrigger(ctx, att)
		case StateAwaitingModal:
			next, reason, err = m.openModal(ctx, att)
		case StateStepLoop:
			next, reason, err = m.step(ctx, att)
		}
		att.State = next
	}
	return m.finish(ctx, att, reason, err)
}

func (m *Machine) locateTrigger(ctx context.Context, att *Attempt) (State, Reason, error) {
	m.dismissOverlay(ctx)

	trigger, sel, err := browser.FirstVisible(ctx, m.page, m.opts.Selectors.ApplyTrigger)
	if err != nil {
		return StateFailed, ReasonUnhandledError, err
	}
	if trigger == nil {
		return StateFailed, ReasonNoApplyAffordance, nil
	}
	log.Printf("[apply] listing=%s trigger=%q", att.ListingID, sel)
	att.trigger = trigger
	return StateAwaitingModal, ReasonNone, nil
}

// dismissOverlay closes a chat bubble that can cover the apply button.
// Optional: on any failure the overlay is left in place and the flow continues.
func (m *Machine) dismissOverlay(ctx context.Context) {
	sel := m.opts.Selectors.OverlayClose
	if sel == "" {
		return
	}
	visible, err := m.page.IsVisible(ctx, sel)
	if err != nil || !visible {
		return
	}
	el, err := m.page.Query(ctx, sel)
	if err != nil || el == nil {
		return
	}
	if err := el.Click(ctx, false); err != nil {
		log.Printf("[apply] overlay dismiss failed, continuing: %v", err)
	}
}

// openModal clicks the trigger, and clicks once more if the modal has not
// rendered after the settle interval. Clicking an open modal's trigger is harmless.
func (m *Machine) openModal(ctx context.Context, att *Attempt) (State, Reason, error) {
	modal := m.opts.Selectors.Modal

	if err := m.clickTrigger(ctx, att); err != nil {
		return StateFailed, ReasonUnhandledError, err
	}
	visible, err := m.page.IsVisible(ctx, modal)
	if err != nil {
		return StateFailed, ReasonUnhandledError, err
	}
	if !visible {
		log.Printf("[apply] listing=%s modal not visible, double-tapping", att.ListingID)
		if err := m.clickTrigger(ctx, att); err != nil {
			return StateFailed, ReasonUnhandledError, err
		}
	}

	err = m.page.WaitForSelector(ctx, modal, m.opts.ModalTimeout)
	switch {
	case err == nil:
		log.Printf("[apply] listing=%s modal detected after %d click(s)", att.ListingID, att.TriggerClicks)
		return StateStepLoop, ReasonNone, nil
	case errors.Is(err, browser.ErrTimeout):
		return StateFailed, ReasonModalNeverAppeared, nil
	default:
		return StateFailed, ReasonUnhandledError, err
	}
}

func (m *Machine) clickTrigger(ctx context.Context, att *Attempt) error {
	if err := att.trigger.Click(ctx, true); err != nil {
		return err
	}
	att.TriggerClicks++
	return m.Sleep(ctx, m.opts.ClickSettle)
}

// step runs one iteration of the modal loop.
func (m *Machine) step(ctx context.Context, att *Attempt) (State, Reason, error) {
	if att.Step >= m.opts.MaxSteps {
		return StateFailed, ReasonStepLimitExceeded, nil
	}
	att.Step++

	if err := m.Sleep(ctx, m.opts.StepSettle); err != nil {
		return StateFailed, ReasonUnhandledError, err
	}
	if err := m.offerDocument(ctx, att); err != nil {
		return StateFailed, ReasonUnhandledError, err
	}

	pr, el, err := browser.FirstPresent(ctx, m.page, m.stepProbes())
	if err != nil {
		return StateFailed, ReasonUnhandledError, err
	}
	att.Last = Affordance(pr.Capability)

	switch att.Last {
	case AffordanceSubmit:
		if !m.opts.AutoSubmit {
			log.Printf("[apply] listing=%s auto-submit off, leaving form ready to submit", att.ListingID)
			return StateDeclined, ReasonNone, nil
		}
		if err := el.Click(ctx, false); err != nil {
			return StateFailed, ReasonUnhandledError, err
		}
		log.Printf("[apply] listing=%s final submit clicked (step %d)", att.ListingID, att.Step)
		return StateSubmitted, ReasonNone, nil
	case AffordanceReview, AffordanceAdvance:
		if err := el.Click(ctx, false); err != nil {
			return StateFailed, ReasonUnhandledError, err
		}
		return StateStepLoop, ReasonNone, nil
	default:
		return StateFailed, ReasonStuckStep, nil
	}
}

// stepProbes orders affordances submit > review > advance; a step can show several at once.
func (m *Machine) stepProbes() []browser.Probe {
	s := m.opts.Selectors
	var probes []browser.Probe
	probes = append(probes, browser.Probes(string(AffordanceSubmit), s.Submit...)...)
	probes = append(probes, browser.Probes(string(AffordanceReview), s.Review...)...)
	probes = append(probes, browser.Probes(string(AffordanceAdvance), s.Advance...)...)
	return probes
}

// offerDocument fills an upload control when the step has one. Some steps only
// offer an optional upload, so a failed upload is logged and the step continues.
// Only driver errors while looking for the control are returned.
func (m *Machine) offerDocument(ctx context.Context, att *Attempt) error {
	input, err := m.page.Query(ctx, m.opts.Selectors.Upload)
	if err != nil {
		return err
	}
	if input == nil || att.Document == "" {
		return nil
	}
	att.Last = AffordanceUpload
	log.Printf("[apply] listing=%s uploading %s", att.ListingID, att.Document)
	if err := input.SetInputFiles(ctx, att.Document); err != nil {
		log.Printf("[apply] listing=%s upload failed, continuing: %v", att.ListingID, err)
		return nil
	}
	att.Uploads++
	return nil
}

func (m *Machine) finish(ctx context.Context, att *Attempt, reason Reason, err error) Outcome {
	out := Outcome{
		ListingID: att.ListingID,
		State:     att.State,
		Reason:    reason,
		Steps:     att.Step,
		Last:      att.Last,
		Err:       err,
	}
	if out.State != StateFailed {
		return out
	}
	if m.shots != nil {
		// capture even when the pass context was cancelled
		out.Screenshot = m.shots.Capture(context.WithoutCancel(ctx), m.page, string(reason), att.ListingID)
	}
	log.Printf("[apply] listing=%s failed reason=%s steps=%d err=%v screenshot=%s",
		att.ListingID, reason, att.Step, err, out.Screenshot)
	return out
}
