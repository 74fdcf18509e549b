package apply

import "autoapply-engine/internal/browser"

// State is a node of the apply-modal state machine.
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingModal State = "awaiting_modal"
	StateStepLoop      State = "step_loop"
	StateSubmitted     State = "submitted"
	StateDeclined      State = "declined"
	StateFailed        State = "failed"
)

func (s State) Terminal() bool {
	return s == StateSubmitted || s == StateDeclined || s == StateFailed
}

// Reason explains a Failed outcome.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNoApplyAffordance  Reason = "NoApplyAffordance"
	ReasonModalNeverAppeared Reason = "ModalNeverAppeared"
	ReasonStuckStep          Reason = "StuckStep"
	ReasonStepLimitExceeded  Reason = "StepLimitExceeded"
	ReasonUnhandledError     Reason = "UnhandledError"
)

// Affordance is a control the current modal step exposes.
type Affordance string

const (
	AffordanceNone    Affordance = ""
	AffordanceUpload  Affordance = "upload"
	AffordanceAdvance Affordance = "advance"
	AffordanceReview  Affordance = "review"
	AffordanceSubmit  Affordance = "submit"
)

// Attempt is the run-state of one listing inside Apply. It is never persisted.
type Attempt struct {
	ListingID string
	Document  string

	State State
	// Step counts loop iterations started so far.
	Step int
	Last Affordance
	// TriggerClicks is the double-tap counter; it never exceeds 2.
	TriggerClicks int
	Uploads       int

	trigger browser.Element
}

// Outcome is the single result Apply yields for a listing.
type Outcome struct {
	ListingID  string
	State      State
	Reason     Reason
	Steps      int
	Last       Affordance
	Err        error
	Screenshot string
}

func (o Outcome) Submitted() bool { return o.State == StateSubmitted }
