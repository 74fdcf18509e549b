package workflow

import (
	"time"

	"autoapply-engine/internal/apply"
)

// Skip reasons counted per pass.
const (
	SkipAlreadyApplied = "already_applied"
	SkipOpenFailed     = "open_failed"
	SkipNoTitle        = "no_title"
	SkipFiltered       = "filtered"
)

type Attempt struct {
	ListingID string       `json:"listingId"`
	Title     string       `json:"title"`
	State     apply.State  `json:"state"`
	Reason    apply.Reason `json:"reason,omitempty"`
	Steps     int          `json:"steps"`
	Document  string       `json:"document"`
	Tailored  bool         `json:"tailored"`
}

// Result summarises one pass.
type Result struct {
	ID          string         `json:"id"`
	StartedAt   time.Time      `json:"startedAt"`
	FinishedAt  time.Time      `json:"finishedAt"`
	Candidates  int            `json:"candidates"`
	Skipped     map[string]int `json:"skipped"`
	Attempts    []Attempt      `json:"attempts"`
	Submitted   string         `json:"submitted,omitempty"`
	LedgerError string         `json:"ledgerError,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func (r *Result) skip(reason string) { r.Skipped[reason]++ }
