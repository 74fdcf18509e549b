package domain

import "time"

// Listing is a job posting observed during one pass. Only ID outlives the pass (via the ledger).
type Listing struct {
	ID          string
	Title       string
	Description string // may be empty when not rendered or tailoring is off
}

// Artifact is a tailored application document written to the staging area.
type Artifact struct {
	ListingID string
	Title     string
	Summary   string
	Path      string
	CreatedAt time.Time
}
