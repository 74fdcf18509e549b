package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Attempt is the history row for one listing run through the apply flow.
type Attempt struct {
	ID         string    `json:"id"`
	PassID     string    `json:"passId"`
	ListingID  string    `json:"listingId"`
	Title      string    `json:"title"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Steps      int       `json:"steps"`
	Document   string    `json:"document"`
	Tailored   bool      `json:"tailored"`
	Screenshot string    `json:"screenshot,omitempty"`
	Tags       []string  `json:"tags"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

func InsertAttempt(ctx context.Context, db *sql.DB, a Attempt) error {
	if a.Tags == nil {
		a.Tags = []string{}
	}
	tagsB, _ := json.Marshal(a.Tags)
	tailored := 0
	if a.Tailored {
		tailored = 1
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO attempts (id, pass_id, listing_id, title, outcome, reason, steps, document, tailored, screenshot, tags, error, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		a.ID, a.PassID, a.ListingID, a.Title, a.Outcome, a.Reason, a.Steps, a.Document, tailored,
		a.Screenshot, string(tagsB), a.Error, formatTime(a.StartedAt), formatTime(a.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

type ListAttemptsOpts struct {
	ListingID string
	Outcome   string
	Limit     int
}

// ListAttempts returns the newest attempts first.
func ListAttempts(ctx context.Context, db *sql.DB, opts ListAttemptsOpts) ([]Attempt, error) {
	if opts.Limit <= 0 || opts.Limit > 1000 {
		opts.Limit = 100
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, pass_id, listing_id, title, outcome, reason, steps, document, tailored, screenshot, tags, error, started_at, finished_at
FROM attempts
WHERE (? = '' OR listing_id = ?)
  AND (? = '' OR outcome = ?)
ORDER BY started_at DESC, rowid DESC
LIMIT ?;`,
		opts.ListingID, opts.ListingID, opts.Outcome, opts.Outcome, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var tailored int
		var tagsJSON, started, finished string
		if err := rows.Scan(
			&a.ID, &a.PassID, &a.ListingID, &a.Title, &a.Outcome, &a.Reason, &a.Steps,
			&a.Document, &tailored, &a.Screenshot, &tagsJSON, &a.Error, &started, &finished,
		); err != nil {
			return nil, err
		}
		a.Tailored = tailored != 0
		_ = json.Unmarshal([]byte(tagsJSON), &a.Tags)
		a.StartedAt = parseTime(started)
		a.FinishedAt = parseTime(finished)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CleanupOldAttempts drops history older than three months before now.
func CleanupOldAttempts(ctx context.Context, db *sql.DB, now time.Time) (deleted int64, err error) {
	res, err := db.ExecContext(ctx, `
DELETE FROM attempts
WHERE started_at < ?;`, formatTime(now.AddDate(0, -3, 0)))
	if err != nil {
		return 0, fmt.Errorf("cleanup old attempts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
