package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func HasApplied(ctx context.Context, db *sql.DB, listingID string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM applied_listings WHERE listing_id = ? LIMIT 1;`, listingID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has applied: %w", err)
	}
	return true, nil
}

// RecordApplied inserts the id once; added is false when it was already present.
func RecordApplied(ctx context.Context, db *sql.DB, listingID string, at time.Time) (added bool, err error) {
	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO applied_listings (listing_id, applied_at)
VALUES (?, ?);`, listingID, formatTime(at))
	if err != nil {
		return false, fmt.Errorf("record applied: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return n > 0, nil
}

type AppliedListing struct {
	ListingID string    `json:"listingId"`
	AppliedAt time.Time `json:"appliedAt"`
}

// ListApplied returns every recorded id in the order it was first recorded.
func ListApplied(ctx context.Context, db *sql.DB) ([]AppliedListing, error) {
	rows, err := db.QueryContext(ctx, `
SELECT listing_id, applied_at
FROM applied_listings
ORDER BY seq ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list applied: %w", err)
	}
	defer rows.Close()

	var out []AppliedListing
	for rows.Next() {
		var a AppliedListing
		var at string
		if err := rows.Scan(&a.ListingID, &at); err != nil {
			return nil, err
		}
		a.AppliedAt = parseTime(at)
		out = append(out, a)
	}
	return out, rows.Err()
}
