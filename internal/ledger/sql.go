package ledger

import (
	"context"
	"log"
	"time"

	"autoapply-engine/internal/store"
)

// SQLLedger keeps the ledger in the engine's sqlite database.
type SQLLedger struct {
	db *store.DB
}

func NewSQL(db *store.DB) *SQLLedger { return &SQLLedger{db: db} }

func (s *SQLLedger) Has(ctx context.Context, id string) bool {
	ok, err := store.HasApplied(ctx, s.db.Pool, id)
	if err != nil {
		log.Printf("[ledger] sqlite lookup failed, treating %s as new: %v", id, err)
		return false
	}
	return ok
}

func (s *SQLLedger) Record(ctx context.Context, id string) error {
	_, err := store.RecordApplied(ctx, s.db.Pool, id, time.Now())
	return err
}

func (s *SQLLedger) List(ctx context.Context) ([]string, error) {
	rows, err := store.ListApplied(ctx, s.db.Pool)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ListingID)
	}
	return ids, nil
}

// Close is a no-op; the database is owned by the caller.
func (s *SQLLedger) Close() error { return nil }
