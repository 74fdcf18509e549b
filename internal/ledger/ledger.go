// Package ledger records which listings have already been applied to.
//
// Has fails open: a backend that cannot be read reports false and logs, so a
// broken ledger costs at most a repeated attempt rather than a halted pass.
// Record is idempotent and durable before it returns.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"autoapply-engine/internal/config"
	"autoapply-engine/internal/store"
)

type Ledger interface {
	Has(ctx context.Context, id string) bool
	Record(ctx context.Context, id string) error
	// List returns recorded ids in the order they were first recorded.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Open returns the configured backend. db is only used by the sqlite backend.
func Open(cfg config.LedgerConfig, db *store.DB) (Ledger, error) {
	switch cfg.Backend {
	case "", "sqlite":
		if db == nil {
			return nil, fmt.Errorf("ledger: sqlite backend needs a database")
		}
		return NewSQL(db), nil
	case "file":
		return NewFile(cfg.Path), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedis(rdb, cfg.RedisKey), nil
	default:
		return nil, fmt.Errorf("ledger: unknown backend %q", cfg.Backend)
	}
}

// ReadIDs parses a JSON array of listing ids, the file backend's format.
func ReadIDs(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("ledger: parse %s: %w", path, err)
	}
	return ids, nil
}

// Import records every non-empty id into dst and reports how many were new.
func Import(ctx context.Context, dst Ledger, ids []string) (added int, err error) {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if dst.Has(ctx, id) {
			continue
		}
		if err := dst.Record(ctx, id); err != nil {
			return added, fmt.Errorf("import %s: %w", id, err)
		}
		added++
	}
	return added, nil
}
