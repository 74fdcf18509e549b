package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLedger stores ids in a sorted set scored by first-record time, so
// several engine instances can share one ledger.
type RedisLedger struct {
	rdb *redis.Client
	key string
}

func NewRedis(rdb *redis.Client, key string) *RedisLedger {
	return &RedisLedger{rdb: rdb, key: key}
}

func (r *RedisLedger) Has(ctx context.Context, id string) bool {
	_, err := r.rdb.ZScore(ctx, r.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Printf("[ledger] redis ZSCORE %s failed, treating %s as new: %v", r.key, id, err)
		return false
	}
	return true
}

// Record uses ZADD NX so a second record keeps the original timestamp.
func (r *RedisLedger) Record(ctx context.Context, id string) error {
	err := r.rdb.ZAddNX(ctx, r.key, redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: id,
	}).Err()
	if err != nil {
		return fmt.Errorf("ledger: redis ZADD %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisLedger) List(ctx context.Context) ([]string, error) {
	ids, err := r.rdb.ZRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger: redis ZRANGE %s: %w", r.key, err)
	}
	return ids, nil
}

func (r *RedisLedger) Close() error { return r.rdb.Close() }
