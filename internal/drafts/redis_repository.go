package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix = "draft:"
	// maxWatchRetries bounds optimistic retries when another writer touches the draft.
	maxWatchRetries = 5
)

// RedisRepository stores each draft as a JSON value with a sliding TTL, so a
// session can be served by any api instance.
type RedisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRepository(rdb *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, ttl: ttl}
}

func draftKey(id string) string { return draftKeyPrefix + id }

func (r *RedisRepository) Create(ctx context.Context, d *Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, draftKey(d.ID), b, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return fmt.Errorf("draft %q already exists", d.ID)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*Draft, error) {
	raw, err := r.rdb.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeDraft(raw)
}

// Update runs fn inside a WATCH transaction and retries when the key changed
// underneath it.
func (r *RedisRepository) Update(ctx context.Context, id string, fn func(d *Draft) error) (*Draft, error) {
	key := draftKey(id)
	var updated *Draft

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrDraftNotFound
			}
			return fmt.Errorf("redis get: %w", err)
		}
		d, err := decodeDraft(raw)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal draft: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = d
		return nil
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update draft %q: too much contention", id)
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, draftKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func decodeDraft(raw []byte) (*Draft, error) {
	d := newDraft("", time.Time{})
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	// a null collection decodes to a nil pointer
	return d.clone(), nil
}
