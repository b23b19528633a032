package drafts

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrSubmissionInFlight is returned when a submission for the draft is already running.
var ErrSubmissionInFlight = errors.New("a submission for this draft is already in flight")

// Guard allows at most one in-flight submission per draft.
type Guard interface {
	// Acquire returns a release func, or ErrSubmissionInFlight if the draft is held.
	Acquire(ctx context.Context, draftID string) (func(), error)
	InFlight(ctx context.Context, draftID string) bool
}

// LocalGuard is a Guard for a single api instance.
type LocalGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: map[string]struct{}{}}
}

func (g *LocalGuard) Acquire(ctx context.Context, draftID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.held[draftID]; ok {
		return nil, ErrSubmissionInFlight
	}
	g.held[draftID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, draftID)
			g.mu.Unlock()
		})
	}, nil
}

func (g *LocalGuard) InFlight(ctx context.Context, draftID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[draftID]
	return ok
}

const submitLockPrefix = "submit:"

// RedisGuard holds a redislock per draft so the guard spans api instances.
// The lock expires after ttl in case the holder dies mid submission.
type RedisGuard struct {
	rdb    *redis.Client
	locker *redislock.Client
	ttl    time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, locker: redislock.New(rdb), ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, draftID string) (func(), error) {
	lock, err := g.locker.Obtain(ctx, submitLockPrefix+draftID, g.ttl, nil)
	if err == redislock.ErrNotObtained {
		return nil, ErrSubmissionInFlight
	} else if err != nil {
		return nil, err
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}

func (g *RedisGuard) InFlight(ctx context.Context, draftID string) bool {
	n, err := g.rdb.Exists(ctx, submitLockPrefix+draftID).Result()
	return err == nil && n > 0
}
