package drafts

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// newTestRedis connects to REDIS_TEST_ADDRESS; the tests are skipped without it.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDRESS not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisRepository_Lifecycle(t *testing.T) {
	repo := NewRedisRepository(newTestRedis(t), time.Minute)
	ctx := context.Background()
	id := uuid.NewString()

	if err := repo.Create(ctx, newDraft(id, time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), id) })

	if err := repo.Create(ctx, newDraft(id, time.Now().UTC())); err == nil {
		t.Fatalf("expected an error creating the same draft twice")
	}

	d, err := repo.Update(ctx, id, func(d *Draft) error {
		if err := d.Catalog.Upsert(hamper("h1", "Gold", "20.00")); err != nil {
			return err
		}
		d.Recipients.Add(recipient("Ann", "h1", 2))
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if d.Catalog.Len() != 1 || d.Recipients.Len() != 1 {
		t.Fatalf("unexpected draft after update: %+v", d)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	h, ok := got.Catalog.Get("h1")
	if !ok || h.Price.String() != "20" {
		t.Fatalf("hamper not stored: %+v", h)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestRedisRepository_ConcurrentUpdates(t *testing.T) {
	repo := NewRedisRepository(newTestRedis(t), time.Minute)
	ctx := context.Background()
	id := uuid.NewString()
	if err := repo.Create(ctx, newDraft(id, time.Now().UTC())); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), id) })

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, id, func(d *Draft) error {
				d.Recipients.Add(recipient("Ann", "h1", 1))
				return nil
			})
			if err == nil {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	d, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Recipients.Len() != applied {
		t.Fatalf("lost update: %d rows for %d successful updates", d.Recipients.Len(), applied)
	}
}

func TestRedisGuard(t *testing.T) {
	g := NewRedisGuard(newTestRedis(t), 5*time.Second)
	ctx := context.Background()
	id := uuid.NewString()

	release, err := g.Acquire(ctx, id)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !g.InFlight(ctx, id) {
		t.Fatalf("expected %s in flight", id)
	}
	if _, err := g.Acquire(ctx, id); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}
	release()
	if g.InFlight(ctx, id) {
		t.Fatalf("expected lock released")
	}
}
