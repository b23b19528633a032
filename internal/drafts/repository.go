package drafts

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrDraftNotFound = errors.New("draft not found")

// Repository stores drafts. Update applies fn to a copy of the stored draft
// and saves it only when fn returns nil; concurrent updates of the same draft
// never interleave.
type Repository interface {
	Create(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id string) (*Draft, error)
	Update(ctx context.Context, id string, fn func(d *Draft) error) (*Draft, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	draft     *Draft
	expiresAt time.Time
}

// MemoryRepository keeps drafts in process memory. Entries expire ttl after
// their last write; a zero ttl keeps them forever.
type MemoryRepository struct {
	mu      sync.Mutex
	drafts  map[string]memoryEntry
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{
		drafts:  map[string]memoryEntry{},
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, d *Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	r.drafts[d.ID] = r.entry(d.clone())
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookup(id)
	if !ok {
		return nil, ErrDraftNotFound
	}
	return e.draft.clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, fn func(d *Draft) error) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lookup(id)
	if !ok {
		return nil, ErrDraftNotFound
	}
	d := e.draft.clone()
	if err := fn(d); err != nil {
		return nil, err
	}
	r.drafts[id] = r.entry(d.clone())
	return d, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookup(id); !ok {
		return ErrDraftNotFound
	}
	delete(r.drafts, id)
	return nil
}

func (r *MemoryRepository) entry(d *Draft) memoryEntry {
	e := memoryEntry{draft: d}
	if r.ttl > 0 {
		e.expiresAt = r.nowFunc().Add(r.ttl)
	}
	return e
}

// lookup must be called with mu held.
func (r *MemoryRepository) lookup(id string) (memoryEntry, bool) {
	e, ok := r.drafts[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !r.nowFunc().Before(e.expiresAt) {
		delete(r.drafts, id)
		return memoryEntry{}, false
	}
	return e, true
}

// sweep drops expired drafts. Must be called with mu held.
func (r *MemoryRepository) sweep() {
	if r.ttl <= 0 {
		return
	}
	now := r.nowFunc()
	for id, e := range r.drafts {
		if !now.Before(e.expiresAt) {
			delete(r.drafts, id)
		}
	}
}
