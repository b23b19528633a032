package drafts

import (
	"context"
	"errors"
	"testing"
)

func TestLocalGuard(t *testing.T) {
	g := NewLocalGuard()
	ctx := context.Background()

	release, err := g.Acquire(ctx, "d1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !g.InFlight(ctx, "d1") {
		t.Fatalf("expected d1 in flight")
	}
	if _, err := g.Acquire(ctx, "d1"); !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("expected ErrSubmissionInFlight, got %v", err)
	}

	other, err := g.Acquire(ctx, "d2")
	if err != nil {
		t.Fatalf("other drafts are independent: %v", err)
	}
	other()

	release()
	release() // idempotent
	if g.InFlight(ctx, "d1") {
		t.Fatalf("expected d1 released")
	}
	again, err := g.Acquire(ctx, "d1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}
