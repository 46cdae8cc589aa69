package session

import (
	"context"
	"testing"
	"time"
)

func TestLocks_ReleasedEntriesAreRemoved(t *testing.T) {
	l := newLocks()

	unlock, err := l.lock(context.Background(), "s1")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.lock(ctx, "s1"); err == nil {
		t.Fatal("expected waiter to time out")
	}

	if got := l.len(); got != 1 {
		t.Errorf("entries while held = %d, want 1", got)
	}

	unlock()
	if got := l.len(); got != 0 {
		t.Errorf("entries after release = %d, want 0", got)
	}
}
