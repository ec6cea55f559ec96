package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingStore struct {
	mu     sync.Mutex
	totals map[string]int64
}

func newRecordingStore() *recordingStore {
	return &recordingStore{totals: make(map[string]int64)}
}

func (s *recordingStore) SetClickTotal(_ context.Context, accountID string, total int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[accountID] = total
	return nil
}

func (s *recordingStore) get(accountID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.totals[accountID]
	return t, ok
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestCheckpointer_PersistsTotals(t *testing.T) {
	store := newRecordingStore()
	c := NewCheckpointer(2, store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	c.Enqueue("acc1", 10)
	c.Enqueue("acc2", 3)

	waitFor(t, func() bool {
		a, ok1 := store.get("acc1")
		b, ok2 := store.get("acc2")
		return ok1 && ok2 && a == 10 && b == 3
	})
}

func TestCheckpointer_LaterTotalWins(t *testing.T) {
	store := newRecordingStore()
	c := NewCheckpointer(1, store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	// Same account always hashes to the same worker, so these apply in order.
	for total := int64(1); total <= 50; total++ {
		c.Enqueue("acc1", total)
	}

	waitFor(t, func() bool {
		total, ok := store.get("acc1")
		return ok && total == 50
	})
}

func TestCheckpointer_ShardIsStable(t *testing.T) {
	c := NewCheckpointer(8, newRecordingStore(), zerolog.Nop())

	first := c.shardIndex("some-account-id")
	for i := 0; i < 10; i++ {
		if got := c.shardIndex("some-account-id"); got != first {
			t.Fatalf("shard index changed: %d != %d", got, first)
		}
	}
}
