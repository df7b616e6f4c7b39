package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_SharesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute, 0)
	var calls atomic.Int32
	failing := func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("directory down")
	}

	if _, err := store.GetOrLoad(context.Background(), "k", failing); err == nil {
		t.Fatalf("expected loader error")
	}
	if _, err := store.GetOrLoad(context.Background(), "k", failing); err == nil {
		t.Fatalf("expected loader error")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2", got)
	}
}

func TestStore_ExpiresEntries(t *testing.T) {
	store := NewStore[string](time.Minute, 0)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")
	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected expired entry to be dropped")
	}
}

func TestStore_BoundsSize(t *testing.T) {
	store := NewStore[string](time.Minute, 2)

	store.Set(context.Background(), "a", "1")
	store.Set(context.Background(), "b", "2")
	store.Set(context.Background(), "c", "3")

	if got := store.Len(); got != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", got)
	}
	if _, ok := store.Get(context.Background(), "c"); !ok {
		t.Fatalf("expected newest entry to be kept")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	store := NewStore[string](0, 0)
	store.Set(context.Background(), "member:1", "a")
	store.Set(context.Background(), "member:2", "b")
	store.Set(context.Background(), "group:1", "c")

	store.DeletePrefix(context.Background(), "member:")

	if got := store.Len(); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
