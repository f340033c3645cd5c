package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/thejerf/abtime"
)

func sequenceIds(ids ...string) IdGenerator {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(ids) {
			return ids[len(ids)-1], nil
		}
		id := ids[i]
		i++
		return id, nil
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sid, err := store.CreateSession(ctx, "u-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sid == "" {
		t.Fatal("expected a session id")
	}

	uid, err := store.UserIdForSessionId(ctx, sid)
	if err != nil || uid != "u-1" {
		t.Fatalf("lookup = (%q, %v), want (u-1, nil)", uid, err)
	}

	removed, err := store.DestroySession(ctx, sid)
	if err != nil || !removed {
		t.Fatalf("first destroy = (%v, %v), want (true, nil)", removed, err)
	}
	removed, err = store.DestroySession(ctx, sid)
	if err != nil || removed {
		t.Fatalf("second destroy = (%v, %v), want (false, nil)", removed, err)
	}

	if _, err := store.UserIdForSessionId(ctx, sid); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("lookup after destroy: got %v, want ErrSessionNotFound", err)
	}
}

func TestMemoryStoreDistinctIds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.CreateSession(ctx, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.CreateSession(ctx, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("two creates returned the same id %q", a)
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
}

func TestMemoryStoreInvalidArguments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, uid := range []string{"", "has space", "semi;colon"} {
		if _, err := store.CreateSession(ctx, uid); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("CreateSession(%q): got %v, want ErrInvalidArgument", uid, err)
		}
	}
	if _, err := store.UserIdForSessionId(ctx, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("lookup of empty id: got %v, want ErrInvalidArgument", err)
	}
	if removed, err := store.DestroySession(ctx, ""); removed || err != nil {
		t.Errorf("destroy of empty id = (%v, %v), want (false, nil)", removed, err)
	}
}

func TestMemoryStoreRerollsCollisions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithIdGenerator(sequenceIds("dup", "dup", "fresh")))

	first, err := store.CreateSession(ctx, "u-1")
	if err != nil || first != "dup" {
		t.Fatalf("first create = (%q, %v)", first, err)
	}
	second, err := store.CreateSession(ctx, "u-2")
	if err != nil || second != "fresh" {
		t.Fatalf("second create = (%q, %v), want fresh", second, err)
	}

	uid, _ := store.UserIdForSessionId(ctx, "dup")
	if uid != "u-1" {
		t.Fatalf("colliding create overwrote the original session: owner is %q", uid)
	}
}

func TestMemoryStoreGivesUpOnPersistentCollision(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithIdGenerator(sequenceIds("same")))

	if _, err := store.CreateSession(ctx, "u-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateSession(ctx, "u-2"); !errors.Is(err, ErrSessionIdCollision) {
		t.Fatalf("got %v, want ErrSessionIdCollision", err)
	}
}

func TestMemoryStoreGeneratorError(t *testing.T) {
	boom := errors.New("entropy exhausted")
	store := NewMemoryStore(WithIdGenerator(func() (string, error) { return "", boom }))

	if _, err := store.CreateSession(context.Background(), "u-1"); !errors.Is(err, boom) {
		t.Fatalf("got %v, want generator error", err)
	}
}

func TestMemoryStoreNeverExpires(t *testing.T) {
	ctx := context.Background()
	clock := abtime.NewManual()
	store := NewMemoryStore(WithClock(clock))

	sid, err := store.CreateSession(ctx, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(24 * 365 * time.Hour)

	if uid, err := store.UserIdForSessionId(ctx, sid); err != nil || uid != "u-1" {
		t.Fatalf("lookup = (%q, %v)", uid, err)
	}
}

func TestMemoryStoreConcurrentUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	ids := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			uid := fmt.Sprintf("user-%d", w)
			for i := 0; i < perWorker; i++ {
				sid, err := store.CreateSession(ctx, uid)
				if err != nil {
					t.Error(err)
					return
				}
				if got, err := store.UserIdForSessionId(ctx, sid); err != nil || got != uid {
					t.Errorf("lookup = (%q, %v), want %q", got, err, uid)
				}
				ids <- sid
			}
		}(w)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for sid := range ids {
		if seen[sid] {
			t.Fatalf("session id %q issued twice", sid)
		}
		seen[sid] = true
	}
	if store.Len() != workers*perWorker {
		t.Fatalf("Len = %d, want %d", store.Len(), workers*perWorker)
	}
}
