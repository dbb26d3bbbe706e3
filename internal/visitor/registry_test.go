package visitor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type counter struct {
	id    string
	calls int
}

func TestRegistryBuildsOncePerSession(t *testing.T) {
	t.Parallel()
	builds := 0
	reg := NewRegistry(func(id string) *counter {
		builds++
		return &counter{id: id}
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := reg.With(ctx, "s1", func(c *counter, fresh bool) error {
			if fresh != (i == 0) {
				t.Fatalf("call %d: unexpected fresh=%v", i, fresh)
			}
			c.calls++
			return nil
		})
		if err != nil {
			t.Fatalf("with: %v", err)
		}
	}
	if builds != 1 {
		t.Fatalf("expected one build, got %d", builds)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one entry, got %d", reg.Len())
	}
}

func TestRegistryRejectsEmptySession(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(func(string) int { return 0 })
	if err := reg.With(context.Background(), "  ", func(int, bool) error { return nil }); err == nil {
		t.Fatal("expected error for empty session")
	}
}

func TestRegistrySerializesSameSession(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(func(string) *counter { return &counter{} })

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reg.With(context.Background(), "same", func(c *counter, _ bool) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					cur := atomic.LoadInt32(&maxInFlight)
					if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				c.calls++
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Fatalf("expected serialized access, saw %d concurrent calls", maxInFlight)
	}
	_ = reg.With(context.Background(), "same", func(c *counter, _ bool) error {
		if c.calls != 16 {
			t.Fatalf("expected 16 calls, got %d", c.calls)
		}
		return nil
	})
}

func TestRegistryInvalidateRebuilds(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(func(id string) *counter { return &counter{id: id} })
	ctx := context.Background()

	var first *counter
	_ = reg.With(ctx, "s1", func(c *counter, _ bool) error { first = c; return nil })
	reg.Invalidate("s1")
	reg.Invalidate("unknown")

	_ = reg.With(ctx, "s1", func(c *counter, fresh bool) error {
		if !fresh || c == first {
			t.Fatalf("expected rebuilt state after invalidate")
		}
		return nil
	})
}

func TestRegistrySweepDropsIdleEntries(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(func(string) int { return 1 })
	reg.now = func() time.Time { return now }

	ctx := context.Background()
	_ = reg.With(ctx, "old", func(int, bool) error { return nil })
	now = now.Add(time.Hour)
	_ = reg.With(ctx, "new", func(int, bool) error { return nil })

	if removed := reg.Sweep(30 * time.Minute); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", reg.Len())
	}
}

func TestRegistrySweepSkipsBusyEntries(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := NewRegistry(func(string) int { return 1 })
	reg.now = func() time.Time { return now }

	_ = reg.With(context.Background(), "busy", func(int, bool) error {
		if removed := reg.Sweep(0); removed != 0 {
			t.Fatalf("in-use entry must not be swept")
		}
		return nil
	})
}
