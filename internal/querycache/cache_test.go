package querycache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFetchCachesUntilExpiry(t *testing.T) {
	c := New(time.Minute)
	clock := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Fetch(context.Background(), c, "kpis", load)
		if err != nil || v != 1 {
			t.Fatalf("expected cached 1, got %d (%v)", v, err)
		}
	}

	clock = clock.Add(2 * time.Minute)
	v, _ := Fetch(context.Background(), c, "kpis", load)
	if v != 2 {
		t.Fatalf("expected reload after ttl, got %d", v)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute)
	boom := errors.New("boom")

	if _, err := Fetch(context.Background(), c, "routes", func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, found := c.Get("routes"); found {
		t.Fatal("failed load should not be cached")
	}
}

func TestInvalidateByPrefix(t *testing.T) {
	c := New(time.Minute)
	c.Set("routes", 1)
	c.Set(Key("routes", "2026-03-14"), 2)
	c.Set(Key("kpis", "2026-02-12", "2026-03-14"), 3)
	c.Set("routesX", 4)
	c.Set("drivers", 5)

	if removed := c.Invalidate("routes", "kpis"); removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	for _, key := range []string{"routesX", "drivers"} {
		if _, found := c.Get(key); !found {
			t.Fatalf("%s should survive", key)
		}
	}
}

func TestKey(t *testing.T) {
	if got := Key("kpis", "2026-02-12", 30); got != "kpis:2026-02-12:30" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Key("drivers"); got != "drivers" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(time.Minute)
	c.maxEntries = 2
	clock := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Fatal("b should have been evicted")
	}
	if _, found := c.Get("a"); !found {
		t.Fatal("a was used recently and should remain")
	}
}
