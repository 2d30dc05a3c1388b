package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/steward/id"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	userID := id.NewAccountID()
	roleID := id.NewRoleID()

	// Miss
	_, ok := c.Get(ctx, userID, roleID)
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, userID, roleID, true)
	held, ok := c.Get(ctx, userID, roleID)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !held {
		t.Fatal("expected held")
	}
}

func TestMemoryCacheNegativeResult(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	userID := id.NewAccountID()
	roleID := id.NewRoleID()

	c.Set(ctx, userID, roleID, false)
	held, ok := c.Get(ctx, userID, roleID)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if held {
		t.Fatal("expected not held")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	userID := id.NewAccountID()
	roleID := id.NewRoleID()

	c.Set(ctx, userID, roleID, true)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, userID, roleID)
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateUser(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	u1 := id.NewAccountID()
	u2 := id.NewAccountID()
	r1 := id.NewRoleID()
	r2 := id.NewRoleID()

	c.Set(ctx, u1, r1, true)
	c.Set(ctx, u1, r2, false)
	c.Set(ctx, u2, r1, true)

	c.InvalidateUser(ctx, u1)

	if _, ok := c.Get(ctx, u1, r1); ok {
		t.Fatal("u1/r1 should be invalidated")
	}
	if _, ok := c.Get(ctx, u1, r2); ok {
		t.Fatal("u1/r2 should be invalidated")
	}
	if _, ok := c.Get(ctx, u2, r1); !ok {
		t.Fatal("u2/r1 should still be cached")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	userID := id.NewAccountID()
	for i := 0; i < 5; i++ {
		c.Set(ctx, userID, id.NewRoleID(), true)
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}
