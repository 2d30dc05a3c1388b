package steward

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/store/memory"
)

// countingCache records gate cache traffic.
type countingCache struct {
	entries      map[string]bool
	gets, hits   int
	sets         int
	invalidments int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: map[string]bool{}}
}

func (c *countingCache) Get(_ context.Context, userID id.AccountID, roleID id.RoleID) (bool, bool) {
	c.gets++
	held, ok := c.entries[userID.String()+":"+roleID.String()]
	if ok {
		c.hits++
	}
	return held, ok
}

func (c *countingCache) Set(_ context.Context, userID id.AccountID, roleID id.RoleID, held bool) {
	c.sets++
	c.entries[userID.String()+":"+roleID.String()] = held
}

func (c *countingCache) InvalidateUser(_ context.Context, userID id.AccountID) {
	c.invalidments++
	prefix := userID.String() + ":"
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}

func TestHasRoleGateCache(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	cc := newCountingCache()
	eng, err := NewEngine(
		WithStore(s),
		WithCache(cc),
		WithConfig(Config{GateCacheTTL: time.Minute}),
	)
	if err != nil {
		t.Fatal(err)
	}

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "support", Name: "Support"})
	if err != nil {
		t.Fatal(err)
	}
	userID := id.NewAccountID()
	if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"}); err != nil {
		t.Fatal(err)
	}
	if cc.invalidments == 0 {
		t.Fatal("expected assignment to invalidate the cache")
	}

	// First check misses and populates; second check hits.
	if held, _ := eng.HasRole(ctx, userID, r.ID); !held {
		t.Fatal("expected role held")
	}
	if cc.sets != 1 {
		t.Fatalf("expected 1 cache set, got %d", cc.sets)
	}
	if held, _ := eng.HasRole(ctx, userID, r.ID); !held {
		t.Fatal("expected cached role held")
	}
	if cc.hits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", cc.hits)
	}

	// A revoke invalidates, so the next check sees the fresh state.
	if _, err := eng.RevokeRole(ctx, &RevokeRoleInput{UserID: userID, RoleID: r.ID, RevokedBy: "tester"}); err != nil {
		t.Fatal(err)
	}
	if held, _ := eng.HasRole(ctx, userID, r.ID); held {
		t.Fatal("expected revoked role to not be held")
	}
}

func TestGetEffectiveRolesBypassesCache(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	cc := newCountingCache()
	eng, err := NewEngine(
		WithStore(s),
		WithCache(cc),
		WithConfig(Config{GateCacheTTL: time.Minute}),
	)
	if err != nil {
		t.Fatal(err)
	}

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "support", Name: "Support"})
	if err != nil {
		t.Fatal(err)
	}
	userID := id.NewAccountID()
	if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"}); err != nil {
		t.Fatal(err)
	}

	before := cc.gets
	if _, err := eng.GetEffectiveRoles(ctx, userID); err != nil {
		t.Fatal(err)
	}
	if cc.gets != before {
		t.Fatal("full resolution must not consult the gate cache")
	}
}
