package steward

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/store/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := NewEngine(WithStore(s))
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine()
	if err == nil {
		t.Fatal("expected error when store is nil")
	}
}

// waitForAuditEntries polls for asynchronously emitted audit entries.
func waitForAuditEntries(t *testing.T, s *memory.Store, filter *auditlog.QueryFilter, want int) []*auditlog.Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		entries, err := s.ListAuditLogs(context.Background(), filter)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) >= want {
			return entries
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d audit entries, got %d", want, len(entries))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestResolutionEndToEnd(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	perm, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: "read"})
	if err != nil {
		t.Fatal(err)
	}
	if perm.Identifier != "user:read" {
		t.Fatalf("expected derived identifier user:read, got %s", perm.Identifier)
	}

	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{
		Identifier:  "viewer",
		Name:        "Viewer",
		Permissions: []string{"user:read"},
		Priority:    10,
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := eng.CreateRole(ctx, &CreateRoleInput{
		Identifier: "support",
		Name:       "Support",
		Policies:   []string{pol.ID.String()},
		Level:      20,
	})
	if err != nil {
		t.Fatal(err)
	}

	userID := id.NewAccountID()
	if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID}); err != nil {
		t.Fatal(err)
	}

	effective, err := eng.GetEffectiveRoles(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 1 {
		t.Fatalf("expected 1 effective role, got %d", len(effective))
	}
	if effective[0].Role.Identifier != "support" {
		t.Fatalf("expected support, got %s", effective[0].Role.Identifier)
	}

	perms, err := eng.EffectivePermissions(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 1 || perms[0].Identifier != "user:read" {
		t.Fatalf("expected capability set {user:read}, got %d perms", len(perms))
	}

	// Revoke clears the capability set.
	if _, err := eng.RevokeRole(ctx, &RevokeRoleInput{UserID: userID, RoleID: r.ID}); err != nil {
		t.Fatal(err)
	}
	effective, err = eng.GetEffectiveRoles(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 0 {
		t.Fatalf("expected empty resolution after revoke, got %d", len(effective))
	}
}
