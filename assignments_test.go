package steward

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/id"
)

func TestAssignRoleIdempotent(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "support", Name: "Support"})
	if err != nil {
		t.Fatal(err)
	}
	userID := id.NewAccountID()

	first, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "someone-else"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID.String() != first.ID.String() {
		t.Fatal("expected the same assignment row")
	}
	if !second.AssignedAt.Equal(first.AssignedAt) {
		t.Fatal("expected assignedAt unchanged on idempotent assign")
	}
	if second.AssignedBy != first.AssignedBy {
		t.Fatal("expected assignedBy unchanged on idempotent assign")
	}
}

func TestAssignRoleRefreshesExpired(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "temp", Name: "Temp"})
	if err != nil {
		t.Fatal(err)
	}
	userID := id.NewAccountID()

	past := time.Now().Add(-time.Hour)
	expired, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester", ExpiresAt: &past})
	if err != nil {
		t.Fatal(err)
	}
	if held, _ := eng.HasRole(ctx, userID, r.ID); held {
		t.Fatal("expected expired assignment to not grant the role")
	}

	// Re-assigning refreshes the existing row in place.
	fresh, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.ID.String() != expired.ID.String() {
		t.Fatal("expected row reuse on refresh")
	}
	if fresh.ExpiresAt != nil {
		t.Fatal("expected expiry cleared")
	}
	if held, _ := eng.HasRole(ctx, userID, r.ID); !held {
		t.Fatal("expected refreshed role to be held")
	}
}

func TestRevokeRole(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "support", Name: "Support"})
	if err != nil {
		t.Fatal(err)
	}
	userID := id.NewAccountID()

	// Revoking a never-assigned role is not an error.
	got, err := eng.RevokeRole(ctx, &RevokeRoleInput{UserID: userID, RoleID: r.ID, RevokedBy: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected nil result for no-op revoke")
	}

	a, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	got, err = eng.RevokeRole(ctx, &RevokeRoleInput{UserID: userID, RoleID: r.ID, RevokedBy: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.RevokedAt == nil || got.RevokedBy != "tester" {
		t.Fatal("expected revocation fields populated")
	}

	// Re-assigning after a revoke restores the soft-deleted row.
	restored, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	if restored.ID.String() != a.ID.String() {
		t.Fatal("expected restore-in-place to reuse the row")
	}
	if restored.RevokedAt != nil || restored.DeletedAt != nil {
		t.Fatal("expected revocation cleared")
	}
}

func TestRevokeAllRoles(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	userID := id.NewAccountID()
	for _, ident := range []string{"a", "b", "c"} {
		r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: ident, Name: ident})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := eng.RevokeAllRoles(ctx, userID, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 revocations, got %d", n)
	}
	roles, err := eng.GetEffectiveRoles(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 0 {
		t.Fatalf("expected no effective roles, got %d", len(roles))
	}
}

func TestExtendAssignment(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "temp", Name: "Temp"})
	if err != nil {
		t.Fatal(err)
	}
	userID := id.NewAccountID()

	if _, err := eng.ExtendAssignment(ctx, userID, r.ID, 0); err == nil {
		t.Fatal("expected error for non-positive days")
	}

	// No effective assignment: nil result, no error.
	got, err := eng.ExtendAssignment(ctx, userID, r.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected nil result")
	}

	expiry := time.Now().Add(24 * time.Hour)
	if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester", ExpiresAt: &expiry}); err != nil {
		t.Fatal(err)
	}
	got, err = eng.ExtendAssignment(ctx, userID, r.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	want := expiry.AddDate(0, 0, 7)
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, got.ExpiresAt)
	}
}

func TestHasRoleExcludesInactiveRole(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "support", Name: "Support"})
	if err != nil {
		t.Fatal(err)
	}
	userID := id.NewAccountID()
	if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"}); err != nil {
		t.Fatal(err)
	}

	if held, _ := eng.HasRole(ctx, userID, r.ID); !held {
		t.Fatal("expected role held")
	}

	// Deactivating the role definition voids the grant without touching
	// the assignment row.
	inactive := false
	if _, err := eng.UpdateRole(ctx, r.ID, &UpdateRoleInput{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}
	if held, _ := eng.HasRole(ctx, userID, r.ID); held {
		t.Fatal("expected inactive role to not be held")
	}
}

func TestGetIdentitiesWithRole(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "support", Name: "Support"})
	if err != nil {
		t.Fatal(err)
	}
	u1, u2, u3 := id.NewAccountID(), id.NewAccountID(), id.NewAccountID()
	for _, u := range []id.AccountID{u1, u2, u3} {
		if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: u, RoleID: r.ID, AssignedBy: "tester"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := eng.RevokeRole(ctx, &RevokeRoleInput{UserID: u2, RoleID: r.ID, RevokedBy: "tester"}); err != nil {
		t.Fatal(err)
	}

	ids, err := eng.GetIdentitiesWithRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 holders, got %d", len(ids))
	}
	for _, got := range ids {
		if got.String() == u2.String() {
			t.Fatal("revoked holder still listed")
		}
	}
}

func TestAssignRoleConcurrentSingleLiveRow(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "support", Name: "Support"})
	if err != nil {
		t.Fatal(err)
	}
	userID := id.NewAccountID()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: r.ID, AssignedBy: "tester"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	live, err := eng.ListAssignments(ctx, &assignment.ListFilter{UserID: &userID, RoleID: &r.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(live) != 1 {
		t.Fatalf("expected exactly one live assignment, got %d", len(live))
	}
}
