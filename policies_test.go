package steward

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
)

func TestCreatePolicyResolvesRefs(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p1, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionUpdate})
	if err != nil {
		t.Fatal(err)
	}

	// Mixed refs: one TypeID string, one identifier, plus a duplicate.
	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{
		Identifier:  "user-editor",
		Name:        "User editor",
		Permissions: []string{p1.ID.String(), "user:update", p2.Identifier},
		Priority:    40,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(pol.PermissionIDs) != 2 {
		t.Fatalf("expected 2 deduplicated permissions, got %d", len(pol.PermissionIDs))
	}
	if pol.Category != policy.CategoryCustom {
		t.Fatalf("expected default category, got %s", pol.Category)
	}
}

func TestCreatePolicyRejectsUnknownRef(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	_, err := eng.CreatePolicy(ctx, &CreatePolicyInput{
		Identifier:  "broken",
		Name:        "Broken",
		Permissions: []string{"no:such"},
	})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestCreatePolicyPriorityBounds(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreatePolicy(ctx, &CreatePolicyInput{Identifier: "p", Name: "P", Priority: 101}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for priority 101, got %v", err)
	}
	if _, err := eng.CreatePolicy(ctx, &CreatePolicyInput{Identifier: "p", Name: "P", Priority: -1}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for priority -1, got %v", err)
	}
}

func TestUpdatePolicyReplacesPermissionSet(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p1, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "billing", Action: permission.ActionManage})
	if err != nil {
		t.Fatal(err)
	}

	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{
		Identifier:  "ops",
		Name:        "Ops",
		Permissions: []string{p1.ID.String()},
	})
	if err != nil {
		t.Fatal(err)
	}

	// *Permissions is a total replacement, not a merge.
	repl := []string{p2.ID.String()}
	got, err := eng.UpdatePolicy(ctx, pol.ID, &UpdatePolicyInput{Permissions: &repl})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PermissionIDs) != 1 || got.PermissionIDs[0].String() != p2.ID.String() {
		t.Fatalf("expected permission set replaced, got %v", got.PermissionIDs)
	}
}

func TestPolicyMembershipEdits(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead})
	if err != nil {
		t.Fatal(err)
	}
	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{Identifier: "viewer", Name: "Viewer"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := eng.AddPermissionToPolicy(ctx, pol.ID, "user:read")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PermissionIDs) != 1 {
		t.Fatalf("expected 1 permission, got %d", len(got.PermissionIDs))
	}

	// Adding again is idempotent.
	got, err = eng.AddPermissionToPolicy(ctx, pol.ID, p.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PermissionIDs) != 1 {
		t.Fatalf("expected 1 permission after duplicate add, got %d", len(got.PermissionIDs))
	}

	got, err = eng.RemovePermissionFromPolicy(ctx, pol.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PermissionIDs) != 0 {
		t.Fatalf("expected empty set, got %d", len(got.PermissionIDs))
	}

	// Removing an absent permission is a no-op.
	if _, err := eng.RemovePermissionFromPolicy(ctx, pol.ID, p.ID); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteSystemPolicyFails(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{Identifier: "core", Name: "Core", IsSystem: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.DeletePolicy(ctx, pol.ID); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}

	// The system guard fires even for already-deleted rows, so check a
	// regular policy takes the normal path.
	plain, err := eng.CreatePolicy(ctx, &CreatePolicyInput{Identifier: "plain", Name: "Plain"})
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.DeletePolicy(ctx, plain.ID); err != nil {
		t.Fatal(err)
	}
	if err := eng.DeletePolicy(ctx, plain.ID); err != nil {
		t.Fatal(err)
	}
}

func TestGetPolicyPermissionsHydrates(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p1, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionDelete})
	if err != nil {
		t.Fatal(err)
	}
	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{
		Identifier:  "user-admin",
		Name:        "User admin",
		Permissions: []string{p1.ID.String(), p2.ID.String()},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Soft-deleted members drop out of the hydrated view.
	if err := eng.DeletePermission(ctx, p2.ID); err != nil {
		t.Fatal(err)
	}
	perms, err := eng.GetPolicyPermissions(ctx, pol.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 1 || perms[0].Identifier != "user:read" {
		t.Fatalf("expected only user:read, got %d entries", len(perms))
	}
}
