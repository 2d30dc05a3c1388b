package steward

import (
	"context"
	"errors"
	"testing"
)

func TestCreateRoleDefaultDemotion(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	first, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "member", Name: "Member", IsDefault: true})
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "guest", Name: "Guest", IsDefault: true})
	if err != nil {
		t.Fatal(err)
	}

	// At most one default role exists at a time.
	def, err := eng.GetDefaultRole(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if def.ID.String() != second.ID.String() {
		t.Fatalf("expected guest as default, got %s", def.Identifier)
	}
	demoted, err := eng.GetRole(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if demoted.IsDefault {
		t.Fatal("expected first role demoted")
	}
}

func TestSetDefaultRole(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.GetDefaultRole(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no default, got %v", err)
	}

	a, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "a", Name: "A", IsDefault: true})
	if err != nil {
		t.Fatal(err)
	}
	b, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "b", Name: "B"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.SetDefaultRole(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	def, err := eng.GetDefaultRole(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if def.ID.String() != b.ID.String() {
		t.Fatalf("expected b as default, got %s", def.Identifier)
	}
	prev, err := eng.GetRole(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if prev.IsDefault {
		t.Fatal("expected previous default demoted")
	}

	// Promoting the current default is a no-op.
	if _, err := eng.SetDefaultRole(ctx, b.ID); err != nil {
		t.Fatal(err)
	}

	// An inactive role cannot become the default.
	inactive := false
	if _, err := eng.UpdateRole(ctx, a.ID, &UpdateRoleInput{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SetDefaultRole(ctx, a.ID); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestCreateRoleLevelBounds(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "x", Name: "X", Level: 101}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for level 101, got %v", err)
	}
}

func TestDeleteRoleGuards(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	sys, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "root", Name: "Root", IsSystem: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteRole(ctx, sys.ID); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation for system role, got %v", err)
	}

	def, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "member", Name: "Member", IsDefault: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteRole(ctx, def.ID); !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation for default role, got %v", err)
	}

	plain, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "plain", Name: "Plain"})
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.DeleteRole(ctx, plain.ID); err != nil {
		t.Fatal(err)
	}
	// Idempotent.
	if err := eng.DeleteRole(ctx, plain.ID); err != nil {
		t.Fatal(err)
	}

	// The freed identifier can be reclaimed; restore then conflicts.
	if _, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "plain", Name: "Plain again"}); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RestoreRole(ctx, plain.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on restore, got %v", err)
	}
}

func TestRolePolicyMembership(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{Identifier: "viewer", Name: "Viewer"})
	if err != nil {
		t.Fatal(err)
	}
	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "support", Name: "Support"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := eng.AddPolicyToRole(ctx, r.ID, "viewer")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PolicyIDs) != 1 {
		t.Fatalf("expected 1 policy, got %d", len(got.PolicyIDs))
	}
	got, err = eng.AddPolicyToRole(ctx, r.ID, pol.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PolicyIDs) != 1 {
		t.Fatalf("expected duplicate add to be a no-op, got %d", len(got.PolicyIDs))
	}

	got, err = eng.RemovePolicyFromRole(ctx, r.ID, pol.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PolicyIDs) != 0 {
		t.Fatalf("expected empty set, got %d", len(got.PolicyIDs))
	}
}
