package steward

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
)

// buildGraph wires permission → policy → role and returns the role ID.
func buildGraph(t *testing.T, eng *Engine, roleIdent string, perms map[string][]permission.Action) id.RoleID {
	t.Helper()
	ctx := context.Background()

	var refs []string
	for resource, actions := range perms {
		for _, action := range actions {
			p, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: resource, Action: action})
			if err != nil {
				t.Fatal(err)
			}
			refs = append(refs, p.ID.String())
		}
	}
	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{
		Identifier:  roleIdent + "-policy",
		Name:        roleIdent,
		Permissions: refs,
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := eng.CreateRole(ctx, &CreateRoleInput{
		Identifier: roleIdent,
		Name:       roleIdent,
		Policies:   []string{pol.ID.String()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r.ID
}

func TestEffectivePermissionsUnion(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	userID := id.NewAccountID()

	viewer := buildGraph(t, eng, "viewer", map[string][]permission.Action{
		"user": {permission.ActionRead},
	})

	// A second role sharing user:read through its own policy.
	p, err := eng.GetPermissionByIdentifier(ctx, "user:read")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "billing", Action: permission.ActionManage})
	if err != nil {
		t.Fatal(err)
	}
	pol, err := eng.CreatePolicy(ctx, &CreatePolicyInput{
		Identifier:  "billing-policy",
		Name:        "Billing",
		Permissions: []string{p.ID.String(), p2.ID.String()},
	})
	if err != nil {
		t.Fatal(err)
	}
	biller, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "biller", Name: "Biller", Policies: []string{pol.ID.String()}})
	if err != nil {
		t.Fatal(err)
	}

	for _, rid := range []id.RoleID{viewer, biller.ID} {
		if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: rid, AssignedBy: "tester"}); err != nil {
			t.Fatal(err)
		}
	}

	perms, err := eng.EffectivePermissions(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	// user:read appears once, and the result is sorted by identifier.
	if len(perms) != 2 {
		t.Fatalf("expected 2 deduplicated permissions, got %d", len(perms))
	}
	if perms[0].Identifier != "billing:manage" || perms[1].Identifier != "user:read" {
		t.Fatalf("unexpected order: %s, %s", perms[0].Identifier, perms[1].Identifier)
	}
}

func TestResolutionSkipsExpiredAssignments(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	userID := id.NewAccountID()

	rid := buildGraph(t, eng, "temp", map[string][]permission.Action{
		"user": {permission.ActionRead},
	})
	past := time.Now().Add(-time.Minute)
	if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: rid, AssignedBy: "tester", ExpiresAt: &past}); err != nil {
		t.Fatal(err)
	}

	roles, err := eng.GetEffectiveRoles(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 0 {
		t.Fatalf("expected no effective roles, got %d", len(roles))
	}
}

func TestResolutionSkipsInactiveLayers(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	userID := id.NewAccountID()

	rid := buildGraph(t, eng, "support", map[string][]permission.Action{
		"user": {permission.ActionRead, permission.ActionUpdate},
	})
	if _, err := eng.AssignRole(ctx, &AssignRoleInput{UserID: userID, RoleID: rid, AssignedBy: "tester"}); err != nil {
		t.Fatal(err)
	}

	// Deactivate one permission: it drops out of the grant.
	p, err := eng.GetPermissionByIdentifier(ctx, "user:update")
	if err != nil {
		t.Fatal(err)
	}
	inactive := false
	if _, err := eng.UpdatePermission(ctx, p.ID, &UpdatePermissionInput{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}
	held, err := eng.HasPermission(ctx, userID, "user:update")
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("expected inactive permission to not be granted")
	}
	if held, _ := eng.HasPermission(ctx, userID, "user:read"); !held {
		t.Fatal("expected sibling permission unaffected")
	}

	// Deactivate the policy: everything behind it drops out.
	pol, err := eng.GetPolicyByIdentifier(ctx, "support-policy")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.UpdatePolicy(ctx, pol.ID, &UpdatePolicyInput{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}
	if held, _ := eng.HasPermission(ctx, userID, "user:read"); held {
		t.Fatal("expected inactive policy to void its grants")
	}

	// The role itself still resolves, with no policies attached.
	roles, err := eng.GetEffectiveRoles(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 {
		t.Fatalf("expected 1 effective role, got %d", len(roles))
	}
	if len(roles[0].Policies) != 0 {
		t.Fatalf("expected no policy grants, got %d", len(roles[0].Policies))
	}
}

func TestHasPermissionUnknownIdentifier(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	held, err := eng.HasPermission(ctx, id.NewAccountID(), "no:such")
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("expected false for unknown identifier")
	}
}
