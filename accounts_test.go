package steward

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/provision"
	"github.com/xraph/steward/store/memory"
)

// stubProvisioner returns canned results for provisioning calls.
type stubProvisioner struct {
	identityErr error
	resetErr    error
	created     []string
	resets      []string
}

func (p *stubProvisioner) CreateIdentity(_ context.Context, email string) (*provision.Identity, error) {
	if p.identityErr != nil {
		return nil, p.identityErr
	}
	p.created = append(p.created, email)
	return &provision.Identity{ExternalSubjectID: "ext-" + email}, nil
}

func (p *stubProvisioner) SendPasswordReset(_ context.Context, email string) error {
	if p.resetErr != nil {
		return p.resetErr
	}
	p.resets = append(p.resets, email)
	return nil
}

func newProvisionedEngine(t *testing.T) (*Engine, *memory.Store, *stubProvisioner) {
	t.Helper()
	s := memory.New()
	prov := &stubProvisioner{}
	eng, err := NewEngine(WithStore(s), WithProvisioner(prov))
	if err != nil {
		t.Fatal(err)
	}
	return eng, s, prov
}

func superAdminActor() Actor {
	return Actor{ID: id.NewAccountID(), Type: account.TypeSuperAdmin}
}

func TestCreateAccountProvisionsIdentity(t *testing.T) {
	ctx := context.Background()
	eng, _, prov := newProvisionedEngine(t)

	a, err := eng.CreateAccount(ctx, superAdminActor(), &CreateAccountInput{Email: "Ops@Example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if a.Email != "ops@example.com" {
		t.Fatalf("expected normalized email, got %s", a.Email)
	}
	if a.ExternalSubjectID != "ext-ops@example.com" {
		t.Fatalf("unexpected external subject %s", a.ExternalSubjectID)
	}
	if a.Status != account.StatusActive {
		t.Fatalf("expected active, got %s", a.Status)
	}
	if a.Type != account.TypeAdmin {
		t.Fatalf("expected default type admin, got %s", a.Type)
	}
	if len(prov.created) != 1 {
		t.Fatalf("expected 1 provisioning call, got %d", len(prov.created))
	}
}

func TestCreateAccountEmailConflict(t *testing.T) {
	ctx := context.Background()
	eng, _, prov := newProvisionedEngine(t)
	actor := superAdminActor()

	if _, err := eng.CreateAccount(ctx, actor, &CreateAccountInput{Email: "dup@example.com"}); err != nil {
		t.Fatal(err)
	}
	_, err := eng.CreateAccount(ctx, actor, &CreateAccountInput{Email: "dup@example.com"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The conflict is caught before provisioning is attempted.
	if len(prov.created) != 1 {
		t.Fatalf("expected 1 provisioning call, got %d", len(prov.created))
	}
}

func TestCreateAccountProvisionErrorMapping(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"conflict", &provision.APIError{Status: 409, Message: "exists"}, ErrConflict},
		{"bad request", &provision.APIError{Status: 400, Message: "invalid email"}, ErrBadRequest},
		{"unreachable", provision.ErrUnreachable, ErrServiceUnavailable},
		{"timeout", context.DeadlineExceeded, ErrServiceUnavailable},
		{"server error", &provision.APIError{Status: 502, Message: "bad gateway"}, ErrInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng, _, prov := newProvisionedEngine(t)
			prov.identityErr = tc.err
			_, err := eng.CreateAccount(ctx, superAdminActor(), &CreateAccountInput{Email: "x@example.com"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateAccountAssignsDefaultRole(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newProvisionedEngine(t)

	def, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "member", Name: "Member", IsDefault: true})
	if err != nil {
		t.Fatal(err)
	}

	a, err := eng.CreateAccount(ctx, superAdminActor(), &CreateAccountInput{Email: "new@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	held, err := eng.HasRole(ctx, a.ID, def.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("expected default role assignment")
	}
}

func TestSuspendGuards(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newProvisionedEngine(t)
	super := superAdminActor()

	admin, err := eng.CreateAccount(ctx, super, &CreateAccountInput{Email: "admin@example.com", Type: account.TypeAdmin})
	if err != nil {
		t.Fatal(err)
	}
	boss, err := eng.CreateAccount(ctx, super, &CreateAccountInput{Email: "boss@example.com", Type: account.TypeSuperAdmin})
	if err != nil {
		t.Fatal(err)
	}
	adminActor := Actor{ID: admin.ID, Type: account.TypeAdmin}

	// Self-suspension is forbidden.
	if _, err := eng.SuspendAccount(ctx, adminActor, admin.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for self-suspend, got %v", err)
	}

	// Unknown target.
	if _, err := eng.SuspendAccount(ctx, adminActor, id.NewAccountID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// An admin may not suspend a super_admin.
	if _, err := eng.SuspendAccount(ctx, adminActor, boss.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin over super_admin, got %v", err)
	}

	// A super_admin may suspend an admin.
	got, err := eng.SuspendAccount(ctx, super, admin.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != account.StatusSuspended {
		t.Fatalf("expected suspended, got %s", got.Status)
	}

	// Already suspended.
	if _, err := eng.SuspendAccount(ctx, super, admin.ID); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for double suspend, got %v", err)
	}
}

func TestReactivateMirrorsSuspend(t *testing.T) {
	ctx := context.Background()
	eng, s, _ := newProvisionedEngine(t)
	super := superAdminActor()

	admin, err := eng.CreateAccount(ctx, super, &CreateAccountInput{Email: "admin@example.com"})
	if err != nil {
		t.Fatal(err)
	}

	// Reactivating an active account is rejected.
	if _, err := eng.ReactivateAccount(ctx, super, admin.ID); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}

	if _, err := eng.SuspendAccount(ctx, super, admin.ID); err != nil {
		t.Fatal(err)
	}
	got, err := eng.ReactivateAccount(ctx, super, admin.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != account.StatusActive {
		t.Fatalf("expected active, got %s", got.Status)
	}

	// Both transitions landed in the audit trail.
	entries := waitForAuditEntries(t, s, &auditlog.QueryFilter{TargetID: admin.ID.String()}, 3)
	var suspended, reactivated bool
	for _, e := range entries {
		switch e.Action {
		case auditlog.ActionAccountSuspended:
			suspended = true
		case auditlog.ActionAccountReactivated:
			reactivated = true
		}
	}
	if !suspended || !reactivated {
		t.Fatal("expected suspend and reactivate audit entries")
	}
}

func TestUpdateAccountReplacesRoles(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newProvisionedEngine(t)
	super := superAdminActor()

	r1, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "first", Name: "First"})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "second", Name: "Second"})
	if err != nil {
		t.Fatal(err)
	}

	a, err := eng.CreateAccount(ctx, super, &CreateAccountInput{Email: "a@example.com", Role: &r1.ID})
	if err != nil {
		t.Fatal(err)
	}
	if held, _ := eng.HasRole(ctx, a.ID, r1.ID); !held {
		t.Fatal("expected initial role")
	}

	// Replace r1 with r2.
	if _, err := eng.UpdateAccount(ctx, super, a.ID, &UpdateAccountInput{Role: &r2.ID}); err != nil {
		t.Fatal(err)
	}
	if held, _ := eng.HasRole(ctx, a.ID, r1.ID); held {
		t.Fatal("expected first role revoked")
	}
	if held, _ := eng.HasRole(ctx, a.ID, r2.ID); !held {
		t.Fatal("expected second role assigned")
	}

	// Clearing: a nil role ID revokes everything.
	clear := id.Nil
	if _, err := eng.UpdateAccount(ctx, super, a.ID, &UpdateAccountInput{Role: &clear}); err != nil {
		t.Fatal(err)
	}
	if held, _ := eng.HasRole(ctx, a.ID, r2.ID); held {
		t.Fatal("expected all roles revoked")
	}
}

func TestUpdateAccountEmailConflict(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newProvisionedEngine(t)
	super := superAdminActor()

	a, err := eng.CreateAccount(ctx, super, &CreateAccountInput{Email: "a@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreateAccount(ctx, super, &CreateAccountInput{Email: "b@example.com"}); err != nil {
		t.Fatal(err)
	}

	taken := "b@example.com"
	if _, err := eng.UpdateAccount(ctx, super, a.ID, &UpdateAccountInput{Email: &taken}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDeleteAccountCascadesRevocation(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newProvisionedEngine(t)
	super := superAdminActor()

	r, err := eng.CreateRole(ctx, &CreateRoleInput{Identifier: "ops", Name: "Ops"})
	if err != nil {
		t.Fatal(err)
	}
	a, err := eng.CreateAccount(ctx, super, &CreateAccountInput{Email: "a@example.com", Role: &r.ID})
	if err != nil {
		t.Fatal(err)
	}

	if err := eng.DeleteAccount(ctx, super, a.ID); err != nil {
		t.Fatal(err)
	}

	got, err := eng.GetAccount(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Deleted() {
		t.Fatal("expected soft-deleted account")
	}
	if held, _ := eng.HasRole(ctx, a.ID, r.ID); held {
		t.Fatal("expected cascade-revoked assignment")
	}

	// Deleting again is a no-op.
	if err := eng.DeleteAccount(ctx, super, a.ID); err != nil {
		t.Fatal(err)
	}

	// The email becomes claimable by a new account.
	if _, err := eng.CreateAccount(ctx, super, &CreateAccountInput{Email: "a@example.com"}); err != nil {
		t.Fatal(err)
	}

	// Restore now collides with the new live account.
	if _, err := eng.RestoreAccount(ctx, super, a.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on restore, got %v", err)
	}
}

func TestSendPasswordReset(t *testing.T) {
	ctx := context.Background()
	eng, _, prov := newProvisionedEngine(t)

	if err := eng.SendPasswordReset(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := eng.CreateAccount(ctx, superAdminActor(), &CreateAccountInput{Email: "a@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := eng.SendPasswordReset(ctx, "a@example.com"); err != nil {
		t.Fatal(err)
	}
	if len(prov.resets) != 1 {
		t.Fatalf("expected 1 reset dispatch, got %d", len(prov.resets))
	}

	// Collaborator 404 surfaces as not found.
	prov.resetErr = &provision.APIError{Status: 404, Message: "unknown identity"}
	if err := eng.SendPasswordReset(ctx, "a@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
