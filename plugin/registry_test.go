package plugin

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/role"
)

// testPlugin implements Plugin + RoleCreated + AccountSuspended.
type testPlugin struct {
	roleCreatedCalled      bool
	accountSuspendedCalled bool
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnRoleCreated(_ context.Context, _ *role.Role) error {
	t.roleCreatedCalled = true
	return nil
}

func (t *testPlugin) OnAccountSuspended(_ context.Context, _ *account.Account) error {
	t.accountSuspendedCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch RoleCreated to testPlugin only.
	reg.EmitRoleCreated(ctx, &role.Role{ID: id.NewRoleID(), Name: "Admin"})
	if !tp.roleCreatedCalled {
		t.Fatal("OnRoleCreated was not called")
	}

	// Should dispatch AccountSuspended.
	reg.EmitAccountSuspended(ctx, &account.Account{ID: id.NewAccountID()})
	if !tp.accountSuspendedCalled {
		t.Fatal("OnAccountSuspended was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitAccountCreated(ctx, &account.Account{ID: id.NewAccountID()})
	reg.EmitRoleDeleted(ctx, id.NewRoleID())
	reg.EmitShutdown(ctx)
}
