package steward

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/steward/permission"
)

func TestCreatePermissionDerivesIdentifier(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead})
	if err != nil {
		t.Fatal(err)
	}
	if p.Identifier != "user:read" {
		t.Fatalf("expected user:read, got %s", p.Identifier)
	}
	if p.Name != "user:read" {
		t.Fatalf("expected name to default to identifier, got %s", p.Name)
	}
	if !p.IsActive {
		t.Fatal("expected new permission to be active")
	}
}

func TestCreatePermissionValidation(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	if _, err := eng.CreatePermission(ctx, &CreatePermissionInput{Action: permission.ActionRead}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for empty resource, got %v", err)
	}
	if _, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: "frobnicate"}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for unknown action, got %v", err)
	}
}

func TestCreatePermissionConflict(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	in := &CreatePermissionInput{Resource: "billing", Action: permission.ActionManage}
	if _, err := eng.CreatePermission(ctx, in); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CreatePermission(ctx, in); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdatePermissionKeepsIdentifier(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead})
	if err != nil {
		t.Fatal(err)
	}

	name := "Read users"
	inactive := false
	got, err := eng.UpdatePermission(ctx, p.ID, &UpdatePermissionInput{Name: &name, IsActive: &inactive})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != name {
		t.Fatalf("expected updated name, got %s", got.Name)
	}
	if got.IsActive {
		t.Fatal("expected inactive")
	}
	// Resource and action are immutable; the identifier never changes.
	if got.Identifier != "user:read" {
		t.Fatalf("identifier changed to %s", got.Identifier)
	}
}

func TestDeletePermissionIdempotentAndRestore(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead})
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.DeletePermission(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	// Second delete is a no-op.
	if err := eng.DeletePermission(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	got, err := eng.GetPermission(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Deleted() || got.IsActive {
		t.Fatal("expected deleted and inactive")
	}

	// Identifier lookup no longer serves the deleted row.
	if _, err := eng.GetPermissionByIdentifier(ctx, "user:read"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	restored, err := eng.RestorePermission(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Deleted() || !restored.IsActive {
		t.Fatal("expected restored permission to be live and active")
	}
}

func TestRestorePermissionIdentifierConflict(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	p, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead})
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.DeletePermission(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	// The identifier was freed and reclaimed.
	if _, err := eng.CreatePermission(ctx, &CreatePermissionInput{Resource: "user", Action: permission.ActionRead}); err != nil {
		t.Fatal(err)
	}

	if _, err := eng.RestorePermission(ctx, p.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
