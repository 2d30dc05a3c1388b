package steward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/store"
)

// CreatePermissionInput is the input to CreatePermission.
type CreatePermissionInput struct {
	Resource    string            `json:"resource"`
	Action      permission.Action `json:"action"`
	Identifier  string            `json:"identifier,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
}

// UpdatePermissionInput is the input to UpdatePermission. Nil fields are
// left unchanged. Resource, action, and identifier are immutable.
type UpdatePermissionInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CreatePermission creates a new permission. The identifier defaults to
// "resource:action" when not supplied and must be unique among live
// permissions.
func (e *Engine) CreatePermission(ctx context.Context, in *CreatePermissionInput) (*permission.Permission, error) {
	if in.Resource == "" {
		return nil, fmt.Errorf("%w: resource is required", ErrBadRequest)
	}
	if !permission.ValidAction(in.Action) {
		return nil, fmt.Errorf("%w: invalid action %q", ErrBadRequest, in.Action)
	}

	identifier := in.Identifier
	if identifier == "" {
		identifier = in.Resource + ":" + string(in.Action)
	}

	if _, err := e.store.GetPermissionByIdentifier(ctx, identifier); err == nil {
		return nil, fmt.Errorf("%w: permission %q already exists", ErrConflict, identifier)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, e.internalErr(ctx, "create permission", err)
	}

	name := in.Name
	if name == "" {
		name = identifier
	}

	now := time.Now().UTC()
	p := &permission.Permission{
		ID:          id.NewPermissionID(),
		Identifier:  identifier,
		Resource:    in.Resource,
		Action:      in.Action,
		Name:        name,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.CreatePermission(ctx, p); err != nil {
		return nil, e.storeErr(ctx, "create permission", err)
	}

	if e.plugins != nil {
		e.plugins.EmitPermissionCreated(ctx, p)
	}
	return p, nil
}

// GetPermission retrieves a permission by ID.
func (e *Engine) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	p, err := e.store.GetPermission(ctx, permID)
	if err != nil {
		return nil, e.storeErr(ctx, "get permission", err)
	}
	return p, nil
}

// GetPermissionByIdentifier retrieves a live permission by identifier.
func (e *Engine) GetPermissionByIdentifier(ctx context.Context, identifier string) (*permission.Permission, error) {
	p, err := e.store.GetPermissionByIdentifier(ctx, identifier)
	if err != nil {
		return nil, e.storeErr(ctx, "get permission by identifier", err)
	}
	return p, nil
}

// ListPermissions returns permissions matching the filter.
func (e *Engine) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	if filter == nil {
		filter = &permission.ListFilter{}
	}
	perms, err := e.store.ListPermissions(ctx, filter)
	if err != nil {
		return nil, e.storeErr(ctx, "list permissions", err)
	}
	return perms, nil
}

// CountPermissions returns the number of permissions matching the filter.
func (e *Engine) CountPermissions(ctx context.Context, filter *permission.ListFilter) (int64, error) {
	if filter == nil {
		filter = &permission.ListFilter{}
	}
	n, err := e.store.CountPermissions(ctx, filter)
	if err != nil {
		return 0, e.storeErr(ctx, "count permissions", err)
	}
	return n, nil
}

// UpdatePermission applies a partial update. The identifier is never
// recomputed, even when the name changes.
func (e *Engine) UpdatePermission(ctx context.Context, permID id.PermissionID, in *UpdatePermissionInput) (*permission.Permission, error) {
	p, err := e.store.GetPermission(ctx, permID)
	if err != nil {
		return nil, e.storeErr(ctx, "update permission", err)
	}
	if p.Deleted() {
		return nil, fmt.Errorf("update permission: %w", ErrNotFound)
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdatePermission(ctx, p); err != nil {
		return nil, e.storeErr(ctx, "update permission", err)
	}
	return p, nil
}

// DeletePermission soft-deletes a permission and clears its active flag.
// Deleting an already-deleted permission is a no-op.
func (e *Engine) DeletePermission(ctx context.Context, permID id.PermissionID) error {
	p, err := e.store.GetPermission(ctx, permID)
	if err != nil {
		return e.storeErr(ctx, "delete permission", err)
	}
	if p.Deleted() {
		return nil
	}

	now := time.Now().UTC()
	p.DeletedAt = &now
	p.IsActive = false
	p.UpdatedAt = now
	if err := e.store.UpdatePermission(ctx, p); err != nil {
		return e.storeErr(ctx, "delete permission", err)
	}

	if e.plugins != nil {
		e.plugins.EmitPermissionDeleted(ctx, permID)
	}
	return nil
}

// RestorePermission clears the soft-delete marker and reactivates the
// permission. Fails with ErrConflict if another live permission has since
// claimed the same identifier.
func (e *Engine) RestorePermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	p, err := e.store.GetPermission(ctx, permID)
	if err != nil {
		return nil, e.storeErr(ctx, "restore permission", err)
	}
	if !p.Deleted() {
		return p, nil
	}

	if existing, err := e.store.GetPermissionByIdentifier(ctx, p.Identifier); err == nil && existing.ID.String() != p.ID.String() {
		return nil, fmt.Errorf("%w: permission %q already exists", ErrConflict, p.Identifier)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, e.internalErr(ctx, "restore permission", err)
	}

	p.DeletedAt = nil
	p.IsActive = true
	p.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdatePermission(ctx, p); err != nil {
		return nil, e.storeErr(ctx, "restore permission", err)
	}
	return p, nil
}
