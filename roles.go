package steward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
)

// CreateRoleInput is the input to CreateRole. Policies accepts either
// policy IDs or identifiers.
type CreateRoleInput struct {
	Identifier  string   `json:"identifier"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Policies    []string `json:"policies,omitempty"`
	Level       int      `json:"level"`
	IsSystem    bool     `json:"is_system,omitempty"`
	IsDefault   bool     `json:"is_default,omitempty"`
}

// UpdateRoleInput is the input to UpdateRole. Nil fields are left
// unchanged. A non-nil Policies slice replaces the membership set
// wholesale.
type UpdateRoleInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Policies    *[]string `json:"policies,omitempty"`
	Level       *int      `json:"level,omitempty"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

// CreateRole creates a new role bundling the referenced policies. When
// IsDefault is set, any current default role is demoted first so at most
// one live role carries the flag.
func (e *Engine) CreateRole(ctx context.Context, in *CreateRoleInput) (*role.Role, error) {
	if in.Identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", ErrBadRequest)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.Level < 0 || in.Level > 100 {
		return nil, fmt.Errorf("%w: level must be between 0 and 100", ErrBadRequest)
	}

	if _, err := e.store.GetRoleByIdentifier(ctx, in.Identifier); err == nil {
		return nil, fmt.Errorf("%w: role %q already exists", ErrConflict, in.Identifier)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, e.internalErr(ctx, "create role", err)
	}

	polIDs, err := e.resolvePolicyRefs(ctx, in.Policies)
	if err != nil {
		return nil, err
	}

	if in.IsDefault {
		if err := e.demoteDefaultRole(ctx); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	r := &role.Role{
		ID:          id.NewRoleID(),
		Identifier:  in.Identifier,
		Name:        in.Name,
		Description: in.Description,
		PolicyIDs:   polIDs,
		Level:       in.Level,
		IsActive:    true,
		IsSystem:    in.IsSystem,
		IsDefault:   in.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.CreateRole(ctx, r); err != nil {
		return nil, e.storeErr(ctx, "create role", err)
	}

	if e.plugins != nil {
		e.plugins.EmitRoleCreated(ctx, r)
	}
	return r, nil
}

// GetRole retrieves a role by ID.
func (e *Engine) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	r, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, e.storeErr(ctx, "get role", err)
	}
	return r, nil
}

// GetRoleByIdentifier retrieves a live role by identifier.
func (e *Engine) GetRoleByIdentifier(ctx context.Context, identifier string) (*role.Role, error) {
	r, err := e.store.GetRoleByIdentifier(ctx, identifier)
	if err != nil {
		return nil, e.storeErr(ctx, "get role by identifier", err)
	}
	return r, nil
}

// GetDefaultRole returns the role flagged as default. Fails with
// ErrNotFound when no default role exists.
func (e *Engine) GetDefaultRole(ctx context.Context) (*role.Role, error) {
	r, err := e.store.GetDefaultRole(ctx)
	if err != nil {
		return nil, e.storeErr(ctx, "get default role", err)
	}
	return r, nil
}

// SetDefaultRole promotes the given role to the single default. The
// current default, if any, is demoted first.
func (e *Engine) SetDefaultRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	r, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, e.storeErr(ctx, "set default role", err)
	}
	if r.Deleted() {
		return nil, fmt.Errorf("set default role: %w", ErrNotFound)
	}
	if !r.IsActive {
		return nil, fmt.Errorf("%w: role %q is inactive", ErrBadRequest, r.Identifier)
	}
	if r.IsDefault {
		return r, nil
	}

	if err := e.demoteDefaultRole(ctx); err != nil {
		return nil, err
	}

	r.IsDefault = true
	r.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return nil, e.storeErr(ctx, "set default role", err)
	}

	if e.plugins != nil {
		e.plugins.EmitRoleUpdated(ctx, r)
	}
	return r, nil
}

// ListRoles returns roles matching the filter.
func (e *Engine) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	if filter == nil {
		filter = &role.ListFilter{}
	}
	roles, err := e.store.ListRoles(ctx, filter)
	if err != nil {
		return nil, e.storeErr(ctx, "list roles", err)
	}
	return roles, nil
}

// CountRoles returns the number of roles matching the filter.
func (e *Engine) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	if filter == nil {
		filter = &role.ListFilter{}
	}
	n, err := e.store.CountRoles(ctx, filter)
	if err != nil {
		return 0, e.storeErr(ctx, "count roles", err)
	}
	return n, nil
}

// UpdateRole applies a partial update to a role.
func (e *Engine) UpdateRole(ctx context.Context, roleID id.RoleID, in *UpdateRoleInput) (*role.Role, error) {
	r, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, e.storeErr(ctx, "update role", err)
	}
	if r.Deleted() {
		return nil, fmt.Errorf("update role: %w", ErrNotFound)
	}

	if in.Name != nil {
		r.Name = *in.Name
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Level != nil {
		if *in.Level < 0 || *in.Level > 100 {
			return nil, fmt.Errorf("%w: level must be between 0 and 100", ErrBadRequest)
		}
		r.Level = *in.Level
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	if in.Policies != nil {
		polIDs, err := e.resolvePolicyRefs(ctx, *in.Policies)
		if err != nil {
			return nil, err
		}
		r.PolicyIDs = polIDs
	}
	r.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateRole(ctx, r); err != nil {
		return nil, e.storeErr(ctx, "update role", err)
	}

	if e.plugins != nil {
		e.plugins.EmitRoleUpdated(ctx, r)
	}
	return r, nil
}

// AddPolicyToRole adds a single policy reference. Adding an
// already-present policy is a no-op.
func (e *Engine) AddPolicyToRole(ctx context.Context, roleID id.RoleID, ref string) (*role.Role, error) {
	r, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, e.storeErr(ctx, "add policy to role", err)
	}
	if r.Deleted() {
		return nil, fmt.Errorf("add policy to role: %w", ErrNotFound)
	}

	polIDs, err := e.resolvePolicyRefs(ctx, []string{ref})
	if err != nil {
		return nil, err
	}
	if r.HasPolicy(polIDs[0]) {
		return r, nil
	}

	r.PolicyIDs = append(r.PolicyIDs, polIDs[0])
	r.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return nil, e.storeErr(ctx, "add policy to role", err)
	}

	if e.plugins != nil {
		e.plugins.EmitRoleUpdated(ctx, r)
	}
	return r, nil
}

// RemovePolicyFromRole removes a single policy reference. Removing an
// absent policy is a no-op.
func (e *Engine) RemovePolicyFromRole(ctx context.Context, roleID id.RoleID, polID id.PolicyID) (*role.Role, error) {
	r, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, e.storeErr(ctx, "remove policy from role", err)
	}
	if r.Deleted() {
		return nil, fmt.Errorf("remove policy from role: %w", ErrNotFound)
	}
	if !r.HasPolicy(polID) {
		return r, nil
	}

	kept := make([]id.PolicyID, 0, len(r.PolicyIDs)-1)
	for _, pid := range r.PolicyIDs {
		if pid.String() != polID.String() {
			kept = append(kept, pid)
		}
	}
	r.PolicyIDs = kept
	r.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return nil, e.storeErr(ctx, "remove policy from role", err)
	}

	if e.plugins != nil {
		e.plugins.EmitRoleUpdated(ctx, r)
	}
	return r, nil
}

// DeleteRole soft-deletes a role and clears its active flag. System and
// default roles can never be deleted. Deleting an already-deleted role is
// a no-op.
func (e *Engine) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	r, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return e.storeErr(ctx, "delete role", err)
	}
	if r.IsSystem {
		return fmt.Errorf("%w: system role %q cannot be deleted", ErrInvariantViolation, r.Identifier)
	}
	if r.IsDefault {
		return fmt.Errorf("%w: default role %q cannot be deleted", ErrInvariantViolation, r.Identifier)
	}
	if r.Deleted() {
		return nil
	}

	now := time.Now().UTC()
	r.DeletedAt = &now
	r.IsActive = false
	r.UpdatedAt = now
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return e.storeErr(ctx, "delete role", err)
	}

	if e.plugins != nil {
		e.plugins.EmitRoleDeleted(ctx, roleID)
	}
	return nil
}

// RestoreRole clears the soft-delete marker and reactivates the role.
func (e *Engine) RestoreRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	r, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, e.storeErr(ctx, "restore role", err)
	}
	if !r.Deleted() {
		return r, nil
	}

	if existing, err := e.store.GetRoleByIdentifier(ctx, r.Identifier); err == nil && existing.ID.String() != r.ID.String() {
		return nil, fmt.Errorf("%w: role %q already exists", ErrConflict, r.Identifier)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, e.internalErr(ctx, "restore role", err)
	}

	r.DeletedAt = nil
	r.IsActive = true
	r.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRole(ctx, r); err != nil {
		return nil, e.storeErr(ctx, "restore role", err)
	}
	return r, nil
}

// demoteDefaultRole clears the IsDefault flag on the current default role,
// if one exists. Demote-then-promote keeps the single-default invariant
// observable at every step.
func (e *Engine) demoteDefaultRole(ctx context.Context) error {
	current, err := e.store.GetDefaultRole(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return e.internalErr(ctx, "demote default role", err)
	}

	current.IsDefault = false
	current.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdateRole(ctx, current); err != nil {
		return e.storeErr(ctx, "demote default role", err)
	}
	return nil
}

// resolvePolicyRefs turns a mixed list of policy IDs and identifiers into
// live policy IDs, deduplicated. An unknown or soft-deleted reference
// fails with ErrBadRequest.
func (e *Engine) resolvePolicyRefs(ctx context.Context, refs []string) ([]id.PolicyID, error) {
	out := make([]id.PolicyID, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		var p *policy.Policy
		if polID, err := id.ParsePolicyID(ref); err == nil {
			p, err = e.store.GetPolicy(ctx, polID)
			if err != nil || p.Deleted() {
				return nil, fmt.Errorf("%w: unknown policy %q", ErrBadRequest, ref)
			}
		} else {
			p, err = e.store.GetPolicyByIdentifier(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("%w: unknown policy %q", ErrBadRequest, ref)
			}
		}
		key := p.ID.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p.ID)
	}
	return out, nil
}
