package steward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/store"
)

// CreatePolicyInput is the input to CreatePolicy. Permissions accepts
// either permission IDs or "resource:action" identifiers.
type CreatePolicyInput struct {
	Identifier  string          `json:"identifier"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions []string        `json:"permissions,omitempty"`
	Priority    int             `json:"priority"`
	Category    policy.Category `json:"category,omitempty"`
	IsSystem    bool            `json:"is_system,omitempty"`
}

// UpdatePolicyInput is the input to UpdatePolicy. Nil fields are left
// unchanged. A non-nil Permissions slice replaces the membership set
// wholesale, it is never merged.
type UpdatePolicyInput struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Permissions *[]string        `json:"permissions,omitempty"`
	Priority    *int             `json:"priority,omitempty"`
	Category    *policy.Category `json:"category,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// CreatePolicy creates a new policy bundling the referenced permissions.
func (e *Engine) CreatePolicy(ctx context.Context, in *CreatePolicyInput) (*policy.Policy, error) {
	if in.Identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", ErrBadRequest)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	if in.Priority < 0 || in.Priority > 100 {
		return nil, fmt.Errorf("%w: priority must be between 0 and 100", ErrBadRequest)
	}
	category := in.Category
	if category == "" {
		category = policy.CategoryCustom
	}
	if !policy.ValidCategory(category) {
		return nil, fmt.Errorf("%w: invalid category %q", ErrBadRequest, in.Category)
	}

	if _, err := e.store.GetPolicyByIdentifier(ctx, in.Identifier); err == nil {
		return nil, fmt.Errorf("%w: policy %q already exists", ErrConflict, in.Identifier)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, e.internalErr(ctx, "create policy", err)
	}

	permIDs, err := e.resolvePermissionRefs(ctx, in.Permissions)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &policy.Policy{
		ID:            id.NewPolicyID(),
		Identifier:    in.Identifier,
		Name:          in.Name,
		Description:   in.Description,
		PermissionIDs: permIDs,
		Priority:      in.Priority,
		Category:      category,
		IsActive:      true,
		IsSystem:      in.IsSystem,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.store.CreatePolicy(ctx, p); err != nil {
		return nil, e.storeErr(ctx, "create policy", err)
	}

	if e.plugins != nil {
		e.plugins.EmitPolicyCreated(ctx, p)
	}
	return p, nil
}

// GetPolicy retrieves a policy by ID. The returned policy carries its
// permission references as IDs; use GetPolicyPermissions to hydrate the
// full permission objects.
func (e *Engine) GetPolicy(ctx context.Context, polID id.PolicyID) (*policy.Policy, error) {
	p, err := e.store.GetPolicy(ctx, polID)
	if err != nil {
		return nil, e.storeErr(ctx, "get policy", err)
	}
	return p, nil
}

// GetPolicyByIdentifier retrieves a live policy by identifier. Like
// GetPolicy it returns permission references as IDs; GetPolicyPermissions
// hydrates them.
func (e *Engine) GetPolicyByIdentifier(ctx context.Context, identifier string) (*policy.Policy, error) {
	p, err := e.store.GetPolicyByIdentifier(ctx, identifier)
	if err != nil {
		return nil, e.storeErr(ctx, "get policy by identifier", err)
	}
	return p, nil
}

// GetPolicyPermissions returns the live permissions bundled by a policy.
func (e *Engine) GetPolicyPermissions(ctx context.Context, polID id.PolicyID) ([]*permission.Permission, error) {
	p, err := e.store.GetPolicy(ctx, polID)
	if err != nil {
		return nil, e.storeErr(ctx, "get policy permissions", err)
	}
	perms, err := e.store.ListPermissionsByIDs(ctx, p.PermissionIDs)
	if err != nil {
		return nil, e.storeErr(ctx, "get policy permissions", err)
	}
	return perms, nil
}

// ListPolicies returns policies matching the filter.
func (e *Engine) ListPolicies(ctx context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	if filter == nil {
		filter = &policy.ListFilter{}
	}
	policies, err := e.store.ListPolicies(ctx, filter)
	if err != nil {
		return nil, e.storeErr(ctx, "list policies", err)
	}
	return policies, nil
}

// CountPolicies returns the number of policies matching the filter.
func (e *Engine) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	if filter == nil {
		filter = &policy.ListFilter{}
	}
	n, err := e.store.CountPolicies(ctx, filter)
	if err != nil {
		return 0, e.storeErr(ctx, "count policies", err)
	}
	return n, nil
}

// UpdatePolicy applies a partial update to a policy.
func (e *Engine) UpdatePolicy(ctx context.Context, polID id.PolicyID, in *UpdatePolicyInput) (*policy.Policy, error) {
	p, err := e.store.GetPolicy(ctx, polID)
	if err != nil {
		return nil, e.storeErr(ctx, "update policy", err)
	}
	if p.Deleted() {
		return nil, fmt.Errorf("update policy: %w", ErrNotFound)
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Priority != nil {
		if *in.Priority < 0 || *in.Priority > 100 {
			return nil, fmt.Errorf("%w: priority must be between 0 and 100", ErrBadRequest)
		}
		p.Priority = *in.Priority
	}
	if in.Category != nil {
		if !policy.ValidCategory(*in.Category) {
			return nil, fmt.Errorf("%w: invalid category %q", ErrBadRequest, *in.Category)
		}
		p.Category = *in.Category
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.Permissions != nil {
		permIDs, err := e.resolvePermissionRefs(ctx, *in.Permissions)
		if err != nil {
			return nil, err
		}
		p.PermissionIDs = permIDs
	}
	p.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdatePolicy(ctx, p); err != nil {
		return nil, e.storeErr(ctx, "update policy", err)
	}

	if e.plugins != nil {
		e.plugins.EmitPolicyUpdated(ctx, p)
	}
	return p, nil
}

// AddPermissionToPolicy adds a single permission reference. Adding an
// already-present permission is a no-op.
func (e *Engine) AddPermissionToPolicy(ctx context.Context, polID id.PolicyID, ref string) (*policy.Policy, error) {
	p, err := e.store.GetPolicy(ctx, polID)
	if err != nil {
		return nil, e.storeErr(ctx, "add permission to policy", err)
	}
	if p.Deleted() {
		return nil, fmt.Errorf("add permission to policy: %w", ErrNotFound)
	}

	permIDs, err := e.resolvePermissionRefs(ctx, []string{ref})
	if err != nil {
		return nil, err
	}
	if p.HasPermission(permIDs[0]) {
		return p, nil
	}

	p.PermissionIDs = append(p.PermissionIDs, permIDs[0])
	p.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdatePolicy(ctx, p); err != nil {
		return nil, e.storeErr(ctx, "add permission to policy", err)
	}

	if e.plugins != nil {
		e.plugins.EmitPolicyUpdated(ctx, p)
	}
	return p, nil
}

// RemovePermissionFromPolicy removes a single permission reference.
// Removing an absent permission is a no-op.
func (e *Engine) RemovePermissionFromPolicy(ctx context.Context, polID id.PolicyID, permID id.PermissionID) (*policy.Policy, error) {
	p, err := e.store.GetPolicy(ctx, polID)
	if err != nil {
		return nil, e.storeErr(ctx, "remove permission from policy", err)
	}
	if p.Deleted() {
		return nil, fmt.Errorf("remove permission from policy: %w", ErrNotFound)
	}
	if !p.HasPermission(permID) {
		return p, nil
	}

	kept := make([]id.PermissionID, 0, len(p.PermissionIDs)-1)
	for _, pid := range p.PermissionIDs {
		if pid.String() != permID.String() {
			kept = append(kept, pid)
		}
	}
	p.PermissionIDs = kept
	p.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdatePolicy(ctx, p); err != nil {
		return nil, e.storeErr(ctx, "remove permission from policy", err)
	}

	if e.plugins != nil {
		e.plugins.EmitPolicyUpdated(ctx, p)
	}
	return p, nil
}

// DeletePolicy soft-deletes a policy and clears its active flag. System
// policies can never be deleted. Deleting an already-deleted policy is a
// no-op.
func (e *Engine) DeletePolicy(ctx context.Context, polID id.PolicyID) error {
	p, err := e.store.GetPolicy(ctx, polID)
	if err != nil {
		return e.storeErr(ctx, "delete policy", err)
	}
	if p.IsSystem {
		return fmt.Errorf("%w: system policy %q cannot be deleted", ErrInvariantViolation, p.Identifier)
	}
	if p.Deleted() {
		return nil
	}

	now := time.Now().UTC()
	p.DeletedAt = &now
	p.IsActive = false
	p.UpdatedAt = now
	if err := e.store.UpdatePolicy(ctx, p); err != nil {
		return e.storeErr(ctx, "delete policy", err)
	}

	if e.plugins != nil {
		e.plugins.EmitPolicyDeleted(ctx, polID)
	}
	return nil
}

// RestorePolicy clears the soft-delete marker and reactivates the policy.
func (e *Engine) RestorePolicy(ctx context.Context, polID id.PolicyID) (*policy.Policy, error) {
	p, err := e.store.GetPolicy(ctx, polID)
	if err != nil {
		return nil, e.storeErr(ctx, "restore policy", err)
	}
	if !p.Deleted() {
		return p, nil
	}

	if existing, err := e.store.GetPolicyByIdentifier(ctx, p.Identifier); err == nil && existing.ID.String() != p.ID.String() {
		return nil, fmt.Errorf("%w: policy %q already exists", ErrConflict, p.Identifier)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, e.internalErr(ctx, "restore policy", err)
	}

	p.DeletedAt = nil
	p.IsActive = true
	p.UpdatedAt = time.Now().UTC()
	if err := e.store.UpdatePolicy(ctx, p); err != nil {
		return nil, e.storeErr(ctx, "restore policy", err)
	}
	return p, nil
}

// resolvePermissionRefs turns a mixed list of permission IDs and
// "resource:action" identifiers into live permission IDs, deduplicated.
// An unknown or soft-deleted reference fails with ErrBadRequest.
func (e *Engine) resolvePermissionRefs(ctx context.Context, refs []string) ([]id.PermissionID, error) {
	out := make([]id.PermissionID, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		var p *permission.Permission
		if permID, err := id.ParsePermissionID(ref); err == nil {
			p, err = e.store.GetPermission(ctx, permID)
			if err != nil || p.Deleted() {
				return nil, fmt.Errorf("%w: unknown permission %q", ErrBadRequest, ref)
			}
		} else {
			p, err = e.store.GetPermissionByIdentifier(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("%w: unknown permission %q", ErrBadRequest, ref)
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
