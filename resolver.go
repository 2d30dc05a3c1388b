package steward

import (
	"context"
	"sort"
	"time"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
)

// PolicyGrant is a policy hydrated with its live, active permissions.
type PolicyGrant struct {
	Policy      *policy.Policy           `json:"policy"`
	Permissions []*permission.Permission `json:"permissions"`
}

// EffectiveRole is one effective assignment expanded through the full
// Permission → Policy → Role → Assignment graph.
type EffectiveRole struct {
	Assignment *assignment.Assignment `json:"assignment"`
	Role       *role.Role             `json:"role"`
	Policies   []*PolicyGrant         `json:"policies"`
}

// GetEffectiveRoles is the canonical resolution query: every effective
// assignment for the identity, each expanded with its role, the role's
// policies, and each policy's permissions. Soft-deleted or inactive nodes
// drop out at every level of the graph.
//
// The graph is loaded level by level in three batched lookups, never one
// query per node, and the result is always computed fresh from the store.
func (e *Engine) GetEffectiveRoles(ctx context.Context, userID id.AccountID) ([]*EffectiveRole, error) {
	assigns, err := e.store.ListEffectiveAssignments(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, e.storeErr(ctx, "get effective roles", err)
	}
	if len(assigns) == 0 {
		return []*EffectiveRole{}, nil
	}

	roleIDs := make([]id.RoleID, 0, len(assigns))
	for _, a := range assigns {
		roleIDs = append(roleIDs, a.RoleID)
	}
	roles, err := e.store.ListRolesByIDs(ctx, roleIDs)
	if err != nil {
		return nil, e.storeErr(ctx, "get effective roles", err)
	}

	rolesByID := make(map[string]*role.Role, len(roles))
	polIDs := make([]id.PolicyID, 0, len(roles)*2)
	polSeen := make(map[string]struct{})
	for _, r := range roles {
		if !r.IsActive {
			continue
		}
		rolesByID[r.ID.String()] = r
		for _, pid := range r.PolicyIDs {
			if _, ok := polSeen[pid.String()]; ok {
				continue
			}
			polSeen[pid.String()] = struct{}{}
			polIDs = append(polIDs, pid)
		}
	}

	policies, err := e.store.ListPoliciesByIDs(ctx, polIDs)
	if err != nil {
		return nil, e.storeErr(ctx, "get effective roles", err)
	}

	policiesByID := make(map[string]*policy.Policy, len(policies))
	permIDs := make([]id.PermissionID, 0, len(policies)*4)
	permSeen := make(map[string]struct{})
	for _, p := range policies {
		if !p.IsActive {
			continue
		}
		policiesByID[p.ID.String()] = p
		for _, pid := range p.PermissionIDs {
			if _, ok := permSeen[pid.String()]; ok {
				continue
			}
			permSeen[pid.String()] = struct{}{}
			permIDs = append(permIDs, pid)
		}
	}

	perms, err := e.store.ListPermissionsByIDs(ctx, permIDs)
	if err != nil {
		return nil, e.storeErr(ctx, "get effective roles", err)
	}
	permsByID := make(map[string]*permission.Permission, len(perms))
	for _, p := range perms {
		if !p.IsActive {
			continue
		}
		permsByID[p.ID.String()] = p
	}

	out := make([]*EffectiveRole, 0, len(assigns))
	for _, a := range assigns {
		r, ok := rolesByID[a.RoleID.String()]
		if !ok {
			continue
		}
		grants := make([]*PolicyGrant, 0, len(r.PolicyIDs))
		for _, polID := range r.PolicyIDs {
			p, ok := policiesByID[polID.String()]
			if !ok {
				continue
			}
			grant := &PolicyGrant{Policy: p, Permissions: make([]*permission.Permission, 0, len(p.PermissionIDs))}
			for _, permID := range p.PermissionIDs {
				if perm, ok := permsByID[permID.String()]; ok {
					grant.Permissions = append(grant.Permissions, perm)
				}
			}
			grants = append(grants, grant)
		}
		out = append(out, &EffectiveRole{Assignment: a, Role: r, Policies: grants})
	}
	return out, nil
}

// EffectivePermissions flattens the resolution into the identity's
// capability set: the union of every reachable permission, deduplicated by
// identifier and sorted. The model is additive-only, so there is no
// precedence or deny step.
func (e *Engine) EffectivePermissions(ctx context.Context, userID id.AccountID) ([]*permission.Permission, error) {
	effective, err := e.GetEffectiveRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	byIdentifier := make(map[string]*permission.Permission)
	for _, er := range effective {
		for _, grant := range er.Policies {
			for _, p := range grant.Permissions {
				byIdentifier[p.Identifier] = p
			}
		}
	}

	out := make([]*permission.Permission, 0, len(byIdentifier))
	for _, p := range byIdentifier {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

// HasPermission reports whether the identity's capability set contains the
// given "resource:action" identifier.
func (e *Engine) HasPermission(ctx context.Context, userID id.AccountID, identifier string) (bool, error) {
	perms, err := e.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Identifier == identifier {
			return true, nil
		}
	}
	return false, nil
}
