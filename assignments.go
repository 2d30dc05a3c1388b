package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/store"
)

// AssignRoleInput is the input to AssignRole.
type AssignRoleInput struct {
	UserID     id.AccountID `json:"user_id"`
	RoleID     id.RoleID    `json:"role_id"`
	AssignedBy string       `json:"assigned_by,omitempty"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

// RevokeRoleInput is the input to RevokeRole.
type RevokeRoleInput struct {
	UserID    id.AccountID `json:"user_id"`
	RoleID    id.RoleID    `json:"role_id"`
	RevokedBy string       `json:"revoked_by,omitempty"`
}

// AssignRole binds a role to an identity.
//
// If an effective assignment for the pair already exists it is returned
// unchanged. A live but expired or deactivated assignment is refreshed in
// place; a soft-deleted one is restored in place. Otherwise a new row is
// created. The persistence layer's live-pair uniqueness constraint backs
// this check-then-act sequence: on a constraint conflict the racing
// winner's row is returned instead.
func (e *Engine) AssignRole(ctx context.Context, in *AssignRoleInput) (*assignment.Assignment, error) {
	r, err := e.store.GetRole(ctx, in.RoleID)
	if err != nil {
		return nil, e.storeErr(ctx, "assign role", err)
	}
	if r.Deleted() {
		return nil, fmt.Errorf("assign role: %w", ErrNotFound)
	}

	now := time.Now().UTC()
	a, changed, err := e.assignOnce(ctx, in, now)
	if err != nil {
		if !errors.Is(err, store.ErrConflict) {
			return nil, e.storeErr(ctx, "assign role", err)
		}
		// Lost the race: another writer created the live row. Return it.
		a, err = e.store.GetLiveAssignment(ctx, in.UserID, in.RoleID)
		if err != nil {
			return nil, e.storeErr(ctx, "assign role", err)
		}
		return a, nil
	}
	if !changed {
		return a, nil
	}

	if e.cache != nil {
		e.cache.InvalidateUser(ctx, in.UserID)
	}
	if e.plugins != nil {
		e.plugins.EmitRoleAssigned(ctx, a)
	}
	e.audit(ctx, &auditlog.Entry{
		ActorID:    in.AssignedBy,
		Action:     auditlog.ActionRoleAssigned,
		TargetType: "account",
		TargetID:   in.UserID.String(),
		Metadata:   map[string]any{"role_id": in.RoleID.String()},
	})
	return a, nil
}

// assignOnce runs one pass of the assign sequence. The changed result is
// false on the idempotent path where an effective row is returned as-is.
// Constraint conflicts from the store bubble up raw so the caller can
// retry.
func (e *Engine) assignOnce(ctx context.Context, in *AssignRoleInput, now time.Time) (a *assignment.Assignment, changed bool, err error) {
	live, err := e.store.GetLiveAssignment(ctx, in.UserID, in.RoleID)
	switch {
	case err == nil:
		if live.EffectiveAt(now) {
			return live, false, nil
		}
		// Expired or deactivated: refresh in place.
		live.IsActive = true
		live.AssignedBy = in.AssignedBy
		live.AssignedAt = now
		live.ExpiresAt = in.ExpiresAt
		live.Reason = in.Reason
		live.RevokedBy = ""
		live.RevokedAt = nil
		if err := e.store.UpdateAssignment(ctx, live); err != nil {
			return nil, false, err
		}
		return live, true, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, err
	}

	deleted, err := e.store.GetDeletedAssignment(ctx, in.UserID, in.RoleID)
	switch {
	case err == nil:
		deleted.DeletedAt = nil
		deleted.IsActive = true
		deleted.AssignedBy = in.AssignedBy
		deleted.AssignedAt = now
		deleted.ExpiresAt = in.ExpiresAt
		deleted.Reason = in.Reason
		deleted.RevokedBy = ""
		deleted.RevokedAt = nil
		if err := e.store.UpdateAssignment(ctx, deleted); err != nil {
			return nil, false, err
		}
		return deleted, true, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, err
	}

	a = &assignment.Assignment{
		ID:         id.NewAssignmentID(),
		UserID:     in.UserID,
		RoleID:     in.RoleID,
		IsActive:   true,
		AssignedBy: in.AssignedBy,
		AssignedAt: now,
		ExpiresAt:  in.ExpiresAt,
		Reason:     in.Reason,
		CreatedAt:  now,
	}
	if err := e.store.CreateAssignment(ctx, a); err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// RevokeRole soft-deletes the effective assignment for the pair, recording
// who revoked it and when. Revoking a pair with no effective assignment is
// not an error: it returns (nil, nil).
func (e *Engine) RevokeRole(ctx context.Context, in *RevokeRoleInput) (*assignment.Assignment, error) {
	now := time.Now().UTC()
	a, err := e.store.GetLiveAssignment(ctx, in.UserID, in.RoleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, e.storeErr(ctx, "revoke role", err)
	}
	if !a.EffectiveAt(now) {
		return nil, nil
	}

	a.IsActive = false
	a.DeletedAt = &now
	a.RevokedBy = in.RevokedBy
	a.RevokedAt = &now
	if err := e.store.UpdateAssignment(ctx, a); err != nil {
		return nil, e.storeErr(ctx, "revoke role", err)
	}

	if e.cache != nil {
		e.cache.InvalidateUser(ctx, in.UserID)
	}
	if e.plugins != nil {
		e.plugins.EmitRoleRevoked(ctx, a)
	}
	e.audit(ctx, &auditlog.Entry{
		ActorID:    in.RevokedBy,
		Action:     auditlog.ActionRoleRevoked,
		TargetType: "account",
		TargetID:   in.UserID.String(),
		Metadata:   map[string]any{"role_id": in.RoleID.String()},
	})
	return a, nil
}

// RevokeAllRoles revokes every effective assignment for an identity as a
// best-effort fan-out: one failed revoke does not stop the others. It
// returns how many assignments were revoked.
func (e *Engine) RevokeAllRoles(ctx context.Context, userID id.AccountID, revokedBy string) (int, error) {
	assigns, err := e.store.ListEffectiveAssignments(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, e.storeErr(ctx, "revoke all roles", err)
	}

	revoked := 0
	for _, a := range assigns {
		if _, err := e.RevokeRole(ctx, &RevokeRoleInput{UserID: userID, RoleID: a.RoleID, RevokedBy: revokedBy}); err != nil {
			e.logger.ErrorContext(ctx, "steward: revoke failed during fan-out",
				slog.String("user_id", userID.String()),
				slog.String("role_id", a.RoleID.String()),
				slog.Any("error", err),
			)
			continue
		}
		revoked++
	}
	return revoked, nil
}

// ExtendAssignment adds days to the effective assignment's expiry, or sets
// it to now+days when the assignment never expired. Returns (nil, nil)
// when no effective assignment exists.
func (e *Engine) ExtendAssignment(ctx context.Context, userID id.AccountID, roleID id.RoleID, days int) (*assignment.Assignment, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ErrBadRequest)
	}

	now := time.Now().UTC()
	a, err := e.store.GetLiveAssignment(ctx, userID, roleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, e.storeErr(ctx, "extend assignment", err)
	}
	if !a.EffectiveAt(now) {
		return nil, nil
	}

	var next time.Time
	if a.ExpiresAt == nil {
		next = now.AddDate(0, 0, days)
	} else {
		next = a.ExpiresAt.AddDate(0, 0, days)
	}
	a.ExpiresAt = &next
	if err := e.store.UpdateAssignment(ctx, a); err != nil {
		return nil, e.storeErr(ctx, "extend assignment", err)
	}

	if e.cache != nil {
		e.cache.InvalidateUser(ctx, userID)
	}
	return a, nil
}

// HasRole reports whether the identity holds an effective assignment of a
// live, active role. This is the O(1) authorization gate, distinct from
// full capability resolution, and the only query the optional cache backs.
func (e *Engine) HasRole(ctx context.Context, userID id.AccountID, roleID id.RoleID) (bool, error) {
	if e.cache != nil && e.config.GateCacheTTL > 0 {
		if held, ok := e.cache.Get(ctx, userID, roleID); ok {
			return held, nil
		}
	}

	held, err := e.hasRoleUncached(ctx, userID, roleID)
	if err != nil {
		return false, err
	}

	if e.cache != nil && e.config.GateCacheTTL > 0 {
		e.cache.Set(ctx, userID, roleID, held)
	}
	return held, nil
}

func (e *Engine) hasRoleUncached(ctx context.Context, userID id.AccountID, roleID id.RoleID) (bool, error) {
	a, err := e.store.GetLiveAssignment(ctx, userID, roleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, e.storeErr(ctx, "has role", err)
	}
	if !a.EffectiveAt(time.Now().UTC()) {
		return false, nil
	}

	r, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, e.storeErr(ctx, "has role", err)
	}
	return r.IsActive && !r.Deleted(), nil
}

// GetIdentitiesWithRole is the inverse gate query: every identity holding
// an effective assignment of the role.
func (e *Engine) GetIdentitiesWithRole(ctx context.Context, roleID id.RoleID) ([]id.AccountID, error) {
	assigns, err := e.store.ListEffectiveAssignmentsByRole(ctx, roleID, time.Now().UTC())
	if err != nil {
		return nil, e.storeErr(ctx, "get identities with role", err)
	}

	out := make([]id.AccountID, 0, len(assigns))
	for _, a := range assigns {
		out = append(out, a.UserID)
	}
	return out, nil
}

// GetAssignment retrieves an assignment by ID.
func (e *Engine) GetAssignment(ctx context.Context, assID id.AssignmentID) (*assignment.Assignment, error) {
	a, err := e.store.GetAssignment(ctx, assID)
	if err != nil {
		return nil, e.storeErr(ctx, "get assignment", err)
	}
	return a, nil
}

// ListAssignments returns assignments matching the filter.
func (e *Engine) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	if filter == nil {
		filter = &assignment.ListFilter{}
	}
	assigns, err := e.store.ListAssignments(ctx, filter)
	if err != nil {
		return nil, e.storeErr(ctx, "list assignments", err)
	}
	return assigns, nil
}

// CountAssignments returns the number of assignments matching the filter.
func (e *Engine) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	if filter == nil {
		filter = &assignment.ListFilter{}
	}
	n, err := e.store.CountAssignments(ctx, filter)
	if err != nil {
		return 0, e.storeErr(ctx, "count assignments", err)
	}
	return n, nil
}
