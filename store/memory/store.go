// Package memory provides an in-memory implementation of the Steward
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
)

// Compile-time interface checks.
var (
	_ account.Store    = (*Store)(nil)
	_ permission.Store = (*Store)(nil)
	_ policy.Store     = (*Store)(nil)
	_ role.Store       = (*Store)(nil)
	_ assignment.Store = (*Store)(nil)
	_ auditlog.Store   = (*Store)(nil)
	_ store.Store      = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Steward entities. It
// enforces the same uniqueness rules as the SQL backends: live account
// email, live permission/policy/role identifiers, and at most one live
// assignment per (user, role) pair.
type Store struct {
	mu sync.RWMutex

	accounts    map[string]*account.Account
	permissions map[string]*permission.Permission
	policies    map[string]*policy.Policy
	roles       map[string]*role.Role
	assignments map[string]*assignment.Assignment
	auditLogs   map[string]*auditlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		accounts:    make(map[string]*account.Account),
		permissions: make(map[string]*permission.Permission),
		policies:    make(map[string]*policy.Policy),
		roles:       make(map[string]*role.Role),
		assignments: make(map[string]*assignment.Assignment),
		auditLogs:   make(map[string]*auditlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Account Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.DeletedAt == nil && existing.Email == a.Email {
			return fmt.Errorf("account email %q: %w", a.Email, store.ErrConflict)
		}
	}
	s.accounts[a.ID.String()] = copyAccount(a)
	return nil
}

func (s *Store) GetAccount(_ context.Context, acctID id.AccountID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[acctID.String()]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", acctID, store.ErrNotFound)
	}
	return copyAccount(a), nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.DeletedAt == nil && a.Email == email {
			return copyAccount(a), nil
		}
	}
	return nil, fmt.Errorf("account email %q: %w", email, store.ErrNotFound)
}

func (s *Store) UpdateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.accounts[a.ID.String()]
	if !ok {
		return fmt.Errorf("account %s: %w", a.ID, store.ErrNotFound)
	}
	if existing.Version != a.Version {
		return fmt.Errorf("account %s: %w", a.ID, store.ErrStaleVersion)
	}
	a.Version++
	s.accounts[a.ID.String()] = copyAccount(a)
	return nil
}

func (s *Store) ListAccounts(_ context.Context, filter *account.ListFilter) ([]*account.Account, error) {
	if filter == nil {
		filter = &account.ListFilter{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*account.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if !filter.IncludeDeleted && a.DeletedAt != nil {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchSearch(filter.Search, a.Email, a.Name) {
			continue
		}
		result = append(result, copyAccount(a))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return applyPagination(result, paginationOptsAcct(filter)), nil
}

func (s *Store) CountAccounts(ctx context.Context, filter *account.ListFilter) (int64, error) {
	list, err := s.ListAccounts(ctx, stripPaginationAcct(filter))
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// ──────────────────────────────────────────────────
// Permission Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.permissions {
		if existing.DeletedAt == nil && existing.Identifier == p.Identifier {
			return fmt.Errorf("permission %q: %w", p.Identifier, store.ErrConflict)
		}
	}
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) GetPermission(_ context.Context, permID id.PermissionID) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[permID.String()]
	if !ok {
		return nil, fmt.Errorf("permission %s: %w", permID, store.ErrNotFound)
	}
	return copyPermission(p), nil
}

func (s *Store) GetPermissionByIdentifier(_ context.Context, identifier string) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.DeletedAt == nil && p.Identifier == identifier {
			return copyPermission(p), nil
		}
	}
	return nil, fmt.Errorf("permission %q: %w", identifier, store.ErrNotFound)
}

func (s *Store) UpdatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[p.ID.String()]; !ok {
		return fmt.Errorf("permission %s: %w", p.ID, store.ErrNotFound)
	}
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) ListPermissions(_ context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	if filter == nil {
		filter = &permission.ListFilter{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*permission.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		if !filter.IncludeDeleted && p.DeletedAt != nil {
			continue
		}
		if filter.Resource != "" && p.Resource != filter.Resource {
			continue
		}
		if filter.Action != "" && p.Action != filter.Action {
			continue
		}
		if filter.Search != "" && !matchSearch(filter.Search, p.Identifier, p.Name) {
			continue
		}
		result = append(result, copyPermission(p))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Resource != result[j].Resource {
			return result[i].Resource < result[j].Resource
		}
		return result[i].Action < result[j].Action
	})
	return applyPagination(result, paginationOptsPerm(filter)), nil
}

func (s *Store) ListPermissionsByIDs(_ context.Context, permIDs []id.PermissionID) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*permission.Permission, 0, len(permIDs))
	for _, pid := range permIDs {
		if p, ok := s.permissions[pid.String()]; ok && p.DeletedAt == nil {
			result = append(result, copyPermission(p))
		}
	}
	return result, nil
}

func (s *Store) CountPermissions(ctx context.Context, filter *permission.ListFilter) (int64, error) {
	list, err := s.ListPermissions(ctx, stripPaginationPerm(filter))
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// ──────────────────────────────────────────────────
// Policy Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.policies {
		if existing.DeletedAt == nil && existing.Identifier == p.Identifier {
			return fmt.Errorf("policy %q: %w", p.Identifier, store.ErrConflict)
		}
	}
	s.policies[p.ID.String()] = copyPolicy(p)
	return nil
}

func (s *Store) GetPolicy(_ context.Context, polID id.PolicyID) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[polID.String()]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", polID, store.ErrNotFound)
	}
	return copyPolicy(p), nil
}

func (s *Store) GetPolicyByIdentifier(_ context.Context, identifier string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.policies {
		if p.DeletedAt == nil && p.Identifier == identifier {
			return copyPolicy(p), nil
		}
	}
	return nil, fmt.Errorf("policy %q: %w", identifier, store.ErrNotFound)
}

func (s *Store) UpdatePolicy(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policies[p.ID.String()]; !ok {
		return fmt.Errorf("policy %s: %w", p.ID, store.ErrNotFound)
	}
	s.policies[p.ID.String()] = copyPolicy(p)
	return nil
}

func (s *Store) ListPolicies(_ context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	if filter == nil {
		filter = &policy.ListFilter{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		if !filter.IncludeDeleted && p.DeletedAt != nil {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.IsSystem != nil && p.IsSystem != *filter.IsSystem {
			continue
		}
		if filter.Search != "" && !matchSearch(filter.Search, p.Identifier, p.Name) {
			continue
		}
		result = append(result, copyPolicy(p))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Priority > result[j].Priority
	})
	return applyPagination(result, paginationOptsPol(filter)), nil
}

func (s *Store) ListPoliciesByIDs(_ context.Context, polIDs []id.PolicyID) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*policy.Policy, 0, len(polIDs))
	for _, pid := range polIDs {
		if p, ok := s.policies[pid.String()]; ok && p.DeletedAt == nil {
			result = append(result, copyPolicy(p))
		}
	}
	return result, nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	list, err := s.ListPolicies(ctx, stripPaginationPol(filter))
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// ──────────────────────────────────────────────────
// Role Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roles {
		if existing.DeletedAt == nil && existing.Identifier == r.Identifier {
			return fmt.Errorf("role %q: %w", r.Identifier, store.ErrConflict)
		}
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.RoleID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleByIdentifier(_ context.Context, identifier string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.DeletedAt == nil && r.Identifier == identifier {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", identifier, store.ErrNotFound)
}

func (s *Store) GetDefaultRole(_ context.Context) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.DeletedAt == nil && r.IsActive && r.IsDefault {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("default role: %w", store.ErrNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID.String()]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, store.ErrNotFound)
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	if filter == nil {
		filter = &role.ListFilter{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if !filter.IncludeDeleted && r.DeletedAt != nil {
			continue
		}
		if filter.IsSystem != nil && r.IsSystem != *filter.IsSystem {
			continue
		}
		if filter.IsDefault != nil && r.IsDefault != *filter.IsDefault {
			continue
		}
		if filter.Search != "" && !matchSearch(filter.Search, r.Identifier, r.Name) {
			continue
		}
		result = append(result, copyRole(r))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Level > result[j].Level
	})
	return applyPagination(result, paginationOptsRole(filter)), nil
}

func (s *Store) ListRolesByIDs(_ context.Context, roleIDs []id.RoleID) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(roleIDs))
	for _, rid := range roleIDs {
		if r, ok := s.roles[rid.String()]; ok && r.DeletedAt == nil {
			result = append(result, copyRole(r))
		}
	}
	return result, nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	list, err := s.ListRoles(ctx, stripPaginationRole(filter))
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// ──────────────────────────────────────────────────
// Assignment Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(_ context.Context, a *assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.DeletedAt == nil && s.liveAssignmentExists(a.UserID, a.RoleID, a.ID) {
		return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
	}
	s.assignments[a.ID.String()] = copyAssignment(a)
	return nil
}

func (s *Store) GetAssignment(_ context.Context, assID id.AssignmentID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[assID.String()]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", assID, store.ErrNotFound)
	}
	return copyAssignment(a), nil
}

func (s *Store) GetLiveAssignment(_ context.Context, userID id.AccountID, roleID id.RoleID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assignments {
		if a.DeletedAt == nil && a.UserID.String() == userID.String() && a.RoleID.String() == roleID.String() {
			return copyAssignment(a), nil
		}
	}
	return nil, fmt.Errorf("assignment %s/%s: %w", userID, roleID, store.ErrNotFound)
}

func (s *Store) GetDeletedAssignment(_ context.Context, userID id.AccountID, roleID id.RoleID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *assignment.Assignment
	for _, a := range s.assignments {
		if a.DeletedAt == nil || a.UserID.String() != userID.String() || a.RoleID.String() != roleID.String() {
			continue
		}
		if latest == nil || a.DeletedAt.After(*latest.DeletedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("assignment %s/%s: %w", userID, roleID, store.ErrNotFound)
	}
	return copyAssignment(latest), nil
}

func (s *Store) UpdateAssignment(_ context.Context, a *assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[a.ID.String()]; !ok {
		return fmt.Errorf("assignment %s: %w", a.ID, store.ErrNotFound)
	}
	// An update that makes a row live is subject to the same pair
	// uniqueness as an insert.
	if a.DeletedAt == nil && s.liveAssignmentExists(a.UserID, a.RoleID, a.ID) {
		return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
	}
	s.assignments[a.ID.String()] = copyAssignment(a)
	return nil
}

func (s *Store) ListAssignments(_ context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	if filter == nil {
		filter = &assignment.ListFilter{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*assignment.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if !filter.IncludeDeleted && a.DeletedAt != nil {
			continue
		}
		if filter.UserID != nil && a.UserID.String() != filter.UserID.String() {
			continue
		}
		if filter.RoleID != nil && a.RoleID.String() != filter.RoleID.String() {
			continue
		}
		result = append(result, copyAssignment(a))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssignedAt.Before(result[j].AssignedAt)
	})
	return applyPagination(result, paginationOptsAssign(filter)), nil
}

func (s *Store) ListEffectiveAssignments(_ context.Context, userID id.AccountID, now time.Time) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*assignment.Assignment
	for _, a := range s.assignments {
		if a.UserID.String() == userID.String() && a.EffectiveAt(now) {
			result = append(result, copyAssignment(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssignedAt.Before(result[j].AssignedAt)
	})
	return result, nil
}

func (s *Store) ListEffectiveAssignmentsByRole(_ context.Context, roleID id.RoleID, now time.Time) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*assignment.Assignment
	for _, a := range s.assignments {
		if a.RoleID.String() == roleID.String() && a.EffectiveAt(now) {
			result = append(result, copyAssignment(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssignedAt.Before(result[j].AssignedAt)
	})
	return result, nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	list, err := s.ListAssignments(ctx, stripPaginationAssign(filter))
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// liveAssignmentExists reports whether a live row other than excludeID
// exists for the pair. Must hold at least a read lock.
func (s *Store) liveAssignmentExists(userID id.AccountID, roleID id.RoleID, excludeID id.AssignmentID) bool {
	for _, a := range s.assignments {
		if a.ID.String() == excludeID.String() {
			continue
		}
		if a.DeletedAt == nil && a.UserID.String() == userID.String() && a.RoleID.String() == roleID.String() {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────
// Audit Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAuditLog(_ context.Context, e *auditlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditLogs[e.ID.String()] = copyAuditLog(e)
	return nil
}

func (s *Store) GetAuditLog(_ context.Context, logID id.AuditLogID) (*auditlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.auditLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("audit log %s: %w", logID, store.ErrNotFound)
	}
	return copyAuditLog(e), nil
}

func (s *Store) ListAuditLogs(_ context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*auditlog.Entry, 0, len(s.auditLogs))
	for _, e := range s.auditLogs {
		if filter != nil {
			if filter.ActorID != "" && e.ActorID != filter.ActorID {
				continue
			}
			if filter.Action != "" && e.Action != filter.Action {
				continue
			}
			if filter.TargetType != "" && e.TargetType != filter.TargetType {
				continue
			}
			if filter.TargetID != "" && e.TargetID != filter.TargetID {
				continue
			}
			if filter.After != nil && !e.CreatedAt.After(*filter.After) {
				continue
			}
			if filter.Before != nil && !e.CreatedAt.Before(*filter.Before) {
				continue
			}
		}
		result = append(result, copyAuditLog(e))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return applyPagination(result, paginationOptsAudit(filter)), nil
}

func (s *Store) CountAuditLogs(ctx context.Context, filter *auditlog.QueryFilter) (int64, error) {
	list, err := s.ListAuditLogs(ctx, stripPaginationAudit(filter))
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeAuditLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for k, e := range s.auditLogs {
		if e.CreatedAt.Before(before) {
			delete(s.auditLogs, k)
			purged++
		}
	}
	return purged, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func copyAccount(a *account.Account) *account.Account {
	c := *a
	return &c
}

func copyPermission(p *permission.Permission) *permission.Permission {
	c := *p
	return &c
}

func copyPolicy(p *policy.Policy) *policy.Policy {
	c := *p
	if p.PermissionIDs != nil {
		c.PermissionIDs = make([]id.PermissionID, len(p.PermissionIDs))
		copy(c.PermissionIDs, p.PermissionIDs)
	}
	return &c
}

func copyRole(r *role.Role) *role.Role {
	c := *r
	if r.PolicyIDs != nil {
		c.PolicyIDs = make([]id.PolicyID, len(r.PolicyIDs))
		copy(c.PolicyIDs, r.PolicyIDs)
	}
	return &c
}

func copyAssignment(a *assignment.Assignment) *assignment.Assignment {
	c := *a
	return &c
}

func copyAuditLog(e *auditlog.Entry) *auditlog.Entry {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func matchSearch(search string, fields ...string) bool {
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Pagination helpers for each entity type.
type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

func paginationOptsAcct(f *account.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func stripPaginationAcct(f *account.ListFilter) *account.ListFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}

func paginationOptsPerm(f *permission.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func stripPaginationPerm(f *permission.ListFilter) *permission.ListFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}

func paginationOptsPol(f *policy.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func stripPaginationPol(f *policy.ListFilter) *policy.ListFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}

func paginationOptsRole(f *role.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func stripPaginationRole(f *role.ListFilter) *role.ListFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}

func paginationOptsAssign(f *assignment.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func stripPaginationAssign(f *assignment.ListFilter) *assignment.ListFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}

func paginationOptsAudit(f *auditlog.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func stripPaginationAudit(f *auditlog.QueryFilter) *auditlog.QueryFilter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit, c.Offset = 0, 0
	return &c
}
