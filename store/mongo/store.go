// Package mongo provides a MongoDB implementation of the Steward composite
// store. Policy and role membership sets are embedded in their documents
// rather than kept in junction collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
)

// Collection name constants.
const (
	colAccounts    = "steward_accounts"
	colPermissions = "steward_permissions"
	colPolicies    = "steward_policies"
	colRoles       = "steward_roles"
	colAssignments = "steward_assignments"
	colAuditLogs   = "steward_audit_logs"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Steward store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all steward collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("steward/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// isDuplicateKey checks if an error is a duplicate-key write error from the
// unique assignment-pair index.
func isDuplicateKey(err error) bool {
	return mongod.IsDuplicateKeyError(err)
}

// migrationIndexes returns the index definitions for all steward collections.
// Email and identifier live-row uniqueness is enforced by the store methods;
// the assignment pair gets a unique partial index over the live marker so
// concurrent writers racing past the pre-check cannot leave two live rows.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colAccounts: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "type", Value: 1}}},
		},
		colPermissions: {
			{Keys: bson.D{{Key: "identifier", Value: 1}}},
			{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "action", Value: 1}}},
		},
		colPolicies: {
			{Keys: bson.D{{Key: "identifier", Value: 1}}},
			{Keys: bson.D{{Key: "priority", Value: -1}}},
		},
		colRoles: {
			{Keys: bson.D{{Key: "identifier", Value: 1}}},
			{Keys: bson.D{{Key: "is_default", Value: 1}}},
			{Keys: bson.D{{Key: "level", Value: -1}}},
		},
		colAssignments: {
			{
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"live": true}),
			},
			{Keys: bson.D{{Key: "role_id", Value: 1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		colAuditLogs: {
			{Keys: bson.D{{Key: "actor_id", Value: 1}}},
			{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "target_id", Value: 1}}},
			{Keys: bson.D{{Key: "action", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Account operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	n, err := s.mdb.NewFind((*accountModel)(nil)).
		Filter(bson.M{"email": a.Email, "deleted_at": nil}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("steward: create account: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("account email %q: %w", a.Email, store.ErrConflict)
	}
	if _, err := s.mdb.NewInsert(accountToModel(a)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, acctID id.AccountID) (*account.Account, error) {
	var m accountModel
	err := s.mdb.NewFind(&m).Filter(bson.M{"_id": acctID.String()}).Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("account %s: %w", acctID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get account: %w", err)
	}
	return accountFromModel(&m), nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	var m accountModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"email": email, "deleted_at": nil}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("account email %q: %w", email, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get account by email: %w", err)
	}
	return accountFromModel(&m), nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	m := accountToModel(a)
	m.Version = a.Version + 1
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID, "version": a.Version}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update account: %w", err)
	}
	if res.MatchedCount() == 0 {
		exists, err := s.mdb.NewFind((*accountModel)(nil)).
			Filter(bson.M{"_id": m.ID}).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("steward: update account: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("account %s: %w", a.ID, store.ErrNotFound)
		}
		return fmt.Errorf("account %s: %w", a.ID, store.ErrStaleVersion)
	}
	a.Version++
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, filter *account.ListFilter) ([]*account.Account, error) {
	if filter == nil {
		filter = &account.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.Type != "" {
		f["type"] = string(filter.Type)
	}
	if filter.Status != "" {
		f["status"] = string(filter.Status)
	}
	if filter.Search != "" {
		f["$or"] = []bson.M{
			{"email": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	var models []accountModel
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter.Limit > 0 {
		q = q.Limit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Skip(int64(filter.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list accounts: %w", err)
	}
	result := make([]*account.Account, len(models))
	for i := range models {
		result[i] = accountFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountAccounts(ctx context.Context, filter *account.ListFilter) (int64, error) {
	if filter == nil {
		filter = &account.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.Type != "" {
		f["type"] = string(filter.Type)
	}
	if filter.Status != "" {
		f["status"] = string(filter.Status)
	}
	if filter.Search != "" {
		f["$or"] = []bson.M{
			{"email": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	count, err := s.mdb.NewFind((*accountModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count accounts: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Permission operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(ctx context.Context, p *permission.Permission) error {
	if _, err := s.mdb.NewInsert(permissionToModel(p)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	var m permissionModel
	err := s.mdb.NewFind(&m).Filter(bson.M{"_id": permID.String()}).Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("permission %s: %w", permID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get permission: %w", err)
	}
	return permissionFromModel(&m), nil
}

func (s *Store) GetPermissionByIdentifier(ctx context.Context, identifier string) (*permission.Permission, error) {
	var m permissionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"identifier": identifier, "deleted_at": nil}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("permission %q: %w", identifier, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get permission by identifier: %w", err)
	}
	return permissionFromModel(&m), nil
}

func (s *Store) UpdatePermission(ctx context.Context, p *permission.Permission) error {
	m := permissionToModel(p)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update permission: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("permission %s: %w", p.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	if filter == nil {
		filter = &permission.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.Resource != "" {
		f["resource"] = filter.Resource
	}
	if filter.Action != "" {
		f["action"] = string(filter.Action)
	}
	if filter.Search != "" {
		f["$or"] = []bson.M{
			{"identifier": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	var models []permissionModel
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "resource", Value: 1}, {Key: "action", Value: 1}})
	if filter.Limit > 0 {
		q = q.Limit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Skip(int64(filter.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list permissions: %w", err)
	}
	result := make([]*permission.Permission, len(models))
	for i := range models {
		result[i] = permissionFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListPermissionsByIDs(ctx context.Context, permIDs []id.PermissionID) ([]*permission.Permission, error) {
	if len(permIDs) == 0 {
		return []*permission.Permission{}, nil
	}
	ids := make([]string, len(permIDs))
	for i, pid := range permIDs {
		ids[i] = pid.String()
	}
	var models []permissionModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$in": ids}, "deleted_at": nil}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list permissions by ids: %w", err)
	}
	result := make([]*permission.Permission, len(models))
	for i := range models {
		result[i] = permissionFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPermissions(ctx context.Context, filter *permission.ListFilter) (int64, error) {
	if filter == nil {
		filter = &permission.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.Resource != "" {
		f["resource"] = filter.Resource
	}
	if filter.Action != "" {
		f["action"] = string(filter.Action)
	}
	if filter.Search != "" {
		f["$or"] = []bson.M{
			{"identifier": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	count, err := s.mdb.NewFind((*permissionModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count permissions: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Policy operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	if _, err := s.mdb.NewInsert(policyToModel(p)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create policy: %w", err)
	}
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, polID id.PolicyID) (*policy.Policy, error) {
	var m policyModel
	err := s.mdb.NewFind(&m).Filter(bson.M{"_id": polID.String()}).Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("policy %s: %w", polID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get policy: %w", err)
	}
	return policyFromModel(&m), nil
}

func (s *Store) GetPolicyByIdentifier(ctx context.Context, identifier string) (*policy.Policy, error) {
	var m policyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"identifier": identifier, "deleted_at": nil}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("policy %q: %w", identifier, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get policy by identifier: %w", err)
	}
	return policyFromModel(&m), nil
}

func (s *Store) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	m := policyToModel(p)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update policy: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("policy %s: %w", p.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListPolicies(ctx context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	if filter == nil {
		filter = &policy.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.Category != "" {
		f["category"] = string(filter.Category)
	}
	if filter.IsSystem != nil {
		f["is_system"] = *filter.IsSystem
	}
	if filter.Search != "" {
		f["$or"] = []bson.M{
			{"identifier": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	var models []policyModel
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "priority", Value: -1}})
	if filter.Limit > 0 {
		q = q.Limit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Skip(int64(filter.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list policies: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		result[i] = policyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListPoliciesByIDs(ctx context.Context, polIDs []id.PolicyID) ([]*policy.Policy, error) {
	if len(polIDs) == 0 {
		return []*policy.Policy{}, nil
	}
	ids := make([]string, len(polIDs))
	for i, pid := range polIDs {
		ids[i] = pid.String()
	}
	var models []policyModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$in": ids}, "deleted_at": nil}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list policies by ids: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		result[i] = policyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	if filter == nil {
		filter = &policy.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.Category != "" {
		f["category"] = string(filter.Category)
	}
	if filter.IsSystem != nil {
		f["is_system"] = *filter.IsSystem
	}
	if filter.Search != "" {
		f["$or"] = []bson.M{
			{"identifier": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	count, err := s.mdb.NewFind((*policyModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count policies: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	if _, err := s.mdb.NewInsert(roleToModel(r)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).Filter(bson.M{"_id": roleID.String()}).Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get role: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) GetRoleByIdentifier(ctx context.Context, identifier string) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"identifier": identifier, "deleted_at": nil}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %q: %w", identifier, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get role by identifier: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) GetDefaultRole(ctx context.Context) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"is_default": true, "is_active": true, "deleted_at": nil}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("default role: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get default role: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	m := roleToModel(r)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update role: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("role %s: %w", r.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	if filter == nil {
		filter = &role.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.IsSystem != nil {
		f["is_system"] = *filter.IsSystem
	}
	if filter.IsDefault != nil {
		f["is_default"] = *filter.IsDefault
	}
	if filter.Search != "" {
		f["$or"] = []bson.M{
			{"identifier": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	var models []roleModel
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "level", Value: -1}})
	if filter.Limit > 0 {
		q = q.Limit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Skip(int64(filter.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListRolesByIDs(ctx context.Context, roleIDs []id.RoleID) ([]*role.Role, error) {
	if len(roleIDs) == 0 {
		return []*role.Role{}, nil
	}
	ids := make([]string, len(roleIDs))
	for i, rid := range roleIDs {
		ids[i] = rid.String()
	}
	var models []roleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$in": ids}, "deleted_at": nil}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list roles by ids: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	if filter == nil {
		filter = &role.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.IsSystem != nil {
		f["is_system"] = *filter.IsSystem
	}
	if filter.IsDefault != nil {
		f["is_default"] = *filter.IsDefault
	}
	if filter.Search != "" {
		f["$or"] = []bson.M{
			{"identifier": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}
	count, err := s.mdb.NewFind((*roleModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count roles: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Assignment operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	n, err := s.mdb.NewFind((*assignmentModel)(nil)).
		Filter(bson.M{
			"user_id":    a.UserID.String(),
			"role_id":    a.RoleID.String(),
			"deleted_at": nil,
		}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("steward: create assignment: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
	}
	if _, err := s.mdb.NewInsert(assignmentToModel(a)).Exec(ctx); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
		}
		return fmt.Errorf("steward: create assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, assID id.AssignmentID) (*assignment.Assignment, error) {
	var m assignmentModel
	err := s.mdb.NewFind(&m).Filter(bson.M{"_id": assID.String()}).Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("assignment %s: %w", assID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get assignment: %w", err)
	}
	return assignmentFromModel(&m), nil
}

func (s *Store) GetLiveAssignment(ctx context.Context, userID id.AccountID, roleID id.RoleID) (*assignment.Assignment, error) {
	var m assignmentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"user_id":    userID.String(),
			"role_id":    roleID.String(),
			"deleted_at": nil,
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("assignment %s/%s: %w", userID, roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get live assignment: %w", err)
	}
	return assignmentFromModel(&m), nil
}

func (s *Store) GetDeletedAssignment(ctx context.Context, userID id.AccountID, roleID id.RoleID) (*assignment.Assignment, error) {
	var m assignmentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"user_id":    userID.String(),
			"role_id":    roleID.String(),
			"deleted_at": bson.M{"$ne": nil},
		}).
		Sort(bson.D{{Key: "deleted_at", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("assignment %s/%s: %w", userID, roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get deleted assignment: %w", err)
	}
	return assignmentFromModel(&m), nil
}

func (s *Store) UpdateAssignment(ctx context.Context, a *assignment.Assignment) error {
	if a.DeletedAt == nil {
		n, err := s.mdb.NewFind((*assignmentModel)(nil)).
			Filter(bson.M{
				"user_id":    a.UserID.String(),
				"role_id":    a.RoleID.String(),
				"deleted_at": nil,
				"_id":        bson.M{"$ne": a.ID.String()},
			}).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("steward: update assignment: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
		}
	}
	m := assignmentToModel(a)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
		}
		return fmt.Errorf("steward: update assignment: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("assignment %s: %w", a.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	if filter == nil {
		filter = &assignment.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.UserID != nil {
		f["user_id"] = filter.UserID.String()
	}
	if filter.RoleID != nil {
		f["role_id"] = filter.RoleID.String()
	}
	var models []assignmentModel
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "assigned_at", Value: 1}})
	if filter.Limit > 0 {
		q = q.Limit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Skip(int64(filter.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list assignments: %w", err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListEffectiveAssignments(ctx context.Context, userID id.AccountID, now time.Time) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"user_id":    userID.String(),
			"is_active":  true,
			"deleted_at": nil,
			"$or": []bson.M{
				{"expires_at": nil},
				{"expires_at": bson.M{"$gt": now}},
			},
		}).
		Sort(bson.D{{Key: "assigned_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list effective assignments: %w", err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListEffectiveAssignmentsByRole(ctx context.Context, roleID id.RoleID, now time.Time) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"role_id":    roleID.String(),
			"is_active":  true,
			"deleted_at": nil,
			"$or": []bson.M{
				{"expires_at": nil},
				{"expires_at": bson.M{"$gt": now}},
			},
		}).
		Sort(bson.D{{Key: "assigned_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list effective assignments by role: %w", err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	if filter == nil {
		filter = &assignment.ListFilter{}
	}
	f := bson.M{}
	if !filter.IncludeDeleted {
		f["deleted_at"] = nil
	}
	if filter.UserID != nil {
		f["user_id"] = filter.UserID.String()
	}
	if filter.RoleID != nil {
		f["role_id"] = filter.RoleID.String()
	}
	count, err := s.mdb.NewFind((*assignmentModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count assignments: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Audit log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAuditLog(ctx context.Context, e *auditlog.Entry) error {
	if _, err := s.mdb.NewInsert(auditLogToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create audit log: %w", err)
	}
	return nil
}

func (s *Store) GetAuditLog(ctx context.Context, logID id.AuditLogID) (*auditlog.Entry, error) {
	var m auditLogModel
	err := s.mdb.NewFind(&m).Filter(bson.M{"_id": logID.String()}).Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("audit log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get audit log: %w", err)
	}
	return auditLogFromModel(&m), nil
}

func (s *Store) ListAuditLogs(ctx context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, error) {
	f := bson.M{}
	if filter != nil {
		if filter.ActorID != "" {
			f["actor_id"] = filter.ActorID
		}
		if filter.Action != "" {
			f["action"] = filter.Action
		}
		if filter.TargetType != "" {
			f["target_type"] = filter.TargetType
		}
		if filter.TargetID != "" {
			f["target_id"] = filter.TargetID
		}
		created := bson.M{}
		if filter.After != nil {
			created["$gte"] = *filter.After
		}
		if filter.Before != nil {
			created["$lte"] = *filter.Before
		}
		if len(created) > 0 {
			f["created_at"] = created
		}
	}
	var models []auditLogModel
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list audit logs: %w", err)
	}
	result := make([]*auditlog.Entry, len(models))
	for i := range models {
		result[i] = auditLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountAuditLogs(ctx context.Context, filter *auditlog.QueryFilter) (int64, error) {
	f := bson.M{}
	if filter != nil {
		if filter.ActorID != "" {
			f["actor_id"] = filter.ActorID
		}
		if filter.Action != "" {
			f["action"] = filter.Action
		}
		if filter.TargetType != "" {
			f["target_type"] = filter.TargetType
		}
		if filter.TargetID != "" {
			f["target_id"] = filter.TargetID
		}
		created := bson.M{}
		if filter.After != nil {
			created["$gte"] = *filter.After
		}
		if filter.Before != nil {
			created["$lte"] = *filter.Before
		}
		if len(created) > 0 {
			f["created_at"] = created
		}
	}
	count, err := s.mdb.NewFind((*auditLogModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count audit logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*auditLogModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: purge audit logs: %w", err)
	}
	return res.DeletedCount(), nil
}
