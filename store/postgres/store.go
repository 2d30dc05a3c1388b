// Package postgres provides a PostgreSQL implementation of the Steward
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite Steward store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("steward: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("steward: migration failed: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique index violation. The
// partial unique indexes back up the live-row pre-checks under concurrent
// writers, so inserts racing past a pre-check still surface as conflicts.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Account operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	n, err := s.pgdb.NewSelect((*accountModel)(nil)).
		Where("email = ?", a.Email).
		Where("deleted_at IS NULL").
		Count(ctx)
	if err != nil {
		return fmt.Errorf("steward: create account: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("account email %q: %w", a.Email, store.ErrConflict)
	}
	if _, err := s.pgdb.NewInsert(accountToModel(a)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account email %q: %w", a.Email, store.ErrConflict)
		}
		return fmt.Errorf("steward: create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, acctID id.AccountID) (*account.Account, error) {
	m := new(accountModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", acctID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", acctID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get account: %w", err)
	}
	return accountFromModel(m), nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	m := new(accountModel)
	err := s.pgdb.NewSelect(m).
		Where("email = ?", email).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account email %q: %w", email, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get account by email: %w", err)
	}
	return accountFromModel(m), nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	m := accountToModel(a)
	m.Version = a.Version + 1
	res, err := s.pgdb.NewUpdate(m).
		WherePK().
		Where("version = ?", a.Version).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("steward: update account rows: %w", err)
	}
	if n == 0 {
		exists, err := s.pgdb.NewSelect((*accountModel)(nil)).
			Where("id = ?", a.ID.String()).
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
	var models []accountModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter == nil {
		filter = &account.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.Type != "" {
		q = q.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Search != "" {
		q = q.Where("(email ILIKE ? OR name ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*accountModel)(nil))
	if filter == nil {
		filter = &account.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.Type != "" {
		q = q.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Search != "" {
		q = q.Where("(email ILIKE ? OR name ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count accounts: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Permission operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(ctx context.Context, p *permission.Permission) error {
	if _, err := s.pgdb.NewInsert(permissionToModel(p)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("permission %q: %w", p.Identifier, store.ErrConflict)
		}
		return fmt.Errorf("steward: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	m := new(permissionModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", permID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("permission %s: %w", permID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get permission: %w", err)
	}
	return permissionFromModel(m), nil
}

func (s *Store) GetPermissionByIdentifier(ctx context.Context, identifier string) (*permission.Permission, error) {
	m := new(permissionModel)
	err := s.pgdb.NewSelect(m).
		Where("identifier = ?", identifier).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("permission %q: %w", identifier, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get permission by identifier: %w", err)
	}
	return permissionFromModel(m), nil
}

func (s *Store) UpdatePermission(ctx context.Context, p *permission.Permission) error {
	if _, err := s.pgdb.NewUpdate(permissionToModel(p)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: update permission: %w", err)
	}
	return nil
}

func (s *Store) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	var models []permissionModel
	q := s.pgdb.NewSelect(&models).OrderExpr("resource ASC, action ASC")
	if filter == nil {
		filter = &permission.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.Resource != "" {
		q = q.Where("resource = ?", filter.Resource)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", string(filter.Action))
	}
	if filter.Search != "" {
		q = q.Where("(identifier ILIKE ? OR name ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
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
	err := s.pgdb.NewSelect(&models).
		Where("id IN (?)", ids).
		Where("deleted_at IS NULL").
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
	q := s.pgdb.NewSelect((*permissionModel)(nil))
	if filter == nil {
		filter = &permission.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.Resource != "" {
		q = q.Where("resource = ?", filter.Resource)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", string(filter.Action))
	}
	if filter.Search != "" {
		q = q.Where("(identifier ILIKE ? OR name ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count permissions: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Policy operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewInsert(policyToModel(p)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("policy %q: %w", p.Identifier, store.ErrConflict)
		}
		return fmt.Errorf("steward: create policy: %w", err)
	}
	if len(p.PermissionIDs) > 0 {
		models := make([]policyPermissionModel, len(p.PermissionIDs))
		for i, pid := range p.PermissionIDs {
			models[i] = policyPermissionModel{
				PolicyID:     p.ID.String(),
				PermissionID: pid.String(),
			}
		}
		if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("steward: create policy permissions: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, polID id.PolicyID) (*policy.Policy, error) {
	m := new(policyModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", polID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %s: %w", polID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get policy: %w", err)
	}
	p := policyFromModel(m)
	p.PermissionIDs, err = s.policyPermissionIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetPolicyByIdentifier(ctx context.Context, identifier string) (*policy.Policy, error) {
	m := new(policyModel)
	err := s.pgdb.NewSelect(m).
		Where("identifier = ?", identifier).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %q: %w", identifier, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get policy by identifier: %w", err)
	}
	p := policyFromModel(m)
	p.PermissionIDs, err = s.policyPermissionIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewUpdate(policyToModel(p)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: update policy: %w", err)
	}
	_, err = tx.NewDelete((*policyPermissionModel)(nil)).
		Where("policy_id = ?", p.ID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: clear policy permissions: %w", err)
	}
	if len(p.PermissionIDs) > 0 {
		models := make([]policyPermissionModel, len(p.PermissionIDs))
		for i, pid := range p.PermissionIDs {
			models[i] = policyPermissionModel{
				PolicyID:     p.ID.String(),
				PermissionID: pid.String(),
			}
		}
		if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("steward: set policy permissions: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListPolicies(ctx context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	var models []policyModel
	q := s.pgdb.NewSelect(&models).OrderExpr("priority DESC")
	if filter == nil {
		filter = &policy.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", string(filter.Category))
	}
	if filter.IsSystem != nil {
		q = q.Where("is_system = ?", *filter.IsSystem)
	}
	if filter.Search != "" {
		q = q.Where("(identifier ILIKE ? OR name ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list policies: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		p := policyFromModel(&models[i])
		permIDs, err := s.policyPermissionIDs(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		p.PermissionIDs = permIDs
		result[i] = p
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
	err := s.pgdb.NewSelect(&models).
		Where("id IN (?)", ids).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list policies by ids: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		p := policyFromModel(&models[i])
		permIDs, err := s.policyPermissionIDs(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		p.PermissionIDs = permIDs
		result[i] = p
	}
	return result, nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*policyModel)(nil))
	if filter == nil {
		filter = &policy.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", string(filter.Category))
	}
	if filter.IsSystem != nil {
		q = q.Where("is_system = ?", *filter.IsSystem)
	}
	if filter.Search != "" {
		q = q.Where("(identifier ILIKE ? OR name ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count policies: %w", err)
	}
	return count, nil
}

func (s *Store) policyPermissionIDs(ctx context.Context, polID string) ([]id.PermissionID, error) {
	var models []policyPermissionModel
	err := s.pgdb.NewSelect(&models).
		Where("policy_id = ?", polID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list policy permissions: %w", err)
	}
	result := make([]id.PermissionID, 0, len(models))
	for _, m := range models {
		pid, err := id.ParsePermissionID(m.PermissionID)
		if err == nil {
			result = append(result, pid)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewInsert(roleToModel(r)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("role %q: %w", r.Identifier, store.ErrConflict)
		}
		return fmt.Errorf("steward: create role: %w", err)
	}
	if len(r.PolicyIDs) > 0 {
		models := make([]rolePolicyModel, len(r.PolicyIDs))
		for i, pid := range r.PolicyIDs {
			models[i] = rolePolicyModel{
				RoleID:   r.ID.String(),
				PolicyID: pid.String(),
			}
		}
		if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("steward: create role policies: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", roleID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get role: %w", err)
	}
	r := roleFromModel(m)
	r.PolicyIDs, err = s.rolePolicyIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) GetRoleByIdentifier(ctx context.Context, identifier string) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).
		Where("identifier = ?", identifier).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %q: %w", identifier, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get role by identifier: %w", err)
	}
	r := roleFromModel(m)
	r.PolicyIDs, err = s.rolePolicyIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) GetDefaultRole(ctx context.Context) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).
		Where("is_default = ?", true).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("default role: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get default role: %w", err)
	}
	r := roleFromModel(m)
	r.PolicyIDs, err = s.rolePolicyIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("steward: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewUpdate(roleToModel(r)).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("steward: update role: %w", err)
	}
	_, err = tx.NewDelete((*rolePolicyModel)(nil)).
		Where("role_id = ?", r.ID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("steward: clear role policies: %w", err)
	}
	if len(r.PolicyIDs) > 0 {
		models := make([]rolePolicyModel, len(r.PolicyIDs))
		for i, pid := range r.PolicyIDs {
			models[i] = rolePolicyModel{
				RoleID:   r.ID.String(),
				PolicyID: pid.String(),
			}
		}
		if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("steward: set role policies: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("steward: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	q := s.pgdb.NewSelect(&models).OrderExpr("level DESC")
	if filter == nil {
		filter = &role.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.IsSystem != nil {
		q = q.Where("is_system = ?", *filter.IsSystem)
	}
	if filter.IsDefault != nil {
		q = q.Where("is_default = ?", *filter.IsDefault)
	}
	if filter.Search != "" {
		q = q.Where("(identifier ILIKE ? OR name ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("steward: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		r := roleFromModel(&models[i])
		polIDs, err := s.rolePolicyIDs(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		r.PolicyIDs = polIDs
		result[i] = r
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
	err := s.pgdb.NewSelect(&models).
		Where("id IN (?)", ids).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list roles by ids: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		r := roleFromModel(&models[i])
		polIDs, err := s.rolePolicyIDs(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		r.PolicyIDs = polIDs
		result[i] = r
	}
	return result, nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*roleModel)(nil))
	if filter == nil {
		filter = &role.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.IsSystem != nil {
		q = q.Where("is_system = ?", *filter.IsSystem)
	}
	if filter.IsDefault != nil {
		q = q.Where("is_default = ?", *filter.IsDefault)
	}
	if filter.Search != "" {
		q = q.Where("(identifier ILIKE ? OR name ILIKE ?)",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count roles: %w", err)
	}
	return count, nil
}

func (s *Store) rolePolicyIDs(ctx context.Context, roleID string) ([]id.PolicyID, error) {
	var models []rolePolicyModel
	err := s.pgdb.NewSelect(&models).
		Where("role_id = ?", roleID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("steward: list role policies: %w", err)
	}
	result := make([]id.PolicyID, 0, len(models))
	for _, m := range models {
		pid, err := id.ParsePolicyID(m.PolicyID)
		if err == nil {
			result = append(result, pid)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Assignment operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	n, err := s.pgdb.NewSelect((*assignmentModel)(nil)).
		Where("user_id = ?", a.UserID.String()).
		Where("role_id = ?", a.RoleID.String()).
		Where("deleted_at IS NULL").
		Count(ctx)
	if err != nil {
		return fmt.Errorf("steward: create assignment: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
	}
	if _, err := s.pgdb.NewInsert(assignmentToModel(a)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
		}
		return fmt.Errorf("steward: create assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, assID id.AssignmentID) (*assignment.Assignment, error) {
	m := new(assignmentModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", assID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s: %w", assID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get assignment: %w", err)
	}
	return assignmentFromModel(m), nil
}

func (s *Store) GetLiveAssignment(ctx context.Context, userID id.AccountID, roleID id.RoleID) (*assignment.Assignment, error) {
	m := new(assignmentModel)
	err := s.pgdb.NewSelect(m).
		Where("user_id = ?", userID.String()).
		Where("role_id = ?", roleID.String()).
		Where("deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s/%s: %w", userID, roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get live assignment: %w", err)
	}
	return assignmentFromModel(m), nil
}

func (s *Store) GetDeletedAssignment(ctx context.Context, userID id.AccountID, roleID id.RoleID) (*assignment.Assignment, error) {
	m := new(assignmentModel)
	err := s.pgdb.NewSelect(m).
		Where("user_id = ?", userID.String()).
		Where("role_id = ?", roleID.String()).
		Where("deleted_at IS NOT NULL").
		OrderExpr("deleted_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment %s/%s: %w", userID, roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get deleted assignment: %w", err)
	}
	return assignmentFromModel(m), nil
}

func (s *Store) UpdateAssignment(ctx context.Context, a *assignment.Assignment) error {
	if a.DeletedAt == nil {
		n, err := s.pgdb.NewSelect((*assignmentModel)(nil)).
			Where("user_id = ?", a.UserID.String()).
			Where("role_id = ?", a.RoleID.String()).
			Where("deleted_at IS NULL").
			Where("id != ?", a.ID.String()).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("steward: update assignment: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
		}
	}
	if _, err := s.pgdb.NewUpdate(assignmentToModel(a)).WherePK().Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("assignment %s/%s: %w", a.UserID, a.RoleID, store.ErrConflict)
		}
		return fmt.Errorf("steward: update assignment: %w", err)
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.pgdb.NewSelect(&models).OrderExpr("assigned_at ASC")
	if filter == nil {
		filter = &assignment.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", filter.UserID.String())
	}
	if filter.RoleID != nil {
		q = q.Where("role_id = ?", filter.RoleID.String())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
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
	err := s.pgdb.NewSelect(&models).
		Where("user_id = ?", userID.String()).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Where("(expires_at IS NULL OR expires_at > ?)", now).
		OrderExpr("assigned_at ASC").
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
	err := s.pgdb.NewSelect(&models).
		Where("role_id = ?", roleID.String()).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Where("(expires_at IS NULL OR expires_at > ?)", now).
		OrderExpr("assigned_at ASC").
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
	q := s.pgdb.NewSelect((*assignmentModel)(nil))
	if filter == nil {
		filter = &assignment.ListFilter{}
	}
	if !filter.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", filter.UserID.String())
	}
	if filter.RoleID != nil {
		q = q.Where("role_id = ?", filter.RoleID.String())
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count assignments: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Audit log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAuditLog(ctx context.Context, e *auditlog.Entry) error {
	if _, err := s.pgdb.NewInsert(auditLogToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("steward: create audit log: %w", err)
	}
	return nil
}

func (s *Store) GetAuditLog(ctx context.Context, logID id.AuditLogID) (*auditlog.Entry, error) {
	m := new(auditLogModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("audit log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("steward: get audit log: %w", err)
	}
	return auditLogFromModel(m), nil
}

func (s *Store) ListAuditLogs(ctx context.Context, filter *auditlog.QueryFilter) ([]*auditlog.Entry, error) {
	var models []auditLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.ActorID != "" {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.TargetType != "" {
			q = q.Where("target_type = ?", filter.TargetType)
		}
		if filter.TargetID != "" {
			q = q.Where("target_id = ?", filter.TargetID)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*auditLogModel)(nil))
	if filter != nil {
		if filter.ActorID != "" {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.TargetType != "" {
			q = q.Where("target_type = ?", filter.TargetType)
		}
		if filter.TargetID != "" {
			q = q.Where("target_id = ?", filter.TargetID)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: count audit logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*auditLogModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("steward: purge audit logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("steward: purge audit logs rows: %w", err)
	}
	return n, nil
}
