package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Steward store (PostgreSQL).
var Migrations = migrate.NewGroup("steward")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_accounts",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_accounts (
    id                  TEXT PRIMARY KEY,
    email               TEXT NOT NULL,
    name                TEXT NOT NULL DEFAULT '',
    external_subject_id TEXT NOT NULL DEFAULT '',
    type                TEXT NOT NULL,
    status              TEXT NOT NULL,
    version             INTEGER NOT NULL DEFAULT 1,
    deleted_at          TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_steward_accounts_email_live ON steward_accounts (email) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_steward_accounts_status ON steward_accounts (status);
CREATE INDEX IF NOT EXISTS idx_steward_accounts_type ON steward_accounts (type);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_accounts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_permissions",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_permissions (
    id              TEXT PRIMARY KEY,
    identifier      TEXT NOT NULL,
    resource        TEXT NOT NULL,
    action          TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    deleted_at      TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_steward_permissions_ident_live ON steward_permissions (identifier) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_steward_permissions_resource ON steward_permissions (resource, action);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_permissions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_policies",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_policies (
    id              TEXT PRIMARY KEY,
    identifier      TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    priority        INTEGER NOT NULL DEFAULT 0,
    category        TEXT NOT NULL DEFAULT 'custom',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    is_system       BOOLEAN NOT NULL DEFAULT FALSE,
    deleted_at      TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_steward_policies_ident_live ON steward_policies (identifier) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_steward_policies_priority ON steward_policies (priority);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_policies`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_policy_permissions",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_policy_permissions (
    policy_id       TEXT NOT NULL REFERENCES steward_policies(id) ON DELETE CASCADE,
    permission_id   TEXT NOT NULL REFERENCES steward_permissions(id) ON DELETE CASCADE,

    PRIMARY KEY (policy_id, permission_id)
);

CREATE INDEX IF NOT EXISTS idx_steward_pol_perms_policy ON steward_policy_permissions (policy_id);
CREATE INDEX IF NOT EXISTS idx_steward_pol_perms_perm ON steward_policy_permissions (permission_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_policy_permissions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_roles",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_roles (
    id              TEXT PRIMARY KEY,
    identifier      TEXT NOT NULL,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    level           INTEGER NOT NULL DEFAULT 0,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    is_system       BOOLEAN NOT NULL DEFAULT FALSE,
    is_default      BOOLEAN NOT NULL DEFAULT FALSE,
    deleted_at      TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_steward_roles_ident_live ON steward_roles (identifier) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_steward_roles_default ON steward_roles (is_default) WHERE deleted_at IS NULL;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_roles`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_role_policies",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_role_policies (
    role_id         TEXT NOT NULL REFERENCES steward_roles(id) ON DELETE CASCADE,
    policy_id       TEXT NOT NULL REFERENCES steward_policies(id) ON DELETE CASCADE,

    PRIMARY KEY (role_id, policy_id)
);

CREATE INDEX IF NOT EXISTS idx_steward_role_pols_role ON steward_role_policies (role_id);
CREATE INDEX IF NOT EXISTS idx_steward_role_pols_policy ON steward_role_policies (policy_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_role_policies`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_assignments",
			Version: "20240101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_assignments (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    role_id         TEXT NOT NULL REFERENCES steward_roles(id) ON DELETE CASCADE,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    assigned_by     TEXT NOT NULL DEFAULT '',
    assigned_at     TIMESTAMPTZ NOT NULL,
    expires_at      TIMESTAMPTZ,
    reason          TEXT NOT NULL DEFAULT '',
    revoked_by      TEXT NOT NULL DEFAULT '',
    revoked_at      TIMESTAMPTZ,
    deleted_at      TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_steward_assign_pair_live ON steward_assignments (user_id, role_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_steward_assign_user ON steward_assignments (user_id);
CREATE INDEX IF NOT EXISTS idx_steward_assign_role ON steward_assignments (role_id);
CREATE INDEX IF NOT EXISTS idx_steward_assign_expires ON steward_assignments (expires_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_assignments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_audit_logs",
			Version: "20240101000008",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS steward_audit_logs (
    id              TEXT PRIMARY KEY,
    actor_id        TEXT NOT NULL DEFAULT '',
    action          TEXT NOT NULL,
    target_type     TEXT NOT NULL,
    target_id       TEXT NOT NULL,
    detail          TEXT NOT NULL DEFAULT '',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_steward_alogs_actor ON steward_audit_logs (actor_id);
CREATE INDEX IF NOT EXISTS idx_steward_alogs_target ON steward_audit_logs (target_type, target_id);
CREATE INDEX IF NOT EXISTS idx_steward_alogs_action ON steward_audit_logs (action);
CREATE INDEX IF NOT EXISTS idx_steward_alogs_created ON steward_audit_logs (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS steward_audit_logs`)
				return err
			},
		},
	)
}
