package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Migration is one ordered schema step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the schema in apply order.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create users, tenants and tenant users",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					user_id VARCHAR(10) PRIMARY KEY,
					username VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL UNIQUE,
					phone_number VARCHAR(32),
					organization_name VARCHAR(255),
					password_hash VARCHAR(255) NOT NULL,
					status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
					user_type VARCHAR(32) NOT NULL CHECK (user_type IN ('master_admin', 'super_admin', 'admin', 'employee')),
					is_verified BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS users_phone_idx ON users (phone_number);

				CREATE TABLE IF NOT EXISTS tenants (
					tenant_id VARCHAR(10) PRIMARY KEY,
					user_id VARCHAR(10) NOT NULL UNIQUE REFERENCES users (user_id),
					name VARCHAR(255) NOT NULL,
					organization_type VARCHAR(255),
					industry_sector VARCHAR(255),
					registration_tax_id VARCHAR(255),
					address TEXT,
					country VARCHAR(128),
					zip_postal_code VARCHAR(32),
					status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS tenant_users (
					tenant_user_id VARCHAR(10) PRIMARY KEY,
					tenant_id VARCHAR(10) NOT NULL REFERENCES tenants (tenant_id),
					name VARCHAR(255) NOT NULL,
					email VARCHAR(255) NOT NULL UNIQUE,
					position VARCHAR(255),
					department VARCHAR(255),
					contact_number VARCHAR(32),
					address TEXT,
					status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS tenant_users_tenant_idx ON tenant_users (tenant_id);
			`,
		},
		{
			Version:     2,
			Description: "create roles, modules and actions",
			SQL: `
				CREATE TABLE IF NOT EXISTS roles (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					description TEXT,
					status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS roles_name_key ON roles (lower(name));

				CREATE TABLE IF NOT EXISTS modules (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					description TEXT,
					status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS modules_name_key ON modules (lower(name));

				CREATE TABLE IF NOT EXISTS actions (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					description TEXT,
					status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS actions_name_key ON actions (lower(name));
			`,
		},
		{
			Version:     3,
			Description: "create role module action mappings",
			SQL: `
				CREATE TABLE IF NOT EXISTS role_module_action_mappings (
					id BIGSERIAL PRIMARY KEY,
					role_id BIGINT NOT NULL REFERENCES roles (id),
					module_id BIGINT NOT NULL REFERENCES modules (id),
					action_id BIGINT NOT NULL REFERENCES actions (id),
					status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
					assigned_by VARCHAR(10) REFERENCES users (user_id),
					assignment_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT role_module_action_mappings_triple_key UNIQUE (role_id, module_id, action_id)
				);
				CREATE INDEX IF NOT EXISTS role_module_action_mappings_module_idx ON role_module_action_mappings (module_id);
			`,
		},
		{
			Version:     4,
			Description: "create user and tenant user assignments",
			SQL: `
				CREATE TABLE IF NOT EXISTS user_role_assignments (
					id BIGSERIAL PRIMARY KEY,
					user_id VARCHAR(10) NOT NULL REFERENCES users (user_id),
					tenant_id VARCHAR(10) REFERENCES tenants (tenant_id),
					mapping_id BIGINT NOT NULL REFERENCES role_module_action_mappings (id),
					assigned_by VARCHAR(10) REFERENCES users (user_id),
					assignment_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS user_role_assignments_lookup_idx
					ON user_role_assignments (user_id, mapping_id, tenant_id);

				CREATE TABLE IF NOT EXISTS tenant_user_role_assignments (
					id BIGSERIAL PRIMARY KEY,
					tenant_user_id VARCHAR(10) NOT NULL REFERENCES tenant_users (tenant_user_id),
					tenant_id VARCHAR(10) NOT NULL REFERENCES tenants (tenant_id),
					mapping_id BIGINT NOT NULL REFERENCES role_module_action_mappings (id),
					assignment_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT tenant_user_role_assignments_key UNIQUE (tenant_user_id, mapping_id)
				);
			`,
		},
	}
}

// Migrate applies every pending migration, each in its own transaction.
func Migrate(ctx context.Context, pool Pool, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("platform/db: create migrations table: %w", err)
	}

	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return fmt.Errorf("platform/db: query migrations: %w", err)
	}
	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("platform/db: scan migration version: %w", err)
		}
		applied[version] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("platform/db: read migrations: %w", err)
	}

	for _, m := range Migrations() {
		if applied[m.Version] {
			continue
		}
		err := WithTx(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return fmt.Errorf("platform/db: migration %d: %w", m.Version, err)
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`, m.Version, m.Description)
			return err
		})
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("migration applied", slog.Int("version", m.Version), slog.String("description", m.Description))
		}
	}
	return nil
}
