package db

import (
	"context"
	"fmt"
)

// Table DDL applied at startup. Everything is CREATE ... IF NOT EXISTS so
// restarting against an existing database is a no-op; structural changes
// beyond that are handled out of band.
//
// The unique constraint on (account_id, field_name) is load-bearing: it is
// what makes concurrent field auto-creation create exactly one row.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id                 uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
		name               text NOT NULL,
		api_key            text NOT NULL UNIQUE,
		active             boolean NOT NULL DEFAULT true,
		auto_create_fields boolean NOT NULL DEFAULT true,
		created_at         timestamptz NOT NULL DEFAULT now(),
		updated_at         timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS field_definitions (
		id          uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
		account_id  uuid NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		field_name  text NOT NULL,
		data_type   text NOT NULL DEFAULT 'string',
		description text,
		required    boolean NOT NULL DEFAULT false,
		created_at  timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT uq_field_definitions_account_name UNIQUE (account_id, field_name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_field_definitions_account
		ON field_definitions (account_id)`,

	`CREATE TABLE IF NOT EXISTS records (
		id         uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
		account_id uuid NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		payload    jsonb NOT NULL,
		metadata   jsonb,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_account_created
		ON records (account_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS leads (
		id         uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
		account_id uuid NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		record_id  uuid NOT NULL UNIQUE REFERENCES records(id) ON DELETE CASCADE,
		data       jsonb NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_account_created
		ON leads (account_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
		email         text NOT NULL UNIQUE,
		display_name  text NOT NULL,
		password_hash text NOT NULL,
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema. Safe to run on every startup.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	db.logger.Info("database schema up to date")
	return nil
}
