package pgstore

import (
	"context"
	"fmt"
)

// Schema creates the tables the store reads. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS roles (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	permissions TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS users (
	id              TEXT PRIMARY KEY,
	email           TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	is_active       BOOLEAN NOT NULL DEFAULT TRUE,
	is_superuser    BOOLEAN NOT NULL DEFAULT FALSE,
	role_id         TEXT REFERENCES roles(id) ON DELETE SET NULL
);
`

// Migrate applies [Schema].
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("pgstore: migrate: %w", err)
	}
	return nil
}
