package auth

import (
	"context"
	"database/sql"
)

var postgresDialect = dialect{
	name:       "postgres",
	positional: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY NOT NULL,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			reset_token TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL, -- Unix nanoseconds
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users (reset_token)`,
		`CREATE TABLE IF NOT EXISTS user_sessions (
			session_id TEXT PRIMARY KEY NOT NULL,
			user_id TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
	},
}

// NewPostgresStore returns a store over a database opened with the postgres
// driver and creates the users and user_sessions tables if they don't exist.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*SQLAuthStore, error) {
	return newSQLAuthStore(ctx, db, postgresDialect)
}
