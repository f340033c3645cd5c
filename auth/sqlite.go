package auth

import (
	"context"
	"database/sql"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			reset_token TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users (reset_token)`,
		`CREATE TABLE IF NOT EXISTS user_sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	},
}

// NewSQLiteStore returns a store over a database opened with the sqlite3 driver
// and creates the users and user_sessions tables if they don't exist.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLAuthStore, error) {
	return newSQLAuthStore(ctx, db, sqliteDialect)
}
