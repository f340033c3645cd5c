package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cameronmore/go-apiauth/sessions"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name       string
	positional bool
	schema     []string
}

// SQLAuthStore persists users and session records in a SQL database. It
// implements sessions.AuthStore.
type SQLAuthStore struct {
	DB      *sql.DB
	dialect dialect
}

func newSQLAuthStore(ctx context.Context, db *sql.DB, d dialect) (*SQLAuthStore, error) {
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("%s: creating schema: %w", d.name, err)
		}
	}
	return &SQLAuthStore{DB: db, dialect: d}, nil
}

// rebind rewrites ? placeholders to $n for backends that need positional ones.
func (s *SQLAuthStore) rebind(query string) string {
	if !s.dialect.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const userColumns = `user_id, email, hashed_password, first_name, last_name, reset_token, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (sessions.User, error) {
	var u sessions.User
	var created, updated int64
	err := row.Scan(&u.UserId, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName, &u.ResetToken, &created, &updated)
	if err != nil {
		return sessions.User{}, err
	}
	u.CreatedAt = fromUnixNano(created)
	u.UpdatedAt = fromUnixNano(updated)
	return u, nil
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func (s *SQLAuthStore) SaveUser(ctx context.Context, u sessions.User) error {
	if u.UserId == "" || u.Email == "" || u.HashedPassword == "" {
		return sessions.ErrInvalidArgument
	}
	query := s.rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.DB.ExecContext(ctx, query,
		u.UserId, u.Email, u.HashedPassword, u.FirstName, u.LastName, u.ResetToken,
		u.CreatedAt.UnixNano(), u.UpdatedAt.UnixNano())
	if isUniqueViolation(err) {
		return sessions.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func (s *SQLAuthStore) UpdateUser(ctx context.Context, u sessions.User) error {
	query := s.rebind(`UPDATE users
		SET email = ?, hashed_password = ?, first_name = ?, last_name = ?, reset_token = ?, updated_at = ?
		WHERE user_id = ?`)
	result, err := s.DB.ExecContext(ctx, query,
		u.Email, u.HashedPassword, u.FirstName, u.LastName, u.ResetToken, u.UpdatedAt.UnixNano(), u.UserId)
	if isUniqueViolation(err) {
		return sessions.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return requireAffected(result, sessions.ErrUserNotFound)
}

func (s *SQLAuthStore) DeleteUserById(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE user_id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return requireAffected(result, sessions.ErrUserNotFound)
}

func (s *SQLAuthStore) LoadUserByUserId(ctx context.Context, id string) (sessions.User, error) {
	row := s.DB.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE user_id = ?`), id)
	return s.oneUser(row)
}

func (s *SQLAuthStore) LoadUserByResetToken(ctx context.Context, token string) (sessions.User, error) {
	if token == "" {
		return sessions.User{}, sessions.ErrUserNotFound
	}
	row := s.DB.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE reset_token = ?`), token)
	return s.oneUser(row)
}

func (s *SQLAuthStore) oneUser(row *sql.Row) (sessions.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sessions.User{}, sessions.ErrUserNotFound
	}
	if err != nil {
		return sessions.User{}, fmt.Errorf("loading user: %w", err)
	}
	return u, nil
}

func (s *SQLAuthStore) LoadUsersByEmail(ctx context.Context, email string) ([]sessions.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY created_at, user_id`, email)
}

func (s *SQLAuthStore) ListUsers(ctx context.Context) ([]sessions.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, user_id`)
}

func (s *SQLAuthStore) queryUsers(ctx context.Context, query string, args ...any) ([]sessions.User, error) {
	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []sessions.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func (s *SQLAuthStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

func (s *SQLAuthStore) SaveSession(ctx context.Context, session sessions.Session) error {
	if session.Id == "" || session.UserId == "" {
		return sessions.ErrInvalidArgument
	}
	query := s.rebind(`INSERT INTO user_sessions (session_id, user_id, created_at) VALUES (?, ?, ?)`)
	_, err := s.DB.ExecContext(ctx, query, session.Id, session.UserId, session.CreatedAt.UnixNano())
	if isUniqueViolation(err) {
		return sessions.ErrSessionExists
	}
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLAuthStore) LoadSessionById(ctx context.Context, id string) (sessions.Session, error) {
	session := sessions.Session{Id: id}
	var created int64
	query := s.rebind(`SELECT user_id, created_at FROM user_sessions WHERE session_id = ?`)
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&session.UserId, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return sessions.Session{}, sessions.ErrSessionNotFound
	}
	if err != nil {
		return sessions.Session{}, fmt.Errorf("loading session: %w", err)
	}
	session.CreatedAt = fromUnixNano(created)
	return session, nil
}

func (s *SQLAuthStore) DeleteSessionById(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM user_sessions WHERE session_id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return requireAffected(result, sessions.ErrSessionNotFound)
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// isUniqueViolation matches the constraint errors of both drivers by message so
// neither driver package has to be imported here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
