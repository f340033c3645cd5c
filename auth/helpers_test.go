package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cameronmore/go-apiauth/credentials"
	"github.com/cameronmore/go-apiauth/sessions"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *SQLAuthStore {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(context.Background(), db)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store
}

func newTestDirectory(t *testing.T) (*Directory, *SQLAuthStore) {
	t.Helper()
	store := newTestStore(t)
	return NewDirectory(store, credentials.NewHasher(bcrypt.MinCost)), store
}

func mustRegister(t *testing.T, dir *Directory, email, password string) *sessions.User {
	t.Helper()
	u, err := dir.Register(context.Background(), Registration{Email: email, Password: password})
	if err != nil {
		t.Fatalf("registering %s: %v", email, err)
	}
	return u
}

func basicToken(email, password string) string {
	return strings.TrimPrefix(credentials.EncodeBasic(email, password), credentials.BasicScheme)
}
