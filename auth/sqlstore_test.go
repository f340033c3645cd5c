package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cameronmore/go-apiauth/sessions"
	"github.com/go-test/deep"
)

func TestSQLStoreSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	s := sessions.Session{Id: "s-1", UserId: "u-1", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)}
	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSession(ctx, s); !errors.Is(err, sessions.ErrSessionExists) {
		t.Fatalf("duplicate save: got %v, want ErrSessionExists", err)
	}

	loaded, err := store.LoadSessionById(ctx, "s-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(loaded, s); diff != nil {
		t.Fatal(diff)
	}

	if err := store.DeleteSessionById(ctx, "s-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteSessionById(ctx, "s-1"); !errors.Is(err, sessions.ErrSessionNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
	if _, err := store.LoadSessionById(ctx, "s-1"); !errors.Is(err, sessions.ErrSessionNotFound) {
		t.Fatalf("load after delete: got %v", err)
	}
}

func TestSQLStoreUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	u := sessions.User{
		UserId:         "01HXAMPLE",
		Email:          "bob@hbtn.io",
		HashedPassword: "$2a$04$hash",
		FirstName:      "Bob",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.SaveUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	dup := u
	dup.UserId = "other"
	if err := store.SaveUser(ctx, dup); !errors.Is(err, sessions.ErrUserExists) {
		t.Fatalf("duplicate email: got %v, want ErrUserExists", err)
	}
	if err := store.SaveUser(ctx, sessions.User{UserId: "x"}); !errors.Is(err, sessions.ErrInvalidArgument) {
		t.Fatalf("incomplete user: got %v", err)
	}

	byEmail, err := store.LoadUsersByEmail(ctx, "bob@hbtn.io")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(byEmail, []sessions.User{u}); diff != nil {
		t.Fatal(diff)
	}
	if none, _ := store.LoadUsersByEmail(ctx, "nobody@hbtn.io"); len(none) != 0 {
		t.Fatalf("unexpected match %v", none)
	}

	u.ResetToken = "tok"
	if err := store.UpdateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	byToken, err := store.LoadUserByResetToken(ctx, "tok")
	if err != nil || byToken.UserId != u.UserId {
		t.Fatalf("LoadUserByResetToken = (%+v, %v)", byToken, err)
	}
	if _, err := store.LoadUserByResetToken(ctx, ""); !errors.Is(err, sessions.ErrUserNotFound) {
		t.Fatalf("empty token: got %v", err)
	}

	missing := u
	missing.UserId = "ghost"
	missing.Email = "ghost@hbtn.io"
	if err := store.UpdateUser(ctx, missing); !errors.Is(err, sessions.ErrUserNotFound) {
		t.Fatalf("update of missing user: got %v", err)
	}

	if n, err := store.CountUsers(ctx); err != nil || n != 1 {
		t.Fatalf("CountUsers = (%d, %v)", n, err)
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLAuthStore{dialect: postgresDialect}
	got := pg.rebind(`UPDATE users SET email = ?, first_name = ? WHERE user_id = ?`)
	want := `UPDATE users SET email = $1, first_name = $2 WHERE user_id = $3`
	if got != want {
		t.Fatalf("rebind = %q", got)
	}

	lite := &SQLAuthStore{dialect: sqliteDialect}
	if q := lite.rebind(`SELECT ? `); q != `SELECT ? ` {
		t.Fatalf("sqlite rebind changed the query: %q", q)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("UNIQUE constraint failed: users.email"), true},
		{errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`), true},
		{errors.New("database is locked"), false},
	}
	for _, tt := range tests {
		if got := isUniqueViolation(tt.err); got != tt.want {
			t.Errorf("isUniqueViolation(%v) = %v", tt.err, got)
		}
	}
}
