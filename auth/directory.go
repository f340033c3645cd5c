package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cameronmore/go-apiauth/credentials"
	"github.com/cameronmore/go-apiauth/sessions"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/thejerf/abtime"
)

// Directory is the user directory the authenticators and handlers consult. It
// owns password hashing so that bcrypt never runs under a store lock.
type Directory struct {
	users  sessions.UserStore
	hasher *credentials.Hasher
	clock  abtime.AbstractTime
}

// NewDirectory returns a directory over users. A nil hasher uses bcrypt's
// default cost.
func NewDirectory(users sessions.UserStore, hasher *credentials.Hasher) *Directory {
	if hasher == nil {
		hasher = credentials.NewHasher(0)
	}
	return &Directory{
		users:  users,
		hasher: hasher,
		clock:  abtime.NewRealTime(),
	}
}

// Registration is the input to Register.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (d *Directory) FindByEmail(ctx context.Context, email string) ([]sessions.User, error) {
	if email == "" {
		return nil, nil
	}
	return d.users.LoadUsersByEmail(ctx, email)
}

func (d *Directory) FindByID(ctx context.Context, id string) (*sessions.User, error) {
	if id == "" {
		return nil, sessions.ErrUserNotFound
	}
	u, err := d.users.LoadUserByUserId(ctx, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// VerifyPassword reports whether plaintext matches the user's stored hash.
func (d *Directory) VerifyPassword(u *sessions.User, plaintext string) bool {
	if u == nil {
		return false
	}
	return d.hasher.Verify(plaintext, u.HashedPassword)
}

// Register creates a user with a fresh ULID. An email that is already in use
// returns ErrEmailTaken.
func (d *Directory) Register(ctx context.Context, reg Registration) (*sessions.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Email == "" || reg.Password == "" {
		return nil, sessions.ErrInvalidArgument
	}

	existing, err := d.FindByEmail(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := d.hasher.Hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := d.clock.Now().UTC()
	u := sessions.User{
		UserId:         ulid.Make().String(),
		Email:          reg.Email,
		HashedPassword: hashed,
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := d.users.SaveUser(ctx, u); err != nil {
		if errors.Is(err, sessions.ErrUserExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

// Update replaces the user's name fields.
func (d *Directory) Update(ctx context.Context, id, firstName, lastName string) (*sessions.User, error) {
	u, err := d.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.UpdatedAt = d.clock.Now().UTC()
	if err := d.users.UpdateUser(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

func (d *Directory) Delete(ctx context.Context, id string) error {
	return d.users.DeleteUserById(ctx, id)
}

func (d *Directory) List(ctx context.Context) ([]sessions.User, error) {
	return d.users.ListUsers(ctx)
}

func (d *Directory) Count(ctx context.Context) (int, error) {
	return d.users.CountUsers(ctx)
}

// ResetToken issues a password reset token for the first user registered with
// email.
func (d *Directory) ResetToken(ctx context.Context, email string) (string, error) {
	users, err := d.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", sessions.ErrUserNotFound
	}

	u := users[0]
	u.ResetToken = uuid.NewString()
	u.UpdatedAt = d.clock.Now().UTC()
	if err := d.users.UpdateUser(ctx, u); err != nil {
		return "", err
	}
	return u.ResetToken, nil
}

// UpdatePassword sets a new password for the holder of resetToken. The token
// must belong to email and is consumed on success.
func (d *Directory) UpdatePassword(ctx context.Context, email, resetToken, password string) (*sessions.User, error) {
	if resetToken == "" || password == "" {
		return nil, ErrInvalidResetToken
	}
	u, err := d.users.LoadUserByResetToken(ctx, resetToken)
	if errors.Is(err, sessions.ErrUserNotFound) {
		return nil, ErrInvalidResetToken
	}
	if err != nil {
		return nil, err
	}
	if u.Email != email {
		return nil, ErrInvalidResetToken
	}

	hashed, err := d.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u.HashedPassword = hashed
	u.ResetToken = ""
	u.UpdatedAt = d.clock.Now().UTC()
	if err := d.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}
