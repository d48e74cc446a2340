package inkpost

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Accounts registers and authenticates users against the Store.
type Accounts struct {
	store *Store
	cost  int
}

// NewAccounts returns an Accounts using bcrypt.DefaultCost.
func NewAccounts(s *Store) *Accounts {
	return &Accounts{store: s, cost: bcrypt.DefaultCost}
}

// Register creates a user with a salted bcrypt hash of password. It returns
// ErrEmailTaken if the email already has an account and ErrPasswordTooLong
// if bcrypt rejects the password. The first account
// registered is the admin.
func (a *Accounts) Register(ctx context.Context, name, email, password string) (User, error) {
	email = normalizeEmail(email)
	if _, err := a.store.UserByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return User{}, ErrPasswordTooLong
	}
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
	}
	// The store maps a racing duplicate to ErrEmailTaken as well.
	if err := a.store.CreateUser(ctx, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate returns the user whose email and password match.
// It distinguishes ErrUnknownEmail from ErrWrongPassword so the login form
// can say which field was wrong.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := a.store.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrUnknownEmail
	}
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrWrongPassword
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
