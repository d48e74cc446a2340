package inkpost

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupTestAccounts(t *testing.T) *Accounts {
	t.Helper()
	acc := NewAccounts(setupTestStore(t))
	acc.cost = bcrypt.MinCost
	return acc
}

func TestRegisterHashesPassword(t *testing.T) {
	acc := setupTestAccounts(t)

	u, err := acc.Register(context.Background(), "  Ada ", " Ada@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))
	assert.Equal(t, RoleAdmin, u.Role)
}

func TestRegisterSamePasswordDifferentHashes(t *testing.T) {
	acc := setupTestAccounts(t)
	ctx := context.Background()

	a, err := acc.Register(ctx, "Ada", "ada@example.com", "password1")
	require.NoError(t, err)
	b, err := acc.Register(ctx, "Bob", "bob@example.com", "password1")
	require.NoError(t, err)
	assert.NotEqual(t, a.PasswordHash, b.PasswordHash, "hashes must be salted")
	assert.Equal(t, RoleReader, b.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	acc := setupTestAccounts(t)
	ctx := context.Background()

	_, err := acc.Register(ctx, "Ada", "ada@example.com", "password1")
	require.NoError(t, err)
	_, err = acc.Register(ctx, "Ada Again", "ADA@example.com", "password2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPasswordTooLong(t *testing.T) {
	acc := setupTestAccounts(t)

	_, err := acc.Register(context.Background(), "Ada", "ada@example.com", strings.Repeat("é", 40))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = acc.store.UserByEmail(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, ErrNotFound, "no user is created")
}

func TestAuthenticate(t *testing.T) {
	acc := setupTestAccounts(t)
	ctx := context.Background()
	registered, err := acc.Register(ctx, "Ada", "ada@example.com", "password1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "match", email: "ada@example.com", password: "password1"},
		{name: "email case and spaces ignored", email: " ADA@example.com", password: "password1"},
		{name: "unknown email", email: "nobody@example.com", password: "password1", wantErr: ErrUnknownEmail},
		{name: "wrong password", email: "ada@example.com", password: "password2", wantErr: ErrWrongPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := acc.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, u.ID)
		})
	}
}
