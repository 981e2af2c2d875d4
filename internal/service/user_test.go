package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	svc := NewUserService(users, &fakeFiles{})

	u, err := svc.Register("Bob@Example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "bob@example.com", u.Email)

	// stored hash verifies against the original password
	stored, err := users.ByID(u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")))
}

func TestUserService_RegisterValidation(t *testing.T) {
	t.Parallel()
	svc := NewUserService(newFakeUsers(), &fakeFiles{})

	_, err := svc.Register("", "pw")
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, err = svc.Register("not-an-email", "pw")
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, err = svc.Register("bob@example.com", "")
	assert.ErrorIs(t, err, ErrMissingPassword)
}

func TestUserService_RegisterDuplicate(t *testing.T) {
	t.Parallel()
	svc := NewUserService(newFakeUsers(), &fakeFiles{})

	_, err := svc.Register("bob@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register("bob@example.com", "pw")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserService_Stats(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	files := &fakeFiles{}
	svc := NewUserService(users, files)

	_, err := svc.Register("a@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.Register("b@example.com", "pw")
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Users)
	assert.EqualValues(t, 0, stats.Files)
}
