package auth

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jghoshh/streakly/backend/apperr"
	"github.com/jghoshh/streakly/backend/models"
	"github.com/jghoshh/streakly/backend/storage/persistent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test variables
var (
	testUsername1 = "testuser1"
	testEmail1    = "testuser1@example.com"
	testPassword1 = "Test1234"

	testUsername2 = "testuser2"
	testEmail2    = "testuser2@example.com"
	testPassword2 = "Test5678"
)

func newTestService(t *testing.T) (*Service, *storage.Storage) {
	t.Helper()
	st, err := storage.NewStorage(storage.Config{DataDir: t.TempDir()}, storage.DocumentOptions{})
	require.NoError(t, err)
	return NewService(st.Users, st.Sequences, nil), st
}

// TestRegister tests that a registered user gets the fixed defaults and is stored by email.
func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	u, err := svc.Register(ctx, testUsername1, testEmail1, testPassword1, "fox")
	require.NoError(t, err)

	assert.Equal(t, models.User{
		ID:          "1",
		Username:    testUsername1,
		Email:       testEmail1,
		Password:    testPassword1,
		Avatar:      "fox",
		DateJoined:  "2025-02-07",
		Preferences: models.Preferences{Notifications: true, Theme: "dark"},
	}, u)

	users, err := st.Users.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, users[testEmail1])
}

// TestRegisterDuplicateEmail tests that the second registration with an email is rejected.
func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	_, err := svc.Register(ctx, testUsername1, testEmail1, testPassword1, "fox")
	require.NoError(t, err)

	_, err = svc.Register(ctx, testUsername2, testEmail1, testPassword2, "owl")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Email already registered", apperr.Detail(err))

	users, err := st.Users.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, testUsername1, users[testEmail1].Username)
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), testUsername1, "not-an-email", testPassword1, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestRegisterIDsIncrease(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	u1, err := svc.Register(ctx, testUsername1, testEmail1, testPassword1, "")
	require.NoError(t, err)
	u2, err := svc.Register(ctx, testUsername2, testEmail2, testPassword2, "")
	require.NoError(t, err)
	assert.Equal(t, "1", u1.ID)
	assert.Equal(t, "2", u2.ID)
}

// TestLogin tests sign in with correct and wrong credentials.
func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, testUsername1, testEmail1, testPassword1, "fox")
	require.NoError(t, err)

	u, err := svc.Login(ctx, testEmail1, testPassword1)
	require.NoError(t, err)
	assert.Equal(t, testUsername1, u.Username)
	assert.Empty(t, u.Password)

	body, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")

	_, err = svc.Login(ctx, testEmail1, testPassword2)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Equal(t, "Invalid email or password", apperr.Detail(err))

	_, err = svc.Login(ctx, testEmail2, testPassword1)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
