package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database/dbtest"
	"github.com/mrlokans/bookcatalog/internal/database/users"
)

const testPassword = "correct-horse-battery"

func setupService(t *testing.T, mode config.AuthMode) *Service {
	t.Helper()
	cfg := config.Auth{Mode: mode, BcryptCost: 4}
	tokens, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewService(users.NewRepository(dbtest.New(t)), tokens, NewMemoryStore(), cfg)
}

func TestService_Register(t *testing.T) {
	svc := setupService(t, config.AuthModeJWT)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Reader@Example.com", "Reader", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.NotEqual(t, testPassword, user.PasswordHash)

	tests := []struct {
		name     string
		email    string
		password string
		kind     apperrors.Kind
	}{
		{"missing email", "", testPassword, apperrors.KindValidation},
		{"invalid email", "not-an-email", testPassword, apperrors.KindValidation},
		{"missing password", "other@example.com", "", apperrors.KindValidation},
		{"short password", "other@example.com", "short", apperrors.KindValidation},
		{"duplicate", "reader@example.com", testPassword, apperrors.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, "x", tt.password)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}
}

func TestService_LoginVerifyLogout(t *testing.T) {
	svc := setupService(t, config.AuthModeJWT)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "reader@example.com", "Reader", testPassword)
	require.NoError(t, err)

	session, err := svc.Login(ctx, "READER@example.com", testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, registered.ID, session.User.ID)
	require.NotNil(t, session.User.LastLoginAt)

	claims, err := svc.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)

	require.NoError(t, svc.Logout(ctx, session.Token))

	_, err = svc.Verify(ctx, session.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.ErrorIs(t, svc.Logout(ctx, session.Token), ErrTokenRevoked)
}

func TestService_LoginFailures(t *testing.T) {
	svc := setupService(t, config.AuthModeJWT)
	ctx := context.Background()
	_, err := svc.Register(ctx, "reader@example.com", "Reader", testPassword)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "reader@example.com", "wrong-password-123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email looks like a wrong password")
}

func TestService_IsAuthEnabled(t *testing.T) {
	assert.True(t, setupService(t, config.AuthModeJWT).IsAuthEnabled())
	assert.False(t, setupService(t, config.AuthModeNone).IsAuthEnabled())
}
