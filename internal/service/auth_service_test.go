package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/auth"
	"github.com/AhmedTrying/malaysiasafd/internal/config"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

func TestRegisterCreatesViewer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.authSvc.Register(ctx, RegisterInput{
		Username: "newcomer",
		Password: "password123",
		Email:    "newcomer@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, user.Role)
	assert.True(t, user.IsActive)
	assert.Contains(t, env.audit.Actions(), "user.register")

	_, err = env.authSvc.Register(ctx, RegisterInput{Username: "Newcomer", Password: "password123"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Password: "password123"}},
		{"bad characters", RegisterInput{Username: "no spaces", Password: "password123"}},
		{"short password", RegisterInput{Username: "valid_name", Password: "12345"}},
		{"bad email", RegisterInput{Username: "valid_name", Password: "password123", Email: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.authSvc.Register(context.Background(), tt.in)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestRegisterDisabled(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(env.users, env.userSvc, auth.NewService(&config.JWTConfig{Secret: "x", Expiration: time.Hour}), false)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "someone", Password: "password123"})
	assert.ErrorIs(t, err, ErrRegistrationDisabled)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered, err := env.authSvc.Register(ctx, RegisterInput{Username: "hafiz", Password: "password123"})
	require.NoError(t, err)

	result, err := env.authSvc.Login(ctx, "HAFIZ", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, registered.ID, result.User.ID)

	stored, err := env.users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = env.authSvc.Login(ctx, "hafiz", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.authSvc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := seedUser(t, env, "root", models.RoleAdmin)
	user, _ := seedUser(t, env, "dormant", models.RoleViewer)

	inactive := false
	_, err := env.userSvc.Update(ctx, admin, user.ID, UpdateUserInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = env.authSvc.Login(ctx, "dormant", "password123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("no username configured", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.authSvc.EnsureAdmin(ctx, "", "", ""))
		count, _ := env.users.CountByRole(ctx, models.RoleAdmin)
		assert.Zero(t, count)
	})

	t.Run("creates the first admin once", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.authSvc.EnsureAdmin(ctx, "admin", "admin-pass", "Admin@Example.com"))
		require.NoError(t, env.authSvc.EnsureAdmin(ctx, "admin2", "admin-pass", ""))

		count, err := env.users.CountByRole(ctx, models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		result, err := env.authSvc.Login(ctx, "admin", "admin-pass")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, result.User.Role)
		require.NotNil(t, result.User.Email)
		assert.Equal(t, "admin@example.com", *result.User.Email)
	})

	t.Run("weak password", func(t *testing.T) {
		env := newTestEnv(t)
		assert.Error(t, env.authSvc.EnsureAdmin(ctx, "admin", "123", ""))
	})
}
