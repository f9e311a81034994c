package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/auth"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/pkg/validator"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user account is inactive")
	ErrRegistrationDisabled = errors.New("registration is disabled")
)

// RegisterInput is a self-service signup
type RegisterInput struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

// LoginResult is returned on successful authentication
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *models.User `json:"user"`
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo            UserStore
	users               *UserService
	authSvc             *auth.Service
	registrationEnabled bool
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo UserStore, users *UserService, authSvc *auth.Service, registrationEnabled bool) *AuthService {
	return &AuthService{
		userRepo:            userRepo,
		users:               users,
		authSvc:             authSvc,
		registrationEnabled: registrationEnabled,
	}
}

// Register creates a viewer account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !s.registrationEnabled {
		return nil, ErrRegistrationDisabled
	}

	in.Username = validator.SanitizeString(in.Username)
	in.Email = validator.SanitizeEmail(in.Email)
	if err := validationError(validator.ValidateStruct(&in)); err != nil {
		return nil, err
	}

	user, err := s.users.createUser(ctx, in.Username, in.Email, in.Password, models.RoleViewer)
	if err != nil {
		return nil, err
	}

	slog.Info("User registered", "user_id", user.ID, "username", user.Username)
	s.users.audit.Log(ctx, models.Actor{UserID: user.ID, Username: user.Username, Role: user.Role},
		"user.register", "user", fmt.Sprintf("id=%d", user.ID))
	return user, nil
}

// Login authenticates a user and returns a signed token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, validator.SanitizeString(username))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Persistence("get user", err)
	}

	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := s.authSvc.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: int64(s.authSvc.Expiration().Seconds()),
		User:      user,
	}, nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists yet
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, email string) error {
	if username == "" {
		return nil
	}

	admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}

	if err := validator.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid bootstrap admin password: %w", err)
	}

	user, err := s.users.createUser(ctx, username, validator.SanitizeEmail(email), password, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	slog.Info("Bootstrap admin created", "user_id", user.ID, "username", user.Username)
	return nil
}
