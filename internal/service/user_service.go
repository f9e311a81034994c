package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/auth"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/pkg/validator"
)

// RoleAuthorizer grants permissions from the static role table
type RoleAuthorizer struct{}

// Authorize returns an UnauthorizedError unless actor's role grants permission
func (RoleAuthorizer) Authorize(actor models.Actor, permission models.Permission) error {
	if !actor.Role.Can(permission) {
		slog.Warn("Permission denied", "user_id", actor.UserID, "role", actor.Role, "permission", permission)
		return apperrors.Unauthorized(string(permission))
	}
	return nil
}

// CreateUserInput is an account created by an admin
type CreateUserInput struct {
	Username string      `json:"username" validate:"required,username"`
	Email    string      `json:"email" validate:"omitempty,email,max=255"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=admin analyst viewer"`
}

// UpdateUserInput changes account details. Nil fields are left unchanged.
type UpdateUserInput struct {
	Username *string      `json:"username" validate:"omitempty,username"`
	Email    *string      `json:"email" validate:"omitempty,max=255"`
	Role     *models.Role `json:"role" validate:"omitempty,oneof=admin analyst viewer"`
	IsActive *bool        `json:"is_active"`
}

// UserService is the user and role directory
type UserService struct {
	RoleAuthorizer
	userRepo UserStore
	authSvc  *auth.Service
	audit    *AuditService
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore, authSvc *auth.Service, audit *AuditService) *UserService {
	return &UserService{
		userRepo: userRepo,
		authSvc:  authSvc,
		audit:    audit,
	}
}

// Roles lists the roles and their permissions
func (s *UserService) Roles() []models.RoleInfo {
	return models.Roles()
}

// List returns all users
func (s *UserService) List(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if err := s.Authorize(actor, models.PermManageUsers); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list users", err)
	}
	return users, nil
}

// Get returns a single user
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, userError(err, id, "get user")
	}
	return user, nil
}

// Create adds an account with an explicit role
func (s *UserService) Create(ctx context.Context, actor models.Actor, in CreateUserInput) (*models.User, error) {
	if err := s.Authorize(actor, models.PermManageUsers); err != nil {
		return nil, err
	}

	in.Username = validator.SanitizeString(in.Username)
	in.Email = validator.SanitizeEmail(in.Email)
	if err := validationError(validator.ValidateStruct(&in)); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, in.Username, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, actor, "user.create", "user", fmt.Sprintf("id=%d username=%s role=%s", user.ID, user.Username, user.Role))
	return user, nil
}

func (s *UserService) createUser(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	hash, err := s.authSvc.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if email != "" {
		user.Email = &email
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, apperrors.Conflict(fmt.Sprintf("username %q is already taken", username), err)
		}
		return nil, apperrors.Persistence("create user", err)
	}
	return user, nil
}

// Update changes account details
func (s *UserService) Update(ctx context.Context, actor models.Actor, id uint, in UpdateUserInput) (*models.User, error) {
	if err := s.Authorize(actor, models.PermManageUsers); err != nil {
		return nil, err
	}
	if err := validationError(validator.ValidateStruct(&in)); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, userError(err, id, "get user")
	}

	if in.Username != nil {
		user.Username = validator.SanitizeString(*in.Username)
	}
	if in.Email != nil {
		email := validator.SanitizeEmail(*in.Email)
		if email == "" {
			user.Email = nil
		} else if err := validator.ValidateEmail(email); err != nil {
			return nil, apperrors.Validation("email", "must be a valid email")
		} else {
			user.Email = &email
		}
	}
	if in.IsActive != nil {
		if !*in.IsActive && id == actor.UserID {
			return nil, apperrors.Validation("is_active", "cannot deactivate your own account")
		}
		user.IsActive = *in.IsActive
	}
	if in.Role != nil && *in.Role != user.Role {
		if err := s.guardRoleChange(ctx, actor, user); err != nil {
			return nil, err
		}
		user.Role = *in.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, apperrors.Conflict(fmt.Sprintf("username %q is already taken", user.Username), err)
		}
		return nil, userError(err, id, "update user")
	}

	s.audit.Log(ctx, actor, "user.update", "user", fmt.Sprintf("id=%d", id))
	return user, nil
}

// AssignRole replaces a user's role
func (s *UserService) AssignRole(ctx context.Context, actor models.Actor, id uint, role models.Role) (*models.User, error) {
	if err := s.Authorize(actor, models.PermManageUsers); err != nil {
		return nil, err
	}
	role = models.Role(strings.ToLower(strings.TrimSpace(string(role))))
	if !role.Valid() {
		return nil, apperrors.Validation("role", "must be one of: admin, analyst, viewer")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, userError(err, id, "get user")
	}
	if user.Role == role {
		return user, nil
	}
	if err := s.guardRoleChange(ctx, actor, user); err != nil {
		return nil, err
	}

	previous := user.Role
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, userError(err, id, "assign role")
	}

	slog.Info("Role changed", "user_id", id, "from", previous, "to", role, "by", actor.UserID)
	s.audit.Log(ctx, actor, "user.role", "user", fmt.Sprintf("id=%d from=%s to=%s", id, previous, role))
	return user, nil
}

// guardRoleChange keeps at least one admin and stops admins demoting themselves
func (s *UserService) guardRoleChange(ctx context.Context, actor models.Actor, user *models.User) error {
	if user.ID == actor.UserID {
		return apperrors.Validation("role", "cannot change your own role")
	}
	if user.Role != models.RoleAdmin {
		return nil
	}
	return s.ensureOtherAdmin(ctx)
}

func (s *UserService) ensureOtherAdmin(ctx context.Context) error {
	admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return apperrors.Persistence("count admins", err)
	}
	if admins <= 1 {
		return apperrors.Conflict("cannot remove the last admin", nil)
	}
	return nil
}

// Delete removes an account other than the caller's own
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if err := s.Authorize(actor, models.PermManageUsers); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperrors.Validation("id", "cannot delete your own account")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return userError(err, id, "get user")
	}
	if user.Role == models.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return userError(err, id, "delete user")
	}

	s.audit.Log(ctx, actor, "user.delete", "user", fmt.Sprintf("id=%d username=%s", id, user.Username))
	return nil
}

// SetPassword replaces another user's password
func (s *UserService) SetPassword(ctx context.Context, actor models.Actor, id uint, password string) error {
	if err := s.Authorize(actor, models.PermResetPasswords); err != nil {
		return err
	}
	if err := validator.ValidatePassword(password); err != nil {
		return apperrors.Validation("password", err.Error())
	}

	hash, err := s.authSvc.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
		return userError(err, id, "update password")
	}

	s.audit.Log(ctx, actor, "user.password", "user", fmt.Sprintf("id=%d", id))
	return nil
}

func userError(err error, id uint, op string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperrors.NotFound("user", fmt.Sprint(id))
	}
	return apperrors.Persistence(op, err)
}
