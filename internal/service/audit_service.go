package service

import (
	"context"
	"log/slog"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type requestInfoKey struct{}

type requestInfo struct {
	ipAddress string
	userAgent string
}

// WithRequestInfo attaches the caller's address and user agent to ctx so audit
// entries written further down can record them.
func WithRequestInfo(ctx context.Context, ipAddress, userAgent string) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, requestInfo{ipAddress: ipAddress, userAgent: userAgent})
}

// AuditService handles audit logging
type AuditService struct {
	auditRepo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditStore) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
	}
}

// Log creates an audit log entry. Failures are logged and otherwise ignored
// so they never fail the operation being audited.
func (s *AuditService) Log(ctx context.Context, actor models.Actor, action, resource, details string) {
	if s == nil {
		return
	}
	entry := &models.AuditLog{
		Action:   action,
		Resource: resource,
		Details:  details,
	}
	if actor.UserID != 0 {
		userID := actor.UserID
		entry.UserID = &userID
	}
	if info, ok := ctx.Value(requestInfoKey{}).(requestInfo); ok {
		entry.IPAddress = info.ipAddress
		entry.UserAgent = info.userAgent
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		slog.Error("Failed to write audit log", "action", action, "resource", resource, "error", err)
	}
}

// List returns audit entries, newest first
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	if filter.Offset < 0 {
		return nil, apperrors.Validation("offset", "must not be negative")
	}

	logs, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Persistence("list audit logs", err)
	}
	return logs, nil
}
