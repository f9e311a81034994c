package service

import (
	"context"

	"github.com/AhmedTrying/malaysiasafd/internal/classifier"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
)

// The services depend on these narrow views of the repositories so tests can
// substitute in-memory implementations.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint) error
	Delete(ctx context.Context, id uint) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

type LookupStore interface {
	ListScamTypes(ctx context.Context) ([]models.ScamType, error)
	ListStates(ctx context.Context) ([]models.State, error)
	GetScamType(ctx context.Context, id int) (*models.ScamType, error)
	FindScamTypeByName(ctx context.Context, name string) (*models.ScamType, error)
	FindStateByName(ctx context.Context, name string) (*models.State, error)
	CreateScamType(ctx context.Context, st *models.ScamType) error
	UpdateScamType(ctx context.Context, st *models.ScamType) error
	DeleteScamType(ctx context.Context, id int) error
}

type PendingReportStore interface {
	Create(ctx context.Context, report *models.PendingReport) error
	GetByCaseID(ctx context.Context, caseID string) (*models.PendingReport, error)
	ListByStatus(ctx context.Context, status models.ReviewStatus) ([]models.PendingReport, error)
	Approve(ctx context.Context, caseID string, review repository.ReviewUpdate, promote repository.PromoteFunc) (*models.FraudReport, error)
	Reject(ctx context.Context, caseID string, review repository.ReviewUpdate) error
}

type FraudReportStore interface {
	Create(ctx context.Context, report *models.FraudReport) error
	GetByCaseID(ctx context.Context, caseID string) (*models.FraudReport, error)
	ListRecent(ctx context.Context, limit int) ([]models.FraudReport, error)
	StatsRows(ctx context.Context, filter models.StatsFilter) ([]models.StatsRow, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, fb *models.Feedback) error
	List(ctx context.Context) ([]models.Feedback, error)
}

type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter repository.AuditFilter) ([]models.AuditLog, error)
}

// Classifier scores a report
type Classifier interface {
	Classify(ctx context.Context, req classifier.Request) (*models.Prediction, error)
}

// Authorizer decides whether an actor holds a permission
type Authorizer interface {
	Authorize(actor models.Actor, permission models.Permission) error
}
