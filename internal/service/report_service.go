package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/cache"
	"github.com/AhmedTrying/malaysiasafd/internal/caseid"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/pkg/validator"
)

// CreateReportInput is a canonical report entered directly by an admin
type CreateReportInput struct {
	Title           string            `json:"title" validate:"required,max=255"`
	Summary         string            `json:"summary" validate:"required,max=10000"`
	AmountLost      *float64          `json:"amountLost" validate:"omitempty,gte=0,lte=999999999999.99"`
	ScamTypeID      *int              `json:"scamTypeId"`
	StateID         *int              `json:"stateId"`
	CaseStatus      models.CaseStatus `json:"caseStatus" validate:"required,oneof=scam legitimate under_review"`
	ConfidenceScore *float64          `json:"confidenceScore" validate:"omitempty,gte=0,lte=1"`
	ReportDate      *models.Date      `json:"reportDate"`
}

// ReportService administers canonical reports directly
type ReportService struct {
	fraudRepo   FraudReportStore
	authorizer  Authorizer
	allocator   caseid.Allocator
	statsCache  cache.StatsCache
	audit       *AuditService
	maxAttempts int
	now         func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	fraudRepo FraudReportStore,
	authorizer Authorizer,
	allocator caseid.Allocator,
	statsCache cache.StatsCache,
	audit *AuditService,
	maxAttempts int,
) *ReportService {
	if statsCache == nil {
		statsCache = cache.Noop{}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ReportService{
		fraudRepo:   fraudRepo,
		authorizer:  authorizer,
		allocator:   allocator,
		statsCache:  statsCache,
		audit:       audit,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// GetReport returns a canonical report by case id
func (s *ReportService) GetReport(ctx context.Context, caseID string) (*models.FraudReport, error) {
	report, err := s.fraudRepo.GetByCaseID(ctx, caseID)
	if errors.Is(err, repository.ErrFraudReportNotFound) {
		return nil, apperrors.NotFound("report", caseID)
	}
	if err != nil {
		return nil, apperrors.Persistence("get report", err)
	}
	return report, nil
}

// CreateReport stores a canonical report that bypasses the review queue
func (s *ReportService) CreateReport(ctx context.Context, actor models.Actor, in CreateReportInput) (*models.FraudReport, error) {
	if err := s.authorizer.Authorize(actor, models.PermEditReports); err != nil {
		return nil, err
	}

	in.Title = validator.SanitizeString(in.Title)
	in.Summary = validator.SanitizeString(in.Summary)
	if err := validationError(validator.ValidateStruct(&in)); err != nil {
		return nil, err
	}
	if in.AmountLost != nil && !isValidAmount(*in.AmountLost) {
		return nil, apperrors.Validation("amountLost", "must be a non-negative number")
	}

	now := s.now().UTC()
	reportDate := models.NewDate(now)
	if in.ReportDate != nil {
		reportDate = *in.ReportDate
	}

	report := &models.FraudReport{
		ID:              uuid.New(),
		Title:           in.Title,
		Summary:         in.Summary,
		AmountLost:      in.AmountLost,
		ScamTypeID:      in.ScamTypeID,
		StateID:         in.StateID,
		CaseStatus:      in.CaseStatus,
		ConfidenceScore: in.ConfidenceScore,
		ReportDate:      reportDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if actor.UserID != 0 {
		creator := actor.UserID
		report.CreatedBy = &creator
	}

	if err := s.insertWithFreshID(ctx, report); err != nil {
		return nil, err
	}

	if err := s.statsCache.Invalidate(ctx); err != nil {
		slog.Error("Failed to invalidate stats cache", "error", err)
	}

	slog.Info("Canonical report created", "case_id", report.CaseID, "user_id", actor.UserID)
	s.audit.Log(ctx, actor, "report.create", "fraud_report", report.CaseID)

	return report, nil
}

func (s *ReportService) insertWithFreshID(ctx context.Context, report *models.FraudReport) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, err := s.allocator.Next(ctx)
		if err != nil {
			return apperrors.Persistence("allocate case id", err)
		}
		report.CaseID = id

		err = s.fraudRepo.Create(ctx, report)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrLookupNotFound):
			return apperrors.Validation("scamTypeId", "scam type or state does not exist")
		case !errors.Is(err, repository.ErrDuplicateCaseID):
			return apperrors.Persistence("create report", err)
		}
		slog.Warn("Canonical case id collision, retrying", "case_id", id, "attempt", attempt)
	}
	return apperrors.Persistence("allocate case id",
		fmt.Errorf("no free id after %d attempts: %w", s.maxAttempts, repository.ErrDuplicateCaseID))
}
