package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/cache"
	"github.com/AhmedTrying/malaysiasafd/internal/caseid"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/internal/vault"
)

const (
	MessageApproved = "Report approved and added to dataset. It will now appear in Recent Reports."
	MessageRejected = "Report rejected and removed from pending queue."
)

// Decision is an admin verdict on a pending report
type Decision struct {
	CaseID string              `json:"caseId"`
	Action models.ReviewAction `json:"action"`
	Notes  string              `json:"adminNotes"`
}

// DecisionResult describes the outcome of a successful decision
type DecisionResult struct {
	Message         string              `json:"message"`
	CaseID          string              `json:"caseId"`
	Status          models.ReviewStatus `json:"status"`
	CanonicalCaseID string              `json:"canonicalCaseId,omitempty"`
}

// ReviewService moves pending reports through pending -> approved | rejected
type ReviewService struct {
	pendingRepo PendingReportStore
	authorizer  Authorizer
	allocator   caseid.Allocator
	sealer      vault.Sealer
	statsCache  cache.StatsCache
	audit       *AuditService
	maxAttempts int
	now         func() time.Time
}

// NewReviewService creates a new review service. allocator mints canonical
// case ids for approved reports.
func NewReviewService(
	pendingRepo PendingReportStore,
	authorizer Authorizer,
	allocator caseid.Allocator,
	sealer vault.Sealer,
	statsCache cache.StatsCache,
	audit *AuditService,
	maxAttempts int,
) *ReviewService {
	if sealer == nil {
		sealer = vault.PlainSealer{}
	}
	if statsCache == nil {
		statsCache = cache.Noop{}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ReviewService{
		pendingRepo: pendingRepo,
		authorizer:  authorizer,
		allocator:   allocator,
		sealer:      sealer,
		statsCache:  statsCache,
		audit:       audit,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// ListPending returns reports awaiting a decision, newest first
func (s *ReviewService) ListPending(ctx context.Context, actor models.Actor) ([]models.PendingReport, error) {
	if err := s.authorizer.Authorize(actor, models.PermReviewReports); err != nil {
		return nil, err
	}

	reports, err := s.pendingRepo.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, apperrors.Persistence("list pending reports", err)
	}
	return reports, nil
}

// Get returns a pending report in any status with its notes readable
func (s *ReviewService) Get(ctx context.Context, actor models.Actor, caseID string) (*models.PendingReport, error) {
	if err := s.authorizer.Authorize(actor, models.PermReviewReports); err != nil {
		return nil, err
	}

	report, err := s.pendingRepo.GetByCaseID(ctx, caseID)
	if errors.Is(err, repository.ErrPendingReportNotFound) {
		return nil, apperrors.NotFound("pending report", caseID)
	}
	if err != nil {
		return nil, apperrors.Persistence("get pending report", err)
	}

	notes, err := s.sealer.Open(ctx, report.AdminNotes)
	if err != nil {
		return nil, apperrors.Persistence("open review notes", err)
	}
	report.AdminNotes = notes
	return report, nil
}

// Decide applies an approve or reject decision. A report that is unknown or
// already decided yields a NotFoundError and nothing changes.
func (s *ReviewService) Decide(ctx context.Context, actor models.Actor, d Decision) (*DecisionResult, error) {
	if err := s.authorizer.Authorize(actor, models.PermReviewReports); err != nil {
		return nil, err
	}

	d.CaseID = strings.TrimSpace(d.CaseID)
	if d.CaseID == "" {
		return nil, apperrors.Validation("caseId", "is required")
	}
	if d.Action != models.ActionApprove && d.Action != models.ActionReject {
		return nil, apperrors.Validation("action", "must be 'approve' or 'reject'")
	}

	sealed, err := s.sealer.Seal(ctx, strings.TrimSpace(d.Notes))
	if err != nil {
		return nil, apperrors.Persistence("seal review notes", err)
	}
	review := repository.ReviewUpdate{
		ReviewerID: actor.UserID,
		Notes:      sealed,
		ReviewedAt: s.now().UTC(),
	}

	if d.Action == models.ActionReject {
		return s.reject(ctx, actor, d.CaseID, review)
	}
	return s.approve(ctx, actor, d.CaseID, review)
}

func (s *ReviewService) approve(ctx context.Context, actor models.Actor, caseID string, review repository.ReviewUpdate) (*DecisionResult, error) {
	var (
		report *models.FraudReport
		err    error
	)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		report, err = s.pendingRepo.Approve(ctx, caseID, review, s.promote(review.ReviewedAt))
		if !errors.Is(err, repository.ErrDuplicateCaseID) {
			break
		}
		slog.Warn("Canonical case id collision, retrying approval", "case_id", caseID, "attempt", attempt)
	}

	switch {
	case errors.Is(err, repository.ErrPendingReportNotFound):
		return nil, apperrors.NotFound("pending report", caseID)
	case errors.Is(err, repository.ErrDuplicateCaseID):
		return nil, apperrors.Persistence("allocate canonical case id",
			fmt.Errorf("no free id after %d attempts: %w", s.maxAttempts, err))
	case err != nil:
		return nil, apperrors.Persistence("approve report", err)
	}

	if err := s.statsCache.Invalidate(ctx); err != nil {
		slog.Error("Failed to invalidate stats cache", "error", err)
	}

	slog.Info("Report approved",
		"case_id", caseID,
		"canonical_case_id", report.CaseID,
		"reviewer_id", actor.UserID,
	)
	s.audit.Log(ctx, actor, "report.approve", "pending_report",
		fmt.Sprintf("case_id=%s canonical_case_id=%s", caseID, report.CaseID))

	return &DecisionResult{
		Message:         MessageApproved,
		CaseID:          caseID,
		Status:          models.StatusApproved,
		CanonicalCaseID: report.CaseID,
	}, nil
}

func (s *ReviewService) reject(ctx context.Context, actor models.Actor, caseID string, review repository.ReviewUpdate) (*DecisionResult, error) {
	err := s.pendingRepo.Reject(ctx, caseID, review)
	if errors.Is(err, repository.ErrPendingReportNotFound) {
		return nil, apperrors.NotFound("pending report", caseID)
	}
	if err != nil {
		return nil, apperrors.Persistence("reject report", err)
	}

	slog.Info("Report rejected", "case_id", caseID, "reviewer_id", actor.UserID)
	s.audit.Log(ctx, actor, "report.reject", "pending_report", "case_id="+caseID)

	return &DecisionResult{
		Message: MessageRejected,
		CaseID:  caseID,
		Status:  models.StatusRejected,
	}, nil
}

// promote builds the canonical copy of a locked pending report
func (s *ReviewService) promote(decidedAt time.Time) repository.PromoteFunc {
	return func(ctx context.Context, p *models.PendingReport) (*models.FraudReport, error) {
		caseID, err := s.allocator.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate canonical case id: %w", err)
		}

		amount := p.AmountLost
		confidence := p.ConfidenceScore
		source := p.ID

		return &models.FraudReport{
			ID:              uuid.New(),
			CaseID:          caseID,
			Title:           ReportTitle(p.ScamTypeName),
			Summary:         p.Summary,
			AmountLost:      &amount,
			ScamTypeID:      p.ScamTypeID,
			StateID:         p.StateID,
			CaseStatus:      p.PredictedStatus,
			ConfidenceScore: &confidence,
			ReportDate:      models.NewDate(decidedAt),
			CreatedBy:       p.SubmittedBy,
			SourcePendingID: &source,
			CreatedAt:       decidedAt,
			UpdatedAt:       decidedAt,
			ScamTypeName:    p.ScamTypeName,
			StateName:       p.StateName,
		}, nil
	}
}

// ReportTitle is the title given to reports promoted from user submissions
func ReportTitle(scamTypeName *string) string {
	name := "Unknown"
	if scamTypeName != nil && *scamTypeName != "" {
		name = *scamTypeName
	}
	return "User Report - " + name
}
