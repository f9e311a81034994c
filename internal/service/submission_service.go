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
	"github.com/AhmedTrying/malaysiasafd/internal/caseid"
	"github.com/AhmedTrying/malaysiasafd/internal/classifier"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/pkg/validator"
)

// SubmitInput is a user's fraud report before classification
type SubmitInput struct {
	Summary    string  `json:"summary" validate:"required,max=10000"`
	AmountLost float64 `json:"amountLost" validate:"gte=0,lte=999999999999.99"`
	ScamType   string  `json:"scamType" validate:"required,max=100"`
	State      string  `json:"state" validate:"required,max=100"`
}

func (in *SubmitInput) validate() error {
	in.Summary = strings.TrimSpace(in.Summary)
	in.ScamType = strings.TrimSpace(in.ScamType)
	in.State = strings.TrimSpace(in.State)

	// amount bounds match NUMERIC(14,2) so the insert cannot overflow
	if err := validationError(validator.ValidateStruct(in)); err != nil {
		return err
	}
	if !isValidAmount(in.AmountLost) {
		return apperrors.Validation("amountLost", "must be a non-negative number")
	}
	return nil
}

func (in SubmitInput) request() classifier.Request {
	return classifier.Request{
		Summary:    in.Summary,
		AmountLost: in.AmountLost,
		ScamType:   in.ScamType,
		State:      in.State,
	}
}

// SubmissionService turns user reports into classified pending reports
type SubmissionService struct {
	classifier  Classifier
	lookups     *LookupService
	pendingRepo PendingReportStore
	allocator   caseid.Allocator
	maxAttempts int
	audit       *AuditService
	now         func() time.Time
}

// NewSubmissionService creates a new submission service. allocator mints
// pending case ids; a clash on insert is retried up to maxAttempts times.
func NewSubmissionService(
	classifier Classifier,
	lookups *LookupService,
	pendingRepo PendingReportStore,
	allocator caseid.Allocator,
	maxAttempts int,
	audit *AuditService,
) *SubmissionService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &SubmissionService{
		classifier:  classifier,
		lookups:     lookups,
		pendingRepo: pendingRepo,
		allocator:   allocator,
		maxAttempts: maxAttempts,
		audit:       audit,
		now:         time.Now,
	}
}

// Predict classifies a report without storing anything
func (s *SubmissionService) Predict(ctx context.Context, in SubmitInput) (*models.Prediction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.classifier.Classify(ctx, in.request())
}

// Submit classifies a report and stores it for review. A classification
// failure is returned unchanged and nothing is written.
func (s *SubmissionService) Submit(ctx context.Context, actor models.Actor, in SubmitInput) (*models.PendingReport, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	prediction, err := s.classifier.Classify(ctx, in.request())
	if err != nil {
		slog.Warn("Classification failed, submission aborted", "error", err)
		return nil, err
	}

	res, err := s.lookups.Resolve(ctx, in.ScamType, in.State)
	if err != nil {
		return nil, err
	}

	report := &models.PendingReport{
		ID:               uuid.New(),
		Summary:          in.Summary,
		AmountLost:       in.AmountLost,
		ScamTypeID:       res.ScamTypeID,
		StateID:          res.StateID,
		ScamTypeInput:    in.ScamType,
		StateInput:       in.State,
		LookupUnresolved: res.Unresolved,
		PredictedStatus:  prediction.Label,
		ConfidenceScore:  prediction.Confidence,
		RiskLevel:        prediction.RiskTier,
		Status:           models.StatusPending,
		SubmittedAt:      s.now().UTC(),
	}
	if actor.UserID != 0 {
		submitter := actor.UserID
		report.SubmittedBy = &submitter
	}
	if res.ScamTypeID != nil {
		report.ScamTypeName = &res.ScamTypeName
	}
	if res.StateID != nil {
		report.StateName = &res.StateName
	}

	if err := s.insertWithFreshID(ctx, report); err != nil {
		return nil, err
	}

	slog.Info("Report submitted",
		"case_id", report.CaseID,
		"prediction", report.PredictedStatus,
		"confidence", report.ConfidenceScore,
		"lookup_unresolved", report.LookupUnresolved,
		"user_id", actor.UserID,
	)
	s.audit.Log(ctx, actor, "report.submit", "pending_report", report.CaseID)

	return report, nil
}

func (s *SubmissionService) insertWithFreshID(ctx context.Context, report *models.PendingReport) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, err := s.allocator.Next(ctx)
		if err != nil {
			return apperrors.Persistence("allocate case id", err)
		}
		report.CaseID = id

		err = s.pendingRepo.Create(ctx, report)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateCaseID) {
			return apperrors.Persistence("create pending report", err)
		}
		slog.Warn("Pending case id collision, retrying", "case_id", id, "attempt", attempt)
	}
	return apperrors.Persistence("allocate case id",
		fmt.Errorf("no free id after %d attempts: %w", s.maxAttempts, repository.ErrDuplicateCaseID))
}
