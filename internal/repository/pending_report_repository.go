package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

// ReviewUpdate carries the reviewer's side of a decision
type ReviewUpdate struct {
	ReviewerID uint
	Notes      string
	ReviewedAt time.Time
}

// PromoteFunc builds the canonical report for a pending report that is locked
// for approval. It runs inside the approval transaction.
type PromoteFunc func(ctx context.Context, pending *models.PendingReport) (*models.FraudReport, error)

// PendingReportRepository handles submissions awaiting review
type PendingReportRepository struct {
	db *sqlx.DB
}

// NewPendingReportRepository creates a new pending report repository
func NewPendingReportRepository(db *sql.DB) *PendingReportRepository {
	return &PendingReportRepository{db: sqlx.NewDb(db, "postgres")}
}

const pendingReportSelect = `
	SELECT p.id, p.case_id, p.summary, p.amount_lost, p.scam_type_id, p.state_id,
	       p.scam_type_input, p.state_input, p.lookup_unresolved, p.predicted_status,
	       p.confidence_score, p.risk_level, p.status, p.submitted_by, p.submitted_at,
	       p.reviewed_at, p.reviewed_by, p.admin_notes,
	       st.name AS scam_type_name, s.name AS state_name, u.username AS submitted_by_username
	FROM pending_reports p
	LEFT JOIN scam_types st ON st.id = p.scam_type_id
	LEFT JOIN states s ON s.id = p.state_id
	LEFT JOIN users u ON u.id = p.submitted_by`

// Create inserts a new pending report. A clash on case_id yields ErrDuplicateCaseID.
func (r *PendingReportRepository) Create(ctx context.Context, report *models.PendingReport) error {
	query := `
		INSERT INTO pending_reports (
			id, case_id, summary, amount_lost, scam_type_id, state_id, scam_type_input, state_input,
			lookup_unresolved, predicted_status, confidence_score, risk_level, status,
			submitted_by, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.CaseID,
		report.Summary,
		report.AmountLost,
		report.ScamTypeID,
		report.StateID,
		report.ScamTypeInput,
		report.StateInput,
		report.LookupUnresolved,
		report.PredictedStatus,
		report.ConfidenceScore,
		report.RiskLevel,
		report.Status,
		report.SubmittedBy,
		report.SubmittedAt,
	)
	if isUniqueViolation(err, constraintPendingCaseID) {
		return ErrDuplicateCaseID
	}
	if err != nil {
		return fmt.Errorf("failed to create pending report: %w", err)
	}
	return nil
}

// GetByCaseID retrieves a pending report in any status
func (r *PendingReportRepository) GetByCaseID(ctx context.Context, caseID string) (*models.PendingReport, error) {
	var report models.PendingReport
	err := r.db.GetContext(ctx, &report, pendingReportSelect+` WHERE p.case_id = $1`, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPendingReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending report: %w", err)
	}
	return &report, nil
}

// ListByStatus returns reports in a status, most recently submitted first
func (r *PendingReportRepository) ListByStatus(ctx context.Context, status models.ReviewStatus) ([]models.PendingReport, error) {
	var reports []models.PendingReport
	err := r.db.SelectContext(ctx, &reports,
		pendingReportSelect+` WHERE p.status = $1 ORDER BY p.submitted_at DESC, p.case_id DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reports: %w", err)
	}
	return reports, nil
}

// LatestCaseID returns the numerically highest pending case id, or ""
func (r *PendingReportRepository) LatestCaseID(ctx context.Context) (string, error) {
	return latestCaseID(ctx, r.db, "pending_reports")
}

// Approve promotes a pending report in a single transaction: the row is
// locked, the canonical report built by promote is inserted, and only then is
// the pending row flipped to approved. Any failure leaves both tables
// untouched. A report that is missing or no longer pending yields
// ErrPendingReportNotFound.
func (r *PendingReportRepository) Approve(ctx context.Context, caseID string, review ReviewUpdate, promote PromoteFunc) (*models.FraudReport, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback only if not committed
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	var pending models.PendingReport
	err = tx.GetContext(ctx, &pending,
		pendingReportSelect+` WHERE p.case_id = $1 AND p.status = $2 FOR UPDATE OF p`,
		caseID, models.StatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPendingReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock pending report: %w", err)
	}

	report, err := promote(ctx, &pending)
	if err != nil {
		return nil, err
	}

	if err := insertFraudReport(ctx, tx, report); err != nil {
		return nil, err
	}

	if err := markReviewed(ctx, tx, pending.ID, models.StatusApproved, review); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	return report, nil
}

// Reject marks a pending report rejected. A report that is missing or no
// longer pending yields ErrPendingReportNotFound.
func (r *PendingReportRepository) Reject(ctx context.Context, caseID string, review ReviewUpdate) error {
	query := `
		UPDATE pending_reports
		SET status = $1, reviewed_at = $2, reviewed_by = $3, admin_notes = $4
		WHERE case_id = $5 AND status = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		models.StatusRejected, review.ReviewedAt, review.ReviewerID, review.Notes, caseID, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to reject pending report: %w", err)
	}
	return expectOneRow(result, ErrPendingReportNotFound)
}

func markReviewed(ctx context.Context, exec sqlx.ExecerContext, id uuid.UUID, status models.ReviewStatus, review ReviewUpdate) error {
	query := `
		UPDATE pending_reports
		SET status = $1, reviewed_at = $2, reviewed_by = $3, admin_notes = $4
		WHERE id = $5 AND status = $6
	`
	result, err := exec.ExecContext(ctx, query,
		status, review.ReviewedAt, review.ReviewerID, review.Notes, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update pending report status: %w", err)
	}
	return expectOneRow(result, ErrPendingReportNotFound)
}
