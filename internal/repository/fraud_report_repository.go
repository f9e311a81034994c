package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

// FraudReportRepository handles the canonical report table. All statistics
// are computed from it.
type FraudReportRepository struct {
	db *sqlx.DB
}

// NewFraudReportRepository creates a new fraud report repository
func NewFraudReportRepository(db *sql.DB) *FraudReportRepository {
	return &FraudReportRepository{db: sqlx.NewDb(db, "postgres")}
}

const fraudReportSelect = `
	SELECT f.id, f.case_id, f.title, f.summary, f.amount_lost, f.scam_type_id, f.state_id,
	       f.case_status, f.confidence_score, f.report_date, f.created_by, f.source_pending_id,
	       f.created_at, f.updated_at,
	       st.name AS scam_type_name, s.name AS state_name
	FROM fraud_reports f
	LEFT JOIN scam_types st ON st.id = f.scam_type_id
	LEFT JOIN states s ON s.id = f.state_id`

// Create inserts a canonical report
func (r *FraudReportRepository) Create(ctx context.Context, report *models.FraudReport) error {
	return insertFraudReport(ctx, r.db, report)
}

// insertFraudReport is shared with the approval transaction
func insertFraudReport(ctx context.Context, exec sqlx.ExecerContext, report *models.FraudReport) error {
	query := `
		INSERT INTO fraud_reports (
			id, case_id, title, summary, amount_lost, scam_type_id, state_id, case_status,
			confidence_score, report_date, created_by, source_pending_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := exec.ExecContext(ctx, query,
		report.ID,
		report.CaseID,
		report.Title,
		report.Summary,
		report.AmountLost,
		report.ScamTypeID,
		report.StateID,
		report.CaseStatus,
		report.ConfidenceScore,
		report.ReportDate,
		report.CreatedBy,
		report.SourcePendingID,
		report.CreatedAt,
		report.UpdatedAt,
	)

	switch {
	case isUniqueViolation(err, constraintFraudCaseID):
		return ErrDuplicateCaseID
	case isUniqueViolation(err, constraintFraudSourceOnce):
		return ErrPendingReportNotFound
	case isForeignKeyViolation(err):
		return ErrLookupNotFound
	case err != nil:
		return fmt.Errorf("failed to create fraud report: %w", err)
	}
	return nil
}

// GetByCaseID retrieves a canonical report by its case id
func (r *FraudReportRepository) GetByCaseID(ctx context.Context, caseID string) (*models.FraudReport, error) {
	var report models.FraudReport
	err := r.db.GetContext(ctx, &report, fraudReportSelect+` WHERE f.case_id = $1`, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFraudReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fraud report: %w", err)
	}
	return &report, nil
}

// ListRecent returns the newest reports by report date, then creation time
func (r *FraudReportRepository) ListRecent(ctx context.Context, limit int) ([]models.FraudReport, error) {
	var reports []models.FraudReport
	err := r.db.SelectContext(ctx, &reports,
		fraudReportSelect+` ORDER BY f.report_date DESC, f.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent reports: %w", err)
	}
	return reports, nil
}

// StatsRows returns the aggregation projection of every report matching filter
func (r *FraudReportRepository) StatsRows(ctx context.Context, filter models.StatsFilter) ([]models.StatsRow, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.StartDate != nil {
		add("report_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("report_date <= $%d", *filter.EndDate)
	}
	if filter.StateID != nil {
		add("state_id = $%d", *filter.StateID)
	}
	if filter.ScamTypeID != nil {
		add("scam_type_id = $%d", *filter.ScamTypeID)
	}

	query := `SELECT case_status, amount_lost, state_id FROM fraud_reports`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}

	var rows []models.StatsRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load stats rows: %w", err)
	}
	return rows, nil
}

// LatestCaseID returns the numerically highest canonical case id, or ""
func (r *FraudReportRepository) LatestCaseID(ctx context.Context) (string, error) {
	return latestCaseID(ctx, r.db, "fraud_reports")
}

func latestCaseID(ctx context.Context, db *sqlx.DB, table string) (string, error) {
	var caseID string
	// table is one of two constants, never user input
	err := db.GetContext(ctx, &caseID,
		`SELECT case_id FROM `+table+` ORDER BY LENGTH(case_id) DESC, case_id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read latest case id: %w", err)
	}
	return caseID, nil
}
