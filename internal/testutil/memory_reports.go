package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
)

// MemoryReports holds pending and canonical reports behind one lock so the
// approval path can be atomic, like the database transaction it stands in for.
type MemoryReports struct {
	mu        sync.Mutex
	approveMu sync.Mutex
	lookups   *MemoryLookups
	pending   map[string]*models.PendingReport
	fraud     []models.FraudReport

	// FailFraudInsert, when set, is returned by every canonical insert
	FailFraudInsert error

	Pending *MemoryPendingReports
	Fraud   *MemoryFraudReports
}

// MemoryPendingReports is the pending report view of a MemoryReports
type MemoryPendingReports struct{ r *MemoryReports }

// MemoryFraudReports is the canonical report view of a MemoryReports
type MemoryFraudReports struct{ r *MemoryReports }

// NewMemoryReports creates empty report stores resolving names from lookups
func NewMemoryReports(lookups *MemoryLookups) *MemoryReports {
	r := &MemoryReports{
		lookups: lookups,
		pending: make(map[string]*models.PendingReport),
	}
	r.Pending = &MemoryPendingReports{r: r}
	r.Fraud = &MemoryFraudReports{r: r}
	lookups.mu.Lock()
	lookups.inUse = r.scamTypeInUse
	lookups.mu.Unlock()
	return r
}

// PendingCount returns the number of pending reports in any status
func (r *MemoryReports) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// FraudCount returns the number of canonical reports
func (r *MemoryReports) FraudCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fraud)
}

func (r *MemoryReports) scamTypeInUse(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pending {
		if p.ScamTypeID != nil && *p.ScamTypeID == id {
			return true
		}
	}
	for _, f := range r.fraud {
		if f.ScamTypeID != nil && *f.ScamTypeID == id {
			return true
		}
	}
	return false
}

func (r *MemoryReports) pendingView(p models.PendingReport) models.PendingReport {
	p.ScamTypeName = r.lookups.scamTypeName(p.ScamTypeID)
	p.StateName = r.lookups.stateName(p.StateID)
	return p
}

func (r *MemoryReports) fraudView(f models.FraudReport) models.FraudReport {
	f.ScamTypeName = r.lookups.scamTypeName(f.ScamTypeID)
	f.StateName = r.lookups.stateName(f.StateID)
	return f
}

func (r *MemoryReports) insertFraudLocked(report models.FraudReport) error {
	if r.FailFraudInsert != nil {
		return r.FailFraudInsert
	}
	for _, f := range r.fraud {
		if f.CaseID == report.CaseID {
			return repository.ErrDuplicateCaseID
		}
		if report.SourcePendingID != nil && f.SourcePendingID != nil && *f.SourcePendingID == *report.SourcePendingID {
			return repository.ErrPendingReportNotFound
		}
	}
	if !r.lookups.exists(report.ScamTypeID, report.StateID) {
		return repository.ErrLookupNotFound
	}
	report.ScamTypeName = nil
	report.StateName = nil
	r.fraud = append(r.fraud, report)
	return nil
}

func latest(ids []string) string {
	var best string
	for _, id := range ids {
		if len(id) > len(best) || (len(id) == len(best) && id > best) {
			best = id
		}
	}
	return best
}

func (p *MemoryPendingReports) Create(_ context.Context, report *models.PendingReport) error {
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pending[report.CaseID]; exists {
		return repository.ErrDuplicateCaseID
	}
	stored := *report
	stored.ScamTypeName, stored.StateName, stored.SubmitterName = nil, nil, nil
	r.pending[report.CaseID] = &stored
	return nil
}

func (p *MemoryPendingReports) GetByCaseID(_ context.Context, caseID string) (*models.PendingReport, error) {
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.pending[caseID]
	if !ok {
		return nil, repository.ErrPendingReportNotFound
	}
	out := r.pendingView(*stored)
	return &out, nil
}

func (p *MemoryPendingReports) ListByStatus(_ context.Context, status models.ReviewStatus) ([]models.PendingReport, error) {
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.PendingReport
	for _, stored := range r.pending {
		if stored.Status == status {
			out = append(out, r.pendingView(*stored))
		}
	}
	slices.SortFunc(out, func(a, b models.PendingReport) int {
		if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
			return c
		}
		return strings.Compare(b.CaseID, a.CaseID)
	})
	return out, nil
}

// LatestCaseID returns the numerically highest pending case id, or ""
func (p *MemoryPendingReports) LatestCaseID(_ context.Context) (string, error) {
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.pending))
	for id := range r.pending {
		ids = append(ids, id)
	}
	return latest(ids), nil
}

func (p *MemoryPendingReports) Approve(ctx context.Context, caseID string, review repository.ReviewUpdate, promote repository.PromoteFunc) (*models.FraudReport, error) {
	r := p.r
	// Serialises approvals the way the row lock does
	r.approveMu.Lock()
	defer r.approveMu.Unlock()

	r.mu.Lock()
	stored, ok := r.pending[caseID]
	if !ok || stored.Status != models.StatusPending {
		r.mu.Unlock()
		return nil, repository.ErrPendingReportNotFound
	}
	locked := r.pendingView(*stored)
	r.mu.Unlock()

	report, err := promote(ctx, &locked)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored.Status != models.StatusPending {
		return nil, repository.ErrPendingReportNotFound
	}
	if err := r.insertFraudLocked(*report); err != nil {
		return nil, err
	}
	markReviewed(stored, models.StatusApproved, review)
	return report, nil
}

func (p *MemoryPendingReports) Reject(_ context.Context, caseID string, review repository.ReviewUpdate) error {
	r := p.r
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.pending[caseID]
	if !ok || stored.Status != models.StatusPending {
		return repository.ErrPendingReportNotFound
	}
	markReviewed(stored, models.StatusRejected, review)
	return nil
}

func markReviewed(p *models.PendingReport, status models.ReviewStatus, review repository.ReviewUpdate) {
	reviewedAt := review.ReviewedAt
	reviewer := review.ReviewerID
	p.Status = status
	p.ReviewedAt = &reviewedAt
	p.ReviewedBy = &reviewer
	p.AdminNotes = review.Notes
}

func (f *MemoryFraudReports) Create(_ context.Context, report *models.FraudReport) error {
	r := f.r
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertFraudLocked(*report)
}

func (f *MemoryFraudReports) GetByCaseID(_ context.Context, caseID string) (*models.FraudReport, error) {
	r := f.r
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, report := range r.fraud {
		if report.CaseID == caseID {
			out := r.fraudView(report)
			return &out, nil
		}
	}
	return nil, repository.ErrFraudReportNotFound
}

// BySource returns the canonical report promoted from a pending report
func (f *MemoryFraudReports) BySource(id uuid.UUID) []models.FraudReport {
	r := f.r
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.FraudReport
	for _, report := range r.fraud {
		if report.SourcePendingID != nil && *report.SourcePendingID == id {
			out = append(out, report)
		}
	}
	return out
}

func (f *MemoryFraudReports) ListRecent(_ context.Context, limit int) ([]models.FraudReport, error) {
	r := f.r
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.FraudReport, 0, len(r.fraud))
	for _, report := range r.fraud {
		out = append(out, r.fraudView(report))
	}
	slices.SortStableFunc(out, func(a, b models.FraudReport) int {
		if c := b.ReportDate.Compare(a.ReportDate.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *MemoryFraudReports) StatsRows(_ context.Context, filter models.StatsFilter) ([]models.StatsRow, error) {
	r := f.r
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []models.StatsRow
	for _, report := range r.fraud {
		if filter.StartDate != nil && report.ReportDate.Before(filter.StartDate.Time) {
			continue
		}
		if filter.EndDate != nil && report.ReportDate.After(filter.EndDate.Time) {
			continue
		}
		if filter.StateID != nil && (report.StateID == nil || *report.StateID != *filter.StateID) {
			continue
		}
		if filter.ScamTypeID != nil && (report.ScamTypeID == nil || *report.ScamTypeID != *filter.ScamTypeID) {
			continue
		}
		rows = append(rows, models.StatsRow{
			CaseStatus: report.CaseStatus,
			AmountLost: report.AmountLost,
			StateID:    report.StateID,
		})
	}
	return rows, nil
}

// LatestCaseID returns the numerically highest canonical case id, or ""
func (f *MemoryFraudReports) LatestCaseID(_ context.Context) (string, error) {
	r := f.r
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.fraud))
	for _, report := range r.fraud {
		ids = append(ids, report.CaseID)
	}
	return latest(ids), nil
}
