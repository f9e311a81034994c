package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the lifecycle state of a pending report
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
)

// CaseStatus is the classification outcome stored with a report
type CaseStatus string

const (
	CaseScam        CaseStatus = "scam"
	CaseLegitimate  CaseStatus = "legitimate"
	CaseUnderReview CaseStatus = "under_review"
)

// Valid reports whether s is a known case status
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseScam, CaseLegitimate, CaseUnderReview:
		return true
	}
	return false
}

// RiskTier is the coarse risk bucket derived from classifier confidence
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// Prediction is the classifier verdict for a report
type Prediction struct {
	Label      CaseStatus `json:"prediction"`
	Confidence float64    `json:"confidence"`
	RiskTier   RiskTier   `json:"risk_level"`
}

// ReviewAction is an admin decision on a pending report
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// PendingReport is a user-submitted case awaiting review
type PendingReport struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	CaseID           string       `json:"case_id" db:"case_id"`
	Summary          string       `json:"summary" db:"summary"`
	AmountLost       float64      `json:"amount_lost" db:"amount_lost"`
	ScamTypeID       *int         `json:"scam_type_id" db:"scam_type_id"`
	StateID          *int         `json:"state_id" db:"state_id"`
	ScamTypeInput    string       `json:"scam_type_input" db:"scam_type_input"`
	StateInput       string       `json:"state_input" db:"state_input"`
	LookupUnresolved bool         `json:"lookup_unresolved" db:"lookup_unresolved"`
	PredictedStatus  CaseStatus   `json:"predicted_status" db:"predicted_status"`
	ConfidenceScore  float64      `json:"confidence_score" db:"confidence_score"`
	RiskLevel        RiskTier     `json:"risk_level" db:"risk_level"`
	Status           ReviewStatus `json:"status" db:"status"`
	SubmittedBy      *uint        `json:"submitted_by" db:"submitted_by"`
	SubmittedAt      time.Time    `json:"submitted_at" db:"submitted_at"`
	ReviewedAt       *time.Time   `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy       *uint        `json:"reviewed_by,omitempty" db:"reviewed_by"`
	AdminNotes       string       `json:"admin_notes,omitempty" db:"admin_notes"`

	// Joined display fields, not stored on the row
	ScamTypeName  *string `json:"scam_type_name" db:"scam_type_name"`
	StateName     *string `json:"state_name" db:"state_name"`
	SubmitterName *string `json:"submitted_by_username,omitempty" db:"submitted_by_username"`
}

// FraudReport is a canonical, reviewed case that feeds the statistics
type FraudReport struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	CaseID          string     `json:"case_id" db:"case_id"`
	Title           string     `json:"title" db:"title"`
	Summary         string     `json:"summary" db:"summary"`
	AmountLost      *float64   `json:"amount_lost" db:"amount_lost"`
	ScamTypeID      *int       `json:"scam_type_id" db:"scam_type_id"`
	StateID         *int       `json:"state_id" db:"state_id"`
	CaseStatus      CaseStatus `json:"case_status" db:"case_status"`
	ConfidenceScore *float64   `json:"confidence_score" db:"confidence_score"`
	ReportDate      Date       `json:"report_date" db:"report_date"`
	CreatedBy       *uint      `json:"created_by" db:"created_by"`
	SourcePendingID *uuid.UUID `json:"source_pending_id,omitempty" db:"source_pending_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`

	ScamTypeName *string `json:"scam_type_name,omitempty" db:"scam_type_name"`
	StateName    *string `json:"state_name,omitempty" db:"state_name"`
}

// DateLayout is the wire and storage format of a Date
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day or zone
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD"
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// StatsFilter narrows the canonical report set for aggregation. Nil fields
// mean "no filter".
type StatsFilter struct {
	StartDate  *Date
	EndDate    *Date
	StateID    *int
	ScamTypeID *int
}

// Key returns a stable representation usable as a cache key
func (f StatsFilter) Key() string {
	part := func(p *int) string {
		if p == nil {
			return "all"
		}
		return fmt.Sprint(*p)
	}
	date := func(d *Date) string {
		if d == nil {
			return "any"
		}
		return d.String()
	}
	return fmt.Sprintf("from=%s:to=%s:state=%s:type=%s",
		date(f.StartDate), date(f.EndDate), part(f.StateID), part(f.ScamTypeID))
}

// StatsRow is the projection of a canonical report needed for aggregation
type StatsRow struct {
	CaseStatus CaseStatus `db:"case_status"`
	AmountLost *float64   `db:"amount_lost"`
	StateID    *int       `db:"state_id"`
}

// DashboardStats is the aggregate view over the filtered canonical reports
type DashboardStats struct {
	TotalReports    int     `json:"totalReports"`
	DetectedScams   int     `json:"detectedScams"`
	LegitimateCases int     `json:"legitimateCases"`
	UnderReview     int     `json:"underReview"`
	DetectionRate   float64 `json:"detectionRate"`
	FinancialLoss   float64 `json:"financialLoss"`
	AverageLoss     float64 `json:"averageLoss"`
	MedianLoss      float64 `json:"medianLoss"`
	ActiveCases     int     `json:"activeCases"`
	HighRiskAreas   int     `json:"highRiskAreas"`
}
