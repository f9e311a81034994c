package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already exists")
	ErrPendingReportNotFound = errors.New("pending report not found")
	ErrFraudReportNotFound   = errors.New("fraud report not found")
	ErrLookupNotFound        = errors.New("lookup value not found")
	ErrLookupExists          = errors.New("lookup value already exists")
	ErrLookupInUse           = errors.New("lookup value is referenced by reports")
	ErrDuplicateCaseID       = errors.New("case id already exists")
)

// PostgreSQL error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Constraint names as created by the migrations
const (
	constraintUsername        = "idx_users_username"
	constraintScamTypeName    = "idx_scam_types_name"
	constraintPendingCaseID   = "pending_reports_case_id_key"
	constraintFraudCaseID     = "fraud_reports_case_id_key"
	constraintFraudSourceOnce = "fraud_reports_source_pending_id_key"
)

// pqError unwraps a *pq.Error with the given code
func pqError(err error, code string) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == code {
		return pqErr, true
	}
	return nil, false
}

// isUniqueViolation reports whether err violates the named unique constraint.
// An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := pqError(err, pqUniqueViolation)
	return ok && (constraint == "" || pqErr.Constraint == constraint)
}

func isForeignKeyViolation(err error) bool {
	_, ok := pqError(err, pqForeignKeyViolation)
	return ok
}
