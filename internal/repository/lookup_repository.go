package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

// LookupRepository reads and maintains the scam type and state catalogs
type LookupRepository struct {
	db *sqlx.DB
}

// NewLookupRepository creates a new lookup repository
func NewLookupRepository(db *sql.DB) *LookupRepository {
	return &LookupRepository{db: sqlx.NewDb(db, "postgres")}
}

// ListScamTypes returns all scam types ordered by name
func (r *LookupRepository) ListScamTypes(ctx context.Context) ([]models.ScamType, error) {
	var types []models.ScamType
	err := r.db.SelectContext(ctx, &types,
		`SELECT id, name, description, created_at FROM scam_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scam types: %w", err)
	}
	return types, nil
}

// ListStates returns all states ordered by name
func (r *LookupRepository) ListStates(ctx context.Context) ([]models.State, error) {
	var states []models.State
	if err := r.db.SelectContext(ctx, &states, `SELECT id, name, code FROM states ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	return states, nil
}

// GetScamType retrieves a scam type by id
func (r *LookupRepository) GetScamType(ctx context.Context, id int) (*models.ScamType, error) {
	var st models.ScamType
	err := r.db.GetContext(ctx, &st, `SELECT id, name, description, created_at FROM scam_types WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLookupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scam type: %w", err)
	}
	return &st, nil
}

// FindScamTypeByName resolves a scam type by exact, case-insensitive name
func (r *LookupRepository) FindScamTypeByName(ctx context.Context, name string) (*models.ScamType, error) {
	var st models.ScamType
	err := r.db.GetContext(ctx, &st,
		`SELECT id, name, description, created_at FROM scam_types WHERE LOWER(name) = LOWER($1)`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLookupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scam type: %w", err)
	}
	return &st, nil
}

// FindStateByName resolves a state by exact, case-insensitive name or code
func (r *LookupRepository) FindStateByName(ctx context.Context, name string) (*models.State, error) {
	var s models.State
	err := r.db.GetContext(ctx, &s,
		`SELECT id, name, code FROM states WHERE LOWER(name) = LOWER($1) OR LOWER(code) = LOWER($1)
		 ORDER BY (LOWER(name) = LOWER($1)) DESC LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLookupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find state: %w", err)
	}
	return &s, nil
}

// CreateScamType adds a scam type
func (r *LookupRepository) CreateScamType(ctx context.Context, st *models.ScamType) error {
	now := time.Now().UTC()
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO scam_types (name, description, created_at) VALUES ($1, $2, $3) RETURNING id`,
		st.Name, st.Description, now,
	).Scan(&st.ID)
	if isUniqueViolation(err, constraintScamTypeName) {
		return ErrLookupExists
	}
	if err != nil {
		return fmt.Errorf("failed to create scam type: %w", err)
	}
	st.CreatedAt = now
	return nil
}

// UpdateScamType renames or re-describes a scam type
func (r *LookupRepository) UpdateScamType(ctx context.Context, st *models.ScamType) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE scam_types SET name = $1, description = $2 WHERE id = $3`,
		st.Name, st.Description, st.ID)
	if isUniqueViolation(err, constraintScamTypeName) {
		return ErrLookupExists
	}
	if err != nil {
		return fmt.Errorf("failed to update scam type: %w", err)
	}
	return expectOneRow(result, ErrLookupNotFound)
}

// DeleteScamType removes a scam type that no report references
func (r *LookupRepository) DeleteScamType(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scam_types WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return ErrLookupInUse
	}
	if err != nil {
		return fmt.Errorf("failed to delete scam type: %w", err)
	}
	return expectOneRow(result, ErrLookupNotFound)
}
