package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

// FeedbackRepository stores user feedback. Entries are never updated.
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create appends a feedback entry
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	query := `
		INSERT INTO feedback (user_id, feedback_text, rating, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	now := time.Now().UTC()
	if err := r.db.QueryRowContext(ctx, query, fb.UserID, fb.FeedbackText, fb.Rating, now).Scan(&fb.ID); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	fb.CreatedAt = now
	return nil
}

// List returns all feedback, newest first
func (r *FeedbackRepository) List(ctx context.Context) ([]models.Feedback, error) {
	query := `
		SELECT f.id, f.user_id, u.username, f.feedback_text, f.rating, f.created_at
		FROM feedback f
		LEFT JOIN users u ON u.id = f.user_id
		ORDER BY f.created_at DESC, f.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var entries []models.Feedback
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.Username, &fb.FeedbackText, &fb.Rating, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		entries = append(entries, fb)
	}

	return entries, rows.Err()
}
