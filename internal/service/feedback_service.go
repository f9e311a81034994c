package service

import (
	"context"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/pkg/validator"
)

// FeedbackInput is a rating left by a user
type FeedbackInput struct {
	FeedbackText string `json:"feedback_text" validate:"required,max=5000"`
	Rating       int    `json:"rating" validate:"gte=1,lte=5"`
}

// FeedbackService collects user feedback
type FeedbackService struct {
	feedbackRepo FeedbackStore
	authorizer   Authorizer
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(feedbackRepo FeedbackStore, authorizer Authorizer) *FeedbackService {
	return &FeedbackService{feedbackRepo: feedbackRepo, authorizer: authorizer}
}

// Submit appends a feedback entry
func (s *FeedbackService) Submit(ctx context.Context, actor models.Actor, in FeedbackInput) (*models.Feedback, error) {
	in.FeedbackText = validator.SanitizeString(in.FeedbackText)
	if err := validationError(validator.ValidateStruct(&in)); err != nil {
		return nil, err
	}

	fb := &models.Feedback{FeedbackText: in.FeedbackText, Rating: in.Rating}
	if actor.UserID != 0 {
		userID := actor.UserID
		fb.UserID = &userID
		if actor.Username != "" {
			username := actor.Username
			fb.Username = &username
		}
	}

	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, apperrors.Persistence("store feedback", err)
	}
	return fb, nil
}

// List returns all feedback, newest first
func (s *FeedbackService) List(ctx context.Context, actor models.Actor) ([]models.Feedback, error) {
	if err := s.authorizer.Authorize(actor, models.PermManageUsers); err != nil {
		return nil, err
	}
	entries, err := s.feedbackRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list feedback", err)
	}
	return entries, nil
}
