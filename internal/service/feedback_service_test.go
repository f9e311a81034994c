package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/testutil"
)

func TestFeedback(t *testing.T) {
	svc := NewFeedbackService(&testutil.MemoryFeedback{}, RoleAuthorizer{})
	ctx := context.Background()

	fb, err := svc.Submit(ctx, viewerActor, FeedbackInput{FeedbackText: " Very useful dashboard ", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "Very useful dashboard", fb.FeedbackText)
	require.NotNil(t, fb.UserID)
	assert.Equal(t, viewerActor.UserID, *fb.UserID)
	require.NotNil(t, fb.Username)
	assert.Equal(t, "viewer", *fb.Username)

	anon, err := svc.Submit(ctx, models.Actor{}, FeedbackInput{FeedbackText: "Anonymous note", Rating: 3})
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)

	entries, err := svc.List(ctx, adminActor)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Anonymous note", entries[0].FeedbackText)

	_, err = svc.List(ctx, analystActor)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestFeedbackValidation(t *testing.T) {
	svc := NewFeedbackService(&testutil.MemoryFeedback{}, RoleAuthorizer{})

	tests := []struct {
		name string
		in   FeedbackInput
	}{
		{"empty text", FeedbackInput{FeedbackText: "  ", Rating: 4}},
		{"rating too low", FeedbackInput{FeedbackText: "ok", Rating: 0}},
		{"rating too high", FeedbackInput{FeedbackText: "ok", Rating: 6}},
		{"text too long", FeedbackInput{FeedbackText: strings.Repeat("a", 5001), Rating: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), viewerActor, tt.in)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}
