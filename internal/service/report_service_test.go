package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

func TestCreateReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	state := env.lookups.StateID("Penang")

	report, err := env.reportSvc.CreateReport(ctx, adminActor, CreateReportInput{
		Title:           " Macau scam call ",
		Summary:         "Caller posed as a police officer",
		AmountLost:      amount(12000),
		StateID:         &state,
		CaseStatus:      models.CaseScam,
		ConfidenceScore: amount(0.9),
	})
	require.NoError(t, err)
	assert.Equal(t, "#1000", report.CaseID)
	assert.Equal(t, "Macau scam call", report.Title)
	assert.Equal(t, "2025-03-14", report.ReportDate.String())
	assert.Nil(t, report.SourcePendingID)
	require.NotNil(t, report.CreatedBy)
	assert.Equal(t, adminActor.UserID, *report.CreatedBy)

	second, err := env.reportSvc.CreateReport(ctx, adminActor, CreateReportInput{
		Title: "Second", Summary: "s", CaseStatus: models.CaseUnderReview,
	})
	require.NoError(t, err)
	assert.Equal(t, "#1001", second.CaseID)

	got, err := env.reportSvc.GetReport(ctx, "#1000")
	require.NoError(t, err)
	require.NotNil(t, got.StateName)
	assert.Equal(t, "Penang", *got.StateName)

	assert.Contains(t, env.audit.Actions(), "report.create")
}

func TestCreateReportValidation(t *testing.T) {
	bogus := 9999
	tests := []struct {
		name string
		in   CreateReportInput
	}{
		{"missing title", CreateReportInput{Summary: "s", CaseStatus: models.CaseScam}},
		{"missing summary", CreateReportInput{Title: "t", CaseStatus: models.CaseScam}},
		{"unknown status", CreateReportInput{Title: "t", Summary: "s", CaseStatus: "fraudulent"}},
		{"negative amount", CreateReportInput{Title: "t", Summary: "s", CaseStatus: models.CaseScam, AmountLost: amount(-1)}},
		{"confidence above one", CreateReportInput{Title: "t", Summary: "s", CaseStatus: models.CaseScam, ConfidenceScore: amount(1.5)}},
		{"unknown state", CreateReportInput{Title: "t", Summary: "s", CaseStatus: models.CaseScam, StateID: &bogus}},
		{"amount beyond column precision", CreateReportInput{Title: "t", Summary: "s", CaseStatus: models.CaseScam, AmountLost: amount(1e15)}},
		{"long title", CreateReportInput{Title: strings.Repeat("t", 256), Summary: "s", CaseStatus: models.CaseScam}},
		{"long summary", CreateReportInput{Title: "t", Summary: strings.Repeat("s", 10001), CaseStatus: models.CaseScam}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.reportSvc.CreateReport(context.Background(), adminActor, tt.in)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
			assert.Zero(t, env.reports.FraudCount())
		})
	}
}

func TestCreateReportRequiresEditPermission(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.reportSvc.CreateReport(context.Background(), analystActor, CreateReportInput{
		Title: "t", Summary: "s", CaseStatus: models.CaseScam,
	})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestGetReportNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.reportSvc.GetReport(context.Background(), "#4242")
	assert.True(t, apperrors.IsNotFound(err))
}
