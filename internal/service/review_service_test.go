package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

var canonicalIDPattern = regexp.MustCompile(`^#1\d{3}$`)

func TestApproveScenarioB(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.submit(t, scenarioInput())

	result, err := env.review.Decide(ctx, adminActor, Decision{
		CaseID: pending.CaseID,
		Action: models.ActionApprove,
		Notes:  "Verified with bank statement",
	})
	require.NoError(t, err)

	assert.Equal(t, MessageApproved, result.Message)
	assert.Equal(t, models.StatusApproved, result.Status)
	assert.Regexp(t, canonicalIDPattern, result.CanonicalCaseID)
	assert.Equal(t, "#1000", result.CanonicalCaseID)
	assert.NotEqual(t, pending.CaseID, result.CanonicalCaseID)

	report, err := env.reportSvc.GetReport(ctx, result.CanonicalCaseID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseScam, report.CaseStatus)
	require.NotNil(t, report.ConfidenceScore)
	assert.Equal(t, 0.95, *report.ConfidenceScore)
	require.NotNil(t, report.AmountLost)
	assert.Equal(t, 25000.0, *report.AmountLost)
	assert.Equal(t, "User Report - Investment Scam", report.Title)
	assert.Equal(t, "2025-03-14", report.ReportDate.String())
	require.NotNil(t, report.SourcePendingID)
	assert.Equal(t, pending.ID, *report.SourcePendingID)
	assert.Equal(t, pending.ScamTypeID, report.ScamTypeID)
	assert.Equal(t, pending.StateID, report.StateID)
	require.NotNil(t, report.CreatedBy)
	assert.Equal(t, analystActor.UserID, *report.CreatedBy)

	decided, err := env.review.Get(ctx, adminActor, pending.CaseID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, decided.Status)
	assert.Equal(t, "Verified with bank statement", decided.AdminNotes)
	require.NotNil(t, decided.ReviewedBy)
	assert.Equal(t, adminActor.UserID, *decided.ReviewedBy)
	require.NotNil(t, decided.ReviewedAt)
	assert.True(t, decided.ReviewedAt.Equal(fixedNow))

	assert.Contains(t, env.audit.Actions(), "report.approve")
}

func TestApproveTwiceYieldsOneReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.submit(t, scenarioInput())

	_, err := env.review.Decide(ctx, adminActor, Decision{CaseID: pending.CaseID, Action: models.ActionApprove})
	require.NoError(t, err)

	_, err = env.review.Decide(ctx, adminActor, Decision{CaseID: pending.CaseID, Action: models.ActionApprove})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = env.review.Decide(ctx, adminActor, Decision{CaseID: pending.CaseID, Action: models.ActionReject})
	assert.True(t, apperrors.IsNotFound(err))

	assert.Len(t, env.reports.Fraud.BySource(pending.ID), 1)
	assert.Equal(t, 1, env.reports.FraudCount())
}

func TestConcurrentApprovalsYieldOneReport(t *testing.T) {
	env := newTestEnv(t)
	pending := env.submit(t, scenarioInput())

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.review.Decide(context.Background(), adminActor,
				Decision{CaseID: pending.CaseID, Action: models.ActionApprove})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.IsNotFound(err):
				notFound++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, notFound)
	assert.Equal(t, 1, env.reports.FraudCount())
}

func TestRejectScenarioC(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.submit(t, scenarioInput())

	before, err := env.stats.Compute(ctx, models.StatsFilter{})
	require.NoError(t, err)

	result, err := env.review.Decide(ctx, adminActor, Decision{
		CaseID: pending.CaseID,
		Action: models.ActionReject,
		Notes:  "Duplicate of an earlier report",
	})
	require.NoError(t, err)
	assert.Equal(t, MessageRejected, result.Message)
	assert.Empty(t, result.CanonicalCaseID)

	decided, err := env.review.Get(ctx, adminActor, pending.CaseID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, decided.Status)
	assert.Zero(t, env.reports.FraudCount())

	after, err := env.stats.Compute(ctx, models.StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)

	pendingList, err := env.review.ListPending(ctx, adminActor)
	require.NoError(t, err)
	assert.Empty(t, pendingList)
}

func TestDecideValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.review.Decide(ctx, adminActor, Decision{CaseID: "", Action: models.ActionApprove})
	assert.True(t, apperrors.IsValidation(err))

	_, err = env.review.Decide(ctx, adminActor, Decision{CaseID: "#P2000", Action: "escalate"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = env.review.Decide(ctx, adminActor, Decision{CaseID: "#P9999", Action: models.ActionReject})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDecideRequiresReviewPermission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.submit(t, scenarioInput())

	for _, actor := range []models.Actor{analystActor, viewerActor} {
		_, err := env.review.Decide(ctx, actor, Decision{CaseID: pending.CaseID, Action: models.ActionApprove})
		assert.True(t, apperrors.IsUnauthorized(err), "role %s", actor.Role)

		_, err = env.review.ListPending(ctx, actor)
		assert.True(t, apperrors.IsUnauthorized(err))
	}

	stored, err := env.reports.Pending.GetByCaseID(ctx, pending.CaseID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestApproveInsertFailureKeepsReportPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.submit(t, scenarioInput())

	env.reports.FailFraudInsert = errors.New("disk full")
	_, err := env.review.Decide(ctx, adminActor, Decision{CaseID: pending.CaseID, Action: models.ActionApprove})
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))

	stored, err := env.reports.Pending.GetByCaseID(ctx, pending.CaseID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Zero(t, env.reports.FraudCount())

	env.reports.FailFraudInsert = nil
	_, err = env.review.Decide(ctx, adminActor, Decision{CaseID: pending.CaseID, Action: models.ActionApprove})
	assert.NoError(t, err)
}

func TestApproveRetriesOnCanonicalCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.reportSvc.CreateReport(ctx, adminActor, CreateReportInput{
		Title:      "Walk-in report",
		Summary:    "Reported at the counter",
		CaseStatus: models.CaseScam,
	})
	require.NoError(t, err)

	// The first id handed out is already taken
	env.review.allocator = &sequenceAllocator{ids: []string{"#1000", "#1001"}}
	pending := env.submit(t, scenarioInput())

	result, err := env.review.Decide(ctx, adminActor, Decision{CaseID: pending.CaseID, Action: models.ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, "#1001", result.CanonicalCaseID)
}

type sequenceAllocator struct {
	mu  sync.Mutex
	ids []string
}

func (s *sequenceAllocator) Next(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ids) == 0 {
		return "", errors.New("exhausted")
	}
	id := s.ids[0]
	s.ids = s.ids[1:]
	return id, nil
}

// reverseSealer marks and reverses text so tests can tell sealed values apart
type reverseSealer struct{}

func (reverseSealer) Seal(_ context.Context, s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return "vault:v1:" + reverse(s), nil
}

func (reverseSealer) Open(_ context.Context, s string) (string, error) {
	rest, ok := strings.CutPrefix(s, "vault:v1:")
	if !ok {
		return s, nil
	}
	return reverse(rest), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func TestReviewNotesAreSealedAtRest(t *testing.T) {
	env := newTestEnv(t)
	env.review.sealer = reverseSealer{}
	ctx := context.Background()
	pending := env.submit(t, scenarioInput())

	_, err := env.review.Decide(ctx, adminActor, Decision{
		CaseID: pending.CaseID, Action: models.ActionReject, Notes: "spam",
	})
	require.NoError(t, err)

	raw, err := env.reports.Pending.GetByCaseID(ctx, pending.CaseID)
	require.NoError(t, err)
	assert.Equal(t, "vault:v1:maps", raw.AdminNotes)

	opened, err := env.review.Get(ctx, adminActor, pending.CaseID)
	require.NoError(t, err)
	assert.Equal(t, "spam", opened.AdminNotes)
}

func TestApproveInvalidatesStatsCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.submit(t, scenarioInput())

	before, err := env.stats.Compute(ctx, models.StatsFilter{})
	require.NoError(t, err)
	assert.Zero(t, before.TotalReports)

	_, err = env.review.Decide(ctx, adminActor, Decision{CaseID: pending.CaseID, Action: models.ActionApprove})
	require.NoError(t, err)

	after, err := env.stats.Compute(ctx, models.StatsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, after.TotalReports)
	assert.Equal(t, 1, after.DetectedScams)
}

func TestReportTitle(t *testing.T) {
	name := "Love Scam"
	empty := ""
	assert.Equal(t, "User Report - Love Scam", ReportTitle(&name))
	assert.Equal(t, "User Report - Unknown", ReportTitle(nil))
	assert.Equal(t, "User Report - Unknown", ReportTitle(&empty))
}
