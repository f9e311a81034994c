package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/internal/auth"
	"github.com/AhmedTrying/malaysiasafd/internal/cache"
	"github.com/AhmedTrying/malaysiasafd/internal/caseid"
	"github.com/AhmedTrying/malaysiasafd/internal/config"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/testutil"
)

var (
	adminActor   = models.Actor{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	analystActor = models.Actor{UserID: 2, Username: "analyst", Role: models.RoleAnalyst}
	viewerActor  = models.Actor{UserID: 3, Username: "viewer", Role: models.RoleViewer}
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	lookups    *testutil.MemoryLookups
	reports    *testutil.MemoryReports
	users      *testutil.MemoryUsers
	audit      *testutil.MemoryAudit
	classifier *testutil.StubClassifier
	cache      *cache.Memory

	auditSvc   *AuditService
	lookupSvc  *LookupService
	submission *SubmissionService
	review     *ReviewService
	reportSvc  *ReportService
	stats      *StatsService
	userSvc    *UserService
	authSvc    *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		lookups:    testutil.NewMemoryLookups(),
		users:      testutil.NewMemoryUsers(),
		audit:      &testutil.MemoryAudit{},
		classifier: testutil.NewStubClassifier(models.CaseScam, 0.95),
		cache:      cache.NewMemory(time.Minute),
	}
	env.reports = testutil.NewMemoryReports(env.lookups)

	env.auditSvc = NewAuditService(env.audit)
	env.lookupSvc = NewLookupService(env.lookups, env.auditSvc)
	env.submission = NewSubmissionService(env.classifier, env.lookupSvc, env.reports.Pending,
		caseid.NewLatestAllocator(caseid.Pending, env.reports.Pending.LatestCaseID), 5, env.auditSvc)
	env.submission.now = func() time.Time { return fixedNow }

	env.review = NewReviewService(env.reports.Pending, RoleAuthorizer{},
		caseid.NewLatestAllocator(caseid.Canonical, env.reports.Fraud.LatestCaseID),
		nil, env.cache, env.auditSvc, 5)
	env.review.now = func() time.Time { return fixedNow }

	env.reportSvc = NewReportService(env.reports.Fraud, RoleAuthorizer{},
		caseid.NewLatestAllocator(caseid.Canonical, env.reports.Fraud.LatestCaseID),
		env.cache, env.auditSvc, 5)
	env.reportSvc.now = func() time.Time { return fixedNow }

	env.stats = NewStatsService(env.reports.Fraud, env.cache)

	authSvc := auth.NewService(&config.JWTConfig{Secret: "test-secret", Expiration: time.Hour})
	env.userSvc = NewUserService(env.users, authSvc, env.auditSvc)
	env.authSvc = NewAuthService(env.users, env.userSvc, authSvc, true)

	return env
}

func (env *testEnv) submit(t *testing.T, in SubmitInput) *models.PendingReport {
	t.Helper()
	report, err := env.submission.Submit(context.Background(), analystActor, in)
	require.NoError(t, err)
	return report
}

func scenarioInput() SubmitInput {
	return SubmitInput{
		Summary:    "Fake investment",
		AmountLost: 25000,
		ScamType:   "Investment Scam",
		State:      "Selangor",
	}
}
