package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/cache"
	"github.com/AhmedTrying/malaysiasafd/internal/caseid"
	"github.com/AhmedTrying/malaysiasafd/internal/middleware"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/internal/service"
	"github.com/AhmedTrying/malaysiasafd/internal/testutil"
)

const testPassword = "correct-horse"

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck() error { return f.err }

type handlerEnv struct {
	mux        *http.ServeMux
	auth       *testutil.AuthHelper
	users      *testutil.MemoryUsers
	reports    *testutil.MemoryReports
	audit      *testutil.MemoryAudit
	classifier *testutil.StubClassifier

	admin   *models.User
	analyst *models.User
	viewer  *models.User
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	env := &handlerEnv{
		auth:       testutil.NewAuthHelper(),
		users:      testutil.NewMemoryUsers(),
		audit:      &testutil.MemoryAudit{},
		classifier: testutil.NewStubClassifier(models.CaseScam, 0.95),
	}
	lookups := testutil.NewMemoryLookups()
	env.reports = testutil.NewMemoryReports(lookups)
	statsCache := cache.NewMemory(time.Minute)
	authorizer := service.RoleAuthorizer{}

	auditSvc := service.NewAuditService(env.audit)
	lookupSvc := service.NewLookupService(lookups, auditSvc)
	userSvc := service.NewUserService(env.users, env.auth.Service, auditSvc)
	authSvc := service.NewAuthService(env.users, userSvc, env.auth.Service, true)
	statsSvc := service.NewStatsService(env.reports.Fraud, statsCache)
	canonicalIDs := caseid.NewLatestAllocator(caseid.Canonical, env.reports.Fraud.LatestCaseID)

	submissionSvc := service.NewSubmissionService(env.classifier, lookupSvc, env.reports.Pending,
		caseid.NewLatestAllocator(caseid.Pending, env.reports.Pending.LatestCaseID), 5, auditSvc)
	reviewSvc := service.NewReviewService(env.reports.Pending, authorizer, canonicalIDs, nil, statsCache, auditSvc, 5)
	reportSvc := service.NewReportService(env.reports.Fraud, authorizer, canonicalIDs, statsCache, auditSvc, 5)
	feedbackSvc := service.NewFeedbackService(&testutil.MemoryFeedback{}, authorizer)

	routes := &Routes{
		Auth:      NewAuthHandler(authSvc, userSvc),
		Users:     NewUserHandler(userSvc),
		Audit:     NewAuditHandler(auditSvc),
		Lookup:    NewLookupHandler(lookupSvc),
		Reports:   NewReportHandler(submissionSvc, reportSvc, statsSvc),
		Review:    NewReviewHandler(reviewSvc),
		Dashboard: NewDashboardHandler(statsSvc),
		Feedback:  NewFeedbackHandler(feedbackSvc),
		Health:    NewHealthHandler(fakeDB{}, nil, "test"),
		AuthMw:    middleware.NewAuthMiddleware(env.auth.Service, env.users),
		RBACMw:    middleware.NewRBACMiddleware(authorizer),
		AuditMw:   middleware.NewAuditMiddleware(auditSvc),
	}
	env.mux = http.NewServeMux()
	routes.Register(env.mux)

	env.admin = env.createUser(t, "admin", models.RoleAdmin)
	env.analyst = env.createUser(t, "analyst", models.RoleAnalyst)
	env.viewer = env.createUser(t, "viewer", models.RoleViewer)
	return env
}

func (env *handlerEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	hash, err := env.auth.Service.HashPassword(testPassword)
	require.NoError(t, err)

	user := &models.User{Username: username, PasswordHash: hash, Role: role, IsActive: true}
	require.NoError(t, env.users.Create(context.Background(), user))
	return user
}

// do sends a request through the full route table. user may be nil for an
// anonymous request.
func (env *handlerEnv) do(t *testing.T, method, path string, body any, user *models.User) *testutil.TestResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	var req *http.Request
	if user != nil {
		req = env.auth.CreateAuthenticatedRequest(t, method, path, reader, user)
	} else {
		req = httptest.NewRequest(method, path, reader)
		if reader != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}

	resp := testutil.NewTestResponse()
	env.mux.ServeHTTP(resp, req)
	return resp
}

func submitBody() map[string]any {
	return map[string]any{
		"summary":    "Fake investment",
		"amountLost": 25000,
		"scamType":   "Investment Scam",
		"state":      "Selangor",
	}
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/reports/pending", submitBody(), env.analyst)
	resp.AssertStatusCreated(t)
	var submitted SubmitResponse
	resp.DecodeJSON(t, &submitted)
	assert.Equal(t, MessageSubmitted, submitted.Message)
	assert.Equal(t, "#P2000", submitted.Report.CaseID)
	assert.Equal(t, models.StatusPending, submitted.Report.Status)
	assert.Equal(t, models.RiskHigh, submitted.Report.RiskLevel)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/reports/pending", nil, env.admin)
	resp.AssertStatusOK(t)
	var pending []models.PendingReport
	resp.DecodeJSON(t, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, "#P2000", pending[0].CaseID)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/reports/pending/P2000", nil, env.admin)
	resp.AssertStatusOK(t)

	decision := map[string]any{"caseId": "#P2000", "action": "approve", "adminNotes": "verified"}
	resp = env.do(t, http.MethodPost, "/api/v1/admin/reports/decide", decision, env.admin)
	resp.AssertStatusOK(t)
	var result service.DecisionResult
	resp.DecodeJSON(t, &result)
	assert.Equal(t, service.MessageApproved, result.Message)
	assert.Equal(t, "#1000", result.CanonicalCaseID)
	assert.Equal(t, models.StatusApproved, result.Status)

	resp = env.do(t, http.MethodPost, "/api/v1/admin/reports/decide", decision, env.admin)
	resp.AssertStatusNotFound(t)

	resp = env.do(t, http.MethodGet, "/api/v1/reports/1000", nil, env.viewer)
	resp.AssertStatusOK(t)
	var report models.FraudReport
	resp.DecodeJSON(t, &report)
	assert.Equal(t, "User Report - Investment Scam", report.Title)
	assert.Equal(t, models.CaseScam, report.CaseStatus)

	resp = env.do(t, http.MethodGet, "/api/v1/reports/%231000", nil, env.viewer)
	resp.AssertStatusOK(t)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard/stats", nil, env.viewer)
	resp.AssertStatusOK(t)
	var stats models.DashboardStats
	resp.DecodeJSON(t, &stats)
	assert.Equal(t, 1, stats.TotalReports)
	assert.Equal(t, 1, stats.DetectedScams)
	assert.Equal(t, 25000.0, stats.FinancialLoss)

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard?limit=3", nil, env.viewer)
	resp.AssertStatusOK(t)
	var dashboard service.Dashboard
	resp.DecodeJSON(t, &dashboard)
	require.Len(t, dashboard.RecentReports, 1)
	assert.Equal(t, "#1000", dashboard.RecentReports[0].CaseID)
}

func TestRejectOverHTTP(t *testing.T) {
	env := newHandlerEnv(t)
	env.do(t, http.MethodPost, "/api/v1/reports/pending", submitBody(), env.analyst).AssertStatusCreated(t)

	resp := env.do(t, http.MethodPost, "/api/v1/admin/reports/decide",
		map[string]any{"caseId": "#P2000", "action": "reject"}, env.admin)
	resp.AssertStatusOK(t)
	var result service.DecisionResult
	resp.DecodeJSON(t, &result)
	assert.Equal(t, models.StatusRejected, result.Status)
	assert.Empty(t, result.CanonicalCaseID)
	assert.Zero(t, env.reports.FraudCount())
}

func TestRoutePermissions(t *testing.T) {
	env := newHandlerEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		user   *models.User
		status int
	}{
		{"anonymous dashboard", http.MethodGet, "/api/v1/dashboard/stats", nil, nil, http.StatusUnauthorized},
		{"anonymous me", http.MethodGet, "/api/v1/auth/me", nil, nil, http.StatusUnauthorized},
		{"viewer cannot submit", http.MethodPost, "/api/v1/reports/pending", submitBody(), env.viewer, http.StatusForbidden},
		{"viewer may predict", http.MethodPost, "/api/v1/predict", submitBody(), env.viewer, http.StatusOK},
		{"viewer sees dashboard", http.MethodGet, "/api/v1/dashboard/stats", nil, env.viewer, http.StatusOK},
		{"analyst cannot review", http.MethodGet, "/api/v1/admin/reports/pending", nil, env.analyst, http.StatusForbidden},
		{"analyst cannot decide", http.MethodPost, "/api/v1/admin/reports/decide",
			map[string]any{"caseId": "#P2000", "action": "approve"}, env.analyst, http.StatusForbidden},
		{"viewer cannot list users", http.MethodGet, "/api/v1/admin/users", nil, env.viewer, http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/api/v1/admin/users", nil, env.admin, http.StatusOK},
		{"anyone may leave feedback", http.MethodPost, "/api/v1/feedback",
			map[string]any{"feedback_text": "useful", "rating": 5}, env.viewer, http.StatusCreated},
		{"health is public", http.MethodGet, "/health", nil, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.do(t, tt.method, tt.path, tt.body, tt.user).AssertStatus(t, tt.status)
		})
	}
}

func TestPredictDoesNotStore(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/predict", submitBody(), env.analyst)
	resp.AssertStatusOK(t)
	var prediction models.Prediction
	resp.DecodeJSON(t, &prediction)
	assert.Equal(t, models.CaseScam, prediction.Label)
	assert.Equal(t, 0.95, prediction.Confidence)
	assert.Zero(t, env.reports.PendingCount())
}

func TestClassifierFailureIsBadGateway(t *testing.T) {
	env := newHandlerEnv(t)
	env.classifier.Err = apperrors.Classification("prediction service timed out", context.DeadlineExceeded)

	resp := env.do(t, http.MethodPost, "/api/v1/reports/pending", submitBody(), env.analyst)

	resp.AssertStatus(t, http.StatusBadGateway)
	var body map[string]string
	resp.DecodeJSON(t, &body)
	assert.Equal(t, ErrMsgClassifierUnavailable, body["error"])
	assert.Zero(t, env.reports.PendingCount())
}

func TestSubmitValidationErrors(t *testing.T) {
	env := newHandlerEnv(t)

	body := submitBody()
	body["amountLost"] = -5
	resp := env.do(t, http.MethodPost, "/api/v1/reports/pending", body, env.analyst)
	resp.AssertStatusBadRequest(t)
	var errBody map[string]string
	resp.DecodeJSON(t, &errBody)
	assert.Contains(t, errBody["error"], "amountLost")

	req := env.auth.CreateAuthenticatedRequest(t, http.MethodPost, "/api/v1/reports/pending",
		bytes.NewBufferString("{not json"), env.analyst)
	raw := testutil.NewTestResponse()
	env.mux.ServeHTTP(raw, req)
	raw.AssertStatusBadRequest(t)

	assert.Zero(t, env.classifier.Calls())
}

func TestLoginAndMe(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Username: "analyst", Password: testPassword}, nil)
	resp.AssertStatusOK(t)
	var login service.LoginResult
	resp.DecodeJSON(t, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, env.analyst.ID, login.User.ID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	me := testutil.NewTestResponse()
	env.mux.ServeHTTP(me, req)
	me.AssertStatusOK(t)

	var body MeResponse
	me.DecodeJSON(t, &body)
	assert.Equal(t, "analyst", body.User.Username)
	assert.Contains(t, body.Permissions, models.PermGenerateReports)
	assert.NotContains(t, body.Permissions, models.PermManageUsers)

	env.do(t, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Username: "analyst", Password: "wrong-password"}, nil).AssertStatusUnauthorized(t)

	logs, err := env.audit.List(context.Background(), repository.AuditFilter{Action: "user.login"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// newest first: the failed attempt names no account
	assert.Nil(t, logs[0].UserID)
	require.NotNil(t, logs[1].UserID)
	assert.Equal(t, env.analyst.ID, *logs[1].UserID)
	assert.Contains(t, logs[1].Details, "status=200")
	assert.Contains(t, logs[0].Details, "status=401")
}

func TestInactiveUserCannotLogIn(t *testing.T) {
	env := newHandlerEnv(t)
	user := env.createUser(t, "dormant", models.RoleViewer)
	user.IsActive = false
	require.NoError(t, env.users.Update(context.Background(), user))

	env.do(t, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Username: "dormant", Password: testPassword}, nil).AssertStatusUnauthorized(t)
	env.do(t, http.MethodGet, "/api/v1/auth/me", nil, user).AssertStatusUnauthorized(t)
}

func TestRegister(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/register",
		map[string]any{"username": "newcomer", "password": "secret123"}, nil)
	resp.AssertStatusCreated(t)
	var user models.User
	resp.DecodeJSON(t, &user)
	assert.Equal(t, models.RoleViewer, user.Role)
	assert.NotContains(t, resp.Body.String(), "password")

	env.do(t, http.MethodPost, "/api/v1/auth/register",
		map[string]any{"username": "newcomer", "password": "secret123"}, nil).AssertStatus(t, http.StatusConflict)
	env.do(t, http.MethodPost, "/api/v1/auth/register",
		map[string]any{"username": "x", "password": "secret123"}, nil).AssertStatusBadRequest(t)
}

func TestLookupEndpoint(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/lookup?type=states", nil, env.viewer)
	resp.AssertStatusOK(t)
	var states []models.State
	resp.DecodeJSON(t, &states)
	assert.Len(t, states, len(testutil.SeedStates))

	resp = env.do(t, http.MethodGet, "/api/v1/lookup?type=scam_types", nil, env.viewer)
	resp.AssertStatusOK(t)
	var types []models.ScamType
	resp.DecodeJSON(t, &types)
	assert.Len(t, types, len(testutil.SeedScamTypes))

	env.do(t, http.MethodGet, "/api/v1/lookup?type=banks", nil, env.viewer).AssertStatusBadRequest(t)
}

func TestScamTypeAdministration(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/admin/scam-types",
		service.ScamTypeInput{Name: "Parcel Scam", Description: "Fake courier fees"}, env.admin)
	resp.AssertStatusCreated(t)
	var created models.ScamType
	resp.DecodeJSON(t, &created)
	assert.Equal(t, "Parcel Scam", created.Name)

	env.do(t, http.MethodPost, "/api/v1/admin/scam-types",
		service.ScamTypeInput{Name: "Parcel Scam"}, env.admin).AssertStatus(t, http.StatusConflict)

	resp = env.do(t, http.MethodPut, "/api/v1/admin/scam-types/"+itoa(uint(created.ID)),
		service.ScamTypeInput{Name: "Courier Scam"}, env.admin)
	resp.AssertStatusOK(t)

	env.do(t, http.MethodDelete, "/api/v1/admin/scam-types/"+itoa(uint(created.ID)), nil, env.admin).AssertStatusOK(t)
	env.do(t, http.MethodDelete, "/api/v1/admin/scam-types/"+itoa(uint(created.ID)), nil, env.admin).AssertStatusNotFound(t)
	env.do(t, http.MethodDelete, "/api/v1/admin/scam-types/abc", nil, env.admin).AssertStatusBadRequest(t)

	// Investment Scam is referenced once a report is approved
	env.do(t, http.MethodPost, "/api/v1/reports/pending", submitBody(), env.analyst).AssertStatusCreated(t)
	env.do(t, http.MethodPost, "/api/v1/admin/reports/decide",
		map[string]any{"caseId": "#P2000", "action": "approve"}, env.admin).AssertStatusOK(t)
	env.do(t, http.MethodDelete, "/api/v1/admin/scam-types/1", nil, env.admin).AssertStatus(t, http.StatusConflict)
}

func TestUserAdministration(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/admin/users",
		service.CreateUserInput{Username: "officer", Password: "secret123", Role: models.RoleAnalyst}, env.admin)
	resp.AssertStatusCreated(t)
	var officer models.User
	resp.DecodeJSON(t, &officer)
	assert.Equal(t, models.RoleAnalyst, officer.Role)

	resp = env.do(t, http.MethodPut, "/api/v1/admin/users/"+itoa(officer.ID)+"/role",
		AssignRoleRequest{Role: models.RoleViewer}, env.admin)
	resp.AssertStatusOK(t)
	var updated models.User
	resp.DecodeJSON(t, &updated)
	assert.Equal(t, models.RoleViewer, updated.Role)

	// the new role applies to the very next request
	env.do(t, http.MethodPost, "/api/v1/reports/pending", submitBody(), &officer).AssertStatusForbidden(t)

	env.do(t, http.MethodPut, "/api/v1/admin/users/"+itoa(officer.ID)+"/password",
		SetPasswordRequest{Password: "another-secret"}, env.admin).AssertStatusOK(t)
	env.do(t, http.MethodPost, "/api/v1/auth/login",
		LoginRequest{Username: "officer", Password: "another-secret"}, nil).AssertStatusOK(t)

	active := false
	env.do(t, http.MethodPut, "/api/v1/admin/users/"+itoa(officer.ID),
		service.UpdateUserInput{IsActive: &active}, env.admin).AssertStatusOK(t)
	env.do(t, http.MethodGet, "/api/v1/auth/me", nil, &officer).AssertStatusUnauthorized(t)

	env.do(t, http.MethodDelete, "/api/v1/admin/users/"+itoa(env.admin.ID), nil, env.admin).AssertStatusBadRequest(t)
	env.do(t, http.MethodPut, "/api/v1/admin/users/"+itoa(env.admin.ID)+"/role",
		AssignRoleRequest{Role: models.RoleViewer}, env.admin).AssertStatusBadRequest(t)
	env.do(t, http.MethodDelete, "/api/v1/admin/users/"+itoa(officer.ID), nil, env.admin).AssertStatusOK(t)
	env.do(t, http.MethodDelete, "/api/v1/admin/users/999", nil, env.admin).AssertStatusNotFound(t)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/roles", nil, env.admin)
	resp.AssertStatusOK(t)
	var roles []models.RoleInfo
	resp.DecodeJSON(t, &roles)
	assert.Len(t, roles, 3)
}

func TestAdminCreatesCanonicalReport(t *testing.T) {
	env := newHandlerEnv(t)

	resp := env.do(t, http.MethodPost, "/api/v1/admin/reports", map[string]any{
		"title":      "Bank impersonation call",
		"summary":    "Caller posed as bank officer",
		"amountLost": 1200,
		"caseStatus": "scam",
		"reportDate": "2025-02-01",
	}, env.admin)
	resp.AssertStatusCreated(t)
	var report models.FraudReport
	resp.DecodeJSON(t, &report)
	assert.Equal(t, "#1000", report.CaseID)
	assert.Equal(t, "2025-02-01", report.ReportDate.String())

	env.do(t, http.MethodPost, "/api/v1/admin/reports",
		map[string]any{"title": "x", "summary": "y", "caseStatus": "maybe"}, env.admin).AssertStatusBadRequest(t)
}

func TestDashboardFilters(t *testing.T) {
	env := newHandlerEnv(t)

	env.do(t, http.MethodGet, "/api/v1/dashboard/stats?start_date=yesterday", nil, env.viewer).AssertStatusBadRequest(t)
	env.do(t, http.MethodGet, "/api/v1/dashboard/stats?start_date=2025-03-02&end_date=2025-03-01",
		nil, env.viewer).AssertStatusBadRequest(t)

	resp := env.do(t, http.MethodGet,
		"/api/v1/dashboard/stats?state_filter=all&scam_type_filter=all", nil, env.viewer)
	resp.AssertStatusOK(t)
	var stats models.DashboardStats
	resp.DecodeJSON(t, &stats)
	assert.Zero(t, stats.TotalReports)
	assert.Zero(t, stats.DetectionRate)
}

func TestEmptyListsAreArrays(t *testing.T) {
	env := newHandlerEnv(t)

	for _, path := range []string{
		"/api/v1/admin/feedback",
		"/api/v1/admin/reports/pending",
		"/api/v1/reports/recent",
	} {
		resp := env.do(t, http.MethodGet, path, nil, env.admin)
		resp.AssertStatusOK(t)
		assert.JSONEq(t, "[]", resp.Body.String(), path)
	}
}

func TestFeedbackOverHTTP(t *testing.T) {
	env := newHandlerEnv(t)

	env.do(t, http.MethodPost, "/api/v1/feedback",
		service.FeedbackInput{FeedbackText: "Clear charts", Rating: 4}, env.viewer).AssertStatusCreated(t)
	env.do(t, http.MethodPost, "/api/v1/feedback",
		service.FeedbackInput{FeedbackText: "Bad rating", Rating: 9}, env.viewer).AssertStatusBadRequest(t)

	resp := env.do(t, http.MethodGet, "/api/v1/admin/feedback", nil, env.admin)
	resp.AssertStatusOK(t)
	var entries []models.Feedback
	resp.DecodeJSON(t, &entries)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Username)
	assert.Equal(t, "viewer", *entries[0].Username)
}

func TestAuditLogListing(t *testing.T) {
	env := newHandlerEnv(t)
	env.do(t, http.MethodPost, "/api/v1/reports/pending", submitBody(), env.analyst).AssertStatusCreated(t)

	resp := env.do(t, http.MethodGet, "/api/v1/admin/audit-logs?action=report.", nil, env.admin)
	resp.AssertStatusOK(t)
	var logs []models.AuditLog
	resp.DecodeJSON(t, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "report.submit", logs[0].Action)

	env.do(t, http.MethodGet, "/api/v1/admin/audit-logs?user_id=abc", nil, env.admin).AssertStatusBadRequest(t)
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	h := NewHealthHandler(fakeDB{err: errors.New("connection refused")}, nil, "test")

	resp := testutil.NewTestResponse()
	h.Check(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	resp.AssertStatus(t, http.StatusServiceUnavailable)
	assert.JSONEq(t, `{"status":"unhealthy","database":"error"}`, resp.Body.String())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
