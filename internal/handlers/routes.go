package handlers

import (
	"net/http"
	"strings"

	"github.com/AhmedTrying/malaysiasafd/internal/middleware"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
)

// APIBasePath prefixes every API route
const APIBasePath = "/api/v1"

// Routes holds the handlers and guards mounted by Register
type Routes struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Audit     *AuditHandler
	Lookup    *LookupHandler
	Reports   *ReportHandler
	Review    *ReviewHandler
	Dashboard *DashboardHandler
	Feedback  *FeedbackHandler
	Health    *HealthHandler

	AuthMw  *middleware.AuthMiddleware
	RBACMw  *middleware.RBACMiddleware
	AuditMw *middleware.AuditMiddleware
}

// Register mounts every API route on mux
func (rt *Routes) Register(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler {
		return rt.AuthMw.Authenticate(h)
	}
	permitted := func(p models.Permission, h http.HandlerFunc) http.Handler {
		return rt.AuthMw.Authenticate(rt.RBACMw.RequirePermission(p)(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return rt.AuthMw.Authenticate(rt.RBACMw.RequireAnyRole(models.RoleAdmin)(h))
	}
	route := func(pattern string) string {
		method, path, _ := strings.Cut(pattern, " ")
		return method + " " + APIBasePath + path
	}

	// Public routes
	mux.HandleFunc(route("POST /auth/register"), rt.Auth.Register)
	mux.Handle(route("POST /auth/login"), rt.AuditMw.Log("user.login", "user")(http.HandlerFunc(rt.Auth.Login)))
	mux.HandleFunc("GET /health", rt.Health.Check)

	// Any authenticated user
	mux.Handle(route("GET /auth/me"), authed(rt.Auth.Me))
	mux.Handle(route("GET /lookup"), authed(rt.Lookup.GetLookup))
	mux.Handle(route("POST /feedback"), authed(rt.Feedback.SubmitFeedback))

	// Permission-guarded routes
	mux.Handle(route("POST /predict"), permitted(models.PermViewPredictions, rt.Reports.Predict))
	mux.Handle(route("POST /reports/pending"), permitted(models.PermGenerateReports, rt.Reports.SubmitPending))
	mux.Handle(route("GET /reports/recent"), permitted(models.PermViewDashboard, rt.Reports.ListRecent))
	mux.Handle(route("GET /reports/{caseId}"), permitted(models.PermViewDashboard, rt.Reports.GetReport))
	mux.Handle(route("GET /dashboard/stats"), permitted(models.PermViewDashboard, rt.Dashboard.GetStats))
	mux.Handle(route("GET /dashboard"), permitted(models.PermViewDashboard, rt.Dashboard.GetDashboard))

	// Admin routes
	mux.Handle(route("GET /admin/reports/pending"), admin(rt.Review.ListPending))
	mux.Handle(route("GET /admin/reports/pending/{caseId}"), admin(rt.Review.GetPending))
	mux.Handle(route("POST /admin/reports/decide"), admin(rt.Review.Decide))
	mux.Handle(route("POST /admin/reports"), admin(rt.Reports.CreateReport))

	mux.Handle(route("GET /admin/scam-types"), admin(rt.Lookup.ListScamTypes))
	mux.Handle(route("POST /admin/scam-types"), admin(rt.Lookup.CreateScamType))
	mux.Handle(route("PUT /admin/scam-types/{id}"), admin(rt.Lookup.UpdateScamType))
	mux.Handle(route("DELETE /admin/scam-types/{id}"), admin(rt.Lookup.DeleteScamType))

	mux.Handle(route("GET /admin/users"), admin(rt.Users.ListUsers))
	mux.Handle(route("POST /admin/users"), admin(rt.Users.CreateUser))
	mux.Handle(route("PUT /admin/users/{id}"), admin(rt.Users.UpdateUser))
	mux.Handle(route("DELETE /admin/users/{id}"), admin(rt.Users.DeleteUser))
	mux.Handle(route("PUT /admin/users/{id}/role"), admin(rt.Users.AssignRole))
	mux.Handle(route("PUT /admin/users/{id}/password"), admin(rt.Users.SetPassword))
	mux.Handle(route("GET /admin/roles"), admin(rt.Users.ListRoles))

	mux.Handle(route("GET /admin/feedback"), admin(rt.Feedback.ListFeedback))
	mux.Handle(route("GET /admin/audit-logs"), admin(rt.Audit.ListAuditLogs))
}
