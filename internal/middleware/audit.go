package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

const auditSubjectKey contextKey = "audit_subject"

type auditSubject struct {
	userID uint
}

// RequestInfo makes the client address and user agent available to audit
// entries written while handling the request
func RequestInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := service.WithRequestInfo(r.Context(), getIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuditMiddleware logs security-related actions that no service records itself
type AuditMiddleware struct {
	audit *service.AuditService
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(audit *service.AuditService) *AuditMiddleware {
	return &AuditMiddleware{audit: audit}
}

// Log records action after the handler ran, with the response status
func (m *AuditMiddleware) Log(action, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := &auditSubject{}
			r = r.WithContext(context.WithValue(r.Context(), auditSubjectKey, subject))

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			actor, _ := GetActor(r)
			if actor.UserID == 0 {
				actor.UserID = subject.userID
			}

			m.audit.Log(r.Context(), actor, action, resource,
				fmt.Sprintf("method=%s path=%s status=%d", r.Method, r.URL.Path, wrapped.statusCode))
		})
	}
}

// SetAuditUser names the account an audited request acted on. Login uses it
// since no actor is authenticated yet.
func SetAuditUser(r *http.Request, userID uint) {
	if subject, ok := r.Context().Value(auditSubjectKey).(*auditSubject); ok {
		subject.userID = userID
	}
}
