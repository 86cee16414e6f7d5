package middleware

import (
	"context"
	"net/http"
	"strings"

	"poe-item-bank/internal/model"
	"poe-item-bank/internal/service"
	"poe-item-bank/pkg/apierror"
	"poe-item-bank/pkg/response"
)

// SessionKey is the context key under which the admin session is stored.
const SessionKey contextKey = "session"

// NewEditorMiddleware gates mutating routes behind a valid admin session.
// The token comes from the X-Session-Token header or a Bearer Authorization
// header. Read/display routes are registered outside this middleware and
// stay public.
func NewEditorMiddleware(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Session-Token")
			if token == "" {
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					token = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if token == "" {
				response.Error(w, apierror.Unauthorized("admin session required"))
				return
			}

			session, err := sessions.Validate(r.Context(), token)
			if err != nil {
				response.Error(w, apierror.Unauthorized("invalid or expired session"))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the admin session from request context, or nil when
// the request did not pass the editor middleware.
func GetSession(ctx context.Context) *model.Session {
	if s, ok := ctx.Value(SessionKey).(*model.Session); ok {
		return s
	}
	return nil
}
