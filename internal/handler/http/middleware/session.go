package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/leave-portal/internal/domain/portal"
	"github.com/cmlabs-hris/leave-portal/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type sessionKey struct{}

// SessionID returns the portal session attached by Session.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey{}).(string)
	return sid
}

// WithSessionID attaches a portal session id to ctx.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// Session resolves the portal session of the request. It expects
// jwtauth.Verify to have run; a missing, expired or tampered cookie, or one
// naming a swept session, gets a fresh session and a new cookie.
func Session(svc portal.Service, jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, claims, err := jwtauth.FromContext(ctx); err == nil && token != nil {
				if sid, err := jwtService.SessionIDFromClaims(claims); err == nil && svc.HasSession(sid) {
					next.ServeHTTP(w, r.WithContext(WithSessionID(ctx, sid)))
					return
				}
			}

			sid, err := svc.OpenSession(ctx)
			if err != nil {
				slog.Error("Failed to open portal session", "error", err)
				response.InternalServerError(w, "Failed to open session")
				return
			}
			token, expiresAt, err := jwtService.IssueSessionToken(sid)
			if err != nil {
				slog.Error("Failed to issue session token", "session_id", sid, "error", err)
				response.InternalServerError(w, "Failed to open session")
				return
			}
			http.SetCookie(w, jwtService.SessionCookie(token, expiresAt))

			next.ServeHTTP(w, r.WithContext(WithSessionID(ctx, sid)))
		}
		return http.HandlerFunc(hfn)
	}
}
