package middleware

import (
	"context"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/bloglist/internal/auth"
	"github.com/2beens/bloglist/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=middleware_mocks_test.go -package=middleware_test

type sessionChecker interface {
	Session(ctx context.Context, token string) (*auth.Session, error)
}

type AuthMiddlewareHandler struct {
	sessionChecker       sessionChecker
	requireAuthForWrites bool
	// reachable without a session even when writes require auth
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(
	sessionChecker sessionChecker,
	requireAuthForWrites bool,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		sessionChecker:       sessionChecker,
		requireAuthForWrites: requireAuthForWrites,
		allowedPaths: map[string]bool{
			"/api/login": true,
			"/api/users": true,
		},
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// AuthCheck resolves the bearer token into a session and stores it in the
// request context. Requests without a token pass through anonymously,
// unless they are writes and writes require auth.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			authToken := auth.TokenFromRequest(r)
			if authToken == "" {
				if h.requireAuthForWrites && isWriteMethod(r.Method) && !h.allowedPaths[r.URL.Path] {
					log.Tracef("[missing token] [auth middleware] unauthorized => %s %s", r.Method, r.URL.Path)
					http.Error(w, "no can do", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "missing-auth-token")
					return
				}
				span.SetStatus(codes.Ok, "anonymous")
				next.ServeHTTP(w, r)
				return
			}

			session, err := h.sessionChecker.Session(ctx, authToken)
			if err != nil {
				if errors.Is(err, auth.ErrSessionNotFound) || errors.Is(err, auth.ErrSessionExpired) {
					log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
					span.SetStatus(codes.Error, "not-logged")
				} else {
					log.Errorf("[failed session check] => %s: %s", r.URL.Path, err)
					span.SetStatus(codes.Error, "check-session-err")
					span.RecordError(err)
				}
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}
