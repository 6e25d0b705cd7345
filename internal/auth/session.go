package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "bloglist-session||"
	tokensSetKey     = "bloglist-sessions"
	tokenLength      = 48
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrWrongPassword   = errors.New("invalid username or password")
	ErrMissingCreds    = errors.New("username and password required")
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is what gets stored in redis for a logged in user.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Session) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.CreatedAt) > ttl
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

type sessionCtxKey struct{}

func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

// SessionFromContext returns the session of the authenticated user making
// the request, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return session, ok && session != nil
}

// TokenFromRequest reads the bearer token from the Authorization header.
func TokenFromRequest(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authHeader) < len("bearer ") || !strings.EqualFold(authHeader[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("bearer "):])
}
