package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/bloglist/internal/users"
	"github.com/2beens/bloglist/pkg"
)

type userFinder interface {
	ByUsername(ctx context.Context, username string) (*users.User, error)
}

type Service struct {
	redisClient    *redis.Client
	userFinder     userFinder
	sessionChecker *SessionChecker
	ttl            time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	// same for bcrypt checks, which are slow on purpose
	CheckPasswordFunc func(password, hash string) bool
}

func NewAuthService(
	ttl time.Duration,
	redisClient *redis.Client,
	userFinder userFinder,
	sessionChecker *SessionChecker,
) *Service {
	return &Service{
		ttl:               ttl,
		redisClient:       redisClient,
		userFinder:        userFinder,
		sessionChecker:    sessionChecker,
		RandStringFunc:    pkg.GenerateRandomString,
		CheckPasswordFunc: pkg.CheckPasswordHash,
	}
}

func (as *Service) Login(ctx context.Context, creds Credentials, createdAt time.Time) (*Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrMissingCreds
	}

	user, err := as.userFinder.ByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !as.CheckPasswordFunc(creds.Password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session := &Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Name:      user.Name,
		CreatedAt: createdAt.UTC(),
	}
	sessionBytes, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}

	if err := as.redisClient.Set(ctx, sessionKey(token), string(sessionBytes), as.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	// add token to list of sessions
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return nil, fmt.Errorf("index session: %w", err)
	}

	return session, nil
}

// Logout removes the session. The returned bool tells if there was
// a session to remove.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	if as.sessionChecker != nil {
		as.sessionChecker.Forget(token)
	}

	deleted, err := as.redisClient.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	// remove token from the list of sessions
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, fmt.Errorf("unindex session: %w", err)
	}

	return deleted > 0, nil
}

// ScanAndClean removes tokens from the sessions index whose session key
// already expired in redis. Returns the number of removed tokens.
func (as *Service) ScanAndClean(ctx context.Context) int {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return 0
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return 0
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	cleaned := 0
	for _, token := range sessionTokens {
		exists, err := as.redisClient.Exists(ctx, sessionKey(token)).Result()
		if err != nil {
			log.Errorf("auth service, scan and clean token: %s", err)
			continue
		}
		if exists > 0 {
			continue
		}

		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean token: %s", err)
			continue
		}
		cleaned++
	}

	log.Debugf("auth service, scan and clean done, removed %d", cleaned)
	return cleaned
}

// RunCleaner calls ScanAndClean every interval until ctx is done.
func (as *Service) RunCleaner(ctx context.Context, interval time.Duration, onCleaned func(cleaned int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleaned := as.ScanAndClean(ctx)
			if onCleaned != nil {
				onCleaned(cleaned)
			}
		}
	}
}
