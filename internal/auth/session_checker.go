package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/bloglist/internal/telemetry/tracing"
)

const (
	sessionCacheSize = 1024 * 1024 // bytes, freecache minimum is 512KB
	// sessions evicted by logout on another instance may live this long in
	// the local cache
	sessionCacheTTL = time.Minute
)

// SessionChecker resolves tokens to sessions: first from an in-process
// cache, then from redis.
type SessionChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	cache       *freecache.Cache
	nowFunc     func() time.Time
}

func NewSessionChecker(ttl time.Duration, redisClient *redis.Client) *SessionChecker {
	return &SessionChecker{
		ttl:         ttl,
		redisClient: redisClient,
		cache:       freecache.NewCache(sessionCacheSize),
		nowFunc:     time.Now,
	}
}

func (c *SessionChecker) Session(ctx context.Context, token string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionChecker.Session")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, cacheErr := c.cache.Get([]byte(token)); cacheErr == nil {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return c.decode(token, cached)
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	sessionBytes, err := c.redisClient.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	session, err := c.decode(token, sessionBytes)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set([]byte(token), sessionBytes, int(sessionCacheTTL.Seconds())); err != nil {
		log.Warnf("cache session: %s", err)
	}

	return session, nil
}

// Forget drops the token from the local cache.
func (c *SessionChecker) Forget(token string) {
	c.cache.Del([]byte(token))
}

func (c *SessionChecker) decode(token string, sessionBytes []byte) (*Session, error) {
	var session Session
	if err := json.Unmarshal(sessionBytes, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session.Token = token

	if session.expired(c.ttl, c.nowFunc()) {
		c.Forget(token)
		return nil, ErrSessionExpired
	}

	return &session, nil
}
