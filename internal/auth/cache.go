package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (tenantID string, ok bool)
}

type TokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachingVerifier remembers successful verifications for ttl. Only a hash
// of the token is stored.
type CachingVerifier struct {
	next   TokenVerifier
	cache  TokenCache
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewCachingVerifier(next TokenVerifier, cache TokenCache, ttl time.Duration, log logger.ZapLogger) *CachingVerifier {
	return &CachingVerifier{next: next, cache: cache, ttl: ttl, logger: log}
}

func (v *CachingVerifier) VerifyToken(ctx context.Context, token string) (string, bool) {
	key := tokenCacheKey(token)

	id, err := v.cache.Get(ctx, key)
	if err == nil && id != "" {
		return id, true
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		v.logger.Warn("token cache read failed", zap.Error(err))
	}

	id, ok := v.next.VerifyToken(ctx, token)
	if !ok {
		return "", false
	}
	if err := v.cache.Set(ctx, key, id, v.ttl); err != nil {
		v.logger.Warn("token cache write failed", zap.Error(err))
	}
	return id, true
}

func tokenCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:token:" + hex.EncodeToString(sum[:])
}
