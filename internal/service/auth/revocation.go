package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskboard/taskboard-api/internal/cache"
)

// TokenRevoker tracks access tokens invalidated before their expiry.
type TokenRevoker interface {
	// Revoke blacklists the token identified by jti until expiresAt.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeSession invalidates every token carrying sessionID until
	// the given time, which must cover the longest-lived token of the session.
	RevokeSession(ctx context.Context, sessionID string, until time.Time) error

	// IsSessionRevoked reports whether sessionID has been revoked. Tokens
	// without a session are never reported as revoked here.
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

// CacheRevoker stores revoked token IDs in a cache with a TTL equal to the
// token's remaining lifetime, so the list never outgrows the live tokens.
type CacheRevoker struct {
	cache cache.Cache
	now   func() time.Time
}

var _ TokenRevoker = (*CacheRevoker)(nil)

// NewCacheRevoker creates a CacheRevoker.
func NewCacheRevoker(c cache.Cache) *CacheRevoker {
	return &CacheRevoker{cache: c, now: time.Now}
}

// Revoke implements TokenRevoker.
func (r *CacheRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return ErrInvalidToken
	}
	return r.mark(ctx, cache.RevokedTokenKey(jti), expiresAt)
}

// IsRevoked implements TokenRevoker.
func (r *CacheRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.marked(ctx, cache.RevokedTokenKey(jti))
}

// RevokeSession implements TokenRevoker.
func (r *CacheRevoker) RevokeSession(ctx context.Context, sessionID string, until time.Time) error {
	if sessionID == "" {
		return ErrInvalidToken
	}
	return r.mark(ctx, cache.RevokedSessionKey(sessionID), until)
}

// IsSessionRevoked implements TokenRevoker.
func (r *CacheRevoker) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return r.marked(ctx, cache.RevokedSessionKey(sessionID))
}

func (r *CacheRevoker) mark(ctx context.Context, key string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.cache.Set(ctx, key, []byte("1"), ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *CacheRevoker) marked(ctx context.Context, key string) (bool, error) {
	_, err := r.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}
