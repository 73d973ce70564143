package fetcher

import (
	"context"
	"sync"
	"time"
)

// RefreshFunc obtains a fresh access token and its lifetime.
type RefreshFunc func(ctx context.Context) (token string, ttl time.Duration, err error)

// TokenCache holds one store-scoped OAuth token with its expiry.
// Reads are cheap and concurrent; refreshing deliberately runs outside
// the lock, so two callers hitting an expired token may both refresh —
// tokens are interchangeable, last write wins.
type TokenCache struct {
	mu      sync.RWMutex
	token   string
	expiry  time.Time
	refresh RefreshFunc
}

func NewTokenCache(refresh RefreshFunc) *TokenCache {
	return &TokenCache{refresh: refresh}
}

// Get returns the cached token, refreshing it when missing or within a
// minute of expiry.
func (t *TokenCache) Get(ctx context.Context) (string, error) {
	t.mu.RLock()
	token, expiry := t.token, t.expiry
	t.mu.RUnlock()

	if token != "" && time.Until(expiry) > time.Minute {
		return token, nil
	}
	return t.ForceRefresh(ctx)
}

// ForceRefresh fetches a new token regardless of the cached state. Used
// after an upstream 401 on a token that looked valid.
func (t *TokenCache) ForceRefresh(ctx context.Context) (string, error) {
	token, ttl, err := t.refresh(ctx)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	t.token = token
	t.expiry = time.Now().Add(ttl)
	t.mu.Unlock()

	return token, nil
}
