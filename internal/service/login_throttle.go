package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/pkg/cache"
)

type loginAttemptStore interface {
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Login scopes keep user and admin counters apart.
const (
	LoginScopeUser  = "user"
	LoginScopeAdmin = "admin"
)

// LoginThrottle refuses logins after too many failures for the same principal and client IP.
// Store errors fail open. A nil *LoginThrottle never throttles.
type LoginThrottle struct {
	store       loginAttemptStore
	maxAttempts int64
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginThrottle constructs a LoginThrottle. maxAttempts <= 0 disables it.
func NewLoginThrottle(store loginAttemptStore, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	if maxAttempts <= 0 || store == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{store: store, maxAttempts: int64(maxAttempts), window: window, logger: logger}
}

func throttleKey(scope, principal, ip string) string {
	return cache.Key("login", scope, principal, ip)
}

// Allowed reports whether another attempt may be made.
func (t *LoginThrottle) Allowed(ctx context.Context, scope, principal, ip string) bool {
	if t == nil {
		return true
	}
	n, err := t.store.Count(ctx, throttleKey(scope, principal, ip))
	if err != nil {
		t.logger.Warn("login throttle lookup failed", zap.String("scope", scope), zap.Error(err))
		return true
	}
	return n < t.maxAttempts
}

// Failed records a failed attempt.
func (t *LoginThrottle) Failed(ctx context.Context, scope, principal, ip string) {
	if t == nil {
		return
	}
	if _, err := t.store.Increment(ctx, throttleKey(scope, principal, ip), t.window); err != nil {
		t.logger.Warn("login throttle increment failed", zap.String("scope", scope), zap.Error(err))
	}
}

// Succeeded clears the failures for the principal and IP.
func (t *LoginThrottle) Succeeded(ctx context.Context, scope, principal, ip string) {
	if t == nil {
		return
	}
	if err := t.store.Reset(ctx, throttleKey(scope, principal, ip)); err != nil {
		t.logger.Warn("login throttle reset failed", zap.String("scope", scope), zap.Error(err))
	}
}
