package limiter

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
)

// Store is the persistence backend for rate limit records.
type Store interface {
	GetRateLimit(key string) (claimedAt int64, windowSeconds int64, found bool, err error)
	SetRateLimit(key string, claimedAt, windowSeconds int64) error
	DeleteExpiredRateLimits(now int64) (int64, error)
}

// Limiter tracks the claim cooldown per (address, network) pair. The claim
// path fails closed when the store is unreachable; the informational status
// query fails open so the UI never blocks on limiter availability.
type Limiter struct {
	store Store
	now   func() time.Time
}

// New creates a limiter backed by the given store.
func New(store Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// NewWithClock creates a limiter with an injected clock (for tests).
func NewWithClock(store Store, now func() time.Time) *Limiter {
	return &Limiter{store: store, now: now}
}

// Key builds the composite rate limit key. The address is lower-cased so that
// checksum-case and lower-case inputs collide on the same record.
func Key(address, networkID string) string {
	return fmt.Sprintf("faucet:%s:%s", strings.ToLower(address), networkID)
}

// IsLimited reports whether the pair is inside its cooldown window and how
// many seconds remain. A store failure is returned as an error; the caller
// decides the fail policy.
func (l *Limiter) IsLimited(address, networkID string) (bool, int64, error) {
	key := Key(address, networkID)

	claimedAt, windowSeconds, found, err := l.store.GetRateLimit(key)
	if err != nil {
		return false, 0, fmt.Errorf("%w: %s", config.ErrLimiterUnavailable, err)
	}
	if !found {
		return false, 0, nil
	}

	remaining := claimedAt + windowSeconds - l.now().Unix()
	if remaining <= 0 {
		// Expired records never block a claim.
		return false, 0, nil
	}
	return true, remaining, nil
}

// RecordClaim stores the claim time for the pair. Must be called only after
// on-chain confirmation succeeds.
func (l *Limiter) RecordClaim(address, networkID string, window time.Duration) error {
	key := Key(address, networkID)
	windowSeconds := int64(window / time.Second)

	if err := l.store.SetRateLimit(key, l.now().Unix(), windowSeconds); err != nil {
		return fmt.Errorf("%w: %s", config.ErrLimiterUnavailable, err)
	}

	slog.Info("claim recorded in rate limiter",
		"key", key,
		"windowSeconds", windowSeconds,
	)
	return nil
}

// PurgeExpired drops cooldown records whose window already elapsed. Expired
// records never block a claim, so this is housekeeping only and failures are
// logged rather than surfaced.
func (l *Limiter) PurgeExpired() {
	deleted, err := l.store.DeleteExpiredRateLimits(l.now().Unix())
	if err != nil {
		slog.Warn("rate limit purge failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("purged expired rate limit records", "deleted", deleted)
	}
}

// Status answers the informational rate-limit query, failing open: a store
// failure reports "not limited" rather than blocking the display.
func (l *Limiter) Status(address, networkID string) models.RateLimitStatus {
	limited, remaining, err := l.IsLimited(address, networkID)
	if err != nil {
		slog.Warn("rate limit status check failed, reporting not limited",
			"address", strings.ToLower(address),
			"network", networkID,
			"error", err,
		)
		return models.RateLimitStatus{IsRateLimited: false, RemainingMs: nil}
	}
	if !limited {
		return models.RateLimitStatus{IsRateLimited: false, RemainingMs: nil}
	}

	remainingMs := remaining * 1000
	return models.RateLimitStatus{IsRateLimited: true, RemainingMs: &remainingMs}
}

// FormatRemaining renders a cooldown in the "3h 42m" style used in claim
// rejection messages. Durations under a minute round up to 1m.
func FormatRemaining(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours == 0 && minutes == 0 && seconds > 0 {
		minutes = 1
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
