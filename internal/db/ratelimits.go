package db

import (
	"database/sql"
	"fmt"
)

// GetRateLimit returns the last claim time (unix seconds) and window length for
// a composite key. found is false when no record exists.
func (d *DB) GetRateLimit(key string) (claimedAt int64, windowSeconds int64, found bool, err error) {
	row := d.conn.QueryRow("SELECT claimed_at, window_seconds FROM rate_limits WHERE key = ?", key)
	err = row.Scan(&claimedAt, &windowSeconds)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("get rate limit %q: %w", key, err)
	}
	return claimedAt, windowSeconds, true, nil
}

// SetRateLimit records a claim time for a key, overwriting any prior record.
// At most one record exists per key.
func (d *DB) SetRateLimit(key string, claimedAt, windowSeconds int64) error {
	_, err := d.conn.Exec(`
		INSERT INTO rate_limits (key, claimed_at, window_seconds) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET claimed_at = excluded.claimed_at, window_seconds = excluded.window_seconds
	`, key, claimedAt, windowSeconds)
	if err != nil {
		return fmt.Errorf("set rate limit %q: %w", key, err)
	}
	return nil
}

// DeleteExpiredRateLimits removes records whose window elapsed before the
// given unix time. Expired records never block a claim either way; this is
// housekeeping, not correctness.
func (d *DB) DeleteExpiredRateLimits(now int64) (int64, error) {
	res, err := d.conn.Exec("DELETE FROM rate_limits WHERE claimed_at + window_seconds <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("delete expired rate limits: %w", err)
	}
	return res.RowsAffected()
}
