package limiter

import (
	"errors"
	"testing"
	"time"

	"github.com/faucethub/faucetd/internal/config"
)

// fakeStore is an in-memory Store with a switchable failure mode.
type fakeStore struct {
	records map[string][2]int64
	fail    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string][2]int64)}
}

func (s *fakeStore) GetRateLimit(key string) (int64, int64, bool, error) {
	if s.fail {
		return 0, 0, false, errors.New("store down")
	}
	rec, ok := s.records[key]
	if !ok {
		return 0, 0, false, nil
	}
	return rec[0], rec[1], true, nil
}

func (s *fakeStore) SetRateLimit(key string, claimedAt, windowSeconds int64) error {
	if s.fail {
		return errors.New("store down")
	}
	s.records[key] = [2]int64{claimedAt, windowSeconds}
	return nil
}

func (s *fakeStore) DeleteExpiredRateLimits(now int64) (int64, error) {
	if s.fail {
		return 0, errors.New("store down")
	}
	var deleted int64
	for key, rec := range s.records {
		if rec[0]+rec[1] <= now {
			delete(s.records, key)
			deleted++
		}
	}
	return deleted, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestKeyCaseFolding(t *testing.T) {
	checksummed := Key("0xAbCd1234aBcD1234AbCd1234aBcD1234AbCd1234", "base-sepolia")
	lower := Key("0xabcd1234abcd1234abcd1234abcd1234abcd1234", "base-sepolia")
	if checksummed != lower {
		t.Errorf("keys differ by case: %q vs %q", checksummed, lower)
	}
	want := "faucet:0xabcd1234abcd1234abcd1234abcd1234abcd1234:base-sepolia"
	if lower != want {
		t.Errorf("key = %q, want %q", lower, want)
	}
}

func TestRecordThenLimited(t *testing.T) {
	store := newFakeStore()
	now := time.Unix(1_700_000_000, 0)
	l := NewWithClock(store, fixedClock(now))

	addr := "0xAbCd1234aBcD1234AbCd1234aBcD1234AbCd1234"
	if err := l.RecordClaim(addr, "base-sepolia", 24*time.Hour); err != nil {
		t.Fatalf("RecordClaim error: %v", err)
	}

	// Same address in lower case must hit the same record.
	limited, remaining, err := l.IsLimited("0xabcd1234abcd1234abcd1234abcd1234abcd1234", "base-sepolia")
	if err != nil {
		t.Fatalf("IsLimited error: %v", err)
	}
	if !limited {
		t.Fatal("expected limited immediately after claim")
	}
	if remaining != 24*3600 {
		t.Errorf("remaining = %d, want %d", remaining, 24*3600)
	}

	// Different network is an independent record.
	limited, _, err = l.IsLimited(addr, "optimism-sepolia")
	if err != nil {
		t.Fatalf("IsLimited error: %v", err)
	}
	if limited {
		t.Error("different network should not be limited")
	}
}

func TestWindowExpiry(t *testing.T) {
	store := newFakeStore()
	start := time.Unix(1_700_000_000, 0)
	current := start
	l := NewWithClock(store, func() time.Time { return current })

	addr := "0x1111111111111111111111111111111111111111"
	if err := l.RecordClaim(addr, "base-sepolia", 24*time.Hour); err != nil {
		t.Fatalf("RecordClaim error: %v", err)
	}

	current = start.Add(23 * time.Hour)
	limited, remaining, _ := l.IsLimited(addr, "base-sepolia")
	if !limited {
		t.Fatal("expected limited at 23h")
	}
	if remaining != 3600 {
		t.Errorf("remaining = %d, want 3600", remaining)
	}

	current = start.Add(24*time.Hour + time.Second)
	limited, _, _ = l.IsLimited(addr, "base-sepolia")
	if limited {
		t.Error("expected not limited after window expiry")
	}
}

func TestPurgeExpired(t *testing.T) {
	store := newFakeStore()
	start := time.Unix(1_700_000_000, 0)
	current := start
	l := NewWithClock(store, func() time.Time { return current })

	expired := "0x1111111111111111111111111111111111111111"
	live := "0x2222222222222222222222222222222222222222"
	if err := l.RecordClaim(expired, "base-sepolia", time.Hour); err != nil {
		t.Fatalf("RecordClaim error: %v", err)
	}
	if err := l.RecordClaim(live, "base-sepolia", 24*time.Hour); err != nil {
		t.Fatalf("RecordClaim error: %v", err)
	}

	current = start.Add(2 * time.Hour)
	l.PurgeExpired()

	if _, ok := store.records[Key(expired, "base-sepolia")]; ok {
		t.Error("expired record survived purge")
	}
	if _, ok := store.records[Key(live, "base-sepolia")]; !ok {
		t.Error("live record removed by purge")
	}

	// Purge must never error out the caller even when the store is down.
	store.fail = true
	l.PurgeExpired()
}

func TestStoreFailureSurfacesError(t *testing.T) {
	store := newFakeStore()
	store.fail = true
	l := New(store)

	_, _, err := l.IsLimited("0x1111111111111111111111111111111111111111", "base-sepolia")
	if !errors.Is(err, config.ErrLimiterUnavailable) {
		t.Fatalf("error = %v, want ErrLimiterUnavailable", err)
	}

	err = l.RecordClaim("0x1111111111111111111111111111111111111111", "base-sepolia", time.Hour)
	if !errors.Is(err, config.ErrLimiterUnavailable) {
		t.Fatalf("error = %v, want ErrLimiterUnavailable", err)
	}
}

func TestStatusFailsOpen(t *testing.T) {
	store := newFakeStore()
	store.fail = true
	l := New(store)

	status := l.Status("0x1111111111111111111111111111111111111111", "base-sepolia")
	if status.IsRateLimited {
		t.Error("status query must fail open when store is down")
	}
	if status.RemainingMs != nil {
		t.Error("remaining must be nil when not limited")
	}
}

func TestStatusReportsMilliseconds(t *testing.T) {
	store := newFakeStore()
	now := time.Unix(1_700_000_000, 0)
	l := NewWithClock(store, fixedClock(now))

	addr := "0x2222222222222222222222222222222222222222"
	if err := l.RecordClaim(addr, "base-sepolia", time.Hour); err != nil {
		t.Fatalf("RecordClaim error: %v", err)
	}

	status := l.Status(addr, "base-sepolia")
	if !status.IsRateLimited {
		t.Fatal("expected limited")
	}
	if status.RemainingMs == nil || *status.RemainingMs != 3600*1000 {
		t.Errorf("remainingMs = %v, want 3600000", status.RemainingMs)
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0h 0m"},
		{30, "0h 1m"}, // sub-minute rounds up
		{60, "0h 1m"},
		{3600, "1h 0m"},
		{3*3600 + 42*60, "3h 42m"},
		{24 * 3600, "24h 0m"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.seconds); got != tt.want {
			t.Errorf("FormatRemaining(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
