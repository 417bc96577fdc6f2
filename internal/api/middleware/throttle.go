package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
)

// throttleIdleEvict is how long an IP's limiter survives without traffic.
const throttleIdleEvict = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle applies a per-IP token bucket to abuse-prone endpoints. Distinct
// from the per-(address, network) claim cooldown: this guards the server
// against request floods, not the faucet balance against drains.
type Throttle struct {
	mu       sync.Mutex
	visitors map[string]*ipLimiter
	rate     rate.Limit
	burst    int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewThrottle allows perMinute requests per IP with a burst of the same size.
func NewThrottle(perMinute int) *Throttle {
	t := &Throttle{
		visitors: make(map[string]*ipLimiter),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		stop:     make(chan struct{}),
	}
	go t.evictLoop()
	return t
}

// Stop terminates the background eviction goroutine. Safe to call more than
// once; the throttle keeps serving requests, only eviction halts.
func (t *Throttle) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Handler is the chi middleware.
func (t *Throttle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !t.allow(ip) {
			slog.Warn("request throttled", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(models.APIError{
				Error: models.APIErrorDetail{
					Code:    config.ErrorTooManyRequests,
					Message: "too many requests, slow down",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (t *Throttle) allow(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.visitors[ip]
	if !ok {
		v = &ipLimiter{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (t *Throttle) evictLoop() {
	ticker := time.NewTicker(throttleIdleEvict)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			for ip, v := range t.visitors {
				if time.Since(v.lastSeen) > throttleIdleEvict {
					delete(t.visitors, ip)
				}
			}
			t.mu.Unlock()
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
