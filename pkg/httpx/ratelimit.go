package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters for an endpoint class.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Rate limit profiles per endpoint class. The Graph exchange endpoint gets
// the strict profile since every hit costs two upstream provider calls.
// Overridable via RATELIMIT_{STRICT,MODERATE,LENIENT}_* environment variables.
var (
	StrictLimit = RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		Burst:             5,
	}

	ModerateLimit = RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		Burst:             20,
	}

	LenientLimit = RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		Burst:             100,
	}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
}

// ParseRateLimitFromEnv reads rate limit overrides from environment
// variables following the pattern RATELIMIT_{prefix}_{field}, e.g.
// RATELIMIT_STRICT_REQUESTS, RATELIMIT_STRICT_WINDOW_SEC, RATELIMIT_STRICT_BURST.
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// KeyExtractor extracts a unique key from the request for rate limiting
// purposes (e.g. IP address or operator ID).
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request, honouring
// X-Forwarded-For and X-Real-IP for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// OperatorKeyExtractor keys the limit on the authenticated operator, falling
// back to the client IP for unauthenticated requests.
func OperatorKeyExtractor(r *http.Request) string {
	if id := OperatorIDFromCtx(r.Context()); id != "" {
		return "op:" + id
	}
	return "ip:" + IPKeyExtractor(r)
}

// limiterEntry tracks a rate limiter and when it was last used so idle
// entries can be evicted.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterRegistry struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	config  RateLimitConfig
}

func newLimiterRegistry(config RateLimitConfig) *limiterRegistry {
	reg := &limiterRegistry{
		entries: make(map[string]*limiterEntry),
		config:  config,
	}
	go reg.evictLoop()
	return reg
}

func (reg *limiterRegistry) get(key string) *rate.Limiter {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	entry, ok := reg.entries[key]
	if !ok {
		limit := rate.Every(reg.config.Window / time.Duration(reg.config.RequestsPerWindow))
		entry = &limiterEntry{limiter: rate.NewLimiter(limit, reg.config.Burst)}
		reg.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// evictLoop drops limiters idle for more than three windows.
func (reg *limiterRegistry) evictLoop() {
	interval := reg.config.Window
	if interval < time.Minute {
		interval = time.Minute
	}
	for range time.Tick(interval) {
		cutoff := time.Now().Add(-3 * reg.config.Window)
		reg.mu.Lock()
		for key, entry := range reg.entries {
			if entry.lastSeen.Before(cutoff) {
				delete(reg.entries, key)
			}
		}
		reg.mu.Unlock()
	}
}

// RateLimitMiddleware enforces the given config, keyed by keyExtractor.
// Rejected requests get 429 with a Retry-After hint.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	registry := newLimiterRegistry(config)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !registry.get(keyExtractor(r)).Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(int(config.Window.Seconds())))
				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"message": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP rate limits by client IP address.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByOperator rate limits by authenticated operator.
func RateLimitByOperator(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, OperatorKeyExtractor)
}
