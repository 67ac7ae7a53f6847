package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/pantrypal/internal/auth"
)

// RealIP returns the client address. Forwarding headers are used only when
// they hold a parseable IP; CF-Connecting-IP wins over the first hop of
// X-Forwarded-For.
func RealIP(r *http.Request) string {
	if ip := validIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := validIP(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func validIP(s string) string {
	s = strings.TrimSpace(s)
	if net.ParseIP(s) == nil {
		return ""
	}
	return s
}

// KeyFunc names the bucket a request is counted against.
type KeyFunc func(*http.Request) string

// ByIP counts requests per client address.
func ByIP(r *http.Request) string {
	return "ip:" + RealIP(r)
}

// ByCaller counts requests per authenticated email, falling back to the
// client address when RequireAuth has not run.
func ByCaller(r *http.Request) string {
	if email := auth.Email(r.Context()); email != "" {
		return "user:" + email
	}
	return ByIP(r)
}

type bucket struct {
	used    int
	resetAt time.Time
}

// Limiter admits up to limit requests per key in each fixed window.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Take spends one request from key's bucket. When the bucket is empty it
// returns false and the time left until the window resets.
func (l *Limiter) Take(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		l.buckets[key] = &bucket{used: 1, resetAt: now.Add(l.window)}
		return true, 0
	}
	if b.used >= l.limit {
		return false, b.resetAt.Sub(now)
	}
	b.used++
	return true, 0
}

// Sweep drops buckets whose window has passed and reports how many remain.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
		}
	}
	return len(l.buckets)
}

// RateLimit rejects requests over the limiter's budget with 429 and a
// Retry-After rounded up to whole seconds.
func RateLimit(l *Limiter, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Take(key(r))
			if !ok {
				secs := int(math.Ceil(wait.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
