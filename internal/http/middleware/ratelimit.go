package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdle  = 10 * time.Minute
	sweepEvery   = 256
	retryMinimum = time.Second
)

// KeyFunc escolhe a chave de limitação; false deixa a requisição passar.
type KeyFunc func(*http.Request) (string, bool)

// RateLimiter mantém um token bucket por chave (IP, usuário ou login).
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	inserts int
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter cria limitador com reqPerSec de reposição e rajada burst.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(reqPerSec),
		burst:   burst,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// reserve consome um token e informa quanto esperar quando não houver saldo.
func (l *RateLimiter) reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
		l.inserts++
		if l.inserts%sweepEvery == 0 {
			l.sweep(now)
		}
	}
	b.lastSeen = now

	if b.lim.AllowN(now, 1) {
		return true, 0
	}
	wait := retryMinimum
	if l.limit > 0 {
		if d := time.Duration(float64(time.Second) / float64(l.limit)); d > wait {
			wait = d
		}
	}
	return false, wait
}

func (l *RateLimiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > limiterIdle {
			delete(l.buckets, k)
		}
	}
}

// Middleware aplica o limite pela chave devolvida por keyFn.
func (l *RateLimiter) Middleware(keyFn KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := keyFn(r)
			if !ok || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if allowed, wait := l.reserve(key); !allowed {
				secs := int(math.Ceil(wait.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "limite de requisições excedido")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IPRateLimit limita por IP remoto (já normalizado pelo RealIP do chi).
func IPRateLimit(l *RateLimiter) func(http.Handler) http.Handler {
	return l.Middleware(func(r *http.Request) (string, bool) {
		return "ip:" + remoteHost(r), true
	})
}

// UserRateLimit limita por usuário autenticado; anônimos passam.
func UserRateLimit(l *RateLimiter) func(http.Handler) http.Handler {
	return l.Middleware(func(r *http.Request) (string, bool) {
		id, ok := GetIdentity(r.Context())
		if !ok {
			return "", false
		}
		return "usuario:" + strconv.Itoa(id.ID), true
	})
}

// LoginRateLimit limita tentativas de login por IP.
func LoginRateLimit(l *RateLimiter) func(http.Handler) http.Handler {
	return l.Middleware(func(r *http.Request) (string, bool) {
		return "login:" + remoteHost(r), true
	})
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
