package ratelimit

import (
	"net/http"
	"sync"

	"secretboard/internal/http/httputils"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Limiter хранит отдельный token bucket на каждого пользователя
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewLimiter создаёт лимитер; perSecond <= 0 отключает ограничение
func NewLimiter(perSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0
}

func (l *Limiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}

	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

// MiddlewareRateLimit ограничивает частоту запросов пользователя.
// Ключ: имя пользователя, если его нет, то адрес клиента.
func MiddlewareRateLimit(l *Limiter, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !l.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := httputils.UserFromContext(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			if !l.Allow(key) {
				log.Warn().Str("key", key).Str("path", r.URL.Path).Msg("rate limit exceeded")
				httputils.WriteTextError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
