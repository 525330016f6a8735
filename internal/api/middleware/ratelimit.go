package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	msgRateLimited        = "слишком много запросов, попробуйте позже"
	msgRateLimiterOffline = "сервис временно недоступен"
)

// fixed window: первый INCR в окне ставит TTL
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RateLimiter ограничение частоты запросов на клиента, общее для всех инстансов через Redis
type RateLimiter struct {
	rdb      redis.Scripter
	limit    int
	window   time.Duration
	prefix   string
	failOpen bool
	logger   Logger
}

// NewRateLimiter создает ограничитель; failOpen пропускает запросы, если Redis недоступен
func NewRateLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string, failOpen bool, logger Logger) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RateLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix, failOpen: failOpen, logger: logger}
}

// Middleware ключ окна: prefix:slug:ip
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)

		count, err := rl.incr(r.Context(), key)
		if err != nil {
			rl.logger.Warn("RateLimit: redis error for key=%s: %v", key, err)
			if rl.failOpen {
				next.ServeHTTP(w, r)
				return
			}
			handlers.RespondError(w, http.StatusServiceUnavailable, "rate_limiter_unavailable", msgRateLimiterOffline)
			return
		}

		if count > int64(rl.limit) {
			rl.logger.Warn("RateLimit: key=%s exceeded %d requests per %s", key, rl.limit, rl.window)
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			handlers.RespondError(w, http.StatusTooManyRequests, domain.Reason("rate_limited"), msgRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) key(r *http.Request) string {
	parts := []string{rl.prefix}
	if scope, ok := GetScope(r.Context()); ok {
		parts = append(parts, scope.OrganizationID().String())
	}
	return strings.Join(append(parts, clientIP(r)), ":")
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected script result type %T", res)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
