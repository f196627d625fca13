package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/i-reserve/room-reservation/internal/config"
)

// bucketScript refills in whole intervals and takes one token per call.
// It returns {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
  tokens = math.min(capacity, tokens + intervals * refill_tokens)
  last_refill = last_refill + intervals * interval_ms
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

// limiter takes one token for key.
type limiter interface {
	take(ctx context.Context, key string) (allowed bool, remaining int64, retry time.Duration, err error)
}

// NewTokenBucket limits requests per key.  Buckets live in Redis when rdb
// is non-nil so every instance shares them; otherwise each process keeps
// its own buckets in memory.  A Redis failure lets the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	var lim limiter
	if rdb != nil {
		lim = &redisBuckets{rdb: rdb, cfg: cfg}
	} else {
		mem := newMemoryBuckets(cfg)
		go mem.gc(context.Background())
		lim = mem
	}
	return rateLimit(cfg, lim)
}

func rateLimit(cfg config.RateLimitConfig, lim limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			allowed, remaining, retry, err := lim.take(c.Request().Context(), key)
			if err != nil {
				logrus.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if allowed {
				return next(c)
			}

			secs := int(math.Ceil(retry.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			logrus.WithFields(logrus.Fields{"key": key, "retry_s": secs}).Info("rate limit exceeded")
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Please try again shortly.")
		}
	}
}

type redisBuckets struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
}

func (b *redisBuckets) take(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	vals, err := bucketScript.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Result()
	if err != nil {
		return false, 0, 0, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected bucket script result %#v", vals)
	}
	return asInt64(arr[0]) == 1, asInt64(arr[1]), time.Duration(asInt64(arr[2])) * time.Millisecond, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

type memoryBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// memoryBuckets is the single-process fallback.  Idle buckets are dropped
// by gc after the configured TTL.
type memoryBuckets struct {
	mu    sync.Mutex
	m     map[string]*memoryBucket
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
}

func newMemoryBuckets(cfg config.RateLimitConfig) *memoryBuckets {
	per := cfg.RefillInterval / time.Duration(cfg.RefillTokens)
	return &memoryBuckets{
		m:     make(map[string]*memoryBucket),
		limit: rate.Every(per),
		burst: cfg.Capacity,
		ttl:   cfg.TTL,
		now:   time.Now,
	}
}

func (b *memoryBuckets) take(_ context.Context, key string) (bool, int64, time.Duration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	kb, ok := b.m[key]
	if !ok {
		kb = &memoryBucket{lim: rate.NewLimiter(b.limit, b.burst)}
		b.m[key] = kb
	}
	kb.seen = now

	r := kb.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay, nil
	}
	return true, int64(kb.lim.TokensAt(now)), 0, nil
}

func (b *memoryBuckets) gc(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sweep()
		}
	}
}

func (b *memoryBuckets) sweep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for k, v := range b.m {
		if now.Sub(v.seen) > b.ttl {
			delete(b.m, k)
		}
	}
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := userID(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
