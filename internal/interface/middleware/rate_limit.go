package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-api/pkg/response"
)

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true for requests that bypass the limit.
type AllowFunc func(*gin.Context) bool

func clientKey(c *gin.Context) string {
	if ip := ClientAddress(c); ip != "" {
		return ip
	}
	return "unknown"
}

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + clientKey(c)
	}
}

// KeyByIPAndRoute limits by client IP, method and route pattern
func KeyByIPAndRoute() KeyFunc {
	return func(c *gin.Context) string {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		return "rl:route:" + c.Request.Method + ":" + route + ":ip:" + clientKey(c)
	}
}

// returns {hits, pttl}; the window starts on the first hit
var fixedWindowScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("PTTL", KEYS[1])}
`)

type fixedWindow struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func (w fixedWindow) hit(ctx context.Context, key string) (int, time.Duration, error) {
	res, err := fixedWindowScript.Run(ctx, w.rdb, []string{key}, w.window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, redis.Nil
	}
	return int(res[0]), time.Duration(res[1]) * time.Millisecond, nil
}

// RateLimit allows limit requests per key in a fixed window kept in redis and
// answers 429 beyond that. OPTIONS requests are never counted. When redis
// is nil or unreachable every request passes.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	fw := fixedWindow{rdb: rdb, limit: limit, window: window}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		hits, ttl, err := fw.hit(c.Request.Context(), keyFn(c))
		if err != nil {
			c.Next()
			return
		}

		reset := 0
		if ttl > 0 {
			reset = int((ttl + time.Second - 1) / time.Second)
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(fw.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(fw.limit-hits, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if hits <= fw.limit {
			c.Next()
			return
		}
		if reset > 0 {
			c.Header("Retry-After", strconv.Itoa(reset))
		}
		response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
		c.Abort()
	}
}
