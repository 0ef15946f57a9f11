package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"mesem-yoklama/pkg/redis"
	"mesem-yoklama/pkg/response"
)

// RateLimit 速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 窗口时长
// 优先使用 Redis 固定窗口计数（多实例共享）；rdb 为 nil 时退回进程内令牌桶
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return localRateLimit(limit, window)
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// keyedLimiter 按 key（IP + 路由）维护独立的令牌桶
type keyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func newKeyedLimiter(r rate.Limit, b int) *keyedLimiter {
	return &keyedLimiter{limiters: make(map[string]*rate.Limiter), r: r, b: b}
}

func (k *keyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.limiters[key]
	if !ok {
		l = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = l
	}
	return l
}

// localRateLimit 窗口内 limit 次请求折算为令牌桶：突发 limit，每 window/limit 补充一个令牌
func localRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 1
	}
	limiters := newKeyedLimiter(rate.Every(window/time.Duration(limit)), limit)

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP() + ":" + c.FullPath()).Allow() {
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
