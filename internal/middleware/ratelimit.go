// 包 middleware：入口级 HTTP 中间件（限流、来源白名单、跨域）
package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"marathon-api/internal/metrics"
)

// 文档注释：令牌桶限流（每秒）
// 背景：上传与写接口会触发文件写入和数据库事务，在流量峰值时对入口限速。
// 约束：简化实现，不做排队，超出即返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limit：按令牌桶放行
func (tb *TokenBucket) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			metrics.RateLimitedTotal.Inc()
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitFromEnv：RATE_LIMIT_ENABLED=true 时启用，RATE_LIMIT_QPS 默认 200
func RateLimitFromEnv(next http.Handler) http.Handler {
	if os.Getenv("RATE_LIMIT_ENABLED") != "true" {
		return next
	}
	qps := 200
	if s := os.Getenv("RATE_LIMIT_QPS"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			qps = n
		}
	}
	return NewTokenBucket(qps).Limit(next)
}
