package middleware

import (
	"net/http"

	"github.com/anoixa/album-chat/api/common"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"
)

type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

// NewConcurrencyLimiter 并发限制器
func NewConcurrencyLimiter(maxConcurrency int64) *ConcurrencyLimiter {
	if maxConcurrency <= 0 {
		maxConcurrency = 200
	}
	return &ConcurrencyLimiter{
		sem: semaphore.NewWeighted(maxConcurrency),
	}
}

// Middleware 返回 Gin 中间件，超出并发上限立即返回 503
// WebSocket 升级请求不占用名额，长连接由订阅表自行管理
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			c.Next()
			return
		}

		if !cl.sem.TryAcquire(1) {
			common.RespondError(c, http.StatusServiceUnavailable, "Server is busy, please try again later")
			c.Abort()
			return
		}
		defer cl.sem.Release(1)

		c.Next()
	}
}
