package core

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/album-chat/config"
	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/internal/live"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// HealthHandler 健康检查
type HealthHandler struct {
	db       database.Provider
	registry *live.Registry
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(db database.Provider, registry *live.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

// Handle 返回数据库状态与实时连接统计，数据库不可用时返回 503
func (h *HealthHandler) Handle(c *gin.Context) {
	dbStatus := checkDatabaseHealth(c.Request.Context(), h.db)

	health := gin.H{
		"status":  "ok",
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks": gin.H{
			"database": dbStatus,
		},
	}
	if h.registry != nil {
		health["live"] = h.registry.Stats()
	}

	httpStatus := http.StatusOK
	if dbStatus != "ok" {
		health["status"] = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, health)
}

func checkDatabaseHealth(ctx context.Context, provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := provider.Ping(ctx); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}
