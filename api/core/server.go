package core

import (
	"net/http"
	"time"

	"github.com/anoixa/album-chat/api/middleware"
	"github.com/anoixa/album-chat/config"
	"github.com/anoixa/album-chat/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter 创建 gin 路由并注册全部接口
func NewRouter(container *app.Container) *gin.Engine {
	cfg := container.GetConfig()
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	RegisterRoutes(router, &RouterDependencies{
		DB:            container.GetDatabaseProvider(),
		Registry:      container.GetRegistry(),
		LoginService:  container.GetLoginService(),
		AlbumService:  container.GetAlbumService(),
		ChatService:   container.GetChatService(),
		LiveOptions:   container.GetLiveOptions(),
		Limiter:       middleware.NewConcurrencyLimiter(cfg.ServerMaxConcurrency),
		ServerVersion: ServerVersion{Version: config.Version, CommitHash: config.CommitHash},
		Config:        cfg,
	})

	return router
}

// StartServer 创建 http.Server
func StartServer(container *app.Container) *http.Server {
	cfg := container.GetConfig()

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      NewRouter(container),
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}
}
