package core

import (
	"github.com/anoixa/album-chat/api"
	"github.com/anoixa/album-chat/api/common"
	handlerAlbums "github.com/anoixa/album-chat/api/handler/albums"
	handlerChats "github.com/anoixa/album-chat/api/handler/chats"
	"github.com/anoixa/album-chat/api/middleware"
	"github.com/anoixa/album-chat/config"
	"github.com/anoixa/album-chat/database"
	svcAlbums "github.com/anoixa/album-chat/internal/albums"
	"github.com/anoixa/album-chat/internal/auth"
	"github.com/anoixa/album-chat/internal/chat"
	"github.com/anoixa/album-chat/internal/live"
	"github.com/gin-gonic/gin"
)

// ServerVersion 版本信息
type ServerVersion struct {
	Version    string
	CommitHash string
}

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	DB           database.Provider
	Registry     *live.Registry
	LoginService *auth.LoginService
	AlbumService *svcAlbums.Service
	ChatService  *chat.Service
	LiveOptions  live.Options
	Limiter      *middleware.ConcurrencyLimiter

	ServerVersion ServerVersion
	Config        *config.Config
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	// 基础路由
	registerBasicRoutes(router, deps)

	// API 路由
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	healthHandler := NewHealthHandler(deps.DB, deps.Registry)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": deps.ServerVersion.Version,
			"commit":  deps.ServerVersion.CommitHash,
		})
	})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	var allowedOrigins []string
	if deps.Config != nil {
		allowedOrigins = deps.Config.AllowedOrigins()
	}

	loginHandler := api.NewLoginHandler(deps.LoginService, deps.Config)
	albumHandler := handlerAlbums.NewHandler(deps.AlbumService, deps.ChatService)
	chatHandler := handlerChats.NewHandler(deps.ChatService, deps.Registry, deps.LoginService, deps.LiveOptions, allowedOrigins)
	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewConcurrencyLimiter(0)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) {
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	apiGroup.Use(limiter.Middleware())
	{
		// 认证路由
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", loginHandler.RegisterHandlerFunc) // POST /api/auth/register
			authGroup.POST("/login", loginHandler.LoginHandlerFunc)       // POST /api/auth/login
			authGroup.POST("/logout", loginHandler.LogoutHandlerFunc)     // POST /api/auth/logout
		}

		v1 := apiGroup.Group("/v1")

		// 实时连接自行校验会话，失败时以 1008 关闭而不是返回 JSON
		v1.GET("/chats/:chatId/live", chatHandler.LiveHandler) // GET /api/v1/chats/{chatId}/live

		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(deps.LoginService))
		{
			// 当前用户
			authed.GET("/me", loginHandler.GetMeHandlerFunc)
			authed.PUT("/me", loginHandler.UpdateMeHandlerFunc)
			authed.DELETE("/me", loginHandler.DeleteMeHandlerFunc)

			// albums
			albumsGroup := authed.Group("/albums")
			{
				albumsGroup.GET("", albumHandler.ListAlbumsHandler)
				albumsGroup.POST("", albumHandler.CreateAlbumHandler)
				albumsGroup.GET("/:id", albumHandler.GetAlbumHandler)
				albumsGroup.PUT("/:id", albumHandler.UpdateAlbumHandler)
				albumsGroup.DELETE("/:id", albumHandler.DeleteAlbumHandler)

				// 参与者
				albumsGroup.GET("/:id/participants", albumHandler.ListParticipantsHandler)
				albumsGroup.POST("/:id/participants", albumHandler.AddParticipantHandler)
				albumsGroup.DELETE("/:id/participants/:userId", albumHandler.RemoveParticipantHandler)

				// 相册图片
				albumsGroup.GET("/:id/images", albumHandler.ListImagesHandler)
				albumsGroup.POST("/:id/images", albumHandler.CreateImageHandler)
				albumsGroup.GET("/:id/images/:imageId", albumHandler.GetImageHandler)
				albumsGroup.PUT("/:id/images/:imageId", albumHandler.UpdateImageHandler)
				albumsGroup.DELETE("/:id/images/:imageId", albumHandler.DeleteImageHandler)
				albumsGroup.GET("/:id/images/:imageId/chat", albumHandler.GetImageChatHandler)
			}

			// chats
			chatsGroup := authed.Group("/chats")
			{
				chatsGroup.GET("/:chatId", chatHandler.GetChatHandler)
				chatsGroup.GET("/:chatId/messages", chatHandler.ListMessagesHandler)
				chatsGroup.POST("/:chatId/messages", chatHandler.PostMessageHandler)
			}
		}
	}
}
