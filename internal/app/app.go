package app

import (
	"fmt"

	"github.com/anoixa/album-chat/cache"
	"github.com/anoixa/album-chat/config"
	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/database/repo/accounts"
	"github.com/anoixa/album-chat/database/repo/albums"
	"github.com/anoixa/album-chat/database/repo/chats"
	"github.com/anoixa/album-chat/database/repo/images"
	"github.com/anoixa/album-chat/internal/access"
	albumsvc "github.com/anoixa/album-chat/internal/albums"
	"github.com/anoixa/album-chat/internal/auth"
	"github.com/anoixa/album-chat/internal/chat"
	"github.com/anoixa/album-chat/internal/live"
	"github.com/anoixa/album-chat/utils"
	cryptopackage "github.com/anoixa/album-chat/utils/crypto"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	cacheFactory    *cache.Factory
	hasher          *cryptopackage.Hasher

	AccountsRepo *accounts.Repository
	AlbumsRepo   *albums.Repository
	ImagesRepo   *images.Repository
	ChatsRepo    *chats.Repository

	registry     *live.Registry
	engine       *access.Engine
	jwtService   *auth.JWTService
	loginService *auth.LoginService
	albumService *albumsvc.Service
	chatService  *chat.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// NewContainerWithProviders 使用已有的数据库与缓存创建容器，用于测试和迁移工具
func NewContainerWithProviders(cfg *config.Config, db database.Provider, cacheProvider cache.Provider, hasher *cryptopackage.Hasher) *Container {
	return &Container{
		config:          cfg,
		databaseFactory: database.NewFactoryWithProvider(db),
		cacheFactory:    cache.NewFactoryWithProvider(cacheProvider),
		hasher:          hasher,
	}
}

func (c *Container) Init() error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	if err := c.InitServices(); err != nil {
		return err
	}
	return nil
}

func (c *Container) InitDatabase() error {
	utils.LogIfDev("Initializing DI container...")

	if c.databaseFactory == nil {
		if err := c.initDatabaseFactory(); err != nil {
			return fmt.Errorf("failed to initialize database factory: %w", err)
		}
	}

	c.initRepositories()

	utils.LogIfDev("DI container initialized successfully")
	return nil
}

func (c *Container) InitServices() error {
	if c.cacheFactory == nil {
		factory, err := cache.NewFactory(c.config)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		c.cacheFactory = factory
	}
	if c.hasher == nil {
		c.hasher = cryptopackage.NewHasher(cryptopackage.DefaultParams)
	}

	jwtService, err := auth.NewJWTService(auth.TokenConfig{
		Secret:    []byte(c.config.JWTSecret),
		ExpiresIn: c.config.JWTExpiresIn,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	c.jwtService = jwtService

	c.registry = live.NewRegistry()
	c.engine = access.NewEngine(c.AlbumsRepo, c.ImagesRepo, c.ChatsRepo)
	tokens := auth.NewTokenManager(c.AccountsRepo, c.cacheFactory.GetProvider())
	c.loginService = auth.NewLoginService(c.AccountsRepo, jwtService, tokens, c.hasher, c.registry)
	c.albumService = albumsvc.NewService(c.engine, c.AlbumsRepo, c.ImagesRepo, c.AccountsRepo, c.ChatsRepo, c.registry)
	c.chatService = chat.NewService(c.engine, c.ChatsRepo, c.registry)

	utils.LogIfDev("Services initialized")
	return nil
}

// initRepositories 初始化所有仓库
func (c *Container) initRepositories() {
	db := c.databaseFactory.GetProvider()
	c.AccountsRepo = accounts.NewRepository(db)
	c.AlbumsRepo = albums.NewRepository(db)
	c.ImagesRepo = images.NewRepository(db)
	c.ChatsRepo = chats.NewRepository(db)
	utils.LogIfDev("Repositories initialized")
}

// initDatabaseFactory 初始化数据库工厂
func (c *Container) initDatabaseFactory() error {
	factory, err := database.NewFactory(c.config)
	if err != nil {
		return err
	}
	c.databaseFactory = factory
	utils.LogIfDev("Database factory initialized")
	return nil
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	if c.databaseFactory == nil {
		return nil
	}
	return c.databaseFactory.GetProvider()
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRegistry 获取实时订阅表
func (c *Container) GetRegistry() *live.Registry {
	return c.registry
}

// GetLiveOptions 实时连接参数
func (c *Container) GetLiveOptions() live.Options {
	return live.Options{
		SendBuffer:   c.config.LiveSendBuffer,
		WriteTimeout: c.config.LiveWriteTimeout,
		PongTimeout:  c.config.LivePongTimeout,
	}
}

// GetLoginService 获取登录服务
func (c *Container) GetLoginService() *auth.LoginService {
	return c.loginService
}

// GetAlbumService 获取相册服务
func (c *Container) GetAlbumService() *albumsvc.Service {
	return c.albumService
}

// GetChatService 获取消息服务
func (c *Container) GetChatService() *chat.Service {
	return c.chatService
}

// Close 关闭所有服务
func (c *Container) Close() error {
	utils.LogIfDev("Closing DI container...")

	if c.cacheFactory != nil {
		if err := c.cacheFactory.Close(); err != nil {
			utils.LogIfDevf("Error closing cache: %v", err)
		}
	}

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			utils.LogIfDevf("Error closing database factory: %v", err)
		}
	}

	utils.LogIfDev("DI container closed")
	return nil
}
