package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/album-chat/cache/memory"
	"github.com/anoixa/album-chat/cache/redis"
	"github.com/anoixa/album-chat/config"
)

// Factory 缓存工厂，根据配置选择后端
type Factory struct {
	provider Provider
}

// NewFactory 根据配置创建缓存工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	var (
		provider Provider
		err      error
	)

	switch cfg.CacheType {
	case "", "memory":
		provider, err = memory.NewMemory(memory.DefaultConfig())
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		provider, err = redis.NewRedis(ctx, redis.Config{
			Address:      cfg.CacheRedisAddr,
			Password:     cfg.CacheRedisPassword,
			DB:           cfg.CacheRedisDB,
			PoolSize:     10,
			MinIdleConns: 2,
		})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cache: %w", cfg.CacheType, err)
	}

	log.Printf("[CacheFactory] Using %s cache provider", provider.Name())
	return &Factory{provider: provider}, nil
}

// NewFactoryWithProvider 使用已有的提供者创建工厂
func NewFactoryWithProvider(provider Provider) *Factory {
	return &Factory{provider: provider}
}

// GetProvider 获取缓存提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭缓存提供者
func (f *Factory) Close() error {
	if f.provider == nil {
		return nil
	}
	return f.provider.Close()
}
