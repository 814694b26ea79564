package cache

import (
	"fmt"

	"github.com/recoverly/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReportCacheFactory creates report caches based on configuration
type ReportCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReportCacheFactoryOption is a functional option for configuring the factory
type ReportCacheFactoryOption func(*ReportCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ReportCacheFactoryOption {
	return func(f *ReportCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReportCacheFactory creates a new factory
func NewReportCacheFactory(cfg config.RedisConfig, opts ...ReportCacheFactoryOption) *ReportCacheFactory {
	f := &ReportCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed report cache
func (f *ReportCacheFactory) CreateRedisCache() (ReportCache, error) {
	c, err := NewRedisReportCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis report cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates an in-memory report cache.
// Cached reports are not shared across process instances, so distributed
// deployments may serve slightly stale reports after a write on another node.
func (f *ReportCacheFactory) CreateInMemoryCache() ReportCache {
	return NewInMemoryReportCache()
}

// CreateCache tries Redis first and falls back to an in-memory cache when
// Redis is unavailable and AllowInMemoryFallback is true.
func (f *ReportCacheFactory) CreateCache() (ReportCache, error) {
	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis report cache")
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for report cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report cache",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
