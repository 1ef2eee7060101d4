package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/mq"
	"github.com/xiebiao/library/pkg/tracing"
)

// App 组装完成的服务
type App struct {
	Config *config.Config
	Server *http.Server
}

// tracerReady 标记TracerProvider已安装
type tracerReady struct{}

// provideLogger 创建并设置全局slog
func provideLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	l, closer, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(l)
	return l, func() { _ = closer() }, nil
}

// provideTracing 未启用时只安装传播器
func provideTracing(cfg *config.Config, _ *slog.Logger) (tracerReady, func(), error) {
	shutdown, err := tracing.Init(context.Background(), tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return tracerReady{}, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}
	return tracerReady{}, cleanup, nil
}

// provideDB 连接数据库(按配置自动迁移)
func provideDB(cfg *config.Config, _ *slog.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = database.Close(db) }, nil
}

// provideRedis 缓存未启用或Redis不可达时返回nil，服务降级为直连数据库
func provideRedis(cfg *config.Config, _ *slog.Logger) (*goredis.Client, func()) {
	if !cfg.Cache.Enabled {
		return nil, func() {}
	}
	client, err := redis.NewClient(cfg)
	if err != nil {
		slog.Warn("redis unavailable, catalog cache and token blacklist disabled", "error", err)
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

// provideCatalogCache 没有Redis时返回nil接口
func provideCatalogCache(cfg *config.Config, client *goredis.Client, m *metrics.Metrics) appbook.Cache {
	if client == nil {
		return nil
	}
	breaker := redis.NewCacheBreaker(cfg.Cache.BreakerFailures, cfg.Cache.BreakerCooldown, m)
	return redis.NewCatalogCache(client, cfg.Cache.TTL, breaker, m)
}

func provideTokenBlacklist(client *goredis.Client) *redis.TokenBlacklist {
	if client == nil {
		return nil
	}
	return redis.NewTokenBlacklist(client)
}

// 下面两个provider避免把nil指针装进非nil接口
func provideTokenRevoker(b *redis.TokenBlacklist) appuser.TokenRevoker {
	if b == nil {
		return nil
	}
	return b
}

func provideRevocationChecker(b *redis.TokenBlacklist) middleware.RevocationChecker {
	if b == nil {
		return nil
	}
	return b
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expire, cfg.JWT.Issuer)
}

func provideUserService(repo user.Repository, cfg *config.Config) user.Service {
	return user.NewService(repo, cfg.Auth.BcryptCost)
}

// provideEventPublisher 未启用或连接失败时返回nil，借阅流程不受影响
func provideEventPublisher(cfg *config.Config, m *metrics.Metrics, _ *slog.Logger) (apploan.EventPublisher, func()) {
	if !cfg.MQ.Enabled {
		return nil, func() {}
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
	if err != nil {
		slog.Warn("rabbitmq unavailable, loan events disabled", "error", err)
		return nil, func() {}
	}
	return messaging.NewLoanEventPublisher(publisher, m), func() { _ = publisher.Close() }
}

// provideServer CORS包在gin外层
func provideServer(cfg *config.Config, engine *gin.Engine, _ tracerReady) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           middleware.CORS(cfg.CORS.AllowedOrigins)(engine),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
}
