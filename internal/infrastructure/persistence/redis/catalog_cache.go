package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/metrics"
)

const (
	catalogPrefix  = KeyPrefix + "catalog:"
	catalogListKey = catalogPrefix + "list:"
	catalogAllKey  = catalogPrefix + "all"

	metricsLabel = "catalog"
)

// CatalogCache 图书目录缓存(Cache-Aside)
// 所有Redis调用都经过熔断器，熔断期间读按未命中处理、写直接跳过
// 失效失败时记为待清空，清空成功前读按未命中处理、写跳过
type CatalogCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.Breaker
	metrics *metrics.Metrics

	flushMu sync.Mutex
	stale   atomic.Bool
}

type cachedPage struct {
	Books []*book.Book `json:"books"`
	Total int64        `json:"total"`
}

// NewCatalogCache 创建目录缓存
func NewCatalogCache(client *redis.Client, ttl time.Duration, breaker *circuitbreaker.Breaker, m *metrics.Metrics) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl, breaker: breaker, metrics: m}
}

// NewCacheBreaker 缓存用熔断器，redis.Nil不算失败
func NewCacheBreaker(failures uint32, cooldown time.Duration, m *metrics.Metrics) *circuitbreaker.Breaker {
	return circuitbreaker.New(circuitbreaker.Settings{
		Name:    "redis",
		Timeout: cooldown,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			m.SetBreakerState(name, int(to))
		},
	})
}

// GetList 分页结果
func (c *CatalogCache) GetList(ctx context.Context, params book.ListParams) ([]*book.Book, int64, bool, error) {
	var page cachedPage
	hit, err := c.get(ctx, ListKey(params), &page)
	if err != nil || !hit {
		return nil, 0, false, err
	}
	return page.Books, page.Total, true, nil
}

func (c *CatalogCache) SetList(ctx context.Context, params book.ListParams, books []*book.Book, total int64) error {
	return c.set(ctx, ListKey(params), cachedPage{Books: books, Total: total})
}

// GetBook 单本图书
func (c *CatalogCache) GetBook(ctx context.Context, id uint) (*book.Book, bool, error) {
	var b book.Book
	hit, err := c.get(ctx, BookKey(id), &b)
	if err != nil || !hit {
		return nil, false, err
	}
	return &b, true, nil
}

func (c *CatalogCache) SetBook(ctx context.Context, b *book.Book) error {
	return c.set(ctx, BookKey(b.ID), b)
}

// GetAll 完整目录
func (c *CatalogCache) GetAll(ctx context.Context) ([]*book.Book, bool, error) {
	var books []*book.Book
	hit, err := c.get(ctx, catalogAllKey, &books)
	if err != nil || !hit {
		return nil, false, err
	}
	return books, true, nil
}

func (c *CatalogCache) SetAll(ctx context.Context, books []*book.Book) error {
	return c.set(ctx, catalogAllKey, books)
}

// Invalidate 删除所有分页key、完整目录以及指定图书的key
// 未指定图书时清空整个目录缓存
// 熔断或Redis出错时返回错误，之后第一次访问缓存前整体清空
func (c *CatalogCache) Invalidate(ctx context.Context, ids ...uint) error {
	err := c.execute(func() error { return c.unlink(ctx, ids) })
	if err != nil {
		c.flushMu.Lock()
		c.stale.Store(true)
		c.flushMu.Unlock()
		return fmt.Errorf("缓存失效未完成，待恢复后清空: %w", err)
	}
	return nil
}

func (c *CatalogCache) unlink(ctx context.Context, ids []uint) error {
	pattern := catalogPrefix + "*"
	keys := []string{catalogAllKey}
	if len(ids) > 0 {
		pattern = catalogListKey + "*"
		for _, id := range ids {
			keys = append(keys, BookKey(id))
		}
	}

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("扫描缓存key失败: %w", err)
	}

	if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("删除缓存失败: %w", err)
	}
	return nil
}

// ready 有待清空的失效时先清空整个目录缓存，清空失败返回false
func (c *CatalogCache) ready(ctx context.Context) bool {
	if !c.stale.Load() {
		return true
	}

	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	if !c.stale.Load() {
		return true
	}
	if err := c.execute(func() error { return c.unlink(ctx, nil) }); err != nil {
		return false
	}
	c.stale.Store(false)
	slog.InfoContext(ctx, "pending catalog invalidation flushed")
	return true
}

func (c *CatalogCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.ready(ctx) {
		c.metrics.ObserveCache(metricsLabel, metrics.CacheMiss)
		return false, nil
	}

	var raw []byte
	err := c.guard(func() error {
		var err error
		raw, err = c.client.Get(ctx, key).Bytes()
		return err
	})

	switch {
	case errors.Is(err, redis.Nil), raw == nil && err == nil:
		c.metrics.ObserveCache(metricsLabel, metrics.CacheMiss)
		return false, nil
	case err != nil:
		c.metrics.ObserveCache(metricsLabel, metrics.CacheError)
		return false, fmt.Errorf("获取缓存失败: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.metrics.ObserveCache(metricsLabel, metrics.CacheError)
		return false, fmt.Errorf("反序列化失败: %w", err)
	}

	c.metrics.ObserveCache(metricsLabel, metrics.CacheHit)
	return true, nil
}

func (c *CatalogCache) set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	if !c.ready(ctx) {
		return nil
	}

	return c.guard(func() error {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return fmt.Errorf("设置缓存失败: %w", err)
		}
		return nil
	})
}

// guard 熔断打开时跳过调用
func (c *CatalogCache) guard(fn func() error) error {
	err := c.execute(fn)
	if errors.Is(err, circuitbreaker.ErrOpenState) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return nil
	}
	return err
}

// execute 经熔断器执行，熔断错误原样返回
func (c *CatalogCache) execute(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

// ListKey library:catalog:list:p{page}:l{limit}:s{search}
// search去空格并转小写，与查询时的大小写不敏感匹配一致
func ListKey(params book.ListParams) string {
	search := strings.ToLower(strings.TrimSpace(params.Search))
	return fmt.Sprintf("%sp%d:l%d:s%s", catalogListKey, params.Page, params.Limit, search)
}

// BookKey library:catalog:book:{id}
func BookKey(id uint) string {
	return fmt.Sprintf("%sbook:%d", catalogPrefix, id)
}
