package book

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/book"
)

// Cache 图书目录缓存
// 缓存故障不影响主流程：读错误按未命中处理，写错误只记日志
type Cache interface {
	GetList(ctx context.Context, params book.ListParams) ([]*book.Book, int64, bool, error)
	SetList(ctx context.Context, params book.ListParams, books []*book.Book, total int64) error

	GetBook(ctx context.Context, id uint) (*book.Book, bool, error)
	SetBook(ctx context.Context, b *book.Book) error

	GetAll(ctx context.Context) ([]*book.Book, bool, error)
	SetAll(ctx context.Context, books []*book.Book) error

	// Invalidate 清除所有分页、完整目录以及指定图书，不传id时清空全部
	Invalidate(ctx context.Context, ids ...uint) error
}

// Invalidator 写操作提交后清理目录缓存
// cache为nil(未启用缓存)时什么也不做
type Invalidator struct {
	cache Cache
}

// NewInvalidator 创建缓存清理器
func NewInvalidator(cache Cache) *Invalidator {
	return &Invalidator{cache: cache}
}

// Invalidate 尽力清理，失败只记录日志
func (i *Invalidator) Invalidate(ctx context.Context, ids ...uint) {
	if i == nil || i.cache == nil {
		return
	}
	if err := i.cache.Invalidate(ctx, ids...); err != nil {
		slog.WarnContext(ctx, "catalog cache invalidation failed", "book_ids", ids, "error", err)
	}
}

func logCacheError(ctx context.Context, op string, err error) {
	if err != nil {
		slog.WarnContext(ctx, "catalog cache unavailable", "op", op, "error", err)
	}
}
