package book

import (
	"context"
)

// Repository 图书仓储接口
// 查询结果均带实时统计的CheckedOut
type Repository interface {
	Create(ctx context.Context, book *Book) error

	FindByID(ctx context.Context, id uint) (*Book, error)

	// LockByID 行锁读取(SELECT ... FOR UPDATE)，必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	Update(ctx context.Context, book *Book) error

	// Delete 删除图书，借阅记录级联删除
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	ListAll(ctx context.Context) ([]*Book, error)

	// AdjustCopies 原子增减在架库存，结果不能为负
	AdjustCopies(ctx context.Context, id uint, delta int) error
}

// ListParams 分页查询参数
type ListParams struct {
	Page   int    // 页码(从1开始)
	Limit  int    // 每页数量
	Search string // 标题/作者/分类模糊匹配(不区分大小写)
}

// Offset (page-1)*limit
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
