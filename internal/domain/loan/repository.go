package loan

import (
	"context"
	"time"
)

// Repository 借阅记录仓储
// 列表查询均关联出用户邮箱和书名
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error

	FindByID(ctx context.Context, id uint) (*Transaction, error)

	// LockByID 行锁读取，必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Transaction, error)

	// MarkReturned 写入归还时间（仅当尚未归还）
	MarkReturned(ctx context.Context, tx *Transaction) error

	Delete(ctx context.Context, id uint) error

	// ListAll 按借出时间倒序
	ListAll(ctx context.Context) ([]*Transaction, error)

	ListByUser(ctx context.Context, userID uint) ([]*Transaction, error)

	ListByBook(ctx context.Context, bookID uint) ([]*Transaction, error)

	// ListActive 未归还，按到期日升序
	ListActive(ctx context.Context) ([]*Transaction, error)

	// ListOverdue 未归还且到期日早于now，按到期日升序
	ListOverdue(ctx context.Context, now time.Time) ([]*Transaction, error)
}
