package book

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
)

// ManageBooksUseCase 图书增删改
// 写入成功后清理目录缓存
type ManageBooksUseCase struct {
	bookService book.Service
	txManager   *database.TxManager
	invalidator *Invalidator
}

// NewManageBooksUseCase 创建图书管理用例
func NewManageBooksUseCase(bookService book.Service, txManager *database.TxManager, invalidator *Invalidator) *ManageBooksUseCase {
	return &ManageBooksUseCase{
		bookService: bookService,
		txManager:   txManager,
		invalidator: invalidator,
	}
}

// Create 新增图书
func (uc *ManageBooksUseCase) Create(ctx context.Context, fields book.Fields) (*BookDTO, error) {
	b, err := uc.bookService.Create(ctx, fields)
	if err != nil {
		return nil, err
	}

	uc.invalidator.Invalidate(ctx, b.ID)
	slog.InfoContext(ctx, "book created", "book_id", b.ID, "title", b.Title)
	return NewBookDTO(b), nil
}

// Update 部分更新
// 行锁保证与并发借出/归还互斥，copies按馆藏总数换算为在架库存
func (uc *ManageBooksUseCase) Update(ctx context.Context, id uint, fields book.Fields) (*BookDTO, error) {
	var updated *book.Book
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookService.Update(txCtx, id, fields)
		if err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidator.Invalidate(ctx, id)
	return NewBookDTO(updated), nil
}

// Delete 删除图书及其借阅记录
func (uc *ManageBooksUseCase) Delete(ctx context.Context, id uint) error {
	if err := uc.bookService.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidator.Invalidate(ctx, id)
	slog.InfoContext(ctx, "book deleted", "book_id", id)
	return nil
}
