package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// GetBookUseCase 图书详情与完整目录
type GetBookUseCase struct {
	bookService book.Service
	cache       Cache
}

// NewGetBookUseCase cache可为nil
func NewGetBookUseCase(bookService book.Service, cache Cache) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, cache: cache}
}

// Execute 按ID查询，不存在返回ErrBookNotFound
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDTO, error) {
	if uc.cache != nil {
		b, hit, err := uc.cache.GetBook(ctx, id)
		logCacheError(ctx, "get_book", err)
		if hit {
			return NewBookDTO(b), nil
		}
	}

	b, err := uc.bookService.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		logCacheError(ctx, "set_book", uc.cache.SetBook(ctx, b))
	}
	return NewBookDTO(b), nil
}

// All 按标题排序的完整目录
func (uc *GetBookUseCase) All(ctx context.Context) ([]*BookDTO, error) {
	if uc.cache != nil {
		books, hit, err := uc.cache.GetAll(ctx)
		logCacheError(ctx, "get_all", err)
		if hit {
			return toBookDTOs(books), nil
		}
	}

	books, err := uc.bookService.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		logCacheError(ctx, "set_all", uc.cache.SetAll(ctx, books))
	}
	return toBookDTOs(books), nil
}
