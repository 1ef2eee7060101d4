package book

import (
	"context"
	"strings"

	"github.com/xiebiao/library/internal/domain/book"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListBooksUseCase 分页/搜索图书目录
type ListBooksUseCase struct {
	bookService book.Service
	cache       Cache
}

// NewListBooksUseCase cache可为nil
func NewListBooksUseCase(bookService book.Service, cache Cache) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService, cache: cache}
}

// ListBooksRequest 分页查询请求
type ListBooksRequest struct {
	Page   int
	Limit  int
	Search string
}

// ListBooksResponse {books, pagination}
type ListBooksResponse struct {
	Books      []*BookDTO `json:"books"`
	Pagination Pagination `json:"pagination"`
}

// Execute page<1按1，limit<1按10，limit上限100
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	params := normalizeListParams(req)

	if uc.cache != nil {
		books, total, hit, err := uc.cache.GetList(ctx, params)
		logCacheError(ctx, "get_list", err)
		if hit {
			return newListBooksResponse(books, total, params), nil
		}
	}

	books, total, err := uc.bookService.List(ctx, params)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		logCacheError(ctx, "set_list", uc.cache.SetList(ctx, params, books, total))
	}

	return newListBooksResponse(books, total, params), nil
}

func normalizeListParams(req ListBooksRequest) book.ListParams {
	params := book.ListParams{
		Page:   req.Page,
		Limit:  req.Limit,
		Search: strings.TrimSpace(req.Search),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	return params
}

func newListBooksResponse(books []*book.Book, total int64, params book.ListParams) *ListBooksResponse {
	pages := 0
	if total > 0 {
		pages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}
	return &ListBooksResponse{
		Books: toBookDTOs(books),
		Pagination: Pagination{
			Total: total,
			Page:  params.Page,
			Limit: params.Limit,
			Pages: pages,
		},
	}
}
