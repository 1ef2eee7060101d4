package book

import (
	"time"

	"github.com/xiebiao/library/internal/domain/book"
)

// BookDTO 图书对外表示
// copies为在架库存，total_copies/available_copies/checked_out由借阅记录实时得出
type BookDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn"`
	PublishedYear   *int      `json:"published_year"`
	Genre           *string   `json:"genre"`
	Copies          int       `json:"copies"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CheckedOut      int       `json:"checked_out"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Pagination 分页信息
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewBookDTO 领域实体转DTO
func NewBookDTO(b *book.Book) *BookDTO {
	return &BookDTO{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublishedYear:   b.PublishedYear,
		Genre:           b.Genre,
		Copies:          b.Copies,
		TotalCopies:     b.TotalCopies(),
		AvailableCopies: b.AvailableCopies(),
		CheckedOut:      b.CheckedOut,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func toBookDTOs(books []*book.Book) []*BookDTO {
	dtos := make([]*BookDTO, len(books))
	for i, b := range books {
		dtos[i] = NewBookDTO(b)
	}
	return dtos
}
