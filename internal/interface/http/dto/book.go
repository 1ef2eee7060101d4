package dto

import (
	"github.com/xiebiao/library/internal/domain/book"
)

// BookRequest 新增/修改图书
// 全部字段可选，新增时title/author必填由领域层校验，修改时只更新提供的字段
type BookRequest struct {
	Title         *string `json:"title" example:"Dune"`
	Author        *string `json:"author" example:"Frank Herbert"`
	ISBN          *string `json:"isbn" example:"9780441172719"`
	PublishedYear *int    `json:"published_year" example:"1965"`
	Genre         *string `json:"genre" example:"Science Fiction"`
	Copies        *int    `json:"copies" example:"3"` // 馆藏总数，缺省1
}

// Fields 转换为领域字段
func (r BookRequest) Fields() book.Fields {
	return book.Fields{
		Title:         r.Title,
		Author:        r.Author,
		ISBN:          r.ISBN,
		PublishedYear: r.PublishedYear,
		Genre:         r.Genre,
		Copies:        r.Copies,
	}
}
