package book

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultCopies 创建图书时未指定copies的默认值
const DefaultCopies = 1

// 字段长度上限，与表结构一致
const (
	MaxTitleLen  = 255
	MaxAuthorLen = 255
	MaxISBNLen   = 20
	MaxGenreLen  = 100
)

// Book 图书实体(聚合根)
//
// Copies 是当前在架库存：借出时减1，归还时加1。
// CheckedOut 由未归还的借阅记录实时统计得出，不落库。
type Book struct {
	ID            uint
	Title         string
	Author        string
	ISBN          *string // 可选，唯一
	PublishedYear *int
	Genre         *string
	Copies        int
	CheckedOut    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Fields 创建/更新图书的字段，nil表示未提供
type Fields struct {
	Title         *string
	Author        *string
	ISBN          *string
	PublishedYear *int
	Genre         *string
	Copies        *int // 馆藏总数
}

// NewBook 创建图书(工厂方法)
// title/author必填；copies缺省为1，负数按0处理
func NewBook(f Fields) (*Book, error) {
	if err := checkLengths(f); err != nil {
		return nil, err
	}
	if f.Title == nil || strings.TrimSpace(*f.Title) == "" {
		return nil, ErrTitleRequired
	}
	if f.Author == nil || strings.TrimSpace(*f.Author) == "" {
		return nil, ErrAuthorRequired
	}

	copies := DefaultCopies
	if f.Copies != nil {
		copies = ClampCopies(*f.Copies)
	}

	now := time.Now().UTC()
	return &Book{
		Title:         strings.TrimSpace(*f.Title),
		Author:        strings.TrimSpace(*f.Author),
		ISBN:          normalizeOptional(f.ISBN),
		PublishedYear: f.PublishedYear,
		Genre:         normalizeOptional(f.Genre),
		Copies:        copies,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Apply 部分更新
// 提供copies时按馆藏总数处理，不能少于当前借出数量
func (b *Book) Apply(f Fields) error {
	if err := checkLengths(f); err != nil {
		return err
	}
	if f.Title != nil {
		if strings.TrimSpace(*f.Title) == "" {
			return ErrTitleRequired
		}
		b.Title = strings.TrimSpace(*f.Title)
	}
	if f.Author != nil {
		if strings.TrimSpace(*f.Author) == "" {
			return ErrAuthorRequired
		}
		b.Author = strings.TrimSpace(*f.Author)
	}
	if f.ISBN != nil {
		b.ISBN = normalizeOptional(f.ISBN)
	}
	if f.PublishedYear != nil {
		b.PublishedYear = f.PublishedYear
	}
	if f.Genre != nil {
		b.Genre = normalizeOptional(f.Genre)
	}
	if f.Copies != nil {
		if err := b.SetTotalCopies(*f.Copies); err != nil {
			return err
		}
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// SetTotalCopies 调整馆藏总数，在架库存 = 总数 - 借出数
func (b *Book) SetTotalCopies(total int) error {
	total = ClampCopies(total)
	if total < b.CheckedOut {
		return ErrCopiesBelowLoans.WithMessagef(
			"Copies cannot be lower than the %d copies currently checked out", b.CheckedOut)
	}
	b.Copies = total - b.CheckedOut
	return nil
}

// TotalCopies 馆藏总数
func (b *Book) TotalCopies() int {
	return b.Copies + b.CheckedOut
}

// AvailableCopies 可借数量 = 馆藏总数 - 未归还借阅数，不小于0
func (b *Book) AvailableCopies() int {
	available := b.TotalCopies() - b.CheckedOut
	if available < 0 {
		return 0
	}
	return available
}

// HasStock 在架库存是否大于0
func (b *Book) HasStock() bool {
	return b.Copies > 0
}

// ClampCopies copies不允许为负
func ClampCopies(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// checkLengths 按字符数校验，超长字段在写库前返回400
func checkLengths(f Fields) error {
	limits := []struct {
		name  string
		value *string
		max   int
	}{
		{"Title", f.Title, MaxTitleLen},
		{"Author", f.Author, MaxAuthorLen},
		{"ISBN", f.ISBN, MaxISBNLen},
		{"Genre", f.Genre, MaxGenreLen},
	}
	for _, l := range limits {
		if l.value != nil && utf8.RuneCountInString(strings.TrimSpace(*l.value)) > l.max {
			return ErrFieldTooLong.WithMessagef("%s must be at most %d characters", l.name, l.max)
		}
	}
	return nil
}

// 空字符串按未填写处理（ISBN唯一索引允许多个NULL）
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
