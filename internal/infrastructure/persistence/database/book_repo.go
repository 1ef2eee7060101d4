package database

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 在架库存 + 未归还借阅数
const bookColumns = "books.*, (SELECT COUNT(*) FROM transactions" +
	" WHERE transactions.book_id = books.id AND transactions.return_date IS NULL) AS checked_out"

const bookSearchCondition = "LOWER(books.title) LIKE ? ESCAPE '!'" +
	" OR LOWER(books.author) LIKE ? ESCAPE '!'" +
	" OR LOWER(books.genre) LIKE ? ESCAPE '!'"

type bookRow struct {
	BookModel
	CheckedOut int
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	b.CheckedOut = 0
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.findOne(conn(ctx, r.db), id)
}

// LockByID 读取并锁定图书行
// SQLite方言会忽略FOR UPDATE，依靠单连接串行化
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.findOne(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *bookRepository) findOne(db *gorm.DB, id uint) (*book.Book, error) {
	var row bookRow
	result := db.Table("books").Select(bookColumns).Where("books.id = ?", id).Limit(1).Scan(&row)
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, "查询图书失败")
	}
	if result.RowsAffected == 0 {
		return nil, book.ErrBookNotFound
	}
	return toBookEntity(&row), nil
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	result := conn(ctx, r.db).Model(&BookModel{ID: b.ID}).
		Select("title", "author", "isbn", "published_year", "genre", "copies", "updated_at").
		Updates(model)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(result.Error, "更新图书失败")
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 同一事务内先删借阅记录，不依赖数据库外键设置
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&TransactionModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除借阅记录失败")
		}
		result := tx.Delete(&BookModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除图书失败")
		}
		if result.RowsAffected == 0 {
			return book.ErrBookNotFound
		}
		return nil
	})
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	db := conn(ctx, r.db)

	query := db.Table("books")
	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(bookSearchCondition, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计图书数量失败")
	}
	if total == 0 {
		return []*book.Book{}, 0, nil
	}

	var rows []bookRow
	err := query.Select(bookColumns).
		Order("books.title ASC").Order("books.id ASC").
		Offset(params.Offset()).Limit(params.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	return toBookEntities(rows), total, nil
}

func (r *bookRepository) ListAll(ctx context.Context) ([]*book.Book, error) {
	var rows []bookRow
	err := conn(ctx, r.db).Table("books").Select(bookColumns).
		Order("books.title ASC").Order("books.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}
	return toBookEntities(rows), nil
}

// AdjustCopies 条件更新 copies = copies + delta，要求结果不为负
func (r *bookRepository) AdjustCopies(ctx context.Context, id uint, delta int) error {
	db := conn(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ? AND copies + ? >= 0", id, delta).
		UpdateColumns(map[string]interface{}{
			"copies":     gorm.Expr("copies + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "查询图书失败")
	}
	if count == 0 {
		return book.ErrBookNotFound
	}
	return book.ErrStockExhausted
}

// escapeLike 转义LIKE通配符，配合 ESCAPE '!'
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		ISBN:          b.ISBN,
		PublishedYear: b.PublishedYear,
		Genre:         b.Genre,
		Copies:        b.Copies,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookEntity(row *bookRow) *book.Book {
	return &book.Book{
		ID:            row.ID,
		Title:         row.Title,
		Author:        row.Author,
		ISBN:          row.ISBN,
		PublishedYear: row.PublishedYear,
		Genre:         row.Genre,
		Copies:        row.Copies,
		CheckedOut:    row.CheckedOut,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func toBookEntities(rows []bookRow) []*book.Book {
	books := make([]*book.Book, 0, len(rows))
	for i := range rows {
		books = append(books, toBookEntity(&rows[i]))
	}
	return books
}
