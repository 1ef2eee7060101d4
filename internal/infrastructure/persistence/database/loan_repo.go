package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

const transactionColumns = "transactions.*, users.email AS user_email, books.title AS book_title"

type transactionRow struct {
	ID           uint
	UserID       uint
	BookID       uint
	CheckoutDate time.Time
	DueDate      time.Time
	ReturnDate   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserEmail    string
	BookTitle    string
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅记录仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, t *loan.Transaction) error {
	model := &TransactionModel{
		UserID:       t.UserID,
		BookID:       t.BookID,
		CheckoutDate: t.CheckoutDate,
		DueDate:      t.DueDate,
		ReturnDate:   t.ReturnDate,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}

	if err := conn(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return loan.ErrCheckoutTarget
		}
		return apperrors.Wrap(err, "创建借阅记录失败")
	}

	t.ID = model.ID
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Transaction, error) {
	var rows []transactionRow
	if err := r.joined(ctx).Where("transactions.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}
	if len(rows) == 0 {
		return nil, loan.ErrTransactionNotFound
	}
	return toTransactionEntity(&rows[0]), nil
}

// LockByID 只锁借阅记录本身，不做关联查询
func (r *loanRepository) LockByID(ctx context.Context, id uint) (*loan.Transaction, error) {
	var model TransactionModel
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	return &loan.Transaction{
		ID:           model.ID,
		UserID:       model.UserID,
		BookID:       model.BookID,
		CheckoutDate: model.CheckoutDate,
		DueDate:      model.DueDate,
		ReturnDate:   model.ReturnDate,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}

// MarkReturned 条件更新，已归还的记录不会被覆盖
func (r *loanRepository) MarkReturned(ctx context.Context, t *loan.Transaction) error {
	result := conn(ctx, r.db).Model(&TransactionModel{}).
		Where("id = ? AND return_date IS NULL", t.ID).
		UpdateColumns(map[string]interface{}{
			"return_date": t.ReturnDate,
			"updated_at":  t.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅记录失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrAlreadyReturned.WithMessagef("Book already returned for transaction with ID %d", t.ID)
	}
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&TransactionModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除借阅记录失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrTransactionNotFound
	}
	return nil
}

func (r *loanRepository) ListAll(ctx context.Context) ([]*loan.Transaction, error) {
	return r.list(r.joined(ctx).Order("transactions.checkout_date DESC").Order("transactions.id DESC"))
}

func (r *loanRepository) ListByUser(ctx context.Context, userID uint) ([]*loan.Transaction, error) {
	return r.list(r.joined(ctx).
		Where("transactions.user_id = ?", userID).
		Order("transactions.checkout_date DESC").Order("transactions.id DESC"))
}

func (r *loanRepository) ListByBook(ctx context.Context, bookID uint) ([]*loan.Transaction, error) {
	return r.list(r.joined(ctx).
		Where("transactions.book_id = ?", bookID).
		Order("transactions.checkout_date DESC").Order("transactions.id DESC"))
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*loan.Transaction, error) {
	return r.list(r.joined(ctx).
		Where("transactions.return_date IS NULL").
		Order("transactions.due_date ASC").Order("transactions.id ASC"))
}

// ListOverdue 截止时间由调用方传入，不依赖数据库时钟
func (r *loanRepository) ListOverdue(ctx context.Context, now time.Time) ([]*loan.Transaction, error) {
	return r.list(r.joined(ctx).
		Where("transactions.return_date IS NULL AND transactions.due_date < ?", now.UTC()).
		Order("transactions.due_date ASC").Order("transactions.id ASC"))
}

func (r *loanRepository) joined(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Table("transactions").
		Select(transactionColumns).
		Joins("JOIN users ON users.id = transactions.user_id").
		Joins("JOIN books ON books.id = transactions.book_id")
}

func (r *loanRepository) list(query *gorm.DB) ([]*loan.Transaction, error) {
	var rows []transactionRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询借阅记录失败")
	}

	txs := make([]*loan.Transaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, toTransactionEntity(&rows[i]))
	}
	return txs, nil
}

func toTransactionEntity(row *transactionRow) *loan.Transaction {
	return &loan.Transaction{
		ID:           row.ID,
		UserID:       row.UserID,
		BookID:       row.BookID,
		CheckoutDate: row.CheckoutDate,
		DueDate:      row.DueDate,
		ReturnDate:   row.ReturnDate,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		UserEmail:    row.UserEmail,
		BookTitle:    row.BookTitle,
	}
}
