package loan

import (
	"time"
)

// Transaction 借阅记录
// 只能由借出创建，归还时写入ReturnDate且仅写一次
type Transaction struct {
	ID           uint
	UserID       uint
	BookID       uint
	CheckoutDate time.Time
	DueDate      time.Time
	ReturnDate   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// 查询时关联得到
	UserEmail string
	BookTitle string
}

// NewTransaction 借出时创建，到期日 = 借出时间 + 借阅期限
func NewTransaction(userID, bookID uint, now time.Time, loanPeriod time.Duration) *Transaction {
	now = now.UTC()
	return &Transaction{
		UserID:       userID,
		BookID:       bookID,
		CheckoutDate: now,
		DueDate:      now.Add(loanPeriod),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsOpen 尚未归还
func (t *Transaction) IsOpen() bool {
	return t.ReturnDate == nil
}

// IsOverdue 未归还且已过到期日
func (t *Transaction) IsOverdue(now time.Time) bool {
	return t.IsOpen() && now.After(t.DueDate)
}

// IsOwnedBy 是否为借阅人本人
func (t *Transaction) IsOwnedBy(userID uint) bool {
	return t.UserID == userID
}

// MarkReturned 标记归还
// 归还时间不早于借出时间（防止时钟回拨）
func (t *Transaction) MarkReturned(now time.Time) error {
	if !t.IsOpen() {
		return ErrAlreadyReturned.WithMessagef("Book already returned for transaction with ID %d", t.ID)
	}
	now = now.UTC()
	if now.Before(t.CheckoutDate) {
		now = t.CheckoutDate
	}
	t.ReturnDate = &now
	t.UpdatedAt = now
	return nil
}
