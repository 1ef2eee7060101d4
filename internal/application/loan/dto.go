package loan

import (
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
)

// TransactionDTO 借阅记录对外表示
type TransactionDTO struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	BookID       uint       `json:"book_id"`
	CheckoutDate time.Time  `json:"checkout_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date"`
	UserEmail    string     `json:"user_email,omitempty"`
	BookTitle    string     `json:"book_title,omitempty"`
	Overdue      bool       `json:"overdue"`
}

func newTransactionDTO(t *loan.Transaction, now time.Time) *TransactionDTO {
	return &TransactionDTO{
		ID:           t.ID,
		UserID:       t.UserID,
		BookID:       t.BookID,
		CheckoutDate: t.CheckoutDate,
		DueDate:      t.DueDate,
		ReturnDate:   t.ReturnDate,
		UserEmail:    t.UserEmail,
		BookTitle:    t.BookTitle,
		Overdue:      t.IsOverdue(now),
	}
}

func toTransactionDTOs(txs []*loan.Transaction, now time.Time) []*TransactionDTO {
	dtos := make([]*TransactionDTO, len(txs))
	for i, t := range txs {
		dtos[i] = newTransactionDTO(t, now)
	}
	return dtos
}
