package loan

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
)

// 事件routing key
const (
	EventCheckedOut = "loan.checked_out"
	EventReturned   = "loan.returned"
	EventDeleted    = "loan.deleted"
)

// Event 借阅事件，事务提交后发布
type Event struct {
	Type          string     `json:"type"`
	TransactionID uint       `json:"transaction_id"`
	UserID        uint       `json:"user_id"`
	BookID        uint       `json:"book_id"`
	CheckoutDate  time.Time  `json:"checkout_date"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// EventPublisher 事件发布
type EventPublisher interface {
	PublishLoanEvent(ctx context.Context, event Event) error
}

// CatalogInvalidator 目录缓存清理
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, ids ...uint)
}

func newEvent(eventType string, t *loan.Transaction, now time.Time) Event {
	return Event{
		Type:          eventType,
		TransactionID: t.ID,
		UserID:        t.UserID,
		BookID:        t.BookID,
		CheckoutDate:  t.CheckoutDate,
		DueDate:       t.DueDate,
		ReturnDate:    t.ReturnDate,
		OccurredAt:    now.UTC(),
	}
}

// afterCommit 清理缓存并发布事件，失败只记日志
type afterCommit struct {
	invalidator CatalogInvalidator
	publisher   EventPublisher
}

func (a afterCommit) run(ctx context.Context, event Event) {
	if a.invalidator != nil {
		a.invalidator.Invalidate(ctx, event.BookID)
	}
	if a.publisher == nil {
		return
	}
	if err := a.publisher.PublishLoanEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "loan event publish failed",
			"type", event.Type, "transaction_id", event.TransactionID, "error", err)
	}
}
