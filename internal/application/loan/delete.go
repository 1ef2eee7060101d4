package loan

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// DeleteUseCase 删除借阅记录(管理员)
// 删除未归还的记录时同一事务内回补库存
type DeleteUseCase struct {
	txManager *database.TxManager
	bookRepo  book.Repository
	loanRepo  loan.Repository
	after     afterCommit
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewDeleteUseCase 创建删除用例
func NewDeleteUseCase(
	txManager *database.TxManager,
	bookRepo book.Repository,
	loanRepo loan.Repository,
	invalidator CatalogInvalidator,
	publisher EventPublisher,
	m *metrics.Metrics,
) *DeleteUseCase {
	return &DeleteUseCase{
		txManager: txManager,
		bookRepo:  bookRepo,
		loanRepo:  loanRepo,
		after:     afterCommit{invalidator: invalidator, publisher: publisher},
		metrics:   m,
		now:       time.Now,
	}
}

// Execute 删除
func (uc *DeleteUseCase) Execute(ctx context.Context, transactionID uint) (err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "loan.delete",
		attribute.Int64("transaction.id", int64(transactionID)),
	)
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		uc.metrics.ObserveLoan("delete", err, time.Since(start))
	}()

	var deleted *loan.Transaction
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		t, err := uc.loanRepo.LockByID(txCtx, transactionID)
		if err != nil {
			return err
		}
		if t.IsOpen() {
			if err := uc.bookRepo.AdjustCopies(txCtx, t.BookID, 1); err != nil {
				return err
			}
		}
		if err := uc.loanRepo.Delete(txCtx, t.ID); err != nil {
			return err
		}
		deleted = t
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "transaction deleted",
		"transaction_id", deleted.ID, "book_id", deleted.BookID, "was_open", deleted.IsOpen())
	uc.after.run(ctx, newEvent(EventDeleted, deleted, uc.now()))
	return nil
}
