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

// ReturnUseCase 归还图书
// 锁定借阅记录行，校验借阅人与归还状态，写入归还时间并回补库存
type ReturnUseCase struct {
	txManager *database.TxManager
	bookRepo  book.Repository
	loanRepo  loan.Repository
	after     afterCommit
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewReturnUseCase 创建归还用例
func NewReturnUseCase(
	txManager *database.TxManager,
	bookRepo book.Repository,
	loanRepo loan.Repository,
	invalidator CatalogInvalidator,
	publisher EventPublisher,
	m *metrics.Metrics,
) *ReturnUseCase {
	return &ReturnUseCase{
		txManager: txManager,
		bookRepo:  bookRepo,
		loanRepo:  loanRepo,
		after:     afterCommit{invalidator: invalidator, publisher: publisher},
		metrics:   m,
		now:       time.Now,
	}
}

// Execute 归还，只有借阅人本人可以归还
func (uc *ReturnUseCase) Execute(ctx context.Context, transactionID, callerID uint) (result *TransactionDTO, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "loan.return",
		attribute.Int64("transaction.id", int64(transactionID)),
	)
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		uc.metrics.ObserveLoan("return", err, time.Since(start))
	}()

	var returned *loan.Transaction
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		t, err := uc.loanRepo.LockByID(txCtx, transactionID)
		if err != nil {
			return err
		}
		if !t.IsOwnedBy(callerID) {
			return loan.ErrNotOwner
		}
		if err := t.MarkReturned(uc.now()); err != nil {
			return err
		}
		if err := uc.loanRepo.MarkReturned(txCtx, t); err != nil {
			return err
		}
		if err := uc.bookRepo.AdjustCopies(txCtx, t.BookID, 1); err != nil {
			return err
		}

		view, err := uc.loanRepo.FindByID(txCtx, t.ID)
		if err != nil {
			return err
		}
		returned = view
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "book returned",
		"transaction_id", returned.ID, "user_id", returned.UserID, "book_id", returned.BookID)
	uc.after.run(ctx, newEvent(EventReturned, returned, uc.now()))

	return newTransactionDTO(returned, uc.now()), nil
}
