package loan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// CheckoutUseCase 借出图书
//
// 在一个数据库事务内完成：
// 1. SELECT ... FOR UPDATE 锁定图书行，并发借同一本书在此排队
// 2. 检查在架库存
// 3. 确认借阅人存在
// 4. 条件扣减库存(copies - 1 >= 0)
// 5. 写入借阅记录
// 任一步失败整体回滚
type CheckoutUseCase struct {
	txManager  *database.TxManager
	bookRepo   book.Repository
	userRepo   user.Repository
	loanRepo   loan.Repository
	after      afterCommit
	metrics    *metrics.Metrics
	loanPeriod time.Duration
	now        func() time.Time
}

// NewCheckoutUseCase 创建借出用例
func NewCheckoutUseCase(
	txManager *database.TxManager,
	bookRepo book.Repository,
	userRepo user.Repository,
	loanRepo loan.Repository,
	invalidator CatalogInvalidator,
	publisher EventPublisher,
	m *metrics.Metrics,
	cfg *config.Config,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txManager:  txManager,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
		loanRepo:   loanRepo,
		after:      afterCommit{invalidator: invalidator, publisher: publisher},
		metrics:    m,
		loanPeriod: cfg.Library.LoanPeriod,
		now:        time.Now,
	}
}

// CheckoutRequest 借出请求
// Caller为当前登录用户，只有管理员可以替他人借书
type CheckoutRequest struct {
	CallerID      uint
	CallerIsAdmin bool
	UserID        uint
	BookID        uint
}

// Execute 借出
func (uc *CheckoutUseCase) Execute(ctx context.Context, req CheckoutRequest) (result *TransactionDTO, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "loan.checkout",
		attribute.Int64("user.id", int64(req.UserID)),
		attribute.Int64("book.id", int64(req.BookID)),
	)
	defer func() {
		tracing.RecordError(span, err)
		span.End()
		uc.metrics.ObserveLoan("checkout", err, time.Since(start))
	}()

	if req.UserID == 0 || req.BookID == 0 {
		return nil, loan.ErrMissingFields
	}
	if req.UserID != req.CallerID && !req.CallerIsAdmin {
		return nil, loan.ErrCheckoutForOther
	}

	var created *loan.Transaction
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			if errors.Is(err, book.ErrBookNotFound) {
				return loan.ErrCheckoutTarget.WithMessagef("Book with ID %d not found", req.BookID)
			}
			return err
		}
		if !b.HasStock() {
			return noCopies(req.BookID)
		}

		u, err := uc.userRepo.FindByID(txCtx, req.UserID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return loan.ErrCheckoutTarget.WithMessagef("User with ID %d not found", req.UserID)
			}
			return err
		}

		if err := uc.bookRepo.AdjustCopies(txCtx, b.ID, -1); err != nil {
			if errors.Is(err, book.ErrStockExhausted) {
				return noCopies(req.BookID)
			}
			return err
		}

		t := loan.NewTransaction(u.ID, b.ID, uc.now(), uc.loanPeriod)
		if err := uc.loanRepo.Create(txCtx, t); err != nil {
			return err
		}
		t.UserEmail = u.Email
		t.BookTitle = b.Title
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "book checked out",
		"transaction_id", created.ID, "user_id", created.UserID, "book_id", created.BookID)
	uc.after.run(ctx, newEvent(EventCheckedOut, created, uc.now()))

	return newTransactionDTO(created, uc.now()), nil
}

func noCopies(bookID uint) error {
	return loan.ErrNoCopiesAvailable.WithMessagef("No copies available for book with ID %d", bookID)
}
