package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
)

// QueryUseCase 借阅记录查询，不加锁
type QueryUseCase struct {
	loanRepo loan.Repository
	now      func() time.Time
}

// NewQueryUseCase 创建查询用例
func NewQueryUseCase(loanRepo loan.Repository) *QueryUseCase {
	return &QueryUseCase{loanRepo: loanRepo, now: time.Now}
}

// All 按借出时间倒序
func (uc *QueryUseCase) All(ctx context.Context) ([]*TransactionDTO, error) {
	return uc.list(uc.loanRepo.ListAll(ctx))
}

// ByID 不存在返回ErrTransactionNotFound
func (uc *QueryUseCase) ByID(ctx context.Context, id uint) (*TransactionDTO, error) {
	t, err := uc.loanRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newTransactionDTO(t, uc.now()), nil
}

// ByUser 某用户的借阅记录
func (uc *QueryUseCase) ByUser(ctx context.Context, userID uint) ([]*TransactionDTO, error) {
	return uc.list(uc.loanRepo.ListByUser(ctx, userID))
}

// ByBook 某本书的借阅记录
func (uc *QueryUseCase) ByBook(ctx context.Context, bookID uint) ([]*TransactionDTO, error) {
	return uc.list(uc.loanRepo.ListByBook(ctx, bookID))
}

// Active 未归还，按到期日升序
func (uc *QueryUseCase) Active(ctx context.Context) ([]*TransactionDTO, error) {
	return uc.list(uc.loanRepo.ListActive(ctx))
}

// Overdue 未归还且已过期，按到期日升序
func (uc *QueryUseCase) Overdue(ctx context.Context) ([]*TransactionDTO, error) {
	return uc.list(uc.loanRepo.ListOverdue(ctx, uc.now()))
}

func (uc *QueryUseCase) list(txs []*loan.Transaction, err error) ([]*TransactionDTO, error) {
	if err != nil {
		return nil, err
	}
	return toTransactionDTOs(txs, uc.now()), nil
}
