package loan

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) PublishLoanEvent(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, ids...)
}

type fixture struct {
	books       book.Repository
	users       user.Repository
	loans       loan.Repository
	checkout    *CheckoutUseCase
	ret         *ReturnUseCase
	del         *DeleteUseCase
	query       *QueryUseCase
	publisher   *recordingPublisher
	invalidator *recordingInvalidator
	metrics     *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return newFixtureOn(t, config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "loan.db"),
		LogLevel:    "silent",
		AutoMigrate: true,
	})
}

// newServerFixture 连接LIBRARY_DATABASE_*指定的MySQL或PostgreSQL，未配置时跳过
func newServerFixture(t *testing.T) *fixture {
	t.Helper()

	driver := os.Getenv(config.EnvPrefix + "_DATABASE_DRIVER")
	if driver != "mysql" && driver != "postgres" {
		t.Skip("LIBRARY_DATABASE_DRIVER is not mysql or postgres")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Database.LogLevel = "silent"
	cfg.Database.AutoMigrate = true
	if cfg.Database.MaxOpenConns < 4 {
		cfg.Database.MaxOpenConns = 16
	}
	return newFixtureOn(t, cfg.Database)
}

func newFixtureOn(t *testing.T, dbCfg config.DatabaseConfig) *fixture {
	t.Helper()

	db, err := database.Open(dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	cfg := config.Default()
	cfg.Library.LoanPeriod = 14 * 24 * time.Hour

	f := &fixture{
		books:       database.NewBookRepository(db),
		users:       database.NewUserRepository(db),
		loans:       database.NewLoanRepository(db),
		publisher:   &recordingPublisher{},
		invalidator: &recordingInvalidator{},
		metrics:     metrics.New(prometheus.NewRegistry()),
	}
	txm := database.NewTxManager(db)
	f.checkout = NewCheckoutUseCase(txm, f.books, f.users, f.loans, f.invalidator, f.publisher, f.metrics, cfg)
	f.ret = NewReturnUseCase(txm, f.books, f.loans, f.invalidator, f.publisher, f.metrics)
	f.del = NewDeleteUseCase(txm, f.books, f.loans, f.invalidator, f.publisher, f.metrics)
	f.query = NewQueryUseCase(f.loans)
	return f
}

func (f *fixture) addBook(t *testing.T, title string, copies int) *book.Book {
	t.Helper()
	author := "Author"
	b, err := book.NewBook(book.Fields{Title: &title, Author: &author, Copies: &copies})
	require.NoError(t, err)
	require.NoError(t, f.books.Create(context.Background(), b))
	return b
}

func (f *fixture) addUser(t *testing.T, email string) *user.User {
	t.Helper()
	u := user.NewUser(email, "hash")
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) copies(t *testing.T, id uint) int {
	t.Helper()
	b, err := f.books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.Copies
}

func self(u *user.User, b *book.Book) CheckoutRequest {
	return CheckoutRequest{CallerID: u.ID, UserID: u.ID, BookID: b.ID}
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "Dune", 2)
	u := f.addUser(t, "reader@example.com")

	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.checkout.now = func() time.Time { return fixed }

	tx, err := f.checkout.Execute(context.Background(), self(u, b))
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, fixed, tx.CheckoutDate)
	assert.Equal(t, fixed.Add(14*24*time.Hour), tx.DueDate)
	assert.Nil(t, tx.ReturnDate)
	assert.Equal(t, "Dune", tx.BookTitle)
	assert.Equal(t, "reader@example.com", tx.UserEmail)

	assert.Equal(t, 1, f.copies(t, b.ID))
	assert.Equal(t, []string{EventCheckedOut}, f.publisher.types())
	assert.Equal(t, []uint{b.ID}, f.invalidator.ids)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LoanOperationsTotal.WithLabelValues("checkout", metrics.ResultSuccess)))
}

func TestCheckout_Validation(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "Dune", 1)
	u := f.addUser(t, "reader@example.com")
	other := f.addUser(t, "other@example.com")
	ctx := context.Background()

	_, err := f.checkout.Execute(ctx, CheckoutRequest{CallerID: u.ID, UserID: u.ID})
	assert.ErrorIs(t, err, loan.ErrMissingFields)

	_, err = f.checkout.Execute(ctx, CheckoutRequest{CallerID: u.ID, UserID: other.ID, BookID: b.ID})
	assert.ErrorIs(t, err, loan.ErrCheckoutForOther)

	_, err = f.checkout.Execute(ctx, CheckoutRequest{CallerID: u.ID, UserID: u.ID, BookID: 9999})
	require.Error(t, err)
	assert.Equal(t, "Book with ID 9999 not found", apperrors.GetAppError(err).Message)
	assert.Equal(t, 400, apperrors.GetAppError(err).HTTPStatus())

	_, err = f.checkout.Execute(ctx, CheckoutRequest{CallerID: u.ID, CallerIsAdmin: true, UserID: 4242, BookID: b.ID})
	require.Error(t, err)
	assert.Equal(t, "User with ID 4242 not found", apperrors.GetAppError(err).Message)
	assert.Equal(t, 400, apperrors.GetAppError(err).HTTPStatus())

	// 失败的借出不扣库存
	assert.Equal(t, 1, f.copies(t, b.ID))
	assert.Empty(t, f.publisher.types())
}

func TestCheckout_AdminForOtherUser(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "Dune", 1)
	admin := f.addUser(t, "admin@example.com")
	member := f.addUser(t, "member@example.com")

	tx, err := f.checkout.Execute(context.Background(), CheckoutRequest{
		CallerID: admin.ID, CallerIsAdmin: true, UserID: member.ID, BookID: b.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, member.ID, tx.UserID)
}

func TestCheckout_NoCopies(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "Dune", 1)
	u := f.addUser(t, "reader@example.com")
	ctx := context.Background()

	_, err := f.checkout.Execute(ctx, self(u, b))
	require.NoError(t, err)

	_, err = f.checkout.Execute(ctx, self(u, b))
	assert.ErrorIs(t, err, loan.ErrNoCopiesAvailable)
	assert.Equal(t, "No copies available for book with ID "+itoa(b.ID), apperrors.GetAppError(err).Message)
	assert.Equal(t, 0, f.copies(t, b.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LoanOperationsTotal.WithLabelValues("checkout", metrics.ResultFailure)))
}

// SQLite单连接，事务天然串行，这里只验证库存计数
// 行锁由TestCheckout_ConcurrentRequestsNeverOversellOnServer在MySQL/PostgreSQL上覆盖
func TestCheckout_ConcurrentRequestsNeverOversell(t *testing.T) {
	f := newFixture(t)
	checkoutConcurrently(t, f, "reader")

	active, err := f.query.Active(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

// 多连接并发，库存扣减依赖SELECT ... FOR UPDATE
func TestCheckout_ConcurrentRequestsNeverOversellOnServer(t *testing.T) {
	f := newServerFixture(t)
	checkoutConcurrently(t, f, "racer"+strconv.FormatInt(time.Now().UnixNano(), 36))
}

// checkoutConcurrently 12个用户同时借3本库存的书
func checkoutConcurrently(t *testing.T, f *fixture, prefix string) {
	t.Helper()
	const stock, workers = 3, 12
	ctx := context.Background()
	b := f.addBook(t, prefix+" Dune", stock)
	t.Cleanup(func() { _ = f.books.Delete(ctx, b.ID) })

	users := make([]*user.User, workers)
	for i := range users {
		u := f.addUser(t, prefix+itoa(uint(i))+"@example.com")
		users[i] = u
		t.Cleanup(func() { _ = f.users.Delete(ctx, u.ID) })
	}

	var ok, rejected int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(u *user.User) {
			defer wg.Done()
			<-start
			_, err := f.checkout.Execute(ctx, self(u, b))
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case apperrors.HasCode(err, apperrors.ErrCodeNoCopiesAvailable):
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(users[i])
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(stock), ok)
	assert.Equal(t, int32(workers-stock), rejected)
	assert.Equal(t, 0, f.copies(t, b.ID))

	loans, err := f.loans.ListByBook(ctx, b.ID)
	require.NoError(t, err)
	open := 0
	for _, l := range loans {
		if l.ReturnDate == nil {
			open++
		}
	}
	assert.Equal(t, stock, open)
}

func TestReturn(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "Dune", 1)
	u := f.addUser(t, "reader@example.com")
	stranger := f.addUser(t, "stranger@example.com")
	ctx := context.Background()

	tx, err := f.checkout.Execute(ctx, self(u, b))
	require.NoError(t, err)

	_, err = f.ret.Execute(ctx, tx.ID, stranger.ID)
	assert.ErrorIs(t, err, loan.ErrNotOwner)
	assert.Equal(t, 403, apperrors.GetAppError(err).HTTPStatus())

	_, err = f.ret.Execute(ctx, 9999, u.ID)
	assert.ErrorIs(t, err, loan.ErrTransactionNotFound)

	returned, err := f.ret.Execute(ctx, tx.ID, u.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.False(t, returned.ReturnDate.Before(returned.CheckoutDate))
	assert.Equal(t, "Dune", returned.BookTitle)
	assert.Equal(t, 1, f.copies(t, b.ID))

	_, err = f.ret.Execute(ctx, tx.ID, u.ID)
	assert.ErrorIs(t, err, loan.ErrAlreadyReturned)
	assert.Equal(t, "Book already returned for transaction with ID "+itoa(tx.ID), apperrors.GetAppError(err).Message)
	assert.Equal(t, 1, f.copies(t, b.ID))

	assert.Equal(t, []string{EventCheckedOut, EventReturned}, f.publisher.types())
}

func TestDelete_RestoresStockForOpenLoan(t *testing.T) {
	f := newFixture(t)
	b := f.addBook(t, "Dune", 2)
	u := f.addUser(t, "reader@example.com")
	ctx := context.Background()

	open, err := f.checkout.Execute(ctx, self(u, b))
	require.NoError(t, err)
	closed, err := f.checkout.Execute(ctx, self(u, b))
	require.NoError(t, err)
	_, err = f.ret.Execute(ctx, closed.ID, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.copies(t, b.ID))

	require.NoError(t, f.del.Execute(ctx, open.ID))
	assert.Equal(t, 2, f.copies(t, b.ID))

	require.NoError(t, f.del.Execute(ctx, closed.ID))
	assert.Equal(t, 2, f.copies(t, b.ID))

	assert.ErrorIs(t, f.del.Execute(ctx, open.ID), loan.ErrTransactionNotFound)

	all, err := f.query.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteUser_RestoresStockForOpenLoans(t *testing.T) {
	f := newFixture(t)
	dune := f.addBook(t, "Dune", 2)
	emma := f.addBook(t, "Emma", 1)
	borrower := f.addUser(t, "borrower@example.com")
	other := f.addUser(t, "other@example.com")
	ctx := context.Background()

	_, err := f.checkout.Execute(ctx, self(borrower, dune))
	require.NoError(t, err)
	_, err = f.checkout.Execute(ctx, self(borrower, dune))
	require.NoError(t, err)
	returned, err := f.checkout.Execute(ctx, self(borrower, emma))
	require.NoError(t, err)
	_, err = f.ret.Execute(ctx, returned.ID, borrower.ID)
	require.NoError(t, err)
	kept, err := f.checkout.Execute(ctx, self(other, emma))
	require.NoError(t, err)
	require.Equal(t, 0, f.copies(t, dune.ID))
	require.Equal(t, 0, f.copies(t, emma.ID))

	require.NoError(t, f.users.Delete(ctx, borrower.ID))

	b, err := f.books.FindByID(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Copies)
	assert.Equal(t, 0, b.CheckedOut)
	assert.Equal(t, 2, b.TotalCopies())

	// 已归还的借阅不重复加库存，其他人的借阅不受影响
	b, err = f.books.FindByID(ctx, emma.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Copies)
	assert.Equal(t, 1, b.CheckedOut)
	assert.Equal(t, 1, b.TotalCopies())

	all, err := f.query.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)
}

func TestQuery(t *testing.T) {
	f := newFixture(t)
	dune := f.addBook(t, "Dune", 3)
	emma := f.addBook(t, "Emma", 3)
	u := f.addUser(t, "reader@example.com")
	ctx := context.Background()

	past := time.Now().UTC().Add(-30 * 24 * time.Hour)
	f.checkout.now = func() time.Time { return past }
	late, err := f.checkout.Execute(ctx, self(u, dune))
	require.NoError(t, err)

	f.checkout.now = time.Now
	current, err := f.checkout.Execute(ctx, self(u, emma))
	require.NoError(t, err)

	overdue, err := f.query.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.True(t, overdue[0].Overdue)

	active, err := f.query.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, late.ID, active[0].ID)

	all, err := f.query.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, current.ID, all[0].ID)

	byBook, err := f.query.ByBook(ctx, emma.ID)
	require.NoError(t, err)
	require.Len(t, byBook, 1)
	assert.Equal(t, "Emma", byBook[0].BookTitle)

	byUser, err := f.query.ByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	one, err := f.query.ByID(ctx, current.ID)
	require.NoError(t, err)
	assert.False(t, one.Overdue)
	assert.Equal(t, "reader@example.com", one.UserEmail)

	_, err = f.query.ByID(ctx, 9999)
	assert.ErrorIs(t, err, loan.ErrTransactionNotFound)
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
