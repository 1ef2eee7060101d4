package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoanLifecycle 借书、还书、重复还书
func TestLoanLifecycle(t *testing.T) {
	reader, token := RegisterTestUser(t, "borrower")
	other, otherToken := RegisterTestUser(t, "bystander")
	b := CreateTestBook(t, "集成测试：借阅流程", 1)

	checkout := map[string]uint{"user_id": reader.ID, "book_id": b.ID}

	res := Do(t, http.MethodPost, "/transactions", checkout, otherToken)
	assert.Equal(t, http.StatusForbidden, res.Status, "不能替他人借书")

	res = Do(t, http.MethodPost, "/transactions", checkout, token)
	require.Equal(t, http.StatusCreated, res.Status, "%s", res.Body)
	var tx TransactionData
	res.Decode(t, &tx)
	assert.Equal(t, b.ID, tx.BookID)
	assert.Nil(t, tx.ReturnDate)
	assert.False(t, tx.Overdue)

	res = Do(t, http.MethodPost, "/transactions", map[string]uint{"user_id": other.ID, "book_id": b.ID}, otherToken)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "No copies available", res.Message(t))

	res = Do(t, http.MethodGet, fmt.Sprintf("/books/%d", b.ID), nil, "")
	var stock BookData
	res.Decode(t, &stock)
	assert.Equal(t, 0, stock.AvailableCopies)
	assert.Equal(t, 1, stock.CheckedOut)
	assert.Equal(t, 1, stock.TotalCopies)

	path := fmt.Sprintf("/transactions/%d/return", tx.ID)
	res = Do(t, http.MethodPut, path, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = Do(t, http.MethodPut, path, nil, token)
	require.Equal(t, http.StatusOK, res.Status, "%s", res.Body)
	var returned TransactionData
	res.Decode(t, &returned)
	assert.NotNil(t, returned.ReturnDate)

	res = Do(t, http.MethodPut, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = Do(t, http.MethodGet, fmt.Sprintf("/transactions/user/%d", reader.ID), nil, token)
	require.Equal(t, http.StatusOK, res.Status)
	var history []TransactionData
	res.Decode(t, &history)
	require.Len(t, history, 1)
	assert.Equal(t, tx.ID, history[0].ID)
}

// TestConcurrentCheckout 并发借同一本书，成功数不超过馆藏
func TestConcurrentCheckout(t *testing.T) {
	const copies, borrowers = 3, 10
	b := CreateTestBook(t, "集成测试：并发借阅", copies)

	type borrower struct {
		id    uint
		token string
	}
	users := make([]borrower, borrowers)
	for i := range users {
		u, token := RegisterTestUser(t, fmt.Sprintf("racer%d", i))
		users[i] = borrower{id: u.ID, token: token}
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u borrower) {
			defer wg.Done()
			res, err := Send(http.MethodPost, "/transactions", map[string]uint{"user_id": u.id, "book_id": b.ID}, u.token)
			if err != nil {
				t.Errorf("checkout: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch res.Status {
			case http.StatusCreated:
				succeeded++
			case http.StatusBadRequest:
				rejected++
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, copies, succeeded)
	assert.Equal(t, borrowers-copies, rejected)

	res := Do(t, http.MethodGet, fmt.Sprintf("/books/%d", b.ID), nil, "")
	var stock BookData
	res.Decode(t, &stock)
	assert.Equal(t, 0, stock.Copies)
	assert.Equal(t, copies, stock.CheckedOut)
}
