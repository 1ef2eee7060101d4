package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tx := NewTransaction(1, 2, now, 14*24*time.Hour)

	assert.Equal(t, now, tx.CheckoutDate)
	assert.Equal(t, now.AddDate(0, 0, 14), tx.DueDate)
	assert.True(t, tx.IsOpen())
	assert.True(t, tx.IsOwnedBy(1))
	assert.False(t, tx.IsOwnedBy(2))
}

func TestMarkReturned(t *testing.T) {
	now := time.Now().UTC()
	tx := NewTransaction(1, 2, now, time.Hour)
	tx.ID = 9

	require.NoError(t, tx.MarkReturned(now.Add(time.Minute)))
	require.NotNil(t, tx.ReturnDate)
	assert.False(t, tx.ReturnDate.Before(tx.CheckoutDate))
	assert.False(t, tx.IsOpen())

	err := tx.MarkReturned(now.Add(2 * time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyReturned)
	assert.Contains(t, err.Error(), "transaction with ID 9")
}

func TestMarkReturned_ClockSkew(t *testing.T) {
	now := time.Now().UTC()
	tx := NewTransaction(1, 2, now, time.Hour)

	require.NoError(t, tx.MarkReturned(now.Add(-time.Second)))
	assert.Equal(t, tx.CheckoutDate, *tx.ReturnDate)
}

func TestIsOverdue(t *testing.T) {
	now := time.Now().UTC()
	tx := NewTransaction(1, 2, now.Add(-48*time.Hour), 24*time.Hour)

	assert.True(t, tx.IsOverdue(now))
	require.NoError(t, tx.MarkReturned(now))
	assert.False(t, tx.IsOverdue(now))
}
