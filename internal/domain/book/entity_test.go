package book

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNewBook(t *testing.T) {
	t.Run("copies defaults to one", func(t *testing.T) {
		b, err := NewBook(Fields{Title: strPtr("Dune"), Author: strPtr("Frank Herbert")})
		require.NoError(t, err)
		assert.Equal(t, 1, b.Copies)
		assert.Nil(t, b.ISBN)
	})

	t.Run("negative copies clamp to zero", func(t *testing.T) {
		b, err := NewBook(Fields{Title: strPtr("Dune"), Author: strPtr("Frank Herbert"), Copies: intPtr(-3)})
		require.NoError(t, err)
		assert.Equal(t, 0, b.Copies)
	})

	t.Run("blank isbn stored as nil", func(t *testing.T) {
		b, err := NewBook(Fields{Title: strPtr("Dune"), Author: strPtr("Frank Herbert"), ISBN: strPtr("  ")})
		require.NoError(t, err)
		assert.Nil(t, b.ISBN)
	})

	t.Run("title and author required", func(t *testing.T) {
		_, err := NewBook(Fields{Author: strPtr("x")})
		assert.ErrorIs(t, err, ErrTitleRequired)
		_, err = NewBook(Fields{Title: strPtr("x"), Author: strPtr(" ")})
		assert.ErrorIs(t, err, ErrAuthorRequired)
	})
}

func TestFieldLengthLimits(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		message string
	}{
		{"title", Fields{Title: strPtr(strings.Repeat("t", MaxTitleLen+1)), Author: strPtr("a")}, "Title must be at most 255 characters"},
		{"author", Fields{Title: strPtr("t"), Author: strPtr(strings.Repeat("a", MaxAuthorLen+1))}, "Author must be at most 255 characters"},
		{"isbn", Fields{Title: strPtr("t"), Author: strPtr("a"), ISBN: strPtr(strings.Repeat("9", MaxISBNLen+1))}, "ISBN must be at most 20 characters"},
		{"genre", Fields{Title: strPtr("t"), Author: strPtr("a"), Genre: strPtr(strings.Repeat("g", MaxGenreLen+1))}, "Genre must be at most 100 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBook(tt.fields)
			require.Error(t, err)
			appErr := apperrors.GetAppError(err)
			assert.Equal(t, 400, appErr.HTTPStatus())
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	t.Run("limit counts characters not bytes", func(t *testing.T) {
		_, err := NewBook(Fields{Title: strPtr(strings.Repeat("书", MaxTitleLen)), Author: strPtr("a")})
		assert.NoError(t, err)
	})

	t.Run("update rejected before any field changes", func(t *testing.T) {
		b, err := NewBook(Fields{Title: strPtr("Dune"), Author: strPtr("Frank Herbert")})
		require.NoError(t, err)
		err = b.Apply(Fields{Author: strPtr("New"), ISBN: strPtr(strings.Repeat("9", 21))})
		assert.Equal(t, "ISBN must be at most 20 characters", apperrors.GetAppError(err).Message)
		assert.Equal(t, "Frank Herbert", b.Author)
	})
}

func TestAvailableCopies(t *testing.T) {
	b := &Book{Copies: 2, CheckedOut: 3}
	assert.Equal(t, 5, b.TotalCopies())
	assert.Equal(t, 2, b.AvailableCopies())
	assert.Equal(t, b.TotalCopies()-b.CheckedOut, b.AvailableCopies())

	empty := &Book{Copies: 0, CheckedOut: 1}
	assert.Equal(t, 0, empty.AvailableCopies())
	assert.False(t, empty.HasStock())
}

func TestSetTotalCopies(t *testing.T) {
	t.Run("keeps outstanding loans", func(t *testing.T) {
		b := &Book{Copies: 1, CheckedOut: 2}
		require.NoError(t, b.SetTotalCopies(5))
		assert.Equal(t, 3, b.Copies)
		assert.Equal(t, 5, b.TotalCopies())
	})

	t.Run("rejects total below loans", func(t *testing.T) {
		b := &Book{Copies: 0, CheckedOut: 2}
		err := b.SetTotalCopies(1)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCopiesBelowLoans))
		assert.Equal(t, 0, b.Copies)
	})

	t.Run("negative total treated as zero", func(t *testing.T) {
		b := &Book{Copies: 4}
		require.NoError(t, b.SetTotalCopies(-1))
		assert.Equal(t, 0, b.Copies)
	})
}

func TestApply(t *testing.T) {
	b := &Book{Title: "Old", Author: "A", Copies: 1}
	require.NoError(t, b.Apply(Fields{Title: strPtr("New"), Genre: strPtr("Fantasy")}))
	assert.Equal(t, "New", b.Title)
	assert.Equal(t, "A", b.Author)
	assert.Equal(t, "Fantasy", *b.Genre)
	assert.Equal(t, 1, b.Copies)

	assert.ErrorIs(t, b.Apply(Fields{Title: strPtr("")}), ErrTitleRequired)
}

func TestListParamsOffset(t *testing.T) {
	assert.Equal(t, 0, ListParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, ListParams{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 15, ListParams{Page: 4, Limit: 5}.Offset())
}
