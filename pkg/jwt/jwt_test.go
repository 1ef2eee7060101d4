package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", 24*time.Hour, "library")

	tok, err := m.Generate(42, "reader@example.com", "member")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := m.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, tok.ID, claims.ID)
	assert.Equal(t, "42", claims.Subject)
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager("secret", time.Hour, "library")
	tok, err := m.Generate(1, "a@b.c", "member")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewManager("secret", time.Hour, "library")
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(tok.Value)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))
		assert.True(t, errors.Is(err, gojwt.ErrTokenExpired))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("other", time.Hour, "library")
		_, err := other.Parse(tok.Value)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{UserID: 1}).
			SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Parse(unsigned)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidToken))
	})
}
