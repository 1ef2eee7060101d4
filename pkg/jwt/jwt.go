// Package jwt 签发和校验访问Token（HS256）
package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Manager Token管理器
type Manager struct {
	secret []byte
	expire time.Duration
	issuer string
	now    func() time.Time
}

// NewManager 创建Token管理器
func NewManager(secret string, expire time.Duration, issuer string) *Manager {
	return &Manager{
		secret: []byte(secret),
		expire: expire,
		issuer: issuer,
		now:    time.Now,
	}
}

// Claims 自定义声明，ID(jti)用于登出黑名单
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Token 签发结果
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Generate 签发Token
func (m *Manager) Generate(userID uint, email, role string) (*Token, error) {
	now := m.now()
	expiresAt := now.Add(m.expire)
	jti := uuid.NewString()

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign token")
	}

	return &Token{Value: signed, ID: jti, ExpiresAt: expiresAt}, nil
}

// Parse 校验签名和有效期，任何失败都返回ErrInvalidToken
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeInvalidToken, apperrors.ErrInvalidToken.Message)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
