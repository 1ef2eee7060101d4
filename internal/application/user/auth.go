package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/pkg/jwt"
)

// AuthResponse 注册/登录结果
type AuthResponse struct {
	Message string        `json:"message"`
	User    *user.Profile `json:"user"`
	Token   string        `json:"token"`
}

// TokenRevoker 登出时拉黑Token
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthUseCase 注册、登录、登出
type AuthUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
	revoker     TokenRevoker
	now         func() time.Time
}

// NewAuthUseCase revoker可为nil(未配置Redis时登出只是客户端丢弃Token)
func NewAuthUseCase(userService user.Service, jwtManager *jwt.Manager, revoker TokenRevoker) *AuthUseCase {
	return &AuthUseCase{
		userService: userService,
		jwtManager:  jwtManager,
		revoker:     revoker,
		now:         time.Now,
	}
}

// Register 注册并签发Token
func (uc *AuthUseCase) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := uc.userService.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := uc.jwtManager.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", u.ID)
	return &AuthResponse{
		Message: "User registered successfully",
		User:    u.Profile(),
		Token:   token.Value,
	}, nil
}

// Login 校验密码并签发Token
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := uc.userService.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := uc.jwtManager.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Message: "Login successful",
		User:    u.Profile(),
		Token:   token.Value,
	}, nil
}

// Logout 拉黑jti直到Token过期
func (uc *AuthUseCase) Logout(ctx context.Context, claims *jwt.Claims) error {
	if uc.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(uc.now())
	}
	if err := uc.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}

	slog.InfoContext(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}
