package user

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library/internal/domain/user"
)

// UpdateResponse 修改资料结果
type UpdateResponse struct {
	Message string        `json:"message"`
	User    *user.Profile `json:"user"`
}

// CatalogInvalidator 目录缓存清理
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, ids ...uint)
}

// AccountUseCase 个人资料与管理员用户管理
type AccountUseCase struct {
	userService user.Service
	invalidator CatalogInvalidator
}

// NewAccountUseCase 创建账户用例
func NewAccountUseCase(userService user.Service, invalidator CatalogInvalidator) *AccountUseCase {
	return &AccountUseCase{userService: userService, invalidator: invalidator}
}

// Profile 当前用户资料
func (uc *AccountUseCase) Profile(ctx context.Context, userID uint) (*user.Profile, error) {
	u, err := uc.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Profile(), nil
}

// Update 修改邮箱/密码，nil表示不修改
func (uc *AccountUseCase) Update(ctx context.Context, userID uint, email, password *string) (*UpdateResponse, error) {
	u, err := uc.userService.Update(ctx, userID, email, password)
	if err != nil {
		return nil, err
	}
	return &UpdateResponse{Message: "User updated successfully", User: u.Profile()}, nil
}

// List 全部用户，按邮箱排序
func (uc *AccountUseCase) List(ctx context.Context) ([]*user.Profile, error) {
	users, err := uc.userService.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]*user.Profile, len(users))
	for i, u := range users {
		profiles[i] = u.Profile()
	}
	return profiles, nil
}

// Delete 删除用户，借阅记录级联删除
// 未归还的借阅随之消失，借出数变化，清空目录缓存
func (uc *AccountUseCase) Delete(ctx context.Context, userID uint) error {
	if err := uc.userService.Delete(ctx, userID); err != nil {
		return err
	}
	if uc.invalidator != nil {
		uc.invalidator.Invalidate(ctx)
	}
	slog.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}
