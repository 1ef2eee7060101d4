package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	Create(ctx context.Context, user *User) error

	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 未找到返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	// Delete 删除用户，借阅记录级联删除
	Delete(ctx context.Context, id uint) error

	// List 按邮箱排序
	List(ctx context.Context) ([]*User, error)
}
