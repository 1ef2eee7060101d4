package user

import (
	"strings"
	"time"
)

// Role 用户角色
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User 用户实体
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值，永不对外输出
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile 对外公开的用户信息
type Profile struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser 创建普通用户
func NewUser(email, hashedPassword string) *User {
	now := time.Now().UTC()
	return &User{
		Email:     NormalizeEmail(email),
		Password:  hashedPassword,
		Role:      RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Profile 转换为公开信息
func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail 邮箱统一小写去空格
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
