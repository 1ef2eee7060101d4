package user

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Service 用户领域服务
type Service interface {
	Register(ctx context.Context, email, password string) (*User, error)

	// ValidateCredentials 邮箱不存在或密码不匹配都返回ErrInvalidCredentials
	ValidateCredentials(ctx context.Context, email, password string) (*User, error)

	// Update 只更新提供的字段，都未提供时原样返回
	Update(ctx context.Context, id uint, email, password *string) (*User, error)

	GetByID(ctx context.Context, id uint) (*User, error)

	GetAll(ctx context.Context) ([]*User, error)

	Delete(ctx context.Context, id uint) error

	// SetRole 调整角色（管理命令使用）
	SetRole(ctx context.Context, email string, role Role) (*User, error)
}

type service struct {
	repo       Repository
	bcryptCost int
}

// NewService 创建用户领域服务
func NewService(repo Repository, bcryptCost int) Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &service{repo: repo, bcryptCost: bcryptCost}
}

func (s *service) Register(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailDuplicate
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	u := NewUser(email, hashed)
	// 并发注册由唯一索引兜底，仓储层转换为ErrEmailDuplicate
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ValidateCredentials(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "failed to verify password")
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, id uint, email, password *string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if email != nil && strings.TrimSpace(*email) != "" {
		newEmail := NormalizeEmail(*email)
		if newEmail != u.Email {
			if !isValidEmail(newEmail) {
				return nil, ErrInvalidEmail
			}
			existing, err := s.repo.FindByEmail(ctx, newEmail)
			if err == nil && existing.ID != u.ID {
				return nil, ErrEmailDuplicate
			}
			if err != nil && !errors.Is(err, ErrUserNotFound) {
				return nil, err
			}
			u.Email = newEmail
			changed = true
		}
	}
	if password != nil && *password != "" {
		hashed, err := s.hash(*password)
		if err != nil {
			return nil, err
		}
		u.Password = hashed
		changed = true
	}

	if !changed {
		return u, nil
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetAll(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) SetRole(ctx context.Context, email string, role Role) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}
	u.Role = role
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) hash(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return string(hashed), nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return len(email) <= 100 && emailPattern.MatchString(email)
}
