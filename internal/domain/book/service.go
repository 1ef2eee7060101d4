package book

import (
	"context"
)

// Service 图书领域服务
type Service interface {
	Create(ctx context.Context, fields Fields) (*Book, error)

	GetByID(ctx context.Context, id uint) (*Book, error)

	// Update 锁定图书行后部分更新，需在事务中调用
	Update(ctx context.Context, id uint, fields Fields) (*Book, error)

	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	ListAll(ctx context.Context) ([]*Book, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, fields Fields) (*Book, error) {
	b, err := NewBook(fields)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id uint, fields Fields) (*Book, error) {
	b, err := s.repo.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Apply(fields); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *service) ListAll(ctx context.Context) ([]*Book, error) {
	return s.repo.ListAll(ctx)
}
