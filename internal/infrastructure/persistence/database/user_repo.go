package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// userRepository 用户仓储实现
// 邮箱唯一性由数据库UNIQUE索引保证，冲突转换为ErrEmailDuplicate
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	return r.findBy(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findBy(ctx, "email = ?", user.NormalizeEmail(email))
}

func (r *userRepository) findBy(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var model UserModel
	err := conn(ctx, r.db).Where(query, arg).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	model := toUserModel(u)
	result := conn(ctx, r.db).Model(&UserModel{ID: u.ID}).
		Select("email", "password", "role", "updated_at").
		Updates(model)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return user.ErrEmailDuplicate
		}
		return apperrors.Wrap(result.Error, "更新用户失败")
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	u.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 借阅记录随用户一并删除，未归还的副本先放回库存
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := restoreOpenLoans(tx, id); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&TransactionModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除借阅记录失败")
		}
		result := tx.Delete(&UserModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "删除用户失败")
		}
		if result.RowsAffected == 0 {
			return user.ErrUserNotFound
		}
		return nil
	})
}

// restoreOpenLoans 锁定用户未归还的借阅记录，按图书归还库存
// 与还书相同，先锁借阅记录再更新图书；图书按id升序更新
func restoreOpenLoans(tx *gorm.DB, userID uint) error {
	var open []TransactionModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "book_id").
		Where("user_id = ? AND return_date IS NULL", userID).
		Order("book_id ASC").
		Find(&open).Error
	if err != nil {
		return apperrors.Wrap(err, "查询未归还借阅失败")
	}

	perBook := make(map[uint]int)
	var bookIDs []uint
	for _, t := range open {
		if perBook[t.BookID] == 0 {
			bookIDs = append(bookIDs, t.BookID)
		}
		perBook[t.BookID]++
	}

	now := time.Now().UTC()
	for _, bookID := range bookIDs {
		err := tx.Model(&BookModel{}).
			Where("id = ?", bookID).
			UpdateColumns(map[string]interface{}{
				"copies":     gorm.Expr("copies + ?", perBook[bookID]),
				"updated_at": now,
			}).Error
		if err != nil {
			return apperrors.Wrap(err, "归还库存失败")
		}
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*user.User, error) {
	var models []UserModel
	if err := conn(ctx, r.db).Order("email ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询用户列表失败")
	}

	users := make([]*user.User, 0, len(models))
	for i := range models {
		users = append(users, toUserEntity(&models[i]))
	}
	return users, nil
}

func toUserModel(u *user.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		Role:      user.Role(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
