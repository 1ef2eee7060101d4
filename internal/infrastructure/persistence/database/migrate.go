package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Migrate 创建/更新表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserModel{}, &BookModel{}, &TransactionModel{}); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

// Erase 清空所有业务数据，保留表结构
func Erase(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		// 先删子表
		for _, model := range []interface{}{&TransactionModel{}, &BookModel{}, &UserModel{}} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("清空数据失败: %w", err)
			}
		}
		return nil
	})
}
