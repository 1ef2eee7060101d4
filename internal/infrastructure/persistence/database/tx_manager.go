package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
// 事务中的*gorm.DB随context传递，仓储通过conn(ctx)取得当前连接
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 在事务中执行fn，fn返回错误或panic时回滚
// 已处于事务中时复用外层事务（GORM以SAVEPOINT嵌套）
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return conn(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn 优先返回context中的事务连接
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
