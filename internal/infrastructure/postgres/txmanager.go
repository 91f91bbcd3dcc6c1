package postgres

import (
	"context"

	"gorm.io/gorm"
)

type txCtxKey struct{}

// TxManager runs units of work in gorm transactions carried by the context.
// A nested RunInTx joins the outer transaction.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx executes fn within a transaction. It commits when fn returns nil
// and rolls back on error or panic.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txCtxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txCtxKey{}, tx))
	})
}

// conn returns the transaction in ctx, or db bound to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txCtxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
