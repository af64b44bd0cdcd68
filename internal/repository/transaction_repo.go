package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tdlma/backend/internal/model"
)

// TransactionRepository 交易流水数据访问接口
// 只提供写入与查询，不提供 Update/Delete：流水只追加
type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) error
	// ListByUser 返回 created_at 落在 [from, to] 两个日期（含）之间的流水
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error)
	ListRange(ctx context.Context, from, to time.Time) ([]model.Transaction, error)
	ListPaged(ctx context.Context, userID string, offset, limit int) ([]model.Transaction, int64, error)
}

type transactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepo 创建 TransactionRepository 实例
func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *transactionRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Transaction, error) {
	var rows []model.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to.AddDate(0, 0, 1)).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *transactionRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	var rows []model.Transaction
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to.AddDate(0, 0, 1)).
		Order("user_id ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *transactionRepo) ListPaged(ctx context.Context, userID string, offset, limit int) ([]model.Transaction, int64, error) {
	var rows []model.Transaction
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Transaction{})
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
