package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tdlma/backend/internal/model"
)

// GuestRepository 访客餐数据访问接口
type GuestRepository interface {
	Create(ctx context.Context, g *model.GuestEntry) error
	ListByInviter(ctx context.Context, inviterID string, from, to time.Time) ([]model.GuestEntry, error)
	ListRange(ctx context.Context, from, to time.Time) ([]model.GuestEntry, error)
	// Reprice 将 [from, to] 日期范围内（to 为 nil 表示不设上限）的访客餐金额改写为 price
	// 返回实际改写行数
	Reprice(ctx context.Context, from time.Time, to *time.Time, price decimal.Decimal, callerID string) (int64, error)
}

type guestRepo struct {
	db *gorm.DB
}

// NewGuestRepo 创建 GuestRepository 实例
func NewGuestRepo(db *gorm.DB) GuestRepository {
	return &guestRepo{db: db}
}

func (r *guestRepo) Create(ctx context.Context, g *model.GuestEntry) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *guestRepo) ListByInviter(ctx context.Context, inviterID string, from, to time.Time) ([]model.GuestEntry, error) {
	var rows []model.GuestEntry
	err := r.db.WithContext(ctx).
		Where("inviter_id = ? AND date BETWEEN ? AND ?", inviterID, from, to).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *guestRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.GuestEntry, error) {
	var rows []model.GuestEntry
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from, to).
		Order("inviter_id ASC, date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *guestRepo) Reprice(ctx context.Context, from time.Time, to *time.Time, price decimal.Decimal, callerID string) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.GuestEntry{}).
		Where("date >= ? AND amount <> ?", from, price)
	if to != nil {
		q = q.Where("date <= ?", *to)
	}
	res := q.Updates(map[string]interface{}{
		"amount":     price,
		"updated_at": time.Now(),
		"updated_by": callerID,
	})
	return res.RowsAffected, res.Error
}
