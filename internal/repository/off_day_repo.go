package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tdlma/backend/internal/model"
)

// OffDayRepository 休息日数据访问接口
type OffDayRepository interface {
	Create(ctx context.Context, d *model.OffDay) error
	// CreateIgnoreDuplicates 批量写入，日期已存在的行跳过，返回实际写入行数
	CreateIgnoreDuplicates(ctx context.Context, days []model.OffDay) (int64, error)
	GetByID(ctx context.Context, id string) (*model.OffDay, error)
	ListRange(ctx context.Context, from, to time.Time) ([]model.OffDay, error)
	Delete(ctx context.Context, id string) error
}

type offDayRepo struct {
	db *gorm.DB
}

// NewOffDayRepo 创建 OffDayRepository 实例
func NewOffDayRepo(db *gorm.DB) OffDayRepository {
	return &offDayRepo{db: db}
}

func (r *offDayRepo) Create(ctx context.Context, d *model.OffDay) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *offDayRepo) CreateIgnoreDuplicates(ctx context.Context, days []model.OffDay) (int64, error) {
	if len(days) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "date"}}, DoNothing: true}).
		Create(&days)
	return res.RowsAffected, res.Error
}

func (r *offDayRepo) GetByID(ctx context.Context, id string) (*model.OffDay, error) {
	var d model.OffDay
	if err := r.db.WithContext(ctx).Where("off_day_id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *offDayRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.OffDay, error) {
	var days []model.OffDay
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from, to).
		Order("date ASC").
		Find(&days).Error
	return days, err
}

func (r *offDayRepo) Delete(ctx context.Context, id string) error {
	// 硬删除：休息日只是日历标记，无需软删除审计
	return r.db.WithContext(ctx).
		Where("off_day_id = ?", id).
		Delete(&model.OffDay{}).Error
}
