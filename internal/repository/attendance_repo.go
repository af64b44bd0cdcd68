package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tdlma/backend/internal/model"
)

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	Get(ctx context.Context, userID string, date time.Time, mealType string) (*model.Attendance, error)
	// UpsertStatus 按 (user_id, date, meal_type) 幂等写入申报状态，不改动 is_open
	UpsertStatus(ctx context.Context, a *model.Attendance) error
	// UpsertOpen 按 (user_id, date, meal_type) 幂等写入开/关餐状态，不改动 status
	UpsertOpen(ctx context.Context, a *model.Attendance) error
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Attendance, error)
	ListRange(ctx context.Context, from, to time.Time) ([]model.Attendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

var attendanceNaturalKey = []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "meal_type"}}

func (r *attendanceRepo) Get(ctx context.Context, userID string, date time.Time, mealType string) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND meal_type = ?", userID, date, mealType).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) UpsertStatus(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   attendanceNaturalKey,
			DoUpdates: clause.AssignmentColumns([]string{"status", "fine_amount", "updated_at", "updated_by"}),
		}).
		Create(a).Error
}

func (r *attendanceRepo) UpsertOpen(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   attendanceNaturalKey,
			DoUpdates: clause.AssignmentColumns([]string{"is_open", "fine_amount", "updated_at", "updated_by"}),
		}).
		Create(a).Error
}

func (r *attendanceRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]model.Attendance, error) {
	var rows []model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC, meal_type ASC").
		Find(&rows).Error
	return rows, err
}

func (r *attendanceRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.Attendance, error) {
	var rows []model.Attendance
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from, to).
		Order("user_id ASC, date ASC, meal_type ASC").
		Find(&rows).Error
	return rows, err
}
