package model

import "time"

// OffDay 全员休息日表 — 对应 off_days
type OffDay struct {
	OffDayID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"off_day_id"`
	Date     time.Time `gorm:"type:date;not null;uniqueIndex"                 json:"date"`
	Reason   string    `gorm:"type:varchar(200);not null;default:''"          json:"reason"`
	BaseModel
}

// TableName 指定表名
func (OffDay) TableName() string { return "off_days" }
