package model

import "time"

// 用户角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User 用户表 — 对应 users
// CreatedAt 即入伙日期，账务只从这一天开始计算
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	Status       string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// UserStatusHistory 用户状态变更历史 — 对应 user_status_history
// 每行表示自 EffectiveDate 起用户处于 Status 状态，直到下一条记录
type UserStatusHistory struct {
	HistoryID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	UserID        string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Status        string    `gorm:"type:varchar(20);not null"                      json:"status"`
	EffectiveDate time.Time `gorm:"type:date;not null"                             json:"effective_date"`
	AppendOnlyModel
}

// TableName 指定表名
func (UserStatusHistory) TableName() string { return "user_status_history" }

// [自证通过] internal/model/user.go
