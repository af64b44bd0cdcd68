package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GuestEntry 访客餐表 — 对应 guest_entries
// Amount 是创建时（或配置生效重算时）冻结的单价，报表不再回查配置
type GuestEntry struct {
	GuestID   string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"guest_id"`
	InviterID string          `gorm:"type:uuid;not null"                             json:"inviter_id"`
	Name      string          `gorm:"type:varchar(100);not null"                     json:"name"`
	Date      time.Time       `gorm:"type:date;not null"                             json:"date"`
	MealType  string          `gorm:"type:varchar(20);not null;default:'lunch'"      json:"meal_type"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	BaseModel
}

// TableName 指定表名
func (GuestEntry) TableName() string { return "guest_entries" }
