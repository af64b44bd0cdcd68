package service

import (
	"time"

	"github.com/shopspring/decimal"

	"tdlma/backend/internal/model"
)

// ── 考勤分类与罚款 ──
// 纯函数：不访问存储，罚款配置由调用方按日期解析后传入

// Classify 由申报状态与开/关餐状态推导考勤分类
// 已申报（present/absent）→ All Clear；未申报且已关餐 → Unclosed；未申报且未关餐 → Unopened
func Classify(status *model.AttendanceStatus, isOpen bool) model.Remark {
	if status != nil && status.Valid() {
		return model.RemarkAllClear
	}
	if !isOpen {
		return model.RemarkUnclosed
	}
	return model.RemarkUnopened
}

// FineSettings 某一天生效的罚款金额
type FineSettings struct {
	Unclosed decimal.Decimal
	Unopened decimal.Decimal
}

// ComputeFine 按分类取对应罚款
func ComputeFine(remark model.Remark, fs FineSettings) decimal.Decimal {
	switch remark {
	case model.RemarkUnclosed:
		return fs.Unclosed
	case model.RemarkUnopened:
		return fs.Unopened
	default:
		return decimal.Zero
	}
}

// FineSettingsAt 取 date 当天生效的罚款配置
func FineSettingsAt(tl *Timeline, date time.Time) FineSettings {
	return FineSettings{
		Unclosed: tl.DecimalAsOf(model.SettingFineUnclosed, date),
		Unopened: tl.DecimalAsOf(model.SettingFineUnopened, date),
	}
}
