package dto

import "github.com/shopspring/decimal"

// ── 账务报表 DTO ──

// ReportRangeRequest 报表日期区间
type ReportRangeRequest struct {
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate"   binding:"required"`
}

// RemarkCounts 各考勤分类计数
type RemarkCounts struct {
	AllClear int `json:"all_clear"`
	Unclosed int `json:"unclosed"`
	Unopened int `json:"unopened"`
}

// Add 累加
func (r *RemarkCounts) Add(o RemarkCounts) {
	r.AllClear += o.AllClear
	r.Unclosed += o.Unclosed
	r.Unopened += o.Unopened
}

// UserDuesResponse 单个用户在区间内的账务汇总
type UserDuesResponse struct {
	UserID       string       `json:"user_id"`
	UserName     string       `json:"user_name"`
	ActiveFrom   string       `json:"active_from"`
	ActiveTo     string       `json:"active_to"`
	TotalDays    int          `json:"total_days"`
	BillableDays int          `json:"billable_days"`
	WorkDays     int          `json:"work_days"`
	Remarks      RemarkCounts `json:"remarks"`
	GuestCount   int          `json:"guest_count"`

	TotalFine     decimal.Decimal `json:"total_fine"`
	GuestExpense  decimal.Decimal `json:"guest_expense"`
	BaseExpense   decimal.Decimal `json:"base_expense"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	// TotalDues 可为负，表示预付/余额
	TotalDues decimal.Decimal `json:"total_dues"`

	FinePolicy string `json:"fine_policy"`
}

// DuesTotals 全员汇总；只能由 Add 逐个累加得到
type DuesTotals struct {
	Users         int             `json:"users"`
	Remarks       RemarkCounts    `json:"remarks"`
	GuestCount    int             `json:"guest_count"`
	TotalFine     decimal.Decimal `json:"total_fine"`
	GuestExpense  decimal.Decimal `json:"guest_expense"`
	BaseExpense   decimal.Decimal `json:"base_expense"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	TotalDues     decimal.Decimal `json:"total_dues"`
}

// Add 逐字段累加一个用户的账务
func (t *DuesTotals) Add(u *UserDuesResponse) {
	t.Users++
	t.Remarks.Add(u.Remarks)
	t.GuestCount += u.GuestCount
	t.TotalFine = t.TotalFine.Add(u.TotalFine)
	t.GuestExpense = t.GuestExpense.Add(u.GuestExpense)
	t.BaseExpense = t.BaseExpense.Add(u.BaseExpense)
	t.TotalPayments = t.TotalPayments.Add(u.TotalPayments)
	t.TotalDues = t.TotalDues.Add(u.TotalDues)
}

// DayStats 区间日历统计（与用户无关）
type DayStats struct {
	TotalDays int `json:"total_days"`
	WorkDays  int `json:"work_days"`
	Sundays   int `json:"sundays"`
	OffDays   int `json:"off_days"`
}

// ReportResponse 全员账务报表
type ReportResponse struct {
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date"`
	Users         []UserDuesResponse `json:"users"`
	Totals        DuesTotals         `json:"totals"`
	DayStats      DayStats           `json:"day_stats"`
	FinePolicy    string             `json:"fine_policy"`
	Approximation string             `json:"approximation,omitempty"`
}
