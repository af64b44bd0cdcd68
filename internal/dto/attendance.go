package dto

import "github.com/shopspring/decimal"

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 用户申报出勤
type MarkAttendanceRequest struct {
	Date     string `json:"date"      binding:"required"`
	MealType string `json:"meal_type" binding:"omitempty,max=20"`
	Status   string `json:"status"    binding:"required,oneof=present absent"`
}

// SetOpenRequest 管理员切换开/关餐
type SetOpenRequest struct {
	UserID   string `json:"user_id"   binding:"required"`
	Date     string `json:"date"      binding:"required"`
	MealType string `json:"meal_type" binding:"omitempty,max=20"`
	IsOpen   *bool  `json:"is_open"   binding:"required"`
}

// AttendanceListRequest 考勤查询
type AttendanceListRequest struct {
	UserID    string `form:"user_id"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate"   binding:"required"`
}

// AttendanceResponse 考勤记录（remark 与 fine 在读取时计算）
type AttendanceResponse struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Date     string          `json:"date"`
	MealType string          `json:"meal_type"`
	Status   *string         `json:"status"`
	IsOpen   bool            `json:"is_open"`
	Remark   string          `json:"remark"`
	Fine     decimal.Decimal `json:"fine"`
}
