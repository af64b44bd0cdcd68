package dto

import "github.com/shopspring/decimal"

// CreateGuestRequest 登记访客餐
type CreateGuestRequest struct {
	Name     string `json:"name"      binding:"required,min=1,max=100"`
	Date     string `json:"date"      binding:"required"`
	MealType string `json:"meal_type" binding:"omitempty,max=20"`
}

// GuestListRequest 访客餐查询
type GuestListRequest struct {
	UserID    string `form:"user_id"`
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate"   binding:"required"`
}

// GuestResponse 访客餐
type GuestResponse struct {
	ID        string          `json:"id"`
	InviterID string          `json:"inviter_id"`
	Name      string          `json:"name"`
	Date      string          `json:"date"`
	MealType  string          `json:"meal_type"`
	Amount    decimal.Decimal `json:"amount"`
}
