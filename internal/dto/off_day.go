package dto

// CreateOffDayRequest 新增休息日
type CreateOffDayRequest struct {
	Date   string `json:"date"   binding:"required"`
	Reason string `json:"reason" binding:"omitempty,max=200"`
}

// OffDayListRequest 休息日查询
type OffDayListRequest struct {
	StartDate string `form:"startDate" binding:"required"`
	EndDate   string `form:"endDate"   binding:"required"`
}

// OffDayResponse 休息日
type OffDayResponse struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// ImportOffDaysResponse ICS 导入结果
type ImportOffDaysResponse struct {
	Parsed   int   `json:"parsed"`
	Imported int64 `json:"imported"`
	Skipped  int64 `json:"skipped"`
}
