package dto

import "github.com/shopspring/decimal"

// CreateTransactionRequest 记录一笔交易
type CreateTransactionRequest struct {
	UserID      string  `json:"user_id"     binding:"required"`
	Amount      string  `json:"amount"      binding:"required"`
	Type        string  `json:"type"        binding:"required,oneof=paid reduced waived"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// TransactionListRequest 交易查询
type TransactionListRequest struct {
	UserID string `form:"user_id"`
	PaginationRequest
}

// TransactionResponse 交易流水
type TransactionResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description *string         `json:"description,omitempty"`
	CreatedBy   *string         `json:"created_by,omitempty"`
	CreatedAt   string          `json:"created_at"`
}
