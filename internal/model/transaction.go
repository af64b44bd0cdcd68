package model

import "github.com/shopspring/decimal"

// TransactionType 交易类型；三种类型在欠款公式中同样冲减余额，仅用于展示区分
type TransactionType string

const (
	TransactionPaid    TransactionType = "paid"
	TransactionReduced TransactionType = "reduced"
	TransactionWaived  TransactionType = "waived"
)

// Valid 是否为合法类型
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionPaid, TransactionReduced, TransactionWaived:
		return true
	}
	return false
}

// Transaction 交易流水表 — 对应 transactions
// 只追加：更正通过新增一笔流水完成，不修改、不删除
type Transaction struct {
	TransactionID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"transaction_id"`
	UserID        string          `gorm:"type:uuid;not null"                             json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	Type          TransactionType `gorm:"type:varchar(10);not null"                      json:"type"`
	Description   *string         `gorm:"type:text"                                      json:"description,omitempty"`
	AppendOnlyModel
}

// TableName 指定表名
func (Transaction) TableName() string { return "transactions" }
