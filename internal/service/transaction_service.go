package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
	apperrors "tdlma/backend/pkg/errors"
)

// ── 交易模块业务错误 ──

var (
	ErrTransactionAmount = apperrors.Validation(21001, "amount", "金额必须为大于 0 且最多两位小数的数字")
	ErrTransactionType   = apperrors.Validation(21002, "type", "交易类型只能是 paid、reduced 或 waived")
)

// TransactionService 交易流水业务接口（只追加）
type TransactionService interface {
	Record(ctx context.Context, req *dto.CreateTransactionRequest, callerID string) (*dto.TransactionResponse, error)
	// List userID 为空时返回全员
	List(ctx context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error)
}

type transactionService struct {
	repo   *repository.Repository
	clock  *Clock
	logger *zap.Logger
}

// NewTransactionService 创建 TransactionService 实例
func NewTransactionService(repo *repository.Repository, clock *Clock, logger *zap.Logger) TransactionService {
	return &transactionService{repo: repo, clock: clock, logger: logger}
}

func (s *transactionService) Record(ctx context.Context, req *dto.CreateTransactionRequest, callerID string) (*dto.TransactionResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return nil, ErrTransactionAmount
	}
	txType := model.TransactionType(req.Type)
	if !txType.Valid() {
		return nil, ErrTransactionType
	}

	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, apperrors.Internal("查询用户失败", err)
	}

	t := &model.Transaction{
		UserID:      req.UserID,
		Amount:      amount.Round(2),
		Type:        txType,
		Description: req.Description,
	}
	t.CreatedBy = &callerID
	t.CreatedAt = s.clock.Now()

	if err := s.repo.Transaction.Create(ctx, t); err != nil {
		s.logger.Error("记录交易失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, apperrors.Internal("记录交易失败", err)
	}

	s.logger.Info("交易已记录",
		zap.String("transaction_id", t.TransactionID),
		zap.String("user_id", t.UserID),
		zap.String("type", string(t.Type)),
		zap.String("amount", t.Amount.StringFixed(2)),
		zap.String("actor", callerID),
	)

	resp := toTransactionResponse(t)
	return &resp, nil
}

func (s *transactionService) List(ctx context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error) {
	rows, total, err := s.repo.Transaction.ListPaged(ctx, req.UserID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询交易流水失败", zap.Error(err))
		return nil, 0, apperrors.Internal("查询交易流水失败", err)
	}

	result := make([]dto.TransactionResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toTransactionResponse(&rows[i]))
	}
	return result, total, nil
}

func toTransactionResponse(t *model.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:          t.TransactionID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Description: t.Description,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}
