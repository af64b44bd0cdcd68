package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
	apperrors "tdlma/backend/pkg/errors"
)

// ── 访客餐模块业务错误 ──

var (
	ErrGuestDateFormat = apperrors.Validation(20001, "date", "日期格式应为 YYYY-MM-DD")
)

// GuestService 访客餐业务接口
type GuestService interface {
	// Create 登记访客餐，金额冻结为访客日期当天生效的单价
	Create(ctx context.Context, req *dto.CreateGuestRequest, inviterID string) (*dto.GuestResponse, error)
	// List userID 为空时返回全员
	List(ctx context.Context, userID string, start, end time.Time) ([]dto.GuestResponse, error)
}

type guestService struct {
	repo     *repository.Repository
	settings SettingService
	logger   *zap.Logger
}

// NewGuestService 创建 GuestService 实例
func NewGuestService(repo *repository.Repository, settings SettingService, logger *zap.Logger) GuestService {
	return &guestService{repo: repo, settings: settings, logger: logger}
}

func (s *guestService) Create(ctx context.Context, req *dto.CreateGuestRequest, inviterID string) (*dto.GuestResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrGuestDateFormat
	}

	raw, err := s.settings.GetValueAsOf(ctx, model.SettingGuestMealPrice, date)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.Internal("访客餐单价格式异常", err)
	}

	guest := &model.GuestEntry{
		InviterID: inviterID,
		Name:      req.Name,
		Date:      date,
		MealType:  mealTypeOrDefault(req.MealType),
		Amount:    price,
	}
	guest.CreatedBy = &inviterID
	guest.UpdatedBy = &inviterID

	if err := s.repo.Guest.Create(ctx, guest); err != nil {
		s.logger.Error("登记访客餐失败", zap.String("inviter_id", inviterID), zap.Error(err))
		return nil, apperrors.Internal("登记访客餐失败", err)
	}

	resp := toGuestResponse(guest)
	return &resp, nil
}

func (s *guestService) List(ctx context.Context, userID string, start, end time.Time) ([]dto.GuestResponse, error) {
	var (
		rows []model.GuestEntry
		err  error
	)
	if userID == "" {
		rows, err = s.repo.Guest.ListRange(ctx, start, end)
	} else {
		rows, err = s.repo.Guest.ListByInviter(ctx, userID, start, end)
	}
	if err != nil {
		s.logger.Error("查询访客餐失败", zap.Error(err))
		return nil, apperrors.Internal("查询访客餐失败", err)
	}

	result := make([]dto.GuestResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toGuestResponse(&rows[i]))
	}
	return result, nil
}

// repriceGuests 把 [from, to] 内的访客餐金额改写为 price（to 为 nil 表示不设上限）
// 只触及 date >= from 的行，from 之前的历史金额保持不变
func repriceGuests(ctx context.Context, repo *repository.Repository, logger *zap.Logger, from time.Time, to *time.Time, price decimal.Decimal, actor string) (int64, error) {
	affected, err := repo.Guest.Reprice(ctx, dateOf(from), to, price, actor)
	if err != nil {
		logger.Error("访客餐重算失败", zap.String("from", formatDate(from)), zap.Error(err))
		return 0, apperrors.Internal("访客餐重算失败", err)
	}

	fields := []zap.Field{
		zap.String("from", formatDate(from)),
		zap.String("price", price.StringFixed(2)),
		zap.Int64("affected", affected),
		zap.String("actor", actor),
	}
	if to != nil {
		fields = append(fields, zap.String("to", formatDate(*to)))
	}
	logger.Info("访客餐单价已重算", fields...)

	return affected, nil
}

func toGuestResponse(g *model.GuestEntry) dto.GuestResponse {
	return dto.GuestResponse{
		ID:        g.GuestID,
		InviterID: g.InviterID,
		Name:      g.Name,
		Date:      formatDate(g.Date),
		MealType:  g.MealType,
		Amount:    g.Amount,
	}
}
