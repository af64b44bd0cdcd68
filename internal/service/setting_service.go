package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
	apperrors "tdlma/backend/pkg/errors"
	"tdlma/backend/pkg/redis"
)

// ── 配置模块业务错误 ──

var (
	ErrSettingUnknown          = apperrors.NotFound(17001, "配置项不存在")
	ErrSettingDateFormat       = apperrors.Validation(17002, "effectiveFrom", "生效日期格式应为 YYYY-MM-DD")
	ErrSettingBackdated        = apperrors.Validation(17003, "effectiveFrom", "生效日期不能早于今天")
	ErrSettingValueNotNumeric  = apperrors.Validation(17004, "value", "配置值必须是数字")
	ErrSettingValueNegative    = apperrors.Validation(17005, "value", "配置值不能为负数")
	ErrSettingValuePrecision   = apperrors.Validation(17006, "value", "金额最多保留两位小数")
	ErrSettingValueTime        = apperrors.Validation(17007, "value", "时间格式应为 24 小时制 HH:MM")
	ErrSettingValueBoolean     = apperrors.Validation(17008, "value", "配置值只能是 true 或 false")
	ErrSettingValueString      = apperrors.Validation(17009, "value", "配置值不能为空且不超过 200 字符")
	ErrSettingDuplicateDate    = apperrors.Conflict(17010, "该配置在此生效日期已有版本")
	ErrSettingOverlap          = apperrors.Conflict(17011, "已存在更晚生效的版本，请刷新后重试")
	ErrSettingConcurrentChange = apperrors.Conflict(17012, "配置已被其他管理员修改，请刷新后重试")
)

// SettingService 配置历史业务接口
type SettingService interface {
	// GetCurrentAll 全部配置项的当前值（优先读 Redis 快照）
	GetCurrentAll(ctx context.Context) ([]dto.SettingResponse, error)
	GetCurrentValue(ctx context.Context, key string) (string, error)
	// GetValueAsOf date 当天生效的值；从未配置过时返回默认值
	GetValueAsOf(ctx context.Context, key string, date time.Time) (string, error)
	// SetCurrentValue 新增一个生效版本并关闭当前版本（单事务）
	SetCurrentValue(ctx context.Context, req *dto.UpdateSettingRequest, callerID string) (*dto.UpdateSettingResponse, error)
	History(ctx context.Context, key string) ([]dto.SettingVersionResponse, error)
	// Timeline 全部配置版本的只读快照，报表使用
	Timeline(ctx context.Context) (*Timeline, error)
	// ApplyGuestPrice 将今天生效的访客餐单价应用到其生效区间内的访客餐
	ApplyGuestPrice(ctx context.Context, callerID string) (*dto.RepriceResponse, error)
}

type settingService struct {
	repo     *repository.Repository
	rdb      *redis.Client
	clock    *Clock
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSettingService 创建 SettingService 实例；rdb 为 nil 时不使用缓存
func NewSettingService(repo *repository.Repository, rdb *redis.Client, clock *Clock, cacheTTL time.Duration, logger *zap.Logger) SettingService {
	return &settingService{repo: repo, rdb: rdb, clock: clock, cacheTTL: cacheTTL, logger: logger}
}

// ────────────────────── GetCurrentAll ──────────────────────

func (s *settingService) GetCurrentAll(ctx context.Context) ([]dto.SettingResponse, error) {
	if s.rdb != nil {
		if b, err := s.rdb.GetSettingsSnapshot(ctx); err == nil {
			var cached []dto.SettingResponse
			if json.Unmarshal(b, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("读取配置快照缓存失败，回源数据库", zap.Error(err))
		}
	}

	tl, err := s.Timeline(ctx)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	defs := model.SettingDefinitions()
	result := make([]dto.SettingResponse, 0, len(defs))
	for _, def := range defs {
		item := dto.SettingResponse{
			Key:         def.Key,
			Value:       def.Default,
			Kind:        string(def.Kind),
			Unit:        def.Unit,
			Description: def.Description,
			IsDefault:   true,
		}
		if v, ok := tl.Version(def.Key, today); ok {
			item.Value = v.Value
			item.EffectiveFrom = formatDate(v.EffectiveFrom)
			item.IsDefault = false
		}
		result = append(result, item)
	}

	if s.rdb != nil {
		if b, err := json.Marshal(result); err == nil {
			if err := s.rdb.SetSettingsSnapshot(ctx, b, s.snapshotTTL()); err != nil {
				s.logger.Warn("写入配置快照缓存失败", zap.Error(err))
			}
		}
	}

	return result, nil
}

// snapshotTTL 快照最迟在账务时区次日零点过期，避免跨日生效的版本被旧快照遮住
func (s *settingService) snapshotTTL() time.Duration {
	now := s.clock.Now()
	untilMidnight := s.clock.DayStart(now.AddDate(0, 0, 1)).Sub(now)
	if s.cacheTTL <= 0 || untilMidnight < s.cacheTTL {
		return untilMidnight
	}
	return s.cacheTTL
}

// ────────────────────── GetValueAsOf ──────────────────────

func (s *settingService) GetCurrentValue(ctx context.Context, key string) (string, error) {
	return s.GetValueAsOf(ctx, key, s.clock.Today())
}

func (s *settingService) GetValueAsOf(ctx context.Context, key string, date time.Time) (string, error) {
	if _, ok := model.LookupSettingDefinition(key); !ok {
		return "", ErrSettingUnknown
	}

	versions, err := s.repo.Setting.ListByKey(ctx, key)
	if err != nil {
		s.logger.Error("查询配置版本失败", zap.String("key", key), zap.Error(err))
		return "", apperrors.Internal("查询配置版本失败", err)
	}

	return NewTimeline(versions).ValueAsOf(key, date), nil
}

// ────────────────────── SetCurrentValue ──────────────────────

func (s *settingService) SetCurrentValue(ctx context.Context, req *dto.UpdateSettingRequest, callerID string) (*dto.UpdateSettingResponse, error) {
	def, ok := model.LookupSettingDefinition(req.SettingKey)
	if !ok {
		return nil, ErrSettingUnknown
	}

	effectiveFrom, err := parseDate(req.EffectiveFrom)
	if err != nil {
		return nil, ErrSettingDateFormat
	}
	today := s.clock.Today()
	if effectiveFrom.Before(today) {
		return nil, ErrSettingBackdated
	}

	value, err := normalizeSettingValue(def, req.Value)
	if err != nil {
		return nil, err
	}

	// 关闭当前版本 + 写入新版本 + 访客餐重算 必须在同一事务内
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, apperrors.Internal("开启事务失败", err)
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	txRepo := s.repo.WithTx(tx)

	versions, err := txRepo.Setting.ListByKeyForUpdate(ctx, def.Key)
	if err != nil {
		rollback()
		s.logger.Error("锁定配置版本失败", zap.String("key", def.Key), zap.Error(err))
		return nil, apperrors.Internal("锁定配置版本失败", err)
	}

	var current *model.SettingVersion
	for i := range versions {
		v := &versions[i]
		if dateOf(v.EffectiveFrom).Equal(effectiveFrom) {
			rollback()
			return nil, ErrSettingDuplicateDate
		}
		if v.EffectiveTo == nil {
			current = v
		}
	}

	if current != nil {
		// 当前版本晚于新版本开始：关闭会得到倒置区间
		if !dateOf(current.EffectiveFrom).Before(effectiveFrom) {
			rollback()
			return nil, ErrSettingOverlap
		}
		n, err := txRepo.Setting.Close(ctx, current.VersionID, effectiveFrom.AddDate(0, 0, -1))
		if err != nil {
			rollback()
			s.logger.Error("关闭当前配置版本失败", zap.String("key", def.Key), zap.Error(err))
			return nil, apperrors.Internal("关闭当前配置版本失败", err)
		}
		if n == 0 {
			rollback()
			return nil, ErrSettingConcurrentChange
		}
	}

	version := &model.SettingVersion{
		SettingKey:    def.Key,
		Value:         value,
		EffectiveFrom: effectiveFrom,
	}
	version.CreatedBy = &callerID
	version.CreatedAt = s.clock.Now()

	if err := txRepo.Setting.Create(ctx, version); err != nil {
		rollback()
		// 唯一索引兜底：并发写入的失败方在此处落败
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(ErrSettingConcurrentChange, err)
		}
		s.logger.Error("写入配置版本失败", zap.String("key", def.Key), zap.Error(err))
		return nil, apperrors.Internal("写入配置版本失败", err)
	}

	var repriced int64
	if def.Key == model.SettingGuestMealPrice && !effectiveFrom.After(today) {
		price, _ := decimal.NewFromString(value)
		repriced, err = repriceGuests(ctx, txRepo, s.logger, effectiveFrom, nil, price, callerID)
		if err != nil {
			rollback()
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, apperrors.Internal("提交事务失败", err)
		}
	}

	s.invalidateSnapshot(ctx)

	s.logger.Info("配置已变更",
		zap.String("key", def.Key),
		zap.String("value", value),
		zap.String("effective_from", formatDate(effectiveFrom)),
		zap.String("actor", callerID),
		zap.Int64("guests_repriced", repriced),
	)

	return &dto.UpdateSettingResponse{
		Version:        toSettingVersionResponse(version),
		GuestsRepriced: repriced,
	}, nil
}

// ────────────────────── History ──────────────────────

func (s *settingService) History(ctx context.Context, key string) ([]dto.SettingVersionResponse, error) {
	if _, ok := model.LookupSettingDefinition(key); !ok {
		return nil, ErrSettingUnknown
	}

	versions, err := s.repo.Setting.ListByKey(ctx, key)
	if err != nil {
		s.logger.Error("查询配置历史失败", zap.String("key", key), zap.Error(err))
		return nil, apperrors.Internal("查询配置历史失败", err)
	}

	// 最新版本在前
	result := make([]dto.SettingVersionResponse, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		result = append(result, toSettingVersionResponse(&versions[i]))
	}
	return result, nil
}

// ────────────────────── Timeline ──────────────────────

func (s *settingService) Timeline(ctx context.Context) (*Timeline, error) {
	versions, err := s.repo.Setting.ListAll(ctx)
	if err != nil {
		s.logger.Error("加载配置版本失败", zap.Error(err))
		return nil, apperrors.Internal("加载配置版本失败", err)
	}
	return NewTimeline(versions), nil
}

// ────────────────────── ApplyGuestPrice ──────────────────────

func (s *settingService) ApplyGuestPrice(ctx context.Context, callerID string) (*dto.RepriceResponse, error) {
	versions, err := s.repo.Setting.ListByKey(ctx, model.SettingGuestMealPrice)
	if err != nil {
		s.logger.Error("查询访客餐单价失败", zap.Error(err))
		return nil, apperrors.Internal("查询访客餐单价失败", err)
	}

	tl := NewTimeline(versions)
	today := s.clock.Today()
	v, ok := tl.Version(model.SettingGuestMealPrice, today)
	if !ok {
		// 从未配置过单价：已有访客餐按创建时的默认价冻结，无需重算
		return &dto.RepriceResponse{Price: tl.ValueAsOf(model.SettingGuestMealPrice, today)}, nil
	}

	price, err := decimal.NewFromString(v.Value)
	if err != nil {
		return nil, apperrors.Internal("访客餐单价格式异常", err)
	}

	affected, err := repriceGuests(ctx, s.repo, s.logger, v.EffectiveFrom, v.EffectiveTo, price, callerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.RepriceResponse{
		Price:         v.Value,
		EffectiveFrom: formatDate(v.EffectiveFrom),
		Affected:      affected,
	}
	if v.EffectiveTo != nil {
		to := formatDate(*v.EffectiveTo)
		resp.EffectiveTo = &to
	}
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *settingService) invalidateSnapshot(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.InvalidateSettingsSnapshot(ctx); err != nil {
		s.logger.Warn("清除配置快照缓存失败", zap.Error(err))
	}
}

func toSettingVersionResponse(v *model.SettingVersion) dto.SettingVersionResponse {
	resp := dto.SettingVersionResponse{
		ID:            v.VersionID,
		Key:           v.SettingKey,
		Value:         v.Value,
		EffectiveFrom: formatDate(v.EffectiveFrom),
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt.Format(time.RFC3339),
	}
	if v.EffectiveTo != nil {
		to := formatDate(*v.EffectiveTo)
		resp.EffectiveTo = &to
	}
	return resp
}
