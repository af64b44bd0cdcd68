package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
	apperrors "tdlma/backend/pkg/errors"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceDateFormat = apperrors.Validation(18001, "date", "日期格式应为 YYYY-MM-DD")
	ErrAttendanceLocked     = apperrors.Validation(18002, "date", "已过当日申报截止时间")
	ErrAttendanceStatus     = apperrors.Validation(18003, "status", "出勤状态只能是 present 或 absent")
)

// AttendanceService 考勤业务接口
// status 由用户申报，is_open 由管理员切换，两条写路径互不覆盖
type AttendanceService interface {
	Mark(ctx context.Context, userID string, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error)
	SetOpen(ctx context.Context, req *dto.SetOpenRequest, callerID string) (*dto.AttendanceResponse, error)
	// List userID 为空时返回全员；remark 与 fine 按考勤当日配置计算
	List(ctx context.Context, userID string, start, end time.Time) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo     *repository.Repository
	settings SettingService
	clock    *Clock
	logger   *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, settings SettingService, clock *Clock, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, settings: settings, clock: clock, logger: logger}
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, userID string, req *dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrAttendanceDateFormat
	}
	status := model.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, ErrAttendanceStatus
	}

	tl, err := s.settings.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	if tl.BoolAsOf(model.SettingAttendanceLock, date) && !s.declarable(tl, date) {
		return nil, ErrAttendanceLocked
	}

	mealType := mealTypeOrDefault(req.MealType)
	existing, err := s.find(ctx, userID, date, mealType)
	if err != nil {
		return nil, err
	}

	row := &model.Attendance{
		UserID:   userID,
		Date:     date,
		MealType: mealType,
		Status:   &status,
		IsOpen:   true,
	}
	if existing != nil {
		row.IsOpen = existing.IsOpen
	}
	row.FineAmount = ComputeFine(Classify(row.Status, row.IsOpen), FineSettingsAt(tl, date))
	row.CreatedBy = &userID
	row.UpdatedBy = &userID
	row.UpdatedAt = s.clock.Now()

	if err := s.repo.Attendance.UpsertStatus(ctx, row); err != nil {
		s.logger.Error("写入考勤申报失败", zap.String("user_id", userID), zap.String("date", req.Date), zap.Error(err))
		return nil, apperrors.Internal("写入考勤申报失败", err)
	}

	resp := toAttendanceResponse(row, tl)
	return &resp, nil
}

// declarable 截止锁定开启时：未来日期可申报；当天须早于 close_time
func (s *attendanceService) declarable(tl *Timeline, date time.Time) bool {
	today := s.clock.Today()
	if date.After(today) {
		return true
	}
	if date.Before(today) {
		return false
	}
	closeAt, err := time.Parse("15:04", tl.ValueAsOf(model.SettingCloseTime, date))
	if err != nil {
		return false
	}
	cutoff := s.clock.DayStart(today).Add(time.Duration(closeAt.Hour())*time.Hour + time.Duration(closeAt.Minute())*time.Minute)
	return s.clock.Now().Before(cutoff)
}

// ────────────────────── SetOpen ──────────────────────

func (s *attendanceService) SetOpen(ctx context.Context, req *dto.SetOpenRequest, callerID string) (*dto.AttendanceResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrAttendanceDateFormat
	}

	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, apperrors.Internal("查询用户失败", err)
	}

	tl, err := s.settings.Timeline(ctx)
	if err != nil {
		return nil, err
	}

	mealType := mealTypeOrDefault(req.MealType)
	existing, err := s.find(ctx, req.UserID, date, mealType)
	if err != nil {
		return nil, err
	}

	row := &model.Attendance{
		UserID:   req.UserID,
		Date:     date,
		MealType: mealType,
		IsOpen:   *req.IsOpen,
	}
	if existing != nil {
		row.Status = existing.Status
	}
	row.FineAmount = ComputeFine(Classify(row.Status, row.IsOpen), FineSettingsAt(tl, date))
	row.CreatedBy = &callerID
	row.UpdatedBy = &callerID
	row.UpdatedAt = s.clock.Now()

	if err := s.repo.Attendance.UpsertOpen(ctx, row); err != nil {
		s.logger.Error("写入开/关餐状态失败", zap.String("user_id", req.UserID), zap.String("date", req.Date), zap.Error(err))
		return nil, apperrors.Internal("写入开/关餐状态失败", err)
	}

	s.logger.Info("开/关餐状态已变更",
		zap.String("user_id", req.UserID),
		zap.String("date", req.Date),
		zap.Bool("is_open", row.IsOpen),
		zap.String("actor", callerID),
	)

	resp := toAttendanceResponse(row, tl)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, userID string, start, end time.Time) ([]dto.AttendanceResponse, error) {
	var (
		rows []model.Attendance
		err  error
	)
	if userID == "" {
		rows, err = s.repo.Attendance.ListRange(ctx, start, end)
	} else {
		rows, err = s.repo.Attendance.ListByUser(ctx, userID, start, end)
	}
	if err != nil {
		s.logger.Error("查询考勤失败", zap.Error(err))
		return nil, apperrors.Internal("查询考勤失败", err)
	}

	tl, err := s.settings.Timeline(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AttendanceResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toAttendanceResponse(&rows[i], tl))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *attendanceService) find(ctx context.Context, userID string, date time.Time, mealType string) (*model.Attendance, error) {
	a, err := s.repo.Attendance.Get(ctx, userID, date, mealType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询考勤失败", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("查询考勤失败", err)
	}
	return a, nil
}

func mealTypeOrDefault(mealType string) string {
	if mealType == "" {
		return model.MealTypeLunch
	}
	return mealType
}

func toAttendanceResponse(a *model.Attendance, tl *Timeline) dto.AttendanceResponse {
	remark := Classify(a.Status, a.IsOpen)
	resp := dto.AttendanceResponse{
		ID:       a.AttendanceID,
		UserID:   a.UserID,
		Date:     formatDate(a.Date),
		MealType: a.MealType,
		IsOpen:   a.IsOpen,
		Remark:   string(remark),
		Fine:     ComputeFine(remark, FineSettingsAt(tl, a.Date)),
	}
	if a.Status != nil {
		st := string(*a.Status)
		resp.Status = &st
	}
	return resp
}
