package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
	apperrors "tdlma/backend/pkg/errors"
)

// ── 休息日模块业务错误 ──

var (
	ErrOffDayDateFormat = apperrors.Validation(22001, "date", "日期格式应为 YYYY-MM-DD")
	ErrOffDayExists     = apperrors.Conflict(22002, "该日期已是休息日")
	ErrOffDayNotFound   = apperrors.NotFound(22003, "休息日不存在")
	ErrOffDayICSInvalid = apperrors.Validation(22004, "file", "ICS 文件解析失败")
	ErrOffDayICSEmpty   = apperrors.Validation(22005, "file", "ICS 文件中没有可导入的全天事件")
)

// OffDayService 休息日业务接口
type OffDayService interface {
	Create(ctx context.Context, req *dto.CreateOffDayRequest, callerID string) (*dto.OffDayResponse, error)
	List(ctx context.Context, start, end time.Time) ([]dto.OffDayResponse, error)
	Delete(ctx context.Context, id string) error
	// ImportICS 将节假日日历中的全天事件导入为休息日，已存在的日期跳过
	ImportICS(ctx context.Context, reader io.Reader, callerID string) (*dto.ImportOffDaysResponse, error)
}

type offDayService struct {
	repo   *repository.Repository
	clock  *Clock
	logger *zap.Logger
}

// NewOffDayService 创建 OffDayService 实例
func NewOffDayService(repo *repository.Repository, clock *Clock, logger *zap.Logger) OffDayService {
	return &offDayService{repo: repo, clock: clock, logger: logger}
}

func (s *offDayService) Create(ctx context.Context, req *dto.CreateOffDayRequest, callerID string) (*dto.OffDayResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrOffDayDateFormat
	}

	d := &model.OffDay{Date: date, Reason: req.Reason}
	d.CreatedBy = &callerID
	d.UpdatedBy = &callerID

	if err := s.repo.OffDay.Create(ctx, d); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrOffDayExists
		}
		s.logger.Error("创建休息日失败", zap.String("date", req.Date), zap.Error(err))
		return nil, apperrors.Internal("创建休息日失败", err)
	}

	resp := toOffDayResponse(d)
	return &resp, nil
}

func (s *offDayService) List(ctx context.Context, start, end time.Time) ([]dto.OffDayResponse, error) {
	days, err := s.repo.OffDay.ListRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询休息日失败", zap.Error(err))
		return nil, apperrors.Internal("查询休息日失败", err)
	}

	result := make([]dto.OffDayResponse, 0, len(days))
	for i := range days {
		result = append(result, toOffDayResponse(&days[i]))
	}
	return result, nil
}

func (s *offDayService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.OffDay.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOffDayNotFound
		}
		s.logger.Error("查询休息日失败", zap.String("id", id), zap.Error(err))
		return apperrors.Internal("查询休息日失败", err)
	}

	if err := s.repo.OffDay.Delete(ctx, id); err != nil {
		s.logger.Error("删除休息日失败", zap.String("id", id), zap.Error(err))
		return apperrors.Internal("删除休息日失败", err)
	}
	return nil
}

func (s *offDayService) ImportICS(ctx context.Context, reader io.Reader, callerID string) (*dto.ImportOffDaysResponse, error) {
	parsed, err := ParseOffDayICS(reader, s.clock.Location())
	if err != nil {
		return nil, apperrors.Wrap(ErrOffDayICSInvalid, err)
	}
	if len(parsed) == 0 {
		return nil, ErrOffDayICSEmpty
	}

	for i := range parsed {
		parsed[i].CreatedBy = &callerID
		parsed[i].UpdatedBy = &callerID
	}

	imported, err := s.repo.OffDay.CreateIgnoreDuplicates(ctx, parsed)
	if err != nil {
		s.logger.Error("导入休息日失败", zap.Error(err))
		return nil, apperrors.Internal("导入休息日失败", err)
	}

	s.logger.Info("休息日日历导入完成",
		zap.Int("parsed", len(parsed)),
		zap.Int64("imported", imported),
		zap.String("actor", callerID),
	)

	return &dto.ImportOffDaysResponse{
		Parsed:   len(parsed),
		Imported: imported,
		Skipped:  int64(len(parsed)) - imported,
	}, nil
}

func toOffDayResponse(d *model.OffDay) dto.OffDayResponse {
	return dto.OffDayResponse{
		ID:     d.OffDayID,
		Date:   formatDate(d.Date),
		Reason: d.Reason,
	}
}
