package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
	apperrors "tdlma/backend/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound         = apperrors.NotFound(12001, "用户不存在")
	ErrEmailExists          = apperrors.Conflict(12002, "邮箱已被注册")
	ErrUserStatusDateFormat = apperrors.Validation(12003, "effective_date", "日期格式应为 YYYY-MM-DD")
	ErrUserStatusDateFuture = apperrors.Validation(12004, "effective_date", "状态生效日期不能晚于今天")
	ErrUserStatusBeforeJoin = apperrors.Validation(12005, "effective_date", "状态生效日期不能早于入伙日期")
	ErrUserStatusUnchanged  = apperrors.Conflict(12006, "用户已处于该状态")
	ErrUserStatusBeforeLast = apperrors.Validation(12007, "effective_date", "状态生效日期不能早于最近一次状态变更")
)

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	// SetStatus 更新用户状态并追加状态历史（单事务）
	SetStatus(ctx context.Context, id string, req *dto.SetUserStatusRequest, callerID string) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	clock  *Clock
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, clock *Clock, logger *zap.Logger) UserService {
	return &userService{repo: repo, clock: clock, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	// 检查邮箱唯一性
	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, apperrors.Internal("查询用户失败", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, apperrors.Internal("密码哈希失败", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       model.UserStatusActive,
	}
	user.CreatedBy = &callerID
	user.CreatedAt = s.clock.Now()
	user.UpdatedAt = user.CreatedAt

	if err := s.repo.User.Create(ctx, user); err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, apperrors.Internal("创建用户失败", err)
	}

	return toUserResponse(user), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, apperrors.Internal("列出用户失败", err)
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, nil
}

// ────────────────────── SetStatus ──────────────────────

func (s *userService) SetStatus(ctx context.Context, id string, req *dto.SetUserStatusRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	effective := today
	if req.EffectiveDate != "" {
		effective, err = parseDate(req.EffectiveDate)
		if err != nil {
			return nil, ErrUserStatusDateFormat
		}
	}
	if effective.After(today) {
		return nil, ErrUserStatusDateFuture
	}
	if effective.Before(s.clock.LocalDate(user.CreatedAt)) {
		return nil, ErrUserStatusBeforeJoin
	}

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

	// 加锁后重新读取，当前状态与历史以锁内结果为准
	user, err = txRepo.User.GetByIDForUpdate(ctx, id)
	if err != nil {
		rollback()
		s.logger.Error("锁定用户失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Internal("锁定用户失败", err)
	}
	if user.Status == req.Status {
		rollback()
		return nil, ErrUserStatusUnchanged
	}

	// 状态历史只能向后追加：生效日期早于最近一次变更会让成员期计算与 users.status 不一致
	history, err := txRepo.User.ListStatusHistory(ctx, []string{id})
	if err != nil {
		rollback()
		s.logger.Error("查询状态历史失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Internal("查询状态历史失败", err)
	}
	for i := range history {
		if effective.Before(dateOf(history[i].EffectiveDate)) {
			rollback()
			return nil, ErrUserStatusBeforeLast
		}
	}

	if err := txRepo.User.UpdateStatus(ctx, id, req.Status, callerID); err != nil {
		rollback()
		s.logger.Error("更新用户状态失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Internal("更新用户状态失败", err)
	}

	h := &model.UserStatusHistory{
		UserID:        id,
		Status:        req.Status,
		EffectiveDate: effective,
	}
	h.CreatedBy = &callerID
	h.CreatedAt = s.clock.Now()
	if err := txRepo.User.CreateStatusHistory(ctx, h); err != nil {
		rollback()
		s.logger.Error("写入状态历史失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Internal("写入状态历史失败", err)
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, apperrors.Internal("提交事务失败", err)
		}
	}

	s.logger.Info("用户状态已变更",
		zap.String("user_id", id),
		zap.String("status", req.Status),
		zap.String("effective_date", formatDate(effective)),
		zap.String("actor", callerID),
	)

	user.Status = req.Status
	return toUserResponse(user), nil
}

// ── 内部辅助方法 ──

func (s *userService) get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Internal("查询用户失败", err)
	}
	return user, nil
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
