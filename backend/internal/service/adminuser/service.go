package adminuser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "employee-portal/backend/internal/domain/user"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/repository"
	"employee-portal/backend/internal/service/auth"
	userservice "employee-portal/backend/internal/service/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrSelfDelete 管理员不能删除自己。
	ErrSelfDelete = errors.New("admins cannot delete their own account")
	// ErrUserNotFound 目标用户不存在。
	ErrUserNotFound = errors.New("user not found")
)

// Config 管理员用户列表的分页参数。
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Store 用户仓储能力，repository.UserRepository 实现该接口。
type Store interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter repository.UserListFilter) ([]domain.User, int64, error)
}

// Service 管理员维护员工账号。
type Service struct {
	cfg    Config
	users  Store
	logger *zap.SugaredLogger
}

// ListParams 列表查询参数。
type ListParams struct {
	Page     int
	PageSize int
	Query    string
}

// ListResult 分页结果。
type ListResult struct {
	Items    []domain.User `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// CreateParams 管理员新建账号。
type CreateParams struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// UpdateParams 字段为 nil 表示不修改；Password 非空时重置密码并要求下次登录修改。
type UpdateParams struct {
	userservice.ProfileUpdate
	IsAdmin  *bool
	Password *string
}

// NewService 构造服务，分页参数使用合理默认值。
func NewService(cfg Config, users Store) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return &Service{cfg: cfg, users: users, logger: appLogger.Component("adminuser.service")}
}

// List 分页列出用户，q 按姓名/邮箱模糊匹配。
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	rows, total, err := s.users.List(ctx, repository.UserListFilter{
		Query:  strings.TrimSpace(params.Query),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("list users: %w", err)
	}
	if rows == nil {
		rows = []domain.User{}
	}
	return ListResult{Items: rows, Total: total, Page: page, PageSize: pageSize}, nil
}

// Create 新建账号，首次登录必须修改密码。
func (s *Service) Create(ctx context.Context, params CreateParams) (*domain.User, error) {
	email := auth.NormalizeEmail(params.Email)
	if err := auth.ValidateIdentity(params.Name, email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(params.Password); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, auth.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email unique: %w", err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Name:               strings.TrimSpace(params.Name),
		Email:              email,
		PasswordHash:       hash,
		IsAdmin:            params.IsAdmin,
		MustChangePassword: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Infow("user created by admin", "user_id", u.ID, "is_admin", u.IsAdmin)
	return u, nil
}

// Update 修改资料、管理员标记或重置密码。
func (s *Service) Update(ctx context.Context, id uint, params UpdateParams) (*domain.User, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := userservice.ApplyUpdate(ctx, s.users, u, params.ProfileUpdate); err != nil {
		return nil, err
	}
	if params.IsAdmin != nil {
		u.IsAdmin = *params.IsAdmin
	}
	if params.Password != nil && *params.Password != "" {
		if err := auth.ValidatePassword(*params.Password); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
		u.MustChangePassword = true
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.logger.Infow("user updated by admin", "user_id", u.ID)
	return u, nil
}

// Delete 删除账号，actorID 为当前管理员。
func (s *Service) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Infow("user deleted by admin", "user_id", id, "actor_id", actorID)
	return nil
}

func (s *Service) find(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
