/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-03 09:12:41
 * @FilePath: \employee-portal\backend\internal\service\user\service.go
 * @LastEditTime: 2026-03-06 11:52:18
 */
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "employee-portal/backend/internal/domain/user"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/service/auth"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 表示请求的用户不存在。
	ErrUserNotFound = errors.New("user not found")
	// ErrPasswordMismatch 当前密码不正确。
	ErrPasswordMismatch = errors.New("current password is incorrect")
)

// Store 用户读写能力。
type Store interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// TokenRevoker 修改密码后吊销全部刷新令牌。
type TokenRevoker interface {
	RevokeAll(ctx context.Context, userID uint) error
}

// Service 负责个人资料的查询、更新与改密。
type Service struct {
	users   Store
	revoker TokenRevoker
	logger  *zap.SugaredLogger
}

// NewService 构造用户服务，revoker 可为 nil。
func NewService(users Store, revoker TokenRevoker) *Service {
	return &Service{users: users, revoker: revoker, logger: appLogger.Component("user.service")}
}

// ProfileUpdate 字段为 nil 表示不修改。
type ProfileUpdate struct {
	Name           *string
	Email          *string
	Role           *string
	Experience     *int
	Skills         *string
	AreaOfInterest *string
}

// GetProfile 返回指定用户的资料。
func (s *Service) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// UpdateProfile 更新资料；邮箱被他人占用时返回 auth.ErrEmailTaken。
func (s *Service) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*domain.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := ApplyUpdate(ctx, s.users, u, update); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.logger.Infow("profile updated", "operation", "update_profile", "user_id", userID)
	return u, nil
}

// ApplyUpdate 把 update 合并进 u 并校验，管理员编辑用户时复用。
func ApplyUpdate(ctx context.Context, users interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}, u *domain.User, update ProfileUpdate) error {
	name := u.Name
	if update.Name != nil {
		name = strings.TrimSpace(*update.Name)
	}
	email := u.Email
	if update.Email != nil {
		email = auth.NormalizeEmail(*update.Email)
	}
	if err := auth.ValidateIdentity(name, email); err != nil {
		return err
	}

	if !strings.EqualFold(email, u.Email) {
		existing, err := users.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != u.ID:
			return auth.ErrEmailTaken
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("check email unique: %w", err)
		}
	}

	u.Name = name
	u.Email = email
	if update.Role != nil {
		u.Role = strings.TrimSpace(*update.Role)
	}
	if update.Experience != nil {
		if *update.Experience < 0 {
			return fmt.Errorf("%w: experience must not be negative", auth.ErrInvalidInput)
		}
		u.Experience = *update.Experience
	}
	if update.Skills != nil {
		u.Skills = strings.TrimSpace(*update.Skills)
	}
	if update.AreaOfInterest != nil {
		u.AreaOfInterest = strings.TrimSpace(*update.AreaOfInterest)
	}
	return nil
}

// ChangePassword 校验旧密码后写入新密码，清除强制改密标记并吊销已有刷新令牌。
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	log := s.logger.With("operation", "change_password", "user_id", userID)

	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		log.Warnw("current password mismatch")
		return ErrPasswordMismatch
	}
	if err := auth.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.MustChangePassword = false
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if s.revoker != nil {
		if err := s.revoker.RevokeAll(ctx, userID); err != nil {
			log.Warnw("revoke refresh tokens failed", "error", err)
		}
	}
	log.Infow("password changed")
	return nil
}
