/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 15:08:31
 * @FilePath: \employee-portal\backend\internal\repository\user_repository.go
 * @LastEditTime: 2026-03-06 10:12:44
 */
package repository

import (
	"context"
	"fmt"
	"strings"

	"employee-portal/backend/internal/domain/user"

	"gorm.io/gorm"
)

// UserListFilter 管理端用户列表的查询条件。
type UserListFilter struct {
	Query  string
	Limit  int
	Offset int
}

// UserRepository 封装用户相关的数据访问方法，基于 GORM 实现。
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储实例，接收共享的 *gorm.DB。
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 写入用户记录。
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// FindByID 根据主键查找用户。
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail 通过邮箱查找用户（大小写不敏感），若不存在返回 gorm.ErrRecordNotFound。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", normalized).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Update 按主键更新用户信息。
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// Delete 删除用户，不存在时返回 gorm.ErrRecordNotFound。
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&user.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 按姓名/邮箱模糊搜索并分页，返回记录与总数。
func (r *UserRepository) List(ctx context.Context, filter UserListFilter) ([]user.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&user.User{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		keyword := "%" + q + "%"
		query = query.Where("(name LIKE ? OR email LIKE ?)", keyword, keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var users []user.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// ListNonAdmin 返回全部普通员工，批量考勤使用。
func (r *UserRepository) ListNonAdmin(ctx context.Context) ([]user.User, error) {
	var users []user.User
	if err := r.db.WithContext(ctx).Where("is_admin = ?", false).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
