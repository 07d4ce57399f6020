package repository

import (
	"context"

	"employee-portal/backend/internal/domain/wellness"

	"gorm.io/gorm"
)

// ActivityRepository 员工活动日志的读写，只追加或原地补全 login，不删除。
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建活动日志仓储。
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append 写入一条新活动。
func (r *ActivityRepository) Append(ctx context.Context, log *wellness.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Save 更新已有记录（logout 补全 login 时使用）。
func (r *ActivityRepository) Save(ctx context.Context, log *wellness.ActivityLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// ListSince 返回 date >= since 的全部记录，按创建顺序排列。
// since 为 YYYY-MM-DD，字符串比较与日期顺序一致。
func (r *ActivityRepository) ListSince(ctx context.Context, userID uint, since string) ([]wellness.ActivityLog, error) {
	var logs []wellness.ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("created_at ASC").
		Order("id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// FindOpenLogin 查找当天最近一条尚未登出的 login 记录，不存在时返回 gorm.ErrRecordNotFound。
func (r *ActivityRepository) FindOpenLogin(ctx context.Context, userID uint, date string) (*wellness.ActivityLog, error) {
	var log wellness.ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND activity_type = ?", userID, date, wellness.ActivityLogin).
		Where("login_time IS NOT NULL AND logout_time IS NULL").
		Order("created_at DESC").
		Order("id DESC").
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}
