package repository

import (
	"context"
	"errors"

	"employee-portal/backend/internal/domain/wellness"

	"gorm.io/gorm"
)

// WellbeingRepository 反思问卷的故事与提交记录。
type WellbeingRepository struct {
	db *gorm.DB
}

// NewWellbeingRepository 创建问卷仓储。
func NewWellbeingRepository(db *gorm.DB) *WellbeingRepository {
	return &WellbeingRepository{db: db}
}

// FindActiveStory 返回 id 最小的 active 故事，没有时返回 (nil, nil)。
func (r *WellbeingRepository) FindActiveStory(ctx context.Context) (*wellness.Story, error) {
	var story wellness.Story
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// CreateStory 写入故事。
func (r *WellbeingRepository) CreateStory(ctx context.Context, story *wellness.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

// CreateResponse 保存一次问卷提交。
func (r *WellbeingRepository) CreateResponse(ctx context.Context, resp *wellness.Response) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

// ListResponses 返回用户最近的提交，limit <= 0 时不限制。
func (r *WellbeingRepository) ListResponses(ctx context.Context, userID uint, limit int) ([]wellness.Response, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var out []wellness.Response
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
