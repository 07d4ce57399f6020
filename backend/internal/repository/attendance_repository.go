package repository

import (
	"context"

	"employee-portal/backend/internal/domain/attendance"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceRepository 考勤记录仓储。
type AttendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository 创建考勤仓储。
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert 按 (user_id, date) 写入或覆盖状态。
func (r *AttendanceRepository) Upsert(ctx context.Context, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "leave_type", "marked_by", "updated_at"}),
	}).Create(&records).Error
}

// FindByID 根据主键查询。
func (r *AttendanceRepository) FindByID(ctx context.Context, id uint) (*attendance.Record, error) {
	var rec attendance.Record
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update 保存修改。
func (r *AttendanceRepository) Update(ctx context.Context, rec *attendance.Record) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// ListByDate 某天全部员工的考勤。
func (r *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Record, error) {
	var out []attendance.Record
	if err := r.db.WithContext(ctx).Where("date = ?", date).Order("user_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUserMonth 某员工某月（YYYY-MM）的考勤，按日期升序。
func (r *AttendanceRepository) ListByUserMonth(ctx context.Context, userID uint, month string) ([]attendance.Record, error) {
	var out []attendance.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date LIKE ?", userID, month+"-%").
		Order("date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
