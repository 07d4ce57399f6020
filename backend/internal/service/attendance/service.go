/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-05 10:02:55
 * @FilePath: \employee-portal\backend\internal\service\attendance\service.go
 * @LastEditTime: 2026-03-06 14:31:07
 */
package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "employee-portal/backend/internal/domain/attendance"
	userdomain "employee-portal/backend/internal/domain/user"
	appLogger "employee-portal/backend/internal/infra/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidStatus  = errors.New("invalid attendance status")
	ErrInvalidDate    = errors.New("invalid date")
	ErrRecordNotFound = errors.New("attendance record not found")
)

const monthLayout = "2006-01"

// Store 考勤仓储，repository.AttendanceRepository 实现该接口。
type Store interface {
	Upsert(ctx context.Context, records []domain.Record) error
	FindByID(ctx context.Context, id uint) (*domain.Record, error)
	Update(ctx context.Context, rec *domain.Record) error
	ListByDate(ctx context.Context, date string) ([]domain.Record, error)
	ListByUserMonth(ctx context.Context, userID uint, month string) ([]domain.Record, error)
}

// EmployeeLister 列出需要考勤的普通员工。
type EmployeeLister interface {
	ListNonAdmin(ctx context.Context) ([]userdomain.User, error)
}

// Summary 某月考勤汇总。
type Summary struct {
	Month       string `json:"month"`
	PresentDays int    `json:"present_days"`
	AbsentDays  int    `json:"absent_days"`
	LeaveDays   int    `json:"leave_days"`
	HalfDays    int    `json:"half_days"`
	HolidayDays int    `json:"holiday_days"`
	WorkingDays int    `json:"working_days"`
}

// Service 考勤标记与查询。
type Service struct {
	records   Store
	employees EmployeeLister
	logger    *zap.SugaredLogger
}

// NewService 构造考勤服务。
func NewService(records Store, employees EmployeeLister) *Service {
	return &Service{records: records, employees: employees, logger: appLogger.Component("attendance.service")}
}

// MarkBulk 为全部普通员工写入同一天的同一状态，已有记录被覆盖，返回写入条数。
func (s *Service) MarkBulk(ctx context.Context, actorID uint, date, rawStatus, leaveType string) (int, error) {
	day, err := parseDate(date)
	if err != nil {
		return 0, err
	}
	status, err := parseStatus(rawStatus)
	if err != nil {
		return 0, err
	}

	employees, err := s.employees.ListNonAdmin(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}
	records := make([]domain.Record, 0, len(employees))
	for _, e := range employees {
		records = append(records, domain.Record{
			UserID:    e.ID,
			Date:      day,
			Status:    status,
			LeaveType: leaveTypeFor(status, leaveType),
			MarkedBy:  actorID,
		})
	}
	if err := s.records.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("upsert attendance: %w", err)
	}
	s.logger.Infow("attendance marked", "operation", "mark_bulk", "date", day, "status", status, "count", len(records), "actor_id", actorID)
	return len(records), nil
}

// Update 修改单条记录的状态。
func (s *Service) Update(ctx context.Context, actorID, id uint, rawStatus, leaveType string) (*domain.Record, error) {
	status, err := parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	rec.Status = status
	rec.LeaveType = leaveTypeFor(status, leaveType)
	rec.MarkedBy = actorID
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	return rec, nil
}

// ListByDate 某天全部记录。
func (s *Service) ListByDate(ctx context.Context, date string) ([]domain.Record, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	out, err := s.records.ListByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return nonNil(out), nil
}

// ListMine 员工查看自己某月的记录，month 为空时取本月。
func (s *Service) ListMine(ctx context.Context, userID uint, month string) ([]domain.Record, error) {
	m, err := parseMonth(month)
	if err != nil {
		return nil, err
	}
	out, err := s.records.ListByUserMonth(ctx, userID, m)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return nonNil(out), nil
}

// SummaryMine 某月按状态计数，working_days 为非假日记录数。
func (s *Service) SummaryMine(ctx context.Context, userID uint, month string) (Summary, error) {
	m, err := parseMonth(month)
	if err != nil {
		return Summary{}, err
	}
	records, err := s.records.ListByUserMonth(ctx, userID, m)
	if err != nil {
		return Summary{}, fmt.Errorf("list attendance: %w", err)
	}
	return Summarize(m, records), nil
}

// Summarize 纯函数汇总。
func Summarize(month string, records []domain.Record) Summary {
	sum := Summary{Month: month}
	for _, r := range records {
		switch r.Status {
		case domain.StatusPresent:
			sum.PresentDays++
		case domain.StatusAbsent:
			sum.AbsentDays++
		case domain.StatusLeave:
			sum.LeaveDays++
		case domain.StatusHalfDay:
			sum.HalfDays++
		case domain.StatusHoliday:
			sum.HolidayDays++
		}
		if r.Status != domain.StatusHoliday {
			sum.WorkingDays++
		}
	}
	return sum
}

func parseStatus(raw string) (domain.Status, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, err.Error())
	}
	return status, nil
}

func parseDate(raw string) (string, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDate, raw)
	}
	return d.Format("2006-01-02"), nil
}

func parseMonth(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().Format(monthLayout), nil
	}
	m, err := time.Parse(monthLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q, expected YYYY-MM", ErrInvalidDate, raw)
	}
	return m.Format(monthLayout), nil
}

func leaveTypeFor(status domain.Status, leaveType string) string {
	if status != domain.StatusLeave {
		return ""
	}
	return strings.TrimSpace(leaveType)
}

func nonNil(in []domain.Record) []domain.Record {
	if in == nil {
		return []domain.Record{}
	}
	return in
}
