/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-03 16:05:37
 * @FilePath: \employee-portal\backend\internal\service\wellness\service.go
 * @LastEditTime: 2026-03-05 18:52:20
 */
package wellness

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "employee-portal/backend/internal/domain/wellness"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/infra/metrics"
	"employee-portal/backend/internal/infra/model/textgen"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidActivityType 活动类型不在枚举内。
var ErrInvalidActivityType = errors.New("invalid activity type")

// ActivityStore 活动日志的持久化能力，repository.ActivityRepository 实现该接口。
type ActivityStore interface {
	Append(ctx context.Context, log *domain.ActivityLog) error
	Save(ctx context.Context, log *domain.ActivityLog) error
	ListSince(ctx context.Context, userID uint, since string) ([]domain.ActivityLog, error)
	FindOpenLogin(ctx context.Context, userID uint, date string) (*domain.ActivityLog, error)
}

// Insights 健康洞察接口的返回体。
type Insights struct {
	RiskLevel       RiskLevel  `json:"risk_level"`
	RiskScore       int        `json:"risk_score"`
	RiskFactors     []string   `json:"risk_factors"`
	WellnessMessage string     `json:"wellness_message"`
	Statistics      Statistics `json:"statistics"`
}

// Option 自定义 Service。
type Option func(*Service)

// WithClock 替换当前时间来源，测试使用。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation 指定“当天”与深夜判断所用时区，默认 time.Local。
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// Service 聚合活动记录与健康洞察。
type Service struct {
	store    ActivityStore
	messages *MessageGenerator
	logger   *zap.SugaredLogger
	now      func() time.Time
	loc      *time.Location
}

// NewService 创建健康洞察服务。
func NewService(store ActivityStore, generator textgen.Generator, opts ...Option) *Service {
	logger := appLogger.Component("wellness.service")
	s := &Service{
		store:    store,
		messages: NewMessageGenerator(generator, logger),
		logger:   logger,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) scope(operation string) *zap.SugaredLogger {
	return s.logger.With("operation", operation)
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

// LogActivity 记录一次活动。
//
// logout 会补全当天最近一条未闭合的 login 并计算时长；找不到时静默忽略，返回 (nil, nil)。
// 多端同时登录时可能闭合到别的会话，属于已知限制。
func (s *Service) LogActivity(ctx context.Context, userID uint, rawType string, loginTime, logoutTime *time.Time) (*domain.ActivityLog, error) {
	activityType, err := domain.ParseActivityType(rawType)
	if err != nil {
		metrics.RecordActivity("invalid", "error")
		return nil, fmt.Errorf("%w: %s", ErrInvalidActivityType, err.Error())
	}
	log := s.scope("log_activity").With("user_id", userID, "activity_type", activityType)

	now := s.today()
	date := domain.FormatDate(now)

	if activityType == domain.ActivityLogout {
		return s.closeSession(ctx, log, userID, date, now, logoutTime)
	}

	record := &domain.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
		Date:         date,
		LoginTime:    loginTime,
	}
	if activityType == domain.ActivityLogin && record.LoginTime == nil {
		record.LoginTime = &now
	}
	if err := s.store.Append(ctx, record); err != nil {
		log.Errorw("append activity failed", "error", err)
		metrics.RecordActivity(string(activityType), "error")
		return nil, fmt.Errorf("append activity: %w", err)
	}
	metrics.RecordActivity(string(activityType), "created")
	return record, nil
}

func (s *Service) closeSession(ctx context.Context, log *zap.SugaredLogger, userID uint, date string, now time.Time, logoutTime *time.Time) (*domain.ActivityLog, error) {
	open, err := s.store.FindOpenLogin(ctx, userID, date)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && (open == nil || open.LoginTime == nil)) {
		log.Debugw("logout without open login, dropped", "date", date)
		metrics.RecordActivity(string(domain.ActivityLogout), "dropped")
		return nil, nil
	}
	if err != nil {
		log.Errorw("find open login failed", "error", err)
		metrics.RecordActivity(string(domain.ActivityLogout), "error")
		return nil, fmt.Errorf("find open login: %w", err)
	}

	end := now
	if logoutTime != nil {
		end = *logoutTime
	}
	duration := end.Sub(*open.LoginTime).Minutes()
	open.LogoutTime = &end
	open.SessionDurationMinutes = &duration

	if err := s.store.Save(ctx, open); err != nil {
		log.Errorw("close session failed", "activity_id", open.ID, "error", err)
		metrics.RecordActivity(string(domain.ActivityLogout), "error")
		return nil, fmt.Errorf("close session: %w", err)
	}
	metrics.RecordActivity(string(domain.ActivityLogout), "closed")
	return open, nil
}

// Assess 读取近 14 天记录并计算风险。
func (s *Service) Assess(ctx context.Context, userID uint) (Assessment, error) {
	today := s.today()
	records, err := s.store.ListSince(ctx, userID, WindowStart(today, AssessmentWindowDays))
	if err != nil {
		return Assessment{}, fmt.Errorf("list activity: %w", err)
	}
	return Assess(records, today, s.loc), nil
}

// GetInsights 风险评估 + 提示语。提示语生成失败不会导致整体失败。
func (s *Service) GetInsights(ctx context.Context, userID uint) (Insights, error) {
	log := s.scope("get_insights").With("user_id", userID)

	assessment, err := s.Assess(ctx, userID)
	if err != nil {
		log.Errorw("assess failed", "error", err)
		return Insights{}, err
	}

	message := s.messages.Generate(textgen.ContextWithUser(ctx, userID), assessment)
	metrics.RecordInsight(string(assessment.RiskLevel))
	log.Debugw("insights computed", "risk_level", assessment.RiskLevel, "risk_score", assessment.RiskScore)

	return Insights{
		RiskLevel:       assessment.RiskLevel,
		RiskScore:       assessment.RiskScore,
		RiskFactors:     assessment.RiskFactors,
		WellnessMessage: message,
		Statistics:      assessment.Statistics,
	}, nil
}
