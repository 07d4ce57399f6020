/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-03 09:12:44
 * @FilePath: \employee-portal\backend\internal\bootstrap\bootstrap.go
 * @LastEditTime: 2026-03-06 18:02:17
 */
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"employee-portal/backend/internal/app"
	"employee-portal/backend/internal/bootstrapdata"
	"employee-portal/backend/internal/handler"
	"employee-portal/backend/internal/infra/model/textgen"
	"employee-portal/backend/internal/infra/ratelimit"
	"employee-portal/backend/internal/infra/token"
	"employee-portal/backend/internal/middleware"
	"employee-portal/backend/internal/repository"
	"employee-portal/backend/internal/server"
	adminusersvc "employee-portal/backend/internal/service/adminuser"
	"employee-portal/backend/internal/service/attendance"
	authsvc "employee-portal/backend/internal/service/auth"
	"employee-portal/backend/internal/service/learning"
	"employee-portal/backend/internal/service/mood"
	usersvc "employee-portal/backend/internal/service/user"
	"employee-portal/backend/internal/service/wellness"

	"go.uber.org/zap"
)

// Application 组装完成的服务与路由。
type Application struct {
	Resources   *app.Resources
	AuthSvc     *authsvc.Service
	UserSvc     *usersvc.Service
	WellnessSvc *wellness.Service
	MoodSvc     *mood.Service
	Router      http.Handler
}

// BuildApplication 按配置创建仓储、服务、handler 与路由，并写入预置数据。
func BuildApplication(ctx context.Context, logger *zap.SugaredLogger, resources *app.Resources) (*Application, error) {
	cfg := resources.Config
	db := resources.DBConn()

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	wellbeingRepo := repository.NewWellbeingRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	var (
		refreshStore authsvc.RefreshTokenStore
		limiter      ratelimit.Limiter
	)
	if resources.Redis != nil {
		refreshStore = token.NewRedisRefreshTokenStore(resources.Redis, "")
		limiter = ratelimit.NewRedisLimiter(resources.Redis, "")
	} else {
		refreshStore = token.NewMemoryRefreshTokenStore()
		limiter = ratelimit.NewMemoryLimiter()
		logger.Infow("using in-memory refresh token store and rate limiter; state won't persist across restarts")
	}
	if cfg.Auth.UsingDevSecret {
		logger.Warnw("JWT_SECRET not set, using development secret")
	}

	base := textgen.FromConfig(cfg.AI)
	if textgen.Enabled(base) {
		logger.Infow("text generation enabled", "provider", cfg.AI.Provider, "model", cfg.AI.Model, "daily_quota", cfg.AI.DailyQuota)
	} else {
		logger.Infow("text generation disabled, rule-based fallbacks only")
	}

	wellnessService := wellness.NewService(activityRepo, textgen.ForFeature(base, wellness.FeatureWellnessMessage, cfg.AI, limiter))
	moodService := mood.NewService(wellbeingRepo, mood.FileStorySource(cfg.Content.StoryFile), textgen.ForFeature(base, mood.FeatureMoodClassifier, cfg.AI, limiter))

	catalog, err := learning.LoadCatalog(cfg.Content.CourseCatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load course catalog: %w", err)
	}
	learningService := learning.NewService(userRepo, catalog, textgen.ForFeature(base, learning.FeatureCourseRecommendations, cfg.AI, limiter))

	tokens := token.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	authService := authsvc.NewService(userRepo, tokens, refreshStore, wellnessService)
	userService := usersvc.NewService(userRepo, refreshStore)
	adminUserService := adminusersvc.NewService(adminusersvc.Config{}, userRepo)
	attendanceService := attendance.NewService(attendanceRepo, userRepo)

	summary, err := bootstrapdata.Seed(ctx, bootstrapdata.Options{
		Admin:   cfg.Seed,
		Users:   userRepo,
		Stories: moodService,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("seed data: %w", err)
	}
	logger.Infow("seed data ready", "admin_created", summary.AdminCreated, "demo_users", summary.DemoUsersCreated, "story_id", summary.StoryID)

	var authMiddleware middleware.Authenticator
	if cfg.Runtime.IsLocal() {
		authMiddleware = middleware.NewOfflineAuthMiddleware(cfg.Runtime.Local.UserID, cfg.Runtime.Local.IsAdmin)
		logger.Warnw("local mode: JWT verification disabled", "user_id", cfg.Runtime.Local.UserID, "is_admin", cfg.Runtime.Local.IsAdmin)
	} else {
		authMiddleware = middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)
	}

	router := server.NewRouter(server.RouterOptions{
		ServiceName:       cfg.Tracing.ServiceName,
		CORSOrigins:       cfg.Server.CORSOrigins,
		AuthHandler:       handler.NewAuthHandler(authService),
		UserHandler:       handler.NewUserHandler(userService),
		AdminUserHandler:  handler.NewAdminUserHandler(adminUserService),
		WellnessHandler:   handler.NewWellnessHandler(wellnessService, moodService, userService),
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService),
		CareerHandler:     handler.NewCareerHandler(),
		LearningHandler:   handler.NewLearningHandler(learningService),
		AuthMW:            authMiddleware,
		AuthRateLimit: middleware.NewIPRateLimitMiddleware(limiter, middleware.IPRateLimitConfig{
			Scope:       "auth",
			MaxRequests: cfg.Server.AuthRateLimit,
			Window:      cfg.Server.AuthRateWindow,
		}),
	})

	return &Application{
		Resources:   resources,
		AuthSvc:     authService,
		UserSvc:     userService,
		WellnessSvc: wellnessService,
		MoodSvc:     moodService,
		Router:      router,
	}, nil
}
