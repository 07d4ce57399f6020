package server

import (
	"net/http"
	"strings"
	"time"

	"employee-portal/backend/internal/handler"
	response "employee-portal/backend/internal/infra/common"
	"employee-portal/backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterOptions struct {
	ServiceName       string
	CORSOrigins       []string
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	AdminUserHandler  *handler.AdminUserHandler
	WellnessHandler   *handler.WellnessHandler
	AttendanceHandler *handler.AttendanceHandler
	CareerHandler     *handler.CareerHandler
	LearningHandler   *handler.LearningHandler
	AuthMW            middleware.Authenticator
	// AuthRateLimit 只挂在注册与登录上，按 IP 限流。
	AuthRateLimit *middleware.IPRateLimitMiddleware
}

// NewRouter 构建应用的 Gin Engine，汇总所有 REST 接口与公共中间件配置。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "employee-portal"
	}

	// gin 中间件配置
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(middleware.AccessLog())

	status := func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "service": serviceName}, nil)
	}
	r.GET("/", status)
	r.GET("/health", status)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// 登录后才能访问的路由统一挂 JWT 中间件。
	protected := api.Group("")
	if opts.AuthMW != nil {
		protected.Use(opts.AuthMW.Handle())
	}

	if opts.AuthHandler != nil {
		authGroup := api.Group("/auth")
		if opts.AuthRateLimit != nil {
			limit := opts.AuthRateLimit.Handle()
			authGroup.POST("/register", limit, opts.AuthHandler.Register)
			authGroup.POST("/login", limit, opts.AuthHandler.Login)
		} else {
			authGroup.POST("/register", opts.AuthHandler.Register)
			authGroup.POST("/login", opts.AuthHandler.Login)
		}
		authGroup.POST("/refresh", opts.AuthHandler.Refresh)
		authGroup.POST("/logout", opts.AuthHandler.Logout)
		protected.GET("/auth/me", opts.AuthHandler.Me)
	}

	if opts.UserHandler != nil {
		protected.GET("/users/profile", opts.UserHandler.GetProfile)
		protected.PUT("/users/profile", opts.UserHandler.UpdateProfile)
		protected.POST("/users/change-password", opts.UserHandler.ChangePassword)
	}
	if opts.LearningHandler != nil {
		protected.GET("/users/course-recommendations", opts.LearningHandler.Recommendations)
	}

	if opts.WellnessHandler != nil {
		wellness := protected.Group("/wellness")
		wellness.GET("/wellness-insights", opts.WellnessHandler.Insights)
		wellness.POST("/log-activity", opts.WellnessHandler.LogActivity)
		wellness.GET("/story", opts.WellnessHandler.Story)
		wellness.POST("/submit", opts.WellnessHandler.Submit)
	}

	if opts.AttendanceHandler != nil {
		attendance := protected.Group("/attendance")
		attendance.GET("/me", opts.AttendanceHandler.ListMine)
		attendance.GET("/me/summary", opts.AttendanceHandler.SummaryMine)

		attendanceAdmin := attendance.Group("", middleware.RequireAdmin())
		attendanceAdmin.GET("", opts.AttendanceHandler.ListByDate)
		attendanceAdmin.POST("/bulk", opts.AttendanceHandler.MarkBulk)
		attendanceAdmin.PUT("/:id", opts.AttendanceHandler.Update)
	}

	if opts.CareerHandler != nil {
		protected.POST("/career/roadmap-summary", opts.CareerHandler.RoadmapSummary)
	}

	if opts.AdminUserHandler != nil {
		admin := protected.Group("/admin", middleware.RequireAdmin())
		admin.GET("/users", opts.AdminUserHandler.List)
		admin.POST("/users", opts.AdminUserHandler.Create)
		admin.PUT("/users/:id", opts.AdminUserHandler.Update)
		admin.DELETE("/users/:id", opts.AdminUserHandler.Delete)
	}

	return r
}

// corsConfig 白名单来自 CORS_ALLOWED_ORIGINS，"*" 放开全部来源。
func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]struct{}, len(origins))
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			allowAll = true
		}
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Retry-After"},
		AllowCredentials: !allowAll,
		MaxAge:           12 * time.Hour,
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOriginFunc = func(origin string) bool {
		_, ok := allowed[origin]
		return ok
	}
	return cfg
}
