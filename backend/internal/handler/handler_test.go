package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	userdomain "employee-portal/backend/internal/domain/user"
	infra "employee-portal/backend/internal/infra/client"
	response "employee-portal/backend/internal/infra/common"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/infra/model/textgen"
	"employee-portal/backend/internal/infra/token"
	"employee-portal/backend/internal/middleware"
	"employee-portal/backend/internal/repository"
	adminusersvc "employee-portal/backend/internal/service/adminuser"
	"employee-portal/backend/internal/service/attendance"
	"employee-portal/backend/internal/service/auth"
	"employee-portal/backend/internal/service/learning"
	"employee-portal/backend/internal/service/mood"
	usersvc "employee-portal/backend/internal/service/user"
	"employee-portal/backend/internal/service/wellness"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	restore := appLogger.Replace(zap.NewNop())
	code := m.Run()
	restore()
	os.Exit(code)
}

type testServer struct {
	engine  *gin.Engine
	users   *repository.UserRepository
	manager *token.JWTManager
	refresh *token.MemoryRefreshTokenStore
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(infra.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	manager := token.NewJWTManager(testSecret, time.Minute, time.Hour)
	refresh := token.NewMemoryRefreshTokenStore()
	generator := textgen.Disabled{}

	wellnessService := wellness.NewService(repository.NewActivityRepository(db), generator)
	authService := auth.NewService(users, manager, refresh, wellnessService)
	userService := usersvc.NewService(users, refresh)
	moodService := mood.NewService(repository.NewWellbeingRepository(db), mood.FileStorySource(""), generator)
	catalog, err := learning.LoadCatalog("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	adminHandler := NewAdminUserHandler(adminusersvc.NewService(adminusersvc.Config{}, users))
	wellnessHandler := NewWellnessHandler(wellnessService, moodService, userService)
	attendanceHandler := NewAttendanceHandler(attendance.NewService(repository.NewAttendanceRepository(db), users))
	learningHandler := NewLearningHandler(learning.NewService(users, catalog, generator))
	careerHandler := NewCareerHandler()

	engine := gin.New()
	api := engine.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	protected := api.Group("", middleware.NewAuthMiddleware(testSecret).Handle())
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/users/profile", userHandler.GetProfile)
	protected.PUT("/users/profile", userHandler.UpdateProfile)
	protected.POST("/users/change-password", userHandler.ChangePassword)
	protected.GET("/users/course-recommendations", learningHandler.Recommendations)
	protected.GET("/wellness/wellness-insights", wellnessHandler.Insights)
	protected.POST("/wellness/log-activity", wellnessHandler.LogActivity)
	protected.GET("/wellness/story", wellnessHandler.Story)
	protected.POST("/wellness/submit", wellnessHandler.Submit)
	protected.GET("/attendance/me", attendanceHandler.ListMine)
	protected.GET("/attendance/me/summary", attendanceHandler.SummaryMine)
	protected.POST("/career/roadmap-summary", careerHandler.RoadmapSummary)

	admin := protected.Group("", middleware.RequireAdmin())
	admin.GET("/admin/users", adminHandler.List)
	admin.POST("/admin/users", adminHandler.Create)
	admin.DELETE("/admin/users/:id", adminHandler.Delete)
	admin.GET("/attendance", attendanceHandler.ListByDate)
	admin.POST("/attendance/bulk", attendanceHandler.MarkBulk)
	admin.PUT("/attendance/:id", attendanceHandler.Update)

	return &testServer{engine: engine, users: users, manager: manager, refresh: refresh}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env response.Response
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

// seedUser 直接写库并签发访问令牌。
func (s *testServer) seedUser(t *testing.T, name, email string, admin bool) (*userdomain.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &userdomain.User{Name: name, Email: email, PasswordHash: hash, IsAdmin: admin, Role: "Software Engineer", Skills: "go"}
	if err := s.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	pair, err := s.manager.GenerateTokens(context.Background(), u)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	return u, pair.AccessToken
}

func dataMap(t *testing.T, env response.Response) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", env.Data)
	}
	return m
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Jane Doe", "email": "jane@example.com", "password": "secret123"})
	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Jane", "email": "JANE@example.com", "password": "secret123"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}

	rec, env = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "jane@example.com", "password": "wrong-pass"})
	if rec.Code != http.StatusUnauthorized || env.Error == nil || env.Error.Code != response.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "jane@example.com", "password": "secret123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	tokens := dataMap(t, env)["tokens"].(map[string]any)
	access := tokens["access_token"].(string)
	refresh := tokens["refresh_token"].(string)

	rec, env = s.do(t, http.MethodGet, "/api/auth/me", access, nil)
	if rec.Code != http.StatusOK || dataMap(t, env)["email"] != "jane@example.com" {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body.String())
	}
	rotated := dataMap(t, env)["tokens"].(map[string]any)["refresh_token"].(string)

	rec, env = s.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": refresh})
	if rec.Code != http.StatusUnauthorized || env.Error.Code != response.ErrTokenInvalid {
		t.Fatalf("expected rotated token to be revoked, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(t, http.MethodPost, "/api/auth/logout", "", gin.H{"refresh_token": rotated})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": "Jane", "email": "not-an-email", "password": "secret123"})
	if rec.Code != http.StatusBadRequest || env.Error.Code != response.ErrBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestProfileUpdateAndPassword(t *testing.T) {
	s := newTestServer(t)
	_, _ = s.seedUser(t, "Other Person", "other@example.com", false)
	_, access := s.seedUser(t, "Jane Doe", "jane@example.com", false)

	rec, env := s.do(t, http.MethodPut, "/api/users/profile", access, gin.H{"role": "  Data Analyst ", "experience": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: %d %s", rec.Code, rec.Body.String())
	}
	if data := dataMap(t, env); data["role"] != "Data Analyst" || data["experience"] != float64(3) {
		t.Fatalf("unexpected profile %+v", data)
	}

	rec, _ = s.do(t, http.MethodPut, "/api/users/profile", access, gin.H{"email": "other@example.com"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken email, got %d", rec.Code)
	}

	rec, env = s.do(t, http.MethodPost, "/api/users/change-password", access, gin.H{"current_password": "nope-nope", "new_password": "newsecret"})
	if rec.Code != http.StatusBadRequest || env.Error.Code != response.ErrInvalidCredentials {
		t.Fatalf("expected password mismatch, got %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = s.do(t, http.MethodPost, "/api/users/change-password", access, gin.H{"current_password": "secret123", "new_password": "newsecret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("change password: %d %s", rec.Code, rec.Body.String())
	}
}

func TestWellnessEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, access := s.seedUser(t, "Jane Doe", "jane@example.com", false)

	rec, env := s.do(t, http.MethodPost, "/api/wellness/log-activity?activity_type=gaming", access, nil)
	if rec.Code != http.StatusBadRequest || env.Error.Code != response.ErrValidation {
		t.Fatalf("expected validation error, got %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(t, http.MethodPost, "/api/wellness/log-activity?activity_type=logout", access, nil)
	if rec.Code != http.StatusOK || dataMap(t, env)["activity_id"] != nil {
		t.Fatalf("logout without login must not create a record: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(t, http.MethodPost, "/api/wellness/log-activity?activity_type=dashboard", access, nil)
	if rec.Code != http.StatusOK || dataMap(t, env)["activity_id"] == nil {
		t.Fatalf("log dashboard: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(t, http.MethodGet, "/api/wellness/wellness-insights", access, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("insights: %d %s", rec.Code, rec.Body.String())
	}
	data := dataMap(t, env)
	insights := data["insights"].(map[string]any)
	if data["user_name"] != "Jane Doe" || insights["risk_level"] != "LOW" {
		t.Fatalf("unexpected insights %+v", data)
	}
	if insights["wellness_message"] == "" {
		t.Fatalf("expected fallback message")
	}
}

func TestWellbeingStoryAndSubmit(t *testing.T) {
	s := newTestServer(t)
	_, access := s.seedUser(t, "Jane Doe", "jane@example.com", false)

	rec, env := s.do(t, http.MethodGet, "/api/wellness/story", access, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("story: %d %s", rec.Code, rec.Body.String())
	}
	if questions, _ := dataMap(t, env)["questions"].([]any); len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %v", dataMap(t, env)["questions"])
	}

	rec, env = s.do(t, http.MethodPost, "/api/wellness/submit", access, gin.H{"answers": map[string]string{"1": "fine"}})
	if rec.Code != http.StatusBadRequest || env.Error.Message != "All 5 questions must be answered" {
		t.Fatalf("expected answer count error, got %d %s", rec.Code, rec.Body.String())
	}

	answers := map[string]string{"1": "so much pressure", "2": "deadline", "3": "ok", "4": "ok", "5": "ok"}
	rec, env = s.do(t, http.MethodPost, "/api/wellness/submit", access, gin.H{"answers": answers})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	if got := dataMap(t, env)["mood"]; got != "STRESSED" {
		t.Fatalf("expected keyword fallback STRESSED, got %v", got)
	}
}

func TestAttendanceEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.seedUser(t, "Admin User", "admin@example.com", true)
	_, employeeToken := s.seedUser(t, "Jane Doe", "jane@example.com", false)

	rec, _ := s.do(t, http.MethodPost, "/api/attendance/bulk", employeeToken, gin.H{"date": "2026-03-02", "status": "present"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee, got %d", rec.Code)
	}

	rec, env := s.do(t, http.MethodPost, "/api/attendance/bulk", adminToken, gin.H{"date": "2026-03-02", "status": "present"})
	if rec.Code != http.StatusOK || dataMap(t, env)["marked"] != float64(1) {
		t.Fatalf("bulk mark: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(t, http.MethodPost, "/api/attendance/bulk", adminToken, gin.H{"date": "2026-03-02", "status": "vacation"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", rec.Code)
	}

	rec, env = s.do(t, http.MethodGet, "/api/attendance/me/summary?month=2026-03", employeeToken, nil)
	if rec.Code != http.StatusOK || dataMap(t, env)["present_days"] != float64(1) {
		t.Fatalf("summary: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(t, http.MethodGet, "/api/attendance/me?month=March", employeeToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid month, got %d", rec.Code)
	}

	rec, _ = s.do(t, http.MethodPut, "/api/attendance/999", adminToken, gin.H{"status": "absent"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin, adminToken := s.seedUser(t, "Admin User", "admin@example.com", true)

	rec, env := s.do(t, http.MethodPost, "/api/admin/users", adminToken, gin.H{"name": "New Hire", "email": "hire@example.com", "password": "welcome1"})
	if rec.Code != http.StatusCreated || dataMap(t, env)["must_change_password"] != true {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(t, http.MethodGet, "/api/admin/users?q=hire", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	if items, _ := env.Data.([]any); len(items) != 1 {
		t.Fatalf("expected one match, got %v", env.Data)
	}
	if meta, _ := env.Meta.(map[string]any); meta["total_items"] != float64(1) {
		t.Fatalf("unexpected meta %v", env.Meta)
	}

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", admin.ID), adminToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected self delete to be rejected, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodDelete, "/api/admin/users/abc", adminToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid id, got %d", rec.Code)
	}
}

func TestCareerAndLearningEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, access := s.seedUser(t, "Jane Doe", "jane@example.com", false)

	rec, _ := s.do(t, http.MethodPost, "/api/career/roadmap-summary", access, gin.H{"current_role": "Engineer"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing roles, got %d", rec.Code)
	}
	rec, env := s.do(t, http.MethodPost, "/api/career/roadmap-summary", access, gin.H{
		"current_role": "Engineer", "next_role": "Senior Engineer", "next_date": "Q3 2026", "future_role": "Staff Engineer",
	})
	if rec.Code != http.StatusOK || !strings.Contains(dataMap(t, env)["summary"].(string), "Senior Engineer") {
		t.Fatalf("roadmap: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(t, http.MethodGet, "/api/users/course-recommendations", access, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendations: %d %s", rec.Code, rec.Body.String())
	}
	data := dataMap(t, env)
	if data["source"] != "fallback" {
		t.Fatalf("expected fallback source without AI, got %v", data["source"])
	}
	if recs, _ := data["recommendations"].([]any); len(recs) != 5 {
		t.Fatalf("expected 5 recommendations, got %d", len(recs))
	}
}
