package auth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	domain "employee-portal/backend/internal/domain/user"
	wellnessdomain "employee-portal/backend/internal/domain/wellness"
	appLogger "employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/infra/token"
	"employee-portal/backend/internal/repository"
	"employee-portal/backend/internal/service/auth"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	restore := appLogger.Replace(zap.NewNop())
	code := m.Run()
	restore()
	os.Exit(code)
}

type recordedActivity struct {
	userID     uint
	kind       string
	loginTime  *time.Time
	logoutTime *time.Time
}

type fakeRecorder struct {
	calls []recordedActivity
	err   error
}

func (f *fakeRecorder) LogActivity(_ context.Context, userID uint, kind string, loginTime, logoutTime *time.Time) (*wellnessdomain.ActivityLog, error) {
	f.calls = append(f.calls, recordedActivity{userID: userID, kind: kind, loginTime: loginTime, logoutTime: logoutTime})
	return nil, f.err
}

func newTestAuthService(t *testing.T, recorder auth.ActivityRecorder) (*auth.Service, *repository.UserRepository, *token.MemoryRefreshTokenStore) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewUserRepository(db)
	store := token.NewMemoryRefreshTokenStore()
	svc := auth.NewService(repo, token.NewJWTManager("test-secret", time.Minute, 24*time.Hour), store, recorder)
	return svc, repo, store
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	recorder := &fakeRecorder{}
	svc, repo, _ := newTestAuthService(t, recorder)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, auth.RegisterParams{
		Name:     "Alice Smith",
		Email:    " Alice@Example.com ",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 || user.Email != "alice@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.TokenType != "bearer" {
		t.Fatalf("unexpected tokens %+v", tokens)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("password not hashed correctly: %v", err)
	}

	loginUser, loginTokens, err := svc.Login(ctx, auth.LoginParams{Email: "ALICE@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginUser.ID != user.ID || loginTokens.AccessToken == "" {
		t.Fatalf("unexpected login result %+v", loginUser)
	}

	stored, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.LastLoginAt == nil {
		t.Fatalf("expected last login to be stamped")
	}

	if len(recorder.calls) != 1 || recorder.calls[0].kind != "login" || recorder.calls[0].loginTime == nil {
		t.Fatalf("expected one login activity, got %+v", recorder.calls)
	}
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	cases := []auth.RegisterParams{
		{Name: "", Email: "a@example.com", Password: "password"},
		{Name: "A", Email: "not-an-email", Password: "password"},
		{Name: "A", Email: "a@example.com", Password: "12345"},
	}
	for _, params := range cases {
		if _, _, err := svc.Register(ctx, params); !errors.Is(err, auth.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", params, err)
		}
	}

	if _, _, err := svc.Register(ctx, auth.RegisterParams{Name: "A", Email: "a@example.com", Password: "123456"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Register(ctx, auth.RegisterParams{Name: "B", Email: "A@example.com", Password: "123456"}); !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthServiceLoginFailures(t *testing.T) {
	recorder := &fakeRecorder{}
	svc, _, _ := newTestAuthService(t, recorder)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, auth.RegisterParams{Name: "Bob", Email: "bob@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, auth.LoginParams{Email: "bob@example.com", Password: "wrong"}); !errors.Is(err, auth.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
	if _, _, err := svc.Login(ctx, auth.LoginParams{Email: "nobody@example.com", Password: "secret1"}); !errors.Is(err, auth.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin for unknown email, got %v", err)
	}
	if len(recorder.calls) != 0 {
		t.Fatalf("failed logins must not record activity")
	}
}

func TestAuthServiceActivityFailureDoesNotBreakLogin(t *testing.T) {
	svc, _, _ := newTestAuthService(t, &fakeRecorder{err: errors.New("db down")})
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, auth.RegisterParams{Name: "Eve", Email: "eve@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, auth.LoginParams{Email: "eve@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login should succeed when activity logging fails: %v", err)
	}
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, auth.RegisterParams{Name: "Carol", Email: "carol@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatalf("expected a rotated refresh token")
	}
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, auth.ErrRefreshTokenRevoked) {
		t.Fatalf("old refresh token must be single use, got %v", err)
	}
	if _, err := svc.Refresh(ctx, ""); !errors.Is(err, auth.ErrRefreshTokenRequired) {
		t.Fatalf("expected ErrRefreshTokenRequired, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, auth.ErrRefreshTokenInvalid) {
		t.Fatalf("expected ErrRefreshTokenInvalid, got %v", err)
	}
	if _, err := svc.Refresh(ctx, refreshed.AccessToken); !errors.Is(err, auth.ErrRefreshTokenInvalid) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
}

func TestAuthServiceLogoutRevokesAndRecords(t *testing.T) {
	recorder := &fakeRecorder{}
	svc, _, _ := newTestAuthService(t, recorder)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, auth.RegisterParams{Name: "Dan", Email: "dan@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Logout(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, auth.ErrRefreshTokenRevoked) {
		t.Fatalf("expected revoked after logout, got %v", err)
	}
	if len(recorder.calls) != 1 || recorder.calls[0].kind != "logout" || recorder.calls[0].userID != user.ID || recorder.calls[0].logoutTime == nil {
		t.Fatalf("expected logout activity, got %+v", recorder.calls)
	}
}

func TestAuthServiceRevokeAllAndMe(t *testing.T) {
	svc, _, _ := newTestAuthService(t, nil)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, auth.RegisterParams{Name: "Fay", Email: "fay@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	me, err := svc.Me(ctx, user.ID)
	if err != nil || me.Email != "fay@example.com" {
		t.Fatalf("me: %+v %v", me, err)
	}
	if _, err := svc.Me(ctx, 999); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := svc.RevokeAll(ctx, user.ID); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, auth.ErrRefreshTokenRevoked) {
		t.Fatalf("expected revoked after RevokeAll, got %v", err)
	}
}
