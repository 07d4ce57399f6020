package bootstrapdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"employee-portal/backend/internal/config"
	userdomain "employee-portal/backend/internal/domain/user"
	"employee-portal/backend/internal/service/auth"
	"employee-portal/backend/internal/service/mood"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	envDataDir              = "LOCAL_BOOTSTRAP_DATA_DIR"
	defaultBootstrapDataDir = "backend/data/bootstrap"
	demoUsersFilename       = "demo_users.json"
)

// UserStore 预置账号需要的用户读写能力。
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// StoryProvider 读取（必要时创建）当前启用的问卷故事。
type StoryProvider interface {
	CurrentStory(ctx context.Context) (mood.StoryView, error)
}

// Options 描述预置数据导入所需的参数。
type Options struct {
	DataDir string
	Admin   config.SeedConfig
	Users   UserStore
	Stories StoryProvider
	Logger  *zap.SugaredLogger
}

// Summary 本次导入的结果。
type Summary struct {
	AdminCreated     bool
	DemoUsersCreated int
	StoryID          uint
}

// Seed 确保管理员账号与启用故事存在；数据目录中有 demo_users.json 时一并导入演示员工。
// 已存在的账号不会被修改，可重复执行。
func Seed(ctx context.Context, opts Options) (Summary, error) {
	if opts.Users == nil {
		return Summary{}, errors.New("user store is nil")
	}
	if opts.DataDir == "" {
		opts.DataDir = ResolveDataDir()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var summary Summary
	created, err := EnsureAdmin(ctx, opts.Users, opts.Admin)
	if err != nil {
		return summary, err
	}
	summary.AdminCreated = created
	if created {
		logger.Infow("admin account created", "email", opts.Admin.AdminEmail)
	}

	count, err := seedDemoUsers(ctx, opts.Users, filepath.Join(opts.DataDir, demoUsersFilename), logger)
	if err != nil {
		return summary, err
	}
	summary.DemoUsersCreated = count

	if opts.Stories != nil {
		view, err := opts.Stories.CurrentStory(ctx)
		if err != nil {
			return summary, fmt.Errorf("ensure wellbeing story: %w", err)
		}
		summary.StoryID = view.Story.ID
	}
	return summary, nil
}

// ResolveDataDir 解析预置数据所在目录。
func ResolveDataDir() string {
	raw := strings.TrimSpace(os.Getenv(envDataDir))
	if raw == "" {
		return defaultBootstrapDataDir
	}
	return raw
}

// EnsureAdmin 管理员邮箱不存在时创建，返回是否新建。
func EnsureAdmin(ctx context.Context, users UserStore, seed config.SeedConfig) (bool, error) {
	email := auth.NormalizeEmail(seed.AdminEmail)
	if email == "" || seed.AdminPassword == "" {
		return false, nil
	}
	return createIfMissing(ctx, users, &userdomain.User{
		Name:       strings.TrimSpace(seed.AdminName),
		Email:      email,
		IsAdmin:    true,
		Role:       "Administrator",
		Experience: 10,
		Skills:     "Management, Leadership, HR",
	}, seed.AdminPassword)
}

type demoUserSeed struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Experience     int    `json:"experience"`
	Skills         string `json:"skills"`
	AreaOfInterest string `json:"area_of_interest"`
}

func seedDemoUsers(ctx context.Context, users UserStore, path string, logger *zap.SugaredLogger) (int, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Infow("demo user seed not found, skip", "path", path)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read demo user seed: %w", err)
	}

	var seeds []demoUserSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return 0, fmt.Errorf("parse demo user seed: %w", err)
	}

	inserted := 0
	for idx, item := range seeds {
		created, err := createIfMissing(ctx, users, &userdomain.User{
			Name:           strings.TrimSpace(item.Name),
			Email:          auth.NormalizeEmail(item.Email),
			Role:           strings.TrimSpace(item.Role),
			Experience:     item.Experience,
			Skills:         strings.TrimSpace(item.Skills),
			AreaOfInterest: strings.TrimSpace(item.AreaOfInterest),
		}, item.Password)
		if err != nil {
			return inserted, fmt.Errorf("seed demo user at index %d: %w", idx, err)
		}
		if created {
			inserted++
		}
	}
	logger.Infow("同步演示账号完成", "inserted", inserted, "total", len(seeds))
	return inserted, nil
}

func createIfMissing(ctx context.Context, users UserStore, u *userdomain.User, password string) (bool, error) {
	if _, err := users.FindByEmail(ctx, u.Email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup %s: %w", u.Email, err)
	}
	if err := auth.ValidateIdentity(u.Name, u.Email); err != nil {
		return false, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	if err := users.Create(ctx, u); err != nil {
		return false, fmt.Errorf("create %s: %w", u.Email, err)
	}
	return true, nil
}
