package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"employee-portal/backend/internal/app"
	"employee-portal/backend/internal/bootstrapdata"
	"employee-portal/backend/internal/config"
	userdomain "employee-portal/backend/internal/domain/user"
	"employee-portal/backend/internal/domain/wellness"
	"employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/infra/model/textgen"
	"employee-portal/backend/internal/repository"
	"employee-portal/backend/internal/service/mood"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	outputPath = flag.String("output", "", "指定生成的 SQLite 文件路径")
	dataDir    = flag.String("data-dir", "", "指定预置数据目录，默认读取 LOCAL_BOOTSTRAP_DATA_DIR")
)

// main 是离线引导工具入口，生成带有管理员、演示员工与问卷故事的本地 SQLite 文件。
func main() {
	flag.Parse()

	ensureLocalMode()

	if *outputPath != "" {
		if err := os.Setenv("SQLITE_PATH", strings.TrimSpace(*outputPath)); err != nil {
			panic(fmt.Sprintf("set SQLITE_PATH failed: %v", err))
		}
	}

	zapLogger, err := logger.Init()
	if err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	defer logger.Sync()
	sugar := zapLogger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalw("load config failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resources, err := app.InitResources(ctx, cfg)
	if err != nil {
		sugar.Fatalw("initialise resources failed", "error", err)
	}
	defer func() {
		if closeErr := resources.Close(); closeErr != nil {
			sugar.Warnw("close resources failed", "error", closeErr)
		}
	}()

	db := resources.DBConn()
	_, err = bootstrapdata.Seed(ctx, bootstrapdata.Options{
		DataDir: strings.TrimSpace(*dataDir),
		Admin:   cfg.Seed,
		Users:   repository.NewUserRepository(db),
		Stories: mood.NewService(repository.NewWellbeingRepository(db), mood.FileStorySource(cfg.Content.StoryFile), textgen.Disabled{}),
		Logger:  sugar,
	})
	if err != nil {
		sugar.Fatalw("seed failed", "error", err)
	}

	if err := reportSeedSummary(ctx, db, sugar); err != nil {
		sugar.Warnw("report seed summary failed", "error", err)
	}

	sugar.Infow("offline database ready", "sqlite_path", cfg.Database.SQLitePath)
}

// ensureLocalMode 确保命令在本地模式下运行，从而固定使用 SQLite。
func ensureLocalMode() {
	if mode := strings.TrimSpace(os.Getenv("APP_MODE")); !strings.EqualFold(mode, config.ModeLocal) {
		if err := os.Setenv("APP_MODE", config.ModeLocal); err != nil {
			panic(fmt.Sprintf("set APP_MODE failed: %v", err))
		}
	}
}

// reportSeedSummary 统计关键表的记录数，便于调用者确认导入结果。
func reportSeedSummary(ctx context.Context, db *gorm.DB, sugar *zap.SugaredLogger) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}

	var userCount int64
	if err := db.WithContext(ctx).Model(&userdomain.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	var storyCount int64
	if err := db.WithContext(ctx).Model(&wellness.Story{}).Count(&storyCount).Error; err != nil {
		return fmt.Errorf("count stories: %w", err)
	}

	sugar.Infow("seed summary", "users", userCount, "stories", storyCount)
	return nil
}
