package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"employee-portal/backend/internal/config"
	"employee-portal/backend/internal/domain/attendance"
	"employee-portal/backend/internal/domain/user"
	"employee-portal/backend/internal/domain/wellness"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models 返回需要 AutoMigrate 的全部实体。
func Models() []any {
	return []any{
		&user.User{},
		&wellness.ActivityLog{},
		&wellness.Story{},
		&wellness.Response{},
		&attendance.Record{},
	}
}

// OpenDatabase 按驱动打开数据库并执行 AutoMigrate。
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err = openMySQL(cfg.MySQL, gormCfg)
	case config.DriverSQLite, "":
		db, err = openSQLite(cfg.SQLitePath, gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

// openSQLite 打开 SQLite 文件，目录不存在时自动创建。
// SQLite 单写者，连接数限制为 1 以避免 database is locked。
func openSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// CloseDatabase 关闭底层连接。
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
