/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 15:11:26
 * @FilePath: \employee-portal\backend\internal\infra\client\mysql_client.go
 * @LastEditTime: 2026-03-03 09:27:02
 */
package infra

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"employee-portal/backend/internal/config"

	mysqlcfg "github.com/go-sql-driver/mysql"
	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// validateMySQLConfig 校验必填字段。
func validateMySQLConfig(cfg config.MySQLConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("mysql host is required")
	}
	if cfg.Username == "" {
		return fmt.Errorf("mysql username is required")
	}
	if cfg.Database == "" {
		return fmt.Errorf("mysql database is required")
	}
	return nil
}

// BuildMySQLDSN 使用驱动自带的 Config.FormatDSN 生成 DSN，密码中的特殊字符无需手动转义。
// Params 形如 charset=utf8mb4&parseTime=true&loc=Local。
func BuildMySQLDSN(cfg config.MySQLConfig) (string, error) {
	if err := validateMySQLConfig(cfg); err != nil {
		return "", err
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	dsnCfg := mysqlcfg.NewConfig()
	dsnCfg.User = cfg.Username
	dsnCfg.Passwd = cfg.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = cfg.Host + ":" + strconv.Itoa(port)
	dsnCfg.DBName = cfg.Database
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.Local

	if cfg.Params != "" {
		values, err := url.ParseQuery(cfg.Params)
		if err != nil {
			return "", fmt.Errorf("parse mysql params: %w", err)
		}
		for key := range values {
			val := values.Get(key)
			switch key {
			case "parseTime":
				dsnCfg.ParseTime = val == "true" || val == "1"
			case "loc":
				loc, err := time.LoadLocation(val)
				if err != nil {
					return "", fmt.Errorf("parse mysql loc: %w", err)
				}
				dsnCfg.Loc = loc
			default:
				if dsnCfg.Params == nil {
					dsnCfg.Params = map[string]string{}
				}
				dsnCfg.Params[key] = val
			}
		}
	}

	return dsnCfg.FormatDSN(), nil
}

// openMySQL 创建 GORM MySQL 连接并配置连接池。
func openMySQL(cfg config.MySQLConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	dsn, err := BuildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysqlDriver.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open gorm mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetConnMaxLifetime(60 * time.Minute)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
