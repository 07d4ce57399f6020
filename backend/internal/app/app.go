/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 15:52:47
 * @FilePath: \employee-portal\backend\internal\app\app.go
 * @LastEditTime: 2026-03-05 10:20:51
 */
package app

import (
	"context"
	"errors"
	"fmt"

	"employee-portal/backend/internal/config"
	infra "employee-portal/backend/internal/infra/client"
	appLogger "employee-portal/backend/internal/infra/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Resources 进程级共享资源：配置、数据库与可选的 Redis。
type Resources struct {
	Config config.AppConfig
	DB     *gorm.DB
	Redis  *redis.Client
}

// InitResources 打开数据库（含 AutoMigrate）并按需连接 Redis。
func InitResources(ctx context.Context, cfg config.AppConfig) (*Resources, error) {
	log := appLogger.Component("app")

	db, err := infra.OpenDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Infow("database ready", "driver", cfg.Database.Driver)

	redisClient, err := infra.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		_ = infra.CloseDatabase(db)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if redisClient == nil {
		log.Infow("redis disabled, using in-memory stores")
	} else {
		log.Infow("redis connected", "endpoint", cfg.Redis.Endpoint)
	}

	return &Resources{Config: cfg, DB: db, Redis: redisClient}, nil
}

// Close 释放数据库与 Redis 连接。
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if r.DB != nil {
		if err := infra.CloseDatabase(r.DB); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// DBConn 返回 gorm 连接，Resources 为空时返回 nil。
func (r *Resources) DBConn() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.DB
}
