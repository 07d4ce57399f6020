/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 15:31:26
 * @FilePath: \employee-portal\backend\cmd\server\main.go
 * @LastEditTime: 2026-03-06 18:10:44
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"employee-portal/backend/internal/app"
	"employee-portal/backend/internal/bootstrap"
	"employee-portal/backend/internal/config"
	"employee-portal/backend/internal/infra/logger"
	"employee-portal/backend/internal/infra/metrics"
	"employee-portal/backend/internal/infra/tracing"
)

func main() {
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

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, sugar)
	if err != nil {
		sugar.Fatalw("init tracing failed", "error", err)
	}
	metrics.MustRegister()

	resources, err := app.InitResources(ctx, cfg)
	if err != nil {
		sugar.Fatalw("initialise resources failed", "error", err)
	}
	defer func() {
		if closeErr := resources.Close(); closeErr != nil {
			sugar.Warnw("close resources failed", "error", closeErr)
		}
	}()

	application, err := bootstrap.BuildApplication(ctx, sugar, resources)
	if err != nil {
		sugar.Fatalw("build application failed", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("http server listening", "addr", srv.Addr, "mode", cfg.Runtime.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("http server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("http server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		sugar.Warnw("tracing shutdown failed", "error", err)
	}
}
