package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndavydov/auth-sessions/internal/auth"
	"github.com/ndavydov/auth-sessions/internal/auth/csrf"
	"github.com/ndavydov/auth-sessions/internal/auth/jwt"
	"github.com/ndavydov/auth-sessions/internal/cache/redis"
	"github.com/ndavydov/auth-sessions/internal/config"
	"github.com/ndavydov/auth-sessions/internal/ctrl"
	hdl "github.com/ndavydov/auth-sessions/internal/hdl/http"
	"github.com/ndavydov/auth-sessions/internal/observability/metrics/prometheus"
	"github.com/ndavydov/auth-sessions/internal/observability/tracing/jaeger"
	"github.com/ndavydov/auth-sessions/internal/repo/db"
	"github.com/ndavydov/auth-sessions/internal/sessions"
	"github.com/ndavydov/auth-sessions/internal/smtp"
	"go.uber.org/zap"
)

const envPath = ".env"

func mustRegisterLogger(mode string) {
	switch mode {
	case "prod":
		zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
	case "dev":
		zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))
	}
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			zap.L().Panic("panic occurred", zap.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := config.MustLoad(envPath)
	mustRegisterLogger(conf.Server.Mode)

	go prometheus.New(conf.Server.Port + 5).Start(ctx)
	go jaeger.Start(ctx, conf.ServiceName, conf.Jaeger)

	cache := redis.New(conf.Redis)
	repo := db.New(conf)

	sm := sessions.New(repo)
	go sm.StartSweep(ctx)

	au := jwt.New(conf)
	cs := csrf.New(conf)
	svc := ctrl.New(au, auth.NewHasher(), sm, repo, cache, smtp.New(conf))
	h := hdl.New(conf.Server.Mode, au, cs, cache, svc)

	zap.L().Info(
		fmt.Sprintf(
			"Starting server on %v://%v:%v",
			conf.Server.Scheme,
			conf.Server.Domain,
			conf.Server.Port,
		),
	)
	go h.Start(conf.Server.Port)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-c

	zap.L().Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := h.Close(shutdownCtx); err != nil {
		zap.L().Warn("Error closing handler", zap.Error(err))
	}

	if err := cache.Close(); err != nil {
		zap.L().Warn("Failed to close connection to Redis: ", zap.Error(err))
	}

	if err := repo.Close(shutdownCtx); err != nil {
		zap.L().Warn("Error closing repository", zap.Error(err))
	}

	os.Exit(0)
}
