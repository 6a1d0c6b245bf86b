package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task_manager/internal/config"
	"task_manager/internal/db"
	httpServer "task_manager/internal/http"
	"task_manager/internal/http/middleware"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
	"task_manager/internal/service"
	"task_manager/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()

	if cfg.AutoMigrate {
		if err := db.ApplyMigrations(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal("apply migrations", "error", err)
		}
	}

	pool, err := db.Connect(ctx, db.Options{
		DSN:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Fatal("connect database", "error", err)
	}
	defer pool.Close()

	rdb := middleware.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	hub := ws.NewHub()
	gateway := db.NewGateway(pool)
	tasks := service.NewTaskService(gateway, repository.NewTaskRepository(), hub)

	var tokens middleware.TokenParser
	if cfg.JWTSecret != "" {
		tokens = service.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
		logger.Info("write guard enabled")
	}

	gin.SetMode(gin.ReleaseMode)
	r := httpServer.NewEngine(httpServer.Deps{
		Tasks:          tasks,
		DB:             gateway,
		Schema:         tasks,
		Hub:            hub,
		Redis:          rdb,
		Tokens:         tokens,
		Version:        cfg.AppVersion,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      cfg.APIRateLimit,
		RateWindow:     cfg.APIRateWindow,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
