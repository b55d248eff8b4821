package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"taskapi/docs"
	"taskapi/internal/auth"
	"taskapi/internal/cache"
	"taskapi/internal/config"
	"taskapi/internal/db"
	"taskapi/internal/handler"
	"taskapi/internal/logger"
	"taskapi/internal/middleware"
	"taskapi/internal/ratelimit"
	"taskapi/internal/repository"
	"taskapi/internal/router"
	"taskapi/internal/service"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

// @title Task API
// @version 1.0
// @description Personal task tracking API with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	log := logger.HTTP()

	if cfg.JWTSecret == "change-me" {
		log.Warn("JWT_SECRET is not set, using the development default")
	}

	if len(cfg.TrustedProxies) > 0 {
		log.Infof("trusting X-Forwarded-For from %s", strings.Join(cfg.TrustedProxies, ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if cfg.ResetDB {
		logger.DB().Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logger.DB().Warnf("redis unavailable, task stats will not be cached: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)

	// Initialize auth components
	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Expiry:   cfg.JWTExpiry,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	hasher := auth.NewBcryptHasher(0)

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens, hasher)
	userService := service.NewUserService(userRepo, hasher, cacheClient)
	taskService := service.NewTaskService(taskRepo, cacheClient, nil)

	limiter := ratelimit.New(nil)
	go limiter.Run(ctx, ratelimit.SweepInterval, func(removed int) {
		if removed > 0 {
			logger.RateLimit().Debugf("swept %d expired records, %d tracked", removed, limiter.Len())
		}
	})

	e := echo.New()
	e.HideBanner = true
	e.Logger = log

	router.Register(
		e,
		cfg,
		limiter,
		middleware.AuthConfig{
			Tokens:                tokens,
			Users:                 userRepo,
			EnforcePasswordChange: cfg.EnforcePasswordChange,
		},
		handler.NewHealthHandler(version, handler.PingFunc(sqlDB.PingContext), cacheClient),
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewTaskHandler(taskService),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Infof("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	if err := cacheClient.Close(); err != nil {
		log.Errorf("close redis: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		log.Errorf("close database: %v", err)
	}
}
