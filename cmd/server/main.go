package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/bootstrap"
	"github.com/iliyamo/spacelink/internal/config"
	"github.com/iliyamo/spacelink/internal/database"
	"github.com/iliyamo/spacelink/internal/handler"
	"github.com/iliyamo/spacelink/internal/lock"
	"github.com/iliyamo/spacelink/internal/logger"
	"github.com/iliyamo/spacelink/internal/middleware"
	"github.com/iliyamo/spacelink/internal/queue"
	"github.com/iliyamo/spacelink/internal/repository"
	"github.com/iliyamo/spacelink/internal/router"
	"github.com/iliyamo/spacelink/internal/service"
)

func main() {
	cfg := config.Load()
	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("database connect failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	if cfg.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	properties := repository.NewPropertyRepo(db)
	bookings := repository.NewBookingRepo(db)
	notifications := repository.NewNotificationRepo(db)

	if err := bootstrap.EnsureAdmin(ctx, users, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost, zl); err != nil {
		zl.Fatal("admin bootstrap failed", zap.Error(err))
	}

	rdb := config.NewRedisClient()
	var locker service.Locker
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		locker = lock.NewRedisLocker(rdb, 10*time.Second)
	} else {
		zl.Warn("redis unavailable, using process-local booking lock; rate limit and cache disabled")
		locker = lock.NewLocalLocker()
	}

	var notifier service.Notifier
	if cfg.RabbitURL != "" {
		notifier = service.NewAMQPNotifier(cfg.RabbitURL)
		consumer := queue.NewConsumer(cfg.RabbitURL, notifications, zl.Named("queue"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	} else {
		zl.Info("RABBITMQ_URL not set, notifications written directly")
		notifier = service.NewInboxNotifier(notifications)
	}

	svc := service.NewBookingService(bookings, properties, users, notifier, locker, zl.Named("booking"))

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(middleware.RequestLogger(zl.Named("http")))

	cacheCfg := config.LoadCacheConfig()
	router.RegisterRoutes(e, router.Handlers{
		Auth: handler.NewAuthHandler(handler.AuthSettings{
			JWTSecret:      cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
			BcryptCost:     cfg.BcryptCost,
		}, users, tokens, zl),
		Bookings:      handler.NewBookingHandler(svc, zl),
		Properties:    handler.NewPropertyHandler(properties, zl),
		Notifications: handler.NewNotificationHandler(notifications, zl),
		Health:        handler.Health(db),
	}, router.Options{
		JWTSecret:  cfg.JWTSecret,
		Cache:      middleware.NewRedisCache(cacheCfg, rdb),
		CacheEvict: middleware.NewCacheEvictor(cacheCfg, rdb, zl.Named("cache")),
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl),
	})

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
}
