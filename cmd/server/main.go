package main // Entry point package

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/DJaayy/slot-booking/internal/config"
	"github.com/DJaayy/slot-booking/internal/database"
	"github.com/DJaayy/slot-booking/internal/handler"
	"github.com/DJaayy/slot-booking/internal/middleware"
	"github.com/DJaayy/slot-booking/internal/repository"
	"github.com/DJaayy/slot-booking/internal/router"
	"github.com/DJaayy/slot-booking/internal/service"
	"github.com/DJaayy/slot-booking/internal/slotgen"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// Storage backend, chosen once by configuration.
	var store repository.Store
	switch cfg.StoreDriver {
	case "mysql":
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		store = repository.NewMySQLStore(db, log)
	case "memory":
		store = repository.NewMemoryStore(log)
	default:
		log.Fatal("unknown STORE_DRIVER", zap.String("driver", cfg.StoreDriver))
	}

	// Seed the rolling slot horizon and the default email templates.
	// Both operations are idempotent across restarts.
	gen := slotgen.New(store, log)
	if _, err := gen.Seed(ctx, time.Now().UTC(), cfg.SeedWeeks); err != nil {
		log.Fatal("failed to seed slots", zap.Error(err))
	}
	if err := repository.SeedDefaultTemplates(ctx, store); err != nil {
		log.Fatal("failed to seed templates", zap.Error(err))
	}

	// Redis is optional: without it the cache and rate limiter turn
	// into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, response cache and rate limiting disabled")
	}
	cache := middleware.NewCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	notifier := service.NewNotifier(store, cfg.AMQPURL, log)

	e := echo.New()
	e.HideBanner = true

	booking := handler.NewBookingHandler(store, notifier, cache, log)
	templates := handler.NewTemplateHandler(store, cache, log)
	auth := handler.NewAuthHandler(store, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost, log)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterBooking(e, booking, cfg.JWTSecret, cache, limit)
	router.RegisterTemplates(e, templates, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
