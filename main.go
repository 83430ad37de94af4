package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"go.uber.org/zap"

	"kosan_backend/internals/configs"
	database "kosan_backend/internals/databases"
	"kosan_backend/internals/features/payments/gateway"
	paymentService "kosan_backend/internals/features/payments/payments/service"
	billingScheduler "kosan_backend/internals/features/payments/scheduler"
	authScheduler "kosan_backend/internals/features/users/auth/scheduler"
	authService "kosan_backend/internals/features/users/auth/service"
	helper "kosan_backend/internals/helpers"
	"kosan_backend/internals/helpers/storage"
	middlewares "kosan_backend/internals/middlewares"
	routes "kosan_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	logger, err := configs.NewLogger(configs.AppEnv, configs.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		BodyLimit:               6 * 1024 * 1024, // upload bukti/lampiran max 5MB + overhead multipart
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		// error yang lolos dari handler tetap pakai envelope standar
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.JsonAppError(c, err)
		},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// HTTP timeout guard (selaras dengan statement_timeout di DB)
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app, logger)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB(logger)
	database.TunePool()
	database.WarmUpQueries()
	if configs.GetEnvBool("AUTO_MIGRATE", false) {
		if err := database.Migrate(database.DB); err != nil {
			logger.Fatal("auto migrate", zap.Error(err))
		}
	}

	// 📦 file store (bukti bayar + lampiran keluhan)
	files, err := storage.NewFromEnv()
	if err != nil {
		logger.Fatal("storage init", zap.Error(err))
	}
	if ls, ok := files.(*storage.LocalStore); ok && strings.HasPrefix(ls.PublicBase, "/") {
		app.Static(ls.PublicBase, ls.Dir)
	}

	tokens := authService.NewTokenService(configs.JWTSecret, time.Duration(configs.GetEnvInt("JWT_TTL_HOURS", 24))*time.Hour)
	auth := authService.NewAuthService(database.DB, logger, tokens)
	payments := paymentService.NewPaymentService(database.DB, logger, configs.LoadBilling(), files)

	// ✅ MIDTRANS (opsional)
	var gw *gateway.Gateway
	if key := strings.TrimSpace(configs.GetEnv("MIDTRANS_SERVER_KEY")); key != "" {
		gw = gateway.New(key, configs.GetEnvBool("MIDTRANS_USE_PROD", false), payments, logger)
		logger.Info("midtrans gateway enabled")
	} else {
		logger.Info("midtrans gateway disabled (MIDTRANS_SERVER_KEY kosong)")
	}

	// ⏱ scheduler setelah DB siap
	cron := billingScheduler.New(logger)
	if err := billingScheduler.RegisterMonthlyBilling(cron, configs.GetEnv("PAYMENT_CRON", billingScheduler.DefaultBillingSpec), payments, logger); err != nil {
		logger.Fatal("register billing cron", zap.Error(err))
	}
	if err := authScheduler.RegisterBlacklistCleanup(cron, auth, logger); err != nil {
		logger.Fatal("register cleanup cron", zap.Error(err))
	}
	cron.Start()

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, routes.Deps{
		Log:      logger,
		Auth:     auth,
		Payments: payments,
		Gateway:  gw,
		Files:    files,
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: cron → http → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-cron.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
