package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/foxxcyber/compwatch/internal/config"
	"github.com/foxxcyber/compwatch/internal/database"
	"github.com/foxxcyber/compwatch/internal/handlers"
	"github.com/foxxcyber/compwatch/internal/middleware"
	"github.com/foxxcyber/compwatch/internal/services"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		ReadTimeout:  30 * time.Second,
		// Menu fetches scrape synchronously
		WriteTimeout: cfg.MenuFetchTimeout + 30*time.Second,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	ctx := context.Background()
	var opts []handlers.Option

	if cfg.GoogleMapsAPIKey != "" {
		opts = append(opts, handlers.WithPlaces(services.NewGoogleMapsService(cfg.GoogleMapsAPIKey)))
	} else {
		logger.Warn("GOOGLE_API_KEY_MAPS not set, competitor search and geocoding disabled")
	}

	if cfg.StorageConfigured() {
		archive, err := services.NewSnapshotArchive(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL)
		if err != nil {
			logger.Warn("snapshot archive disabled", zap.Error(err))
		} else if err := archive.EnsureBucket(ctx); err != nil {
			logger.Warn("snapshot bucket unavailable, archive disabled", zap.Error(err))
		} else {
			opts = append(opts, handlers.WithArchive(archive))
			logger.Info("menu snapshots archived", zap.String("bucket", cfg.S3Bucket))
		}
	}

	scraperOpts := services.ScraperOptions{
		Timeout:         cfg.MenuFetchTimeout,
		RatePerSecond:   cfg.ScrapeRatePerSecond,
		DefaultCurrency: cfg.DefaultCurrency,
		Logger:          logger.Named("scraper"),
	}
	if cfg.GeminiAPIKey != "" {
		extractor, err := services.NewGeminiMenuExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.DefaultCurrency)
		if err != nil {
			logger.Warn("gemini extractor disabled", zap.Error(err))
		} else {
			scraperOpts.Extractor = extractor
		}
	}
	if ocr, err := services.NewOCRService(); err != nil {
		logger.Warn("image menus disabled", zap.Error(err))
	} else {
		defer ocr.Close()
		scraperOpts.OCR = ocr
	}
	opts = append(opts, handlers.WithScraper(services.NewMenuScraper(scraperOpts)))

	h := handlers.New(db, cfg, logger, opts...)
	h.SetupRoutes(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		zc := zap.NewProductionConfig()
		if lvl, perr := zap.ParseAtomicLevel(cfg.LogLevel); perr == nil {
			zc.Level = lvl
		}
		logger, err = zc.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
