package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/khanaghar/khanaghar-backend/config"
	"github.com/khanaghar/khanaghar-backend/internal/app/controller"
	"github.com/khanaghar/khanaghar-backend/internal/app/repository"
	"github.com/khanaghar/khanaghar-backend/internal/app/service"
	"github.com/khanaghar/khanaghar-backend/internal/db"
	"github.com/khanaghar/khanaghar-backend/internal/middleware"
	"github.com/khanaghar/khanaghar-backend/internal/router"
	"github.com/khanaghar/khanaghar-backend/internal/scheduler"
	"github.com/khanaghar/khanaghar-backend/internal/storage"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
	"github.com/khanaghar/khanaghar-backend/pkg/mailer"
	"github.com/khanaghar/khanaghar-backend/pkg/redis"
	"github.com/khanaghar/khanaghar-backend/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // use "json" in production
		EnableColor: true,
	})

	logger.Info("Starting KhanaGhar Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to connect to Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	otpRepo := repository.NewOtpRepository(db.GetDB())
	docRepo := repository.NewDocumentRepository(db.GetDB())
	mealRepo := repository.NewMealRepository(db.GetDB())

	// Collaborators
	notifier := mailer.New(&cfg.SMTP)
	emailVerifier := util.NewHunterEmailVerifier(cfg.EmailVrfy.APIKey, cfg.EmailVrfy.BaseURL)
	blacklist := redis.NewTokenBlacklist()
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Services
	authService := service.NewAuthService(
		userRepo,
		otpRepo,
		notifier,
		emailVerifier,
		blacklist,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		cfg.Otp.SignupExpiry,
		cfg.Otp.AdminSignInExpiry,
	)
	documentService := service.NewDocumentService(docRepo, userRepo, notifier)
	statusService := service.NewAccountStatusService(userRepo, notifier)
	mealService := service.NewMealService(mealRepo, userRepo)
	reportService := service.NewReportService(userRepo)

	// Controllers
	authController := controller.NewAuthController(authService)
	documentController := controller.NewDocumentController(documentService)
	adminController := controller.NewAdminController(statusService, reportService)
	mealController := controller.NewMealController(mealService)
	uploadController := controller.NewUploadController(s3Storage)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, blacklist)

	otpPurge := scheduler.NewOtpPurgeScheduler(otpRepo)
	if err := otpPurge.Start(); err != nil {
		logger.Fatal("Failed to start OTP purge scheduler", err)
	}
	defer otpPurge.Stop()

	r := router.NewRouter(
		authController,
		documentController,
		adminController,
		mealController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped")
}
