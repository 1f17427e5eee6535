package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/nearbuy/nearbuy-api/internal/auth"
	"github.com/nearbuy/nearbuy-api/internal/config"
	"github.com/nearbuy/nearbuy-api/internal/database"
	"github.com/nearbuy/nearbuy-api/internal/handler"
	"github.com/nearbuy/nearbuy-api/internal/middleware"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
	"github.com/nearbuy/nearbuy-api/internal/router"
	"github.com/nearbuy/nearbuy-api/internal/service"
	cloud "github.com/nearbuy/nearbuy-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Listing{},
		&models.Offer{},
		&models.MessageThread{},
		&models.Message{},
		&models.Rating{},
		&models.Notification{},
		&models.Report{},
		&models.AdminAction{},
		&models.Favorite{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, notification events disabled")
		} else {
			defer natsConn.Close()
		}
	}

	var storage service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	sessions := auth.NewSessionStore(redisClient, cfg.SessionTTL)

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	listingRepo := repository.NewListingRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	moderationRepo := repository.NewModerationRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, userRepo, redisClient, cfg.UnreadCountCacheTTL, natsConn, "", logger)
	authService := service.NewAuthService(userRepo, sessions, cfg.SessionSecret, validate, logger)
	listingService := service.NewListingService(listingRepo, categoryRepo, favoriteRepo, validate, logger)
	offerService := service.NewOfferService(offerRepo, listingRepo, notificationService, validate, logger)
	messagingService := service.NewMessagingService(threadRepo, listingRepo, userRepo, notificationService, validate, logger)
	ratingService := service.NewRatingService(ratingRepo, userRepo, listingRepo, notificationService, validate, logger)
	reportService := service.NewReportService(reportRepo, userRepo, listingRepo, notificationService, validate, logger)
	adminService := service.NewAdminService(userRepo, listingRepo, reportRepo, moderationRepo, statsRepo, sessions, notificationService, validate, logger)
	uploadService := service.NewUploadService(storage, cfg.UploadMaxSizeMB, logger)

	secureCookies := cfg.AppEnv != "development"

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, cfg.SessionTTL, secureCookies, logger),
		ListingHandler:      handler.NewListingHandler(listingService, logger),
		OfferHandler:        handler.NewOfferHandler(offerService, logger),
		MessagingHandler:    handler.NewMessagingHandler(messagingService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger),
		RatingHandler:       handler.NewRatingHandler(ratingService, logger),
		ReportHandler:       handler.NewReportHandler(reportService, logger),
		AdminHandler:        handler.NewAdminHandler(adminService, logger),
		UploadHandler:       handler.NewUploadHandler(uploadService, logger),
		SessionMiddleware:   middleware.SessionProtected(cfg.SessionSecret, sessions),
		AdminMiddleware:     middleware.AdminOnly(userRepo),
	})

	retentionCtx, stopRetention := context.WithCancel(context.Background())
	defer stopRetention()
	go runNotificationRetention(retentionCtx, notificationService, cfg.NotificationRetention, logger)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// runNotificationRetention purges read notifications past the retention window
// once a day.
func runNotificationRetention(ctx context.Context, notifications service.NotificationService, retentionDays int, logger zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := notifications.DeleteOld(ctx, retentionDays)
			if err != nil {
				logger.Error().Err(err).Msg("notification retention sweep failed")
				continue
			}
			logger.Info().Int64("deleted", deleted).Msg("notification retention sweep complete")
		}
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
