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
	"github.com/rs/zerolog"

	"github.com/noah-isme/folio-go-api/internal/config"
	"github.com/noah-isme/folio-go-api/internal/database"
	"github.com/noah-isme/folio-go-api/internal/handler"
	"github.com/noah-isme/folio-go-api/internal/middleware"
	"github.com/noah-isme/folio-go-api/internal/models"
	"github.com/noah-isme/folio-go-api/internal/repository"
	"github.com/noah-isme/folio-go-api/internal/router"
	"github.com/noah-isme/folio-go-api/internal/service"
	"github.com/noah-isme/folio-go-api/internal/utils"
	cloud "github.com/noah-isme/folio-go-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Error responses carry the underlying cause outside production only.
	utils.ExposeErrorDetails(!cfg.IsProduction())

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.ProjectImage{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
		Timeout:   cfg.UploadTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	classifier := service.NewActionClassifier(service.DefaultActionRules())
	activityService := service.NewActivityService(activityRepo, userRepo, classifier, service.DedupeWindows{
		Default:       cfg.AuditDedupeWindow,
		AnalyticsView: cfg.AuditAnalyticsWindow,
		DashboardView: cfg.AuditDashboardWindow,
	}, cfg.AuditBodyLimit, logger)

	authService := service.NewAuthService(userRepo, validate, activityService, cfg.JWTSecret, cfg.TokenTTL, logger)
	profileService := service.NewProfileService(userRepo, validate, activityService, logger)
	projectService := service.NewProjectService(projectRepo, uploader, validate, activityService, cfg.UploadMaxMB, cfg.MaxProjectImages, logger)
	adminStudentService := service.NewAdminStudentService(userRepo, projectRepo, activityService, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, activityRepo, redisClient, cfg.AnalyticsCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB*cfg.MaxProjectImages + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		ProfileHandler:      handler.NewProfileHandler(profileService, logger),
		ProjectHandler:      handler.NewProjectHandler(projectService, logger),
		GalleryHandler:      handler.NewGalleryHandler(projectService, logger),
		AdminStudentHandler: handler.NewAdminStudentHandler(adminStudentService, logger),
		AdminProjectHandler: handler.NewAdminProjectHandler(projectService, logger),
		AnalyticsHandler:    handler.NewAnalyticsHandler(analyticsService, activityService, logger),
		ActivityFeedHandler: handler.NewActivityFeedHandler(activityService, logger),
		ActivityService:     activityService,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		Logger:              logger,
	})

	// Fail fast when a mutating route escapes the audit rules table. Auth
	// routes are exempt: signups and logins are recorded by the auth service
	// itself because the request carries no token yet.
	exempt := append([]string{"/auth/"}, cfg.AuditSkipPaths...)
	if err := classifier.Validate(router.AuditableRoutes(app), exempt); err != nil {
		log.Fatalf("audit classification incomplete: %v", err)
	}

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
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
