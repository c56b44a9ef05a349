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

	"github.com/noah-isme/projecthub-api/internal/config"
	"github.com/noah-isme/projecthub-api/internal/database"
	"github.com/noah-isme/projecthub-api/internal/handler"
	"github.com/noah-isme/projecthub-api/internal/middleware"
	"github.com/noah-isme/projecthub-api/internal/repository"
	"github.com/noah-isme/projecthub-api/internal/router"
	"github.com/noah-isme/projecthub-api/internal/service"
	"github.com/noah-isme/projecthub-api/internal/utils"
	cloud "github.com/noah-isme/projecthub-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis disabled, overview cache off")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	adminStudentRepo := repository.NewAdminStudentRepository(db)
	overviewRepo := repository.NewAdminOverviewRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)

	projectOptions := []service.ProjectServiceOption{
		service.WithProjectEvents(service.NewProjectEventPublisher(natsConn, cfg.EventChannel, logger)),
	}
	storageCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if storageCfg.Enabled() {
		store, err := cloud.New(storageCfg, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		projectOptions = append(projectOptions, service.WithProposalStorage(store, 0))
	} else {
		logger.Warn().Msg("cloudinary credentials missing, proposal uploads disabled")
	}

	projectService := service.NewProjectService(projectRepo, userRepo, validate, activityService, logger, projectOptions...)
	adminProjectService, err := service.NewAdminProjectService(projectRepo, validate, activityService, logger)
	if err != nil {
		log.Fatalf("failed to build admin project service: %v", err)
	}
	adminStudentService := service.NewAdminStudentService(adminStudentRepo, projectRepo, validate, activityService, logger)
	overviewService := service.NewAdminOverviewService(overviewRepo, redisClient, cfg.OverviewCacheTTL, logger)
	supervisorService := service.NewSupervisorService(userRepo, logger)
	authService := service.NewAuthService(userRepo, validate, service.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshTTL:    cfg.JWTRefreshTTL,
	}, logger)
	seedService := service.NewSeedService(userRepo, validate, activityService, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: utils.ErrorHandler,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AppEnv != "production",
		StackTraces:  cfg.AppEnv != "production",
	})
	var limiterStorage fiber.Storage
	if store := database.NewRedisStorage(redisClient, "projecthub:limiter:"); store != nil {
		limiterStorage = store
	}

	router.Register(app, cfg, router.Dependencies{
		AuthHandler:          handler.NewAuthHandler(authService, logger),
		ProjectHandler:       handler.NewProjectHandler(projectService, logger),
		SupervisorHandler:    handler.NewSupervisorHandler(supervisorService, logger),
		AdminProjectHandler:  handler.NewAdminProjectHandler(adminProjectService, logger),
		AdminStudentHandler:  handler.NewAdminStudentHandler(adminStudentService, logger),
		AdminOverviewHandler: handler.NewAdminOverviewHandler(overviewService, logger),
		AdminActivityHandler: handler.NewAdminActivityHandler(activityService, logger),
		SeedHandler:          handler.NewSeedHandler(seedService, logger),
		DatabasePing:         database.Ping(db),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
		RateLimitStorage:     limiterStorage,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
