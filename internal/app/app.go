package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"abacus_backend/database"
	"abacus_backend/internal/config"
	"abacus_backend/internal/events"
	"abacus_backend/internal/handlers"
	"abacus_backend/internal/logger"
	"abacus_backend/internal/middleware"
	"abacus_backend/internal/pkg/email"
	"abacus_backend/internal/repositories"
	"abacus_backend/internal/routes"
	"abacus_backend/internal/services"
	"abacus_backend/internal/storage"
	"abacus_backend/internal/validator"
	"abacus_backend/ws"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("failed to get sql.DB", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	logger.Info("database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("migration failed", "error", err)
	}

	if err := SeedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("failed to seed first admin", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services and handlers onto a gin engine.
// It is separate from Run so tests can build a router against their own
// database.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	files, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	logger.Info("storage initialized", "type", cfg.Storage.Type)

	wsManager := ws.NewManager()
	go wsManager.Run()

	var publisher events.Publisher
	switch cfg.Events.Backend {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Events.RedisAddr})
		publisher = events.NewRedisPublisher(redisClient, cfg.Events.RedisChannel)
		subscriber := events.NewSubscriber(redisClient, cfg.Events.RedisChannel, wsManager)
		go func() {
			if err := subscriber.Run(context.Background()); err != nil && err != context.Canceled {
				logger.Error("event subscriber stopped", "error", err)
			}
		}()
		logger.Info("events backend: redis", "addr", cfg.Events.RedisAddr, "channel", cfg.Events.RedisChannel)
	default:
		publisher = events.NewHubPublisher(wsManager)
		logger.Info("events backend: in-process hub")
	}

	var emailSender email.Sender
	if cfg.Email.SMTPHost != "" {
		emailSender, err = email.NewSMTPSender(email.Config{
			SMTPHost:    cfg.Email.SMTPHost,
			SMTPPort:    cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUsername,
			Password:    cfg.Email.SMTPPassword,
			FromEmail:   cfg.Email.FromEmail,
			FromName:    cfg.Email.FromName,
			FrontendURL: cfg.Email.FrontendURL,
		})
		if err != nil {
			logger.Fatal("failed to initialize email sender", "error", err)
		}
	} else {
		logger.Warn("smtp not configured, outbound mail is mocked")
		emailSender = email.NewMockSender()
	}

	userRepo := repositories.NewUserRepository(gormDB)
	brandRepo := repositories.NewBrandRepository(gormDB)
	calendarRepo := repositories.NewCalendarRepository(gormDB)
	taskRepo := repositories.NewTaskRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	activityRepo := repositories.NewActivityRepository(gormDB)

	activitySvc := services.NewActivityService(activityRepo)
	notificationSvc := services.NewNotificationService(notificationRepo, publisher)
	authSvc := services.NewAuthService(userRepo, activitySvc, emailSender, services.AuthConfig{
		JWTSecret: cfg.JWT.Secret,
		TokenTTL:  time.Duration(cfg.JWT.TTL) * time.Minute,
	})
	userSvc := services.NewUserService(userRepo, activitySvc, emailSender)
	brandSvc := services.NewBrandService(brandRepo, userRepo, activitySvc)
	calendarSvc := services.NewCalendarService(calendarRepo, brandRepo, taskRepo, activitySvc)
	taskSvc := services.NewTaskService(taskRepo, brandRepo, userRepo, notificationSvc, activitySvc, files)

	base := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		Auth:         handlers.NewAuthHandler(base, authSvc),
		User:         handlers.NewUserHandler(base, userSvc),
		Brand:        handlers.NewBrandHandler(base, brandSvc, calendarSvc),
		Calendar:     handlers.NewCalendarHandler(base, calendarSvc),
		Task:         handlers.NewTaskHandler(base, taskSvc, cfg.Upload.MaxSize, cfg.Upload.AllowedTypes),
		Notification: handlers.NewNotificationHandler(base, notificationSvc),
		Activity:     handlers.NewActivityHandler(base, activitySvc),
		WS:           handlers.NewWSHandler(base, wsManager, cfg.JWT.Secret),
	}

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestIDMiddleware())
	ginRouter.Use(middleware.LoggingMiddleware())
	ginRouter.Use(middleware.CORSMiddleware())

	if cfg.Storage.Type == "local" {
		ginRouter.Static("/files", cfg.Storage.BasePath)
	}

	authMW := middleware.AuthMiddleware(cfg.JWT.Secret)
	routes.RegisterRoutes(ginRouter, appHandlers, authMW)

	return ginRouter
}
