package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/session-system/config"
	"github.com/Dosada05/session-system/db"
	"github.com/Dosada05/session-system/handlers"
	"github.com/Dosada05/session-system/live"
	"github.com/Dosada05/session-system/models"
	"github.com/Dosada05/session-system/repositories"
	api "github.com/Dosada05/session-system/routes"
	"github.com/Dosada05/session-system/services"
	"github.com/Dosada05/session-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Хранилище файлов (Cloudflare R2). Без учётных данных загрузка
	// обложек отключена, остальное API работает.
	var uploader storage.FileUploader
	if cfg.HasR2() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 credentials not set, file uploads disabled")
	}

	// WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	membershipRepo := repositories.NewPostgresMembershipRepository(dbConn)
	requestRepo := repositories.NewPostgresJoinRequestRepository(dbConn)
	externalMemberRepo := repositories.NewPostgresExternalMemberRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	attendeeRepo := repositories.NewPostgresExternalAttendeeRepository(dbConn)
	presenceRepo := repositories.NewPostgresPresenceRepository(dbConn)
	usageRepo := repositories.NewPostgresUsageRepository(dbConn)
	auditRepo := repositories.NewPostgresAuditRepository(dbConn)
	logger.Info("repositories initialized")

	// Сервисы
	clock := services.NewRealClock()
	planResolver := services.NewRolePlanResolver(models.DefaultPlanLimits())
	quotaService := services.NewQuotaService(usageRepo, clock, logger)
	auditService := services.NewAuditService(auditRepo, clock, logger)
	authService := services.NewAuthService(userRepo)
	sportService := services.NewSportService(sportRepo, uploader)

	sessionService := services.NewSessionService(
		dbConn,
		sessionRepo,
		participantRepo,
		teamRepo,
		attendeeRepo,
		membershipRepo,
		groupRepo,
		userRepo,
		planResolver,
		quotaService,
		auditService,
		wsHub,
		clock,
		logger,
	)
	groupService := services.NewGroupService(
		dbConn,
		groupRepo,
		membershipRepo,
		requestRepo,
		externalMemberRepo,
		sportRepo,
		userRepo,
		planResolver,
		quotaService,
		auditService,
		uploader,
		services.GroupCreationPolicy(cfg.GroupCreationPolicy),
		logger,
	)
	attendanceService := services.NewAttendanceService(
		sessionRepo,
		participantRepo,
		attendeeRepo,
		presenceRepo,
		membershipRepo,
		userRepo,
	)
	logger.Info("services initialized")

	// HTTP-обработчики
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	sportHandler := handlers.NewSportHandler(sportService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	groupHandler := handlers.NewGroupHandler(groupService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	usageHandler := handlers.NewUsageHandler(quotaService, planResolver, userRepo)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Маршрутизатор
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		sportHandler,
		sessionHandler,
		groupHandler,
		attendanceHandler,
		usageHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// HTTP-сервер
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
