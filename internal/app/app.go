package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"marketvue_backend/database"
	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/config"
	"marketvue_backend/internal/email"
	"marketvue_backend/internal/handlers"
	"marketvue_backend/internal/imageprocessor"
	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/metrics"
	"marketvue_backend/internal/middleware"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/repositories/memory"
	"marketvue_backend/internal/routes"
	"marketvue_backend/internal/services"
	"marketvue_backend/internal/storage"
	"marketvue_backend/internal/validator"
	"marketvue_backend/internal/workers"
	"marketvue_backend/pkg/apperrors"
)

const shutdownTimeout = 5 * time.Second

// Deps - все, что выбирается один раз при старте процесса.
// Тесты собирают роутер с in-memory хранилищем и MockProvider.
type Deps struct {
	Config  *config.Config
	Store   repositories.Store
	Storage storage.Storage
	Email   email.Provider
	Metrics *metrics.Metrics
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", "error", err)
	}
	defer closeStore()

	if err := seedFirstAdmin(ctx, store, cfg); err != nil {
		// Если не удалось создать админа - не запускаем сервер
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	fileStorage, err := storage.NewStorage(storage.ConfigFrom(cfg))
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	emailProvider, err := email.NewProvider(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize email provider", "error", err)
	}
	defer emailProvider.Close()

	m := metrics.New()
	ginRouter, serviceContainer := SetupRouter(Deps{
		Config:  cfg,
		Store:   store,
		Storage: fileStorage,
		Email:   emailProvider,
		Metrics: m,
	})

	tokenWorker := workers.NewTokenWorker(store, m, cfg.Workers.TokenCleanupInterval)
	tokenWorker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", address, "store", store.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.Error("Server startup error", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	tokenWorker.Wait()
	serviceContainer.Notifier.Wait()
	logger.Info("Server stopped")
}

// SetupRouter собирает сервисы, хэндлеры и gin.Engine.
func SetupRouter(d Deps) (*gin.Engine, *services.ServiceContainer) {
	cfg := d.Config

	// 1. Инициализируем сервисы
	serviceContainer := services.NewServiceContainer(services.Deps{
		Config:    cfg,
		Store:     d.Store,
		Tokens:    auth.NewTokenManager(cfg.JWT.Secret, cfg.AccessTTL()),
		Storage:   d.Storage,
		Processor: imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.ThumbnailWidth),
		Email:     d.Email,
		Metrics:   d.Metrics,
	})

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(serviceContainer, d.Store, cfg)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(cfg, d.Metrics)

	guards := handlers.Guards{
		Auth:     middleware.AuthMiddleware(serviceContainer.Auth),
		Optional: middleware.OptionalAuth(serviceContainer.Auth),
	}
	routes.RegisterRoutes(ginRouter, appHandlers, guards)

	sys := routes.SystemRoutes{
		Health:  appHandlers.HealthHandler,
		Swagger: true,
	}
	if d.Metrics != nil {
		sys.Metrics = d.Metrics.Handler()
	}
	if local, ok := d.Storage.(*storage.LocalStorage); ok {
		sys.UploadsURL = localUploadsPath(local.BaseURL())
		sys.UploadsDir = local.BasePath()
	}
	routes.SetupPublicRoutes(ginRouter, sys)

	return ginRouter, serviceContainer
}

func initializeHandlers(svc *services.ServiceContainer, store repositories.Store, cfg *config.Config) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, svc.Auth),
		ProfileHandler: handlers.NewProfileHandler(baseHandler, svc.Users),
		UserHandler:    handlers.NewUserHandler(baseHandler, svc.Users, svc.Moderation),
		AdminHandler:   handlers.NewAdminHandler(baseHandler, svc.Users, svc.Posts, svc.Moderation),
		PostHandler:    handlers.NewPostHandler(baseHandler, svc.Posts, svc.Moderation, cfg.Upload.MaxSize),
		ReviewHandler:  handlers.NewReviewHandler(baseHandler, svc.Reviews),
		CatalogHandler: handlers.NewCatalogHandler(baseHandler, svc.Catalog),
		SupportHandler: handlers.NewSupportHandler(baseHandler, svc.Support),
		HealthHandler:  handlers.NewHealthHandler(store),
	}
}

func initializeGinRouter(cfg *config.Config, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))
	router.MaxMultipartMemory = 8 << 20
	return router
}

// localUploadsPath - путь для раздачи статики из base_url ("/uploads" или "http://host/uploads")
func localUploadsPath(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	if u, err := url.Parse(baseURL); err == nil && u.Path != "" {
		return strings.TrimRight(u.Path, "/")
	}
	return ""
}

// openStore выбирает хранилище один раз на весь процесс.
// При недоступной БД и database.fallback_to_memory работаем в памяти.
func openStore(ctx context.Context, cfg *config.Config) (repositories.Store, func(), error) {
	noop := func() {}

	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory store: data is lost on restart")
		return memory.NewStore(), noop, nil
	}

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		if cfg.Database.FallbackToMemory {
			logger.Warn("Database unavailable, falling back to in-memory store", "error", err)
			return memory.NewStore(), noop, nil
		}
		return nil, noop, err
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, noop, err
	}

	closeFn := func() {
		if err := database.Close(db); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}
	return repositories.NewGormStore(db), closeFn, nil
}

// seedFirstAdmin создает первого SUPERADMIN из FIRST_ADMIN_EMAIL/FIRST_ADMIN_PASSWORD.
func seedFirstAdmin(ctx context.Context, store repositories.Store, cfg *config.Config) error {
	adminEmail := strings.ToLower(strings.TrimSpace(cfg.Auth.FirstAdminEmail))
	adminPassword := cfg.Auth.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	existing, err := store.Users().FindByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail, "role", existing.Role)
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	if err := auth.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("first admin password: %w", err)
	}
	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Name:         cfg.Auth.FirstAdminName,
		Email:        adminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleSuperAdmin,
		Status:       models.UserStatusApproved,
	}
	if err := store.Users().Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Successfully created first admin user", "email", adminEmail)
	return nil
}
