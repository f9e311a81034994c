package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AhmedTrying/malaysiasafd/docs" // This is for Swagger
	"github.com/AhmedTrying/malaysiasafd/internal/auth"
	"github.com/AhmedTrying/malaysiasafd/internal/classifier"
	"github.com/AhmedTrying/malaysiasafd/internal/config"
	"github.com/AhmedTrying/malaysiasafd/internal/database"
	"github.com/AhmedTrying/malaysiasafd/internal/handlers"
	"github.com/AhmedTrying/malaysiasafd/internal/logger"
	"github.com/AhmedTrying/malaysiasafd/internal/middleware"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/internal/service"
	"github.com/AhmedTrying/malaysiasafd/internal/vault"
	"github.com/AhmedTrying/malaysiasafd/migrations"
)

// @title Malaysia SAFD API
// @version 1.0
// @description Backend API for the Malaysia scam and fraud reporting dashboard

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
		"case_id_strategy", cfg.CaseID.Strategy,
		"cache_backend", cfg.Cache.Backend,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	var migrationFS fs.FS = migrations.FS
	if cfg.App.MigrationsPath != "" {
		migrationFS = os.DirFS(cfg.App.MigrationsPath)
	}
	ctx, cancel := getContext(2 * time.Minute)
	err = database.NewMigrationExecutor(db.DB).RunMigrations(ctx, migrationFS)
	cancel()
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	lookupRepo := repository.NewLookupRepository(db.DB)
	pendingRepo := repository.NewPendingReportRepository(db.DB)
	fraudRepo := repository.NewFraudReportRepository(db.DB)
	feedbackRepo := repository.NewFeedbackRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)

	// Optional infrastructure
	pendingIDs, canonicalIDs := newAllocators(cfg, db.DB, pendingRepo, fraudRepo)
	statsCache, closeCache := newStatsCache(cfg)
	defer closeCache()

	var (
		sealer      vault.Sealer = vault.PlainSealer{}
		vaultHealth handlers.VaultHealth
	)
	if cfg.Vault.Enabled {
		slog.Info("Vault is enabled - review notes will be sealed")
		ctx, cancel := getContext(30 * time.Second)
		vaultClient, err := vault.NewClient(ctx, &cfg.Vault)
		cancel()
		if err != nil {
			slog.Error("Failed to initialize Vault client", "error", err)
			os.Exit(1)
		}
		sealer = vaultClient
		vaultHealth = vaultClient
	} else {
		slog.Warn("Vault is disabled - review notes are stored in plain text")
	}

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	authorizer := service.RoleAuthorizer{}
	auditSvc := service.NewAuditService(auditRepo)
	lookupSvc := service.NewLookupService(lookupRepo, auditSvc)
	userSvc := service.NewUserService(userRepo, authService, auditSvc)
	authSvc := service.NewAuthService(userRepo, userSvc, authService, cfg.App.EnableRegistration)
	submissionSvc := service.NewSubmissionService(
		classifier.NewClient(&cfg.Classifier), lookupSvc, pendingRepo, pendingIDs, cfg.CaseID.MaxAttempts, auditSvc)
	reviewSvc := service.NewReviewService(
		pendingRepo, authorizer, canonicalIDs, sealer, statsCache, auditSvc, cfg.CaseID.MaxAttempts)
	reportSvc := service.NewReportService(
		fraudRepo, authorizer, canonicalIDs, statsCache, auditSvc, cfg.CaseID.MaxAttempts)
	statsSvc := service.NewStatsService(fraudRepo, statsCache)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, authorizer)

	ctx, cancel = getContext(30 * time.Second)
	err = authSvc.EnsureAdmin(ctx, cfg.App.AdminUsername, cfg.App.AdminPassword, cfg.App.AdminEmail)
	cancel()
	if err != nil {
		slog.Error("Failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, userRepo)
	rbacMw := middleware.NewRBACMiddleware(authorizer)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	defer rateLimiter.Stop()
	auditMw := middleware.NewAuditMiddleware(auditSvc)

	// Setup router
	mux := http.NewServeMux()
	routes := &handlers.Routes{
		Auth:      handlers.NewAuthHandler(authSvc, userSvc),
		Users:     handlers.NewUserHandler(userSvc),
		Audit:     handlers.NewAuditHandler(auditSvc),
		Lookup:    handlers.NewLookupHandler(lookupSvc),
		Reports:   handlers.NewReportHandler(submissionSvc, reportSvc, statsSvc),
		Review:    handlers.NewReviewHandler(reviewSvc),
		Dashboard: handlers.NewDashboardHandler(statsSvc),
		Feedback:  handlers.NewFeedbackHandler(feedbackSvc),
		Health:    handlers.NewHealthHandler(db, vaultHealth, cfg.App.Version),
		AuthMw:    authMw,
		RBACMw:    rbacMw,
		AuditMw:   auditMw,
	}
	routes.Register(mux)

	// Swagger documentation
	mux.Handle(middleware.SwaggerPath, httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(cfg.App.Env == "production")(
			corsMw.Handler(
				rateLimiter.Limit(
					middleware.RequestInfo(mux),
				),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server stopped")
}
