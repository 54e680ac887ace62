package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/auth"
	"github.com/softdesk/softdesk-api/pkg/config"
	"github.com/softdesk/softdesk-api/pkg/database"
	"github.com/softdesk/softdesk-api/pkg/handlers"
	"github.com/softdesk/softdesk-api/pkg/logging"
	"github.com/softdesk/softdesk-api/pkg/middleware"
	"github.com/softdesk/softdesk-api/pkg/repositories"
	"github.com/softdesk/softdesk-api/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.DSN())),
	)

	ctx := context.Background()

	// Migrations run over database/sql; the pool below is pgx-native.
	migrationDB, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.DSN(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	issueRepo := repositories.NewIssueRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	// Services
	userService := services.NewUserService(userRepo, logger)
	projectService := services.NewProjectService(projectRepo, userRepo)
	issueService := services.NewIssueService(issueRepo, projectRepo)
	commentService := services.NewCommentService(commentRepo, issueRepo, projectRepo)

	if err := userService.EnsureBootstrapUser(ctx, &cfg.Bootstrap); err != nil {
		logger.Fatal("Failed to provision bootstrap user", zap.Error(err))
	}

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authMiddleware := auth.NewMiddleware(tokenService, userService, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewTokenHandler(userService, tokenService, logger).RegisterRoutes(mux)
	handlers.NewUsersHandler(userService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewProjectsHandler(projectService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewIssuesHandler(issueService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewCommentsHandler(commentService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting softdesk-api",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
	)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
