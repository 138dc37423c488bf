// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"woodeoo-auth/cmd"
	"woodeoo-auth/internal/data/repository"
	"woodeoo-auth/internal/notify"
	"woodeoo-auth/internal/wire"
	"woodeoo-auth/pkg/database"
	"woodeoo-auth/pkg/utils"

	"go.uber.org/zap"
)

const sessionCleanupInterval = time.Hour

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Migrate schema
	if config.Database.MigrateOnStart {
		if err := database.Migrate(config.Database); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)
	go cleanSessions(ctx, repos.Session, logger)

	// Wire all dependencies
	notifier := notify.NewFromConfig(config.Email, config.SMS, logger)
	app, err := wire.Wiring(repos, config, notifier, logger)
	if err != nil {
		logger.Fatal("Failed to wire application", zap.Error(err))
	}
	defer app.Close()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}

func cleanSessions(ctx context.Context, sessions repository.SessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.CleanExpiredSessions(ctx); err != nil {
				logger.Warn("Session cleanup failed", zap.Error(err))
			}
		}
	}
}
