package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"brn-watcher/agent/database"
	"brn-watcher/agent/internal/bot"
	"brn-watcher/agent/internal/handlers"
	"brn-watcher/agent/internal/services"
	"brn-watcher/shared/config"
	"brn-watcher/shared/env"
	"brn-watcher/shared/logger"
	"brn-watcher/shared/notifications"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Fatalf("FATAL: Failed to load environment variables: %v", err)
	}

	cfg, err := config.LoadConfig("agent/config.yaml")
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	config.SetGlobalConfig(cfg)

	log.Println("INFO: Initializing Telegram notifications...")
	if err := notifications.InitTelegramBot(); err != nil {
		log.Fatalf("FATAL: Failed to initialize Telegram bot: %v", err)
	}

	enableTelegramLogging := env.AdminChatID != 0
	appLogger, err := logger.NewLogger(logger.Config{
		Level:          cfg.Logging.Level,
		Environment:    cfg.App.Environment,
		EnableTelegram: enableTelegramLogging,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}

	dsn := env.DatabaseURL
	if dsn == "" {
		if env.PGHost == "" || env.PGPort == "" || env.PGUser == "" || env.PGDatabase == "" {
			appLogger.Fatal("Essential database connection variables are missing (DATABASE_URL or PG*)")
		}
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			env.PGHost, env.PGUser, env.PGPassword, env.PGDatabase, env.PGPort)
		appLogger.Info("Constructed database DSN from individual variables (password hidden)")
	}

	appLogger.Info("Connecting to database...")
	db, err := database.ConnectToDatabase(dsn)
	if err != nil {
		appLogger.Fatal("Database connection failed", "error", err)
	}

	appLogger.Info("Running database migrations...")
	database.MigrateDatabase(db, dsn)

	store := database.NewGormStore(db)
	explorer := services.NewExplorerClient(env.ExplorerAPIURL, cfg.Explorer, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker := services.NewAutoChecker(store, explorer, notifications.SendUserMessage, cfg.AutoCheck, appLogger)
	go checker.Run(ctx)
	appLogger.Info("Auto-check scheduler started in background.")

	tgBot := bot.New(notifications.GetBotInstance(), store, explorer, cfg.Bot, appLogger)
	go tgBot.StartListening(ctx)
	appLogger.Info("Telegram listener started in background.")

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	router.Use(cors.New(corsConfig))

	handlers.RegisterRoutes(router, appLogger)
	handlers.RegisterAPIRoutes(router, appLogger, db, checker)

	go func() {
		serverAddr := ":" + env.Port
		appLogger.Info("Starting web server", "address", serverAddr)
		if err := router.Run(serverAddr); err != nil {
			appLogger.Fatal("Could not start web server.", "error", err)
		}
	}()

	appLogger.Info("Application startup complete. Waiting for events...")
	<-ctx.Done()
	appLogger.Info("Shutdown signal received, exiting.")
}
