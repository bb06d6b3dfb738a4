package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/apps/signaling"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/retention"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Event fan-out (optional)
	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			slog.Error("nats connection failed", "error", err)
			os.Exit(1)
		}
		publisher = natsPublisher
	}

	// Plugins
	registry := apps.NewRegistry()
	if err := registry.Register(signaling.New(db, publisher)); err != nil {
		slog.Error("plugin registration failed", "error", err)
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(db, registry.Models()...); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrated", "plugins", len(registry.All()))
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(os.Stdout, cfg.LogLevel),
		dbLogHandler,
	)))

	// Services
	userService := services.NewUserService(db)
	messageService := services.NewMessageService(db, publisher)

	// Retention sweeper
	sweeper := retention.NewSweeper(cfg.SweepInterval, retention.SystemLogTask(db, cfg.LogRetention))
	if cfg.PurgeExpiredMessages {
		sweeper.Add(retention.Task{Name: "expired_messages", Run: messageService.PurgeExpired})
	}
	sweeper.Add(registry.RetentionTasks(cfg)...)
	sweeper.Start()

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	userHandler := handlers.NewUserHandler(userService)
	messageHandler := handlers.NewMessageHandler(messageService)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, userService, healthHandler, userHandler, messageHandler, registry)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	sweeper.Stop()
	publisher.Close()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
