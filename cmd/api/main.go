package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/tutor_connect/configs"
	"github.com/anjiri1684/tutor_connect/database"
	"github.com/anjiri1684/tutor_connect/handlers"
	"github.com/anjiri1684/tutor_connect/jobs"
	"github.com/anjiri1684/tutor_connect/notifications"
	"github.com/anjiri1684/tutor_connect/routes"
	"github.com/anjiri1684/tutor_connect/services"
	"github.com/anjiri1684/tutor_connect/store"
	"github.com/anjiri1684/tutor_connect/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

func openBackend(ctx context.Context, cfg *config.AppConfig) (store.Backend, func()) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := database.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("🔥 Failed to connect to database")
		}
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("🔥 Failed to migrate database")
		}
		return store.NewGormBackend(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
	case "redis":
		client, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("🔥 Failed to connect to redis")
		}
		return store.NewRedisBackend(client), func() { client.Close() }
	case "memory":
		log.Warn().Msg("⚠️ Using in-memory store, data is lost on restart")
		return store.NewMemoryBackend(), func() {}
	default:
		log.Fatal().Str("store_backend", cfg.StoreBackend).Msg("🔥 Unknown STORE_BACKEND")
		return nil, nil
	}
}

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg.LogLevel)
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("🔥 JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend := openBackend(ctx, cfg)
	defer closeBackend()
	records := services.NewRecords(backend)

	broker := services.NewBroker()
	hub := websocket.NewHub()
	go hub.Run(ctx)
	broker.Subscribe(hub.Publish)

	h := handlers.New(cfg, records, broker, hub)

	mailer := notifications.NewMailerFromEnv()
	broker.Subscribe(notifications.NewConnectionNotifier(mailer, h.Connections).Handle)

	if cfg.SeedDemoData {
		if err := database.SeedDirectory(ctx, records, h.Directory); err != nil {
			log.Fatal().Err(err).Msg("🔥 Failed to seed demo users")
		}
	}

	c := cron.New(cron.WithLocation(cfg.Location()))
	reminder := &jobs.PendingRequestReminder{
		Connections: h.Connections,
		Mailer:      mailer,
		After:       cfg.PendingReminderAfter,
	}
	if err := jobs.Schedule(c, cfg.ReminderSchedule, reminder); err != nil {
		log.Fatal().Err(err).Msg("🔥 Failed to schedule reminder job")
	}
	c.Start()
	defer c.Stop()

	app := fiber.New(fiber.Config{
		AppName:       "Tutor Connect",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("[ERROR]")
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   cfg.TimeZone,
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Tutor Connect API",
		})
	})

	routes.AuthRoutes(app, h)
	routes.ProfileRoutes(app, h)
	routes.TutorRoutes(app, h)
	routes.MessagingRoutes(app, h)
	routes.ConnectionRoutes(app, h)
	routes.UploadRoutes(app, h)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"backend": cfg.StoreBackend,
		})
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("✅ Server is running")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("🔥 Server failed to start")
	}
}
