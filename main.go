package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"referral-service/config"
	"referral-service/handlers"
	"referral-service/logger"
	"referral-service/models"
	"referral-service/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logger.Init("referral-service", cfg.Debug)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(
			&models.User{},
			&models.Profile{},
			&models.Referral{},
			&models.ReferralPoints{},
		); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	registrationService := services.NewRegistrationService(db)
	referralService := services.NewReferralService(db)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handlers.SetupReferralRoutes(app, registrationService, referralService, []byte(cfg.JWTSecret))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logger.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-ctx.Done()
	if err := app.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	logger.Info().Msg("server stopped")
}
