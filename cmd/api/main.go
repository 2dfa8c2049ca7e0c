package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/guildhall/guildhall-backend/internal/config"
	"github.com/guildhall/guildhall-backend/internal/handler"
	"github.com/guildhall/guildhall-backend/internal/middleware"
	"github.com/guildhall/guildhall-backend/internal/models"
	"github.com/guildhall/guildhall-backend/internal/repository"
	"github.com/guildhall/guildhall-backend/internal/service"
	"github.com/guildhall/guildhall-backend/pkg/database"
	"github.com/guildhall/guildhall-backend/pkg/email"
	"github.com/guildhall/guildhall-backend/pkg/payment"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg := config.LoadConfig()

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db := database.NewDatabase(cfg.DatabaseURL)
	if err := database.RunMigrations(db); err != nil {
		zlog.Fatal("database migration failed", zap.Error(err))
	}

	location, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		zlog.Fatal("invalid reminder timezone",
			zap.String("timezone", cfg.Reminder.Timezone), zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	processedRepo := repository.NewProcessedPaymentEventRepository(db)

	// External collaborators
	clock := service.SystemClock()
	emailService := email.NewEmailService(
		cfg.Mail.ResendAPIKey,
		cfg.Mail.FromAddress,
		cfg.Mail.FromName,
		cfg.FrontendURL,
		zlog,
	)
	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey)

	// Services
	authService := service.NewAuthService(userRepo, emailService, zlog)
	userService := service.NewUserService(userRepo, eventRepo, participationRepo, clock)
	membershipService := service.NewMembershipService(
		db, userRepo, participationRepo, clock,
		cfg.Membership.KeepHistoryOnCancel, zlog,
	)
	eventService := service.NewEventService(
		db, eventRepo, userRepo, participationRepo,
		emailService, clock, zlog,
	)
	paymentService := service.NewPaymentService(
		db, stripeService, userRepo, eventRepo, participationRepo,
		processedRepo, clock, cfg, zlog,
	)
	reminderService := service.NewReminderService(
		eventRepo, userRepo, participationRepo,
		emailService, clock, location, zlog,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, paymentService, zlog)
	userHandler := handler.NewUserHandler(userService, membershipService)
	eventHandler := handler.NewEventHandler(eventService, userService, membershipService)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.Stripe.WebhookSecret, zlog)

	// Daily reminder sweep at the configured hour in the configured zone.
	scheduler := cron.New(cron.WithLocation(location))
	reminderCron := fmt.Sprintf("0 %d * * *", cfg.Reminder.Hour)
	if _, err := scheduler.AddFunc(reminderCron, func() {
		sent, err := reminderService.SendDailyReminders()
		if err != nil {
			zlog.Error("reminder sweep failed", zap.Error(err))
			return
		}
		zlog.Info("reminder sweep done", zap.Int("sent", sent))
	}); err != nil {
		zlog.Fatal("failed to schedule reminder sweep", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api/v1")

	// Public routes
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(models.SuccessResponse(fiber.Map{"status": "online"}, ""))
	})

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify-email", authHandler.VerifyEmail)

	api.Get("/events", eventHandler.ListEvents)
	api.Get("/events/:id", eventHandler.GetEvent)
	api.Get("/leaderboard", userHandler.Leaderboard)

	// Stripe webhook (public, signature-verified)
	api.Post("/payments/webhook", paymentHandler.HandleWebhook)

	// Protected routes
	api.Use(middleware.AuthMiddleware())
	{
		api.Get("/me", userHandler.GetProfile)
		api.Delete("/me", userHandler.DeleteAccount)

		api.Post("/events/:id/join", eventHandler.JoinEvent)
		api.Post("/events/:id/leave", eventHandler.LeaveEvent)
		api.Post("/events/:id/checkout", paymentHandler.CreateEventCheckout)

		api.Post("/membership/checkout", paymentHandler.CreateMembershipCheckout)
		api.Post("/membership/renew", paymentHandler.CreateRenewalCheckout)
		api.Post("/membership/cancel", userHandler.CancelMembership)

		// Admin routes
		admin := api.Group("/admin", middleware.AdminMiddleware(userRepo))
		admin.Get("/stats", userHandler.Stats)
		admin.Post("/events", eventHandler.CreateEvent)
		admin.Put("/events/:id", eventHandler.UpdateEvent)
		admin.Delete("/events/:id", eventHandler.DeleteEvent)
		admin.Delete("/events/:id/participants", eventHandler.RemoveAllParticipants)
		admin.Delete("/events/:id/participants/:userId", eventHandler.RemoveParticipant)
		admin.Post("/events/:id/reminders", eventHandler.SendReminders)
	}

	zlog.Info("starting server", zap.String("port", cfg.Port))
	log.Fatal(app.Listen(":" + cfg.Port))
}
