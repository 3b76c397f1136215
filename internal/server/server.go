// Package server assembles the Fiber application: middleware chain, health
// and metrics endpoints, and the versioned API routes.
package server

import (
	"errors"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/handlers"
	"yamdb/internal/middleware"
	"yamdb/internal/repositories"
	"yamdb/internal/services"
	"yamdb/pkg/mail"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// New wires repositories, services and handlers on db and returns the app.
// Confirmation codes are delivered through mailer.
func New(cfg *config.Config, db *gorm.DB, mailer mail.Sender) *fiber.App {
	userRepo := repositories.NewGORMUserRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	genreRepo := repositories.NewGORMGenreRepository(db)
	titleRepo := repositories.NewGORMTitleRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	commentRepo := repositories.NewGORMCommentRepository(db)

	authService := services.NewAuthService(userRepo, mailer, services.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.JWTTTL,
		MailFrom:  cfg.MailFrom,
	})
	userService := services.NewUserService(userRepo)
	catalogService := services.NewCatalogService(categoryRepo, genreRepo, titleRepo)
	reviewService := services.NewReviewService(titleRepo, reviewRepo, commentRepo)

	app := fiber.New(fiber.Config{
		AppName:      "yamdb",
		ErrorHandler: errorHandler,
	})

	if cfg.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(cors.New())
	app.Use(middleware.Metrics())

	app.Get("/health", healthCheck(db))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiV1 := app.Group("/api/v1", middleware.Authenticate(authService))

	// Signup mails codes, so both auth endpoints share a per-IP budget.
	auth := apiV1.Group("/auth", limiter.New(limiter.Config{
		Max:               cfg.AuthRateLimit,
		Expiration:        time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	handlers.NewAuthHandler(authService).RegisterRoutes(auth)

	handlers.NewUserHandler(userService, cfg.PageSize).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(catalogService, cfg.PageSize).RegisterRoutes(apiV1)
	handlers.NewReviewHandler(reviewService, cfg.PageSize).RegisterRoutes(apiV1)

	return app
}

func healthCheck(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, database := "healthy", "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status, database = "degraded", "unreachable"
		}
		code := fiber.StatusOK
		if status != "healthy" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	}
}

// errorHandler renders errors that escape handlers, such as unknown routes
// and recovered panics, in the same JSON shape as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		}).Error("unhandled error")
		return c.Status(code).JSON(fiber.Map{"message": "Internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}
