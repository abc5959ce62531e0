package routes

import (
	"errors"
	"time"

	"github.com/anjiri1684/qura/logger"
	"github.com/anjiri1684/qura/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type AppConfig struct {
	AllowOrigins string
	// WriteTimeout must cover the provider timeout plus one retry.
	WriteTimeout time.Duration
}

// NewApp builds the fiber app with the shared middleware stack. Routes are
// mounted separately with Register.
func NewApp(cfg AppConfig, log *logger.Logger) *fiber.App {
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 150 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:       "Qura Quiz API",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  cfg.WriteTimeout,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("Unhandled error", "path", c.Path(), "method", c.Method(), "error", err.Error())
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// The request logger wraps recover so panicking handlers are logged as 500s.
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.APIKeyHeader,
		AllowMethods: "GET, POST, OPTIONS",
		MaxAge:       86400,
	}))

	return app
}
