package routes

import (
	"github.com/anjiri1684/qura/handlers"
	"github.com/anjiri1684/qura/middleware"
	"github.com/gofiber/fiber/v2"
)

// Register mounts every route. All /api routes sit behind the key gate.
func Register(app *fiber.App, gate *middleware.KeyGate, quiz *handlers.QuizHandler) {
	PublicRoutes(app)

	api := app.Group("/api", middleware.RequireAPIKey(gate))
	MessageRoutes(api)
	QuizRoutes(api, quiz)
}
