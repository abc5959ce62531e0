package routes

import (
	"github.com/anjiri1684/qura/handlers"
	"github.com/gofiber/fiber/v2"
)

// PublicRoutes are the liveness endpoints left outside the key gate.
func PublicRoutes(app *fiber.App) {
	app.Get("/", handlers.Index)
	app.Get("/health", handlers.Health)
}

func MessageRoutes(api fiber.Router) {
	api.Get("/message", handlers.GetMessage)
	api.Get("/random", handlers.GetRandom)
}
