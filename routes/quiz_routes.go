package routes

import (
	"github.com/anjiri1684/qura/handlers"
	"github.com/gofiber/fiber/v2"
)

func QuizRoutes(api fiber.Router, h *handlers.QuizHandler) {
	quiz := api.Group("/quiz")
	quiz.Post("", h.CreateQuiz)
	quiz.Get("/:id", h.GetQuiz)
	quiz.Post("/:id/answers", h.SubmitAnswers)
	quiz.Get("/:id/submissions", h.ListSubmissions)
}
