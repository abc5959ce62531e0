package handlers

import (
	"errors"
	"fmt"

	"github.com/anjiri1684/qura/logger"
	"github.com/anjiri1684/qura/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CreateQuizRequest struct {
	Field        string `json:"field" validate:"max=200"`
	Topic        string `json:"topic" validate:"max=200"`
	NumQuestions int    `json:"numQuestions" validate:"min=1,max=30"`
	ShowGrade    bool   `json:"showGrade"`
}

type SubmitAnswersRequest struct {
	Answers []int `json:"answers"`
}

type QuizHandler struct {
	quizzes *services.QuizService
	log     *logger.Logger
}

func NewQuizHandler(quizzes *services.QuizService, log *logger.Logger) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, log: log.With("handler", "QuizHandler")}
}

func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	created, err := h.quizzes.CreateQuiz(c.UserContext(), services.CreateQuizInput{
		Field:        req.Field,
		Topic:        req.Topic,
		NumQuestions: req.NumQuestions,
		ShowGrade:    req.ShowGrade,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(created)
}

func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	questions, err := h.quizzes.FetchQuiz(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(questions)
}

func (h *QuizHandler) SubmitAnswers(c *fiber.Ctx) error {
	var req SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	result, err := h.quizzes.SubmitAnswers(c.UserContext(), c.Params("id"), req.Answers)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

func (h *QuizHandler) ListSubmissions(c *fiber.Ctx) error {
	submissions, err := h.quizzes.ListSubmissions(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":       len(submissions),
		"submissions": submissions,
	})
}

func (h *QuizHandler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidQuestionCount), errors.Is(err, services.ErrAnswerCountMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrQuizNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quiz not found"})
	case errors.Is(err, services.ErrProviderNotConfigured):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	default:
		h.log.Error("Quiz request failed", "path", c.Path(), "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Field() == "NumQuestions" {
		return services.ErrInvalidQuestionCount.Error()
	}
	return fmt.Sprintf("%s failed the %q check", fe.Field(), fe.Tag())
}
