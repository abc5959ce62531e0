package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/anjiri1684/qura/database"
	"github.com/anjiri1684/qura/logger"
	"github.com/anjiri1684/qura/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

const (
	MinQuestions = 1
	MaxQuestions = 30
)

var (
	ErrInvalidQuestionCount  = fmt.Errorf("numQuestions must be between %d and %d", MinQuestions, MaxQuestions)
	ErrProviderNotConfigured = errors.New("OpenAI API key not configured")
	ErrAnswerCountMismatch   = errors.New("answer count does not match question count")
	ErrQuizNotFound          = database.ErrQuizNotFound
)

// AnswerCountError is returned when a submission has the wrong number of
// answers. Expected is the number of questions actually generated, which can
// differ from the requested numQuestions.
type AnswerCountError struct {
	Expected int
	Got      int
}

func (e *AnswerCountError) Error() string {
	return fmt.Sprintf("expected %d answers (one per generated question), got %d", e.Expected, e.Got)
}

func (e *AnswerCountError) Is(target error) bool {
	return target == ErrAnswerCountMismatch
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	Get(ctx context.Context, id string) (*models.Quiz, error)
	AppendSubmission(ctx context.Context, id string, sub models.Submission) error
}

type Generator interface {
	Generate(ctx context.Context, field, topic string, count int) []models.Question
}

type QuizServiceOptions struct {
	// ExposeAnswers keeps the answer index in question views.
	ExposeAnswers bool

	Now   func() time.Time
	NewID func() string
}

type QuizService struct {
	store     QuizRepository
	generator Generator
	log       *logger.Logger
	opts      QuizServiceOptions
}

// NewQuizService wires the store and generator. generator may be nil when no
// provider key is configured; CreateQuiz then reports ErrProviderNotConfigured.
func NewQuizService(store QuizRepository, generator Generator, log *logger.Logger, opts QuizServiceOptions) *QuizService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &QuizService{
		store:     store,
		generator: generator,
		log:       log.With("service", "QuizService"),
		opts:      opts,
	}
}

type CreateQuizInput struct {
	Field        string
	Topic        string
	NumQuestions int
	ShowGrade    bool
}

type QuestionView struct {
	Q       string   `json:"q"`
	Choices []string `json:"choices"`
	Answer  *int     `json:"answer,omitempty"`
}

type CreatedQuiz struct {
	ID        string         `json:"id"`
	Questions []QuestionView `json:"quiz"`
}

type Correction struct {
	Question  string   `json:"question"`
	Selected  int      `json:"selected"`
	Correct   int      `json:"correct"`
	IsCorrect bool     `json:"isCorrect"`
	Choices   []string `json:"choices"`
}

// SubmissionResult is either the graded breakdown or, when the quiz hides
// grades, a bare acknowledgement.
type SubmissionResult struct {
	Status      string       `json:"status,omitempty"`
	Score       *int         `json:"score,omitempty"`
	Total       *int         `json:"total,omitempty"`
	Percentage  *float64     `json:"percentage,omitempty"`
	Corrections []Correction `json:"corrections,omitempty"`
}

type SubmissionView struct {
	SubmittedAt time.Time `json:"submittedAt"`
	Answers     []int     `json:"answers"`
	Score       *int      `json:"score,omitempty"`
	Percentage  *float64  `json:"percentage,omitempty"`
}

func (s *QuizService) CreateQuiz(ctx context.Context, in CreateQuizInput) (*CreatedQuiz, error) {
	if in.NumQuestions < MinQuestions || in.NumQuestions > MaxQuestions {
		return nil, ErrInvalidQuestionCount
	}
	if s.generator == nil {
		return nil, ErrProviderNotConfigured
	}

	questions := s.generator.Generate(ctx, in.Field, in.Topic, in.NumQuestions)
	correct := lo.Map(questions, func(q models.Question, _ int) int { return q.Answer })

	quiz := &models.Quiz{
		ID:             s.opts.NewID(),
		Field:          in.Field,
		Topic:          in.Topic,
		Data:           datatypes.NewJSONType(questions),
		NumQuestions:   in.NumQuestions,
		ShowGrade:      in.ShowGrade,
		CorrectAnswers: datatypes.NewJSONType(correct),
		Submissions:    datatypes.NewJSONType([]models.Submission{}),
	}
	if err := s.store.Create(ctx, quiz); err != nil {
		return nil, err
	}

	s.log.Info("Quiz created", "quiz_id", quiz.ID, "requested", in.NumQuestions, "generated", len(questions))
	return &CreatedQuiz{ID: quiz.ID, Questions: s.views(questions)}, nil
}

func (s *QuizService) FetchQuiz(ctx context.Context, id string) ([]QuestionView, error) {
	quiz, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.views(quiz.Questions()), nil
}

func (s *QuizService) SubmitAnswers(ctx context.Context, id string, answers []int) (*SubmissionResult, error) {
	quiz, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	correct := quiz.Answers()
	if len(answers) != len(correct) {
		return nil, &AnswerCountError{Expected: len(correct), Got: len(answers)}
	}

	score, percentage := Grade(correct, answers)
	sub := models.Submission{
		SubmittedAt: s.opts.Now().UTC(),
		Answers:     answers,
		Score:       score,
		Percentage:  percentage,
	}
	if err := s.store.AppendSubmission(ctx, id, sub); err != nil {
		return nil, err
	}
	s.log.Info("Answers submitted", "quiz_id", id, "score", score, "total", len(correct))

	if !quiz.ShowGrade {
		return &SubmissionResult{Status: "submitted"}, nil
	}

	questions := quiz.Questions()
	corrections := make([]Correction, len(correct))
	for i := range correct {
		c := Correction{
			Selected:  answers[i],
			Correct:   correct[i],
			IsCorrect: answers[i] == correct[i],
		}
		if i < len(questions) {
			c.Question = questions[i].Q
			c.Choices = questions[i].Choices
		}
		corrections[i] = c
	}

	total := len(correct)
	return &SubmissionResult{
		Score:       &score,
		Total:       &total,
		Percentage:  &percentage,
		Corrections: corrections,
	}, nil
}

// ListSubmissions returns the quiz's submission history, withholding scores
// when the quiz does not show grades.
func (s *QuizService) ListSubmissions(ctx context.Context, id string) ([]SubmissionView, error) {
	quiz, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	history := quiz.History()
	out := make([]SubmissionView, len(history))
	for i, sub := range history {
		out[i] = SubmissionView{SubmittedAt: sub.SubmittedAt, Answers: sub.Answers}
		if quiz.ShowGrade {
			score, pct := sub.Score, sub.Percentage
			out[i].Score = &score
			out[i].Percentage = &pct
		}
	}
	return out, nil
}

// Grade counts positions where answers match correct and returns the
// percentage rounded to two decimals.
func Grade(correct, answers []int) (score int, percentage float64) {
	for i := range correct {
		if i < len(answers) && answers[i] == correct[i] {
			score++
		}
	}
	if len(correct) == 0 {
		return score, 0
	}
	percentage = float64(score) / float64(len(correct)) * 100
	return score, math.Round(percentage*100) / 100
}

func (s *QuizService) views(questions []models.Question) []QuestionView {
	out := make([]QuestionView, len(questions))
	for i, q := range questions {
		out[i] = QuestionView{Q: q.Q, Choices: q.Choices}
		if s.opts.ExposeAnswers {
			answer := q.Answer
			out[i].Answer = &answer
		}
	}
	return out
}
