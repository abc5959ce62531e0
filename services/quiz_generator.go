package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/qura/logger"
	"github.com/anjiri1684/qura/models"
	"github.com/xeipuuv/gojsonschema"
)

const (
	DefaultField = "General Knowledge"
	DefaultTopic = "General"

	previewLength = 200
)

// Completer sends one prompt to a chat model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

type GeneratorOptions struct {
	Timeout          time.Duration
	Temperature      float64
	RetryTemperature float64
}

// QuizGenerator turns a field/topic/count request into questions. It never
// fails: after one retry it falls back to a single placeholder question.
type QuizGenerator struct {
	client Completer
	opts   GeneratorOptions
	log    *logger.Logger
	strict *gojsonschema.Schema
	loose  *gojsonschema.Schema
}

func NewQuizGenerator(client Completer, opts GeneratorOptions, log *logger.Logger) (*QuizGenerator, error) {
	if client == nil {
		return nil, errors.New("quiz generator: completer required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	strict, err := compileSchema(strictQuestionsSchema)
	if err != nil {
		return nil, fmt.Errorf("compile strict schema: %w", err)
	}
	loose, err := compileSchema(looseQuestionsSchema)
	if err != nil {
		return nil, fmt.Errorf("compile loose schema: %w", err)
	}
	return &QuizGenerator{
		client: client,
		opts:   opts,
		log:    log.With("service", "QuizGenerator"),
		strict: strict,
		loose:  loose,
	}, nil
}

func (g *QuizGenerator) Generate(ctx context.Context, field, topic string, count int) []models.Question {
	field = orDefault(field, DefaultField)
	topic = orDefault(topic, DefaultTopic)

	questions, err := g.attempt(ctx, buildPrompt(field, topic, count), g.opts.Temperature, g.strict)
	if err == nil {
		g.checkCount(questions, count)
		return questions
	}
	g.log.Warn("Quiz generation failed, retrying with simplified prompt", "error", err.Error(), "field", field, "topic", topic)

	questions, err = g.attempt(ctx, buildRetryPrompt(field, topic, count), g.opts.RetryTemperature, g.loose)
	if err == nil {
		g.checkCount(questions, count)
		return questions
	}
	g.log.Error("Quiz generation retry failed, using fallback quiz", "error", err.Error(), "field", field, "topic", topic)

	return FallbackQuestions(err)
}

func (g *QuizGenerator) attempt(ctx context.Context, prompt string, temperature float64, schema *gojsonschema.Schema) ([]models.Question, error) {
	g.log.Debug("Sending quiz prompt", "prompt", preview(prompt), "temperature", temperature)

	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	raw, err := g.client.Complete(callCtx, prompt, temperature)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("provider timed out after %s: %w", g.opts.Timeout, err)
		}
		return nil, err
	}
	g.log.Debug("Received quiz response", "response", preview(raw))

	return ParseQuestions(raw, schema)
}

func (g *QuizGenerator) checkCount(questions []models.Question, requested int) {
	if len(questions) != requested {
		g.log.Warn("Model returned a different number of questions", "requested", requested, "returned", len(questions))
	}
}

// FallbackQuestions is the degraded quiz returned when generation and its
// retry both fail.
func FallbackQuestions(reason error) []models.Question {
	msg := "unknown error"
	if reason != nil {
		msg = reason.Error()
	}
	return []models.Question{{
		Q:       "Error generating quiz: " + msg,
		Choices: []string{"Error"},
		Answer:  0,
	}}
}

func buildPrompt(field, topic string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple-choice quiz questions about %q in the field of %q.\n", count, topic, field)
	b.WriteString("Return ONLY a JSON array, with no markdown, code fences or commentary.\n")
	b.WriteString("Each element must be an object with exactly these keys:\n")
	b.WriteString(`  "q": the question text (string)` + "\n")
	fmt.Fprintf(&b, "  \"choices\": an array of exactly %d answer strings\n", models.ChoicesPerQuestion)
	fmt.Fprintf(&b, "  \"answer\": the index (integer 0-%d) of the correct choice\n", models.ChoicesPerQuestion-1)
	fmt.Fprintf(&b, "The array must contain exactly %d elements.", count)
	return b.String()
}

func buildRetryPrompt(field, topic string, count int) string {
	return fmt.Sprintf(
		`Return ONLY a JSON array of %d objects shaped like {"q": "question", "choices": ["a", "b", "c", "d"], "answer": 0} about %s (%s). No other text.`,
		count, topic, field,
	)
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLength {
		return s
	}
	return string(r[:previewLength]) + "..."
}
