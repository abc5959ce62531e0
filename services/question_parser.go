package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anjiri1684/qura/models"
	"github.com/samber/lo"
	"github.com/xeipuuv/gojsonschema"
)

// strictQuestionsSchema is applied to the first generation attempt.
var strictQuestionsSchema = fmt.Sprintf(`{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["q", "choices", "answer"],
		"properties": {
			"q": {"type": "string"},
			"choices": {"type": "array", "items": {"type": "string"}, "minItems": %[1]d, "maxItems": %[1]d},
			"answer": {"type": "integer", "minimum": 0, "maximum": %[2]d}
		}
	}
}`, models.ChoicesPerQuestion, models.ChoicesPerQuestion-1)

// looseQuestionsSchema is applied to the retry: any non-empty array of objects.
const looseQuestionsSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {"type": "object"}
}`

// ShapeError reports model output that could not be turned into questions.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "malformed quiz output: " + e.Reason
}

func compileSchema(src string) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
}

// StripCodeFence removes a leading ``` or ```json fence and a trailing ```
// fence around a model response.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseQuestions strips fences from raw, checks it against schema and decodes
// it. Every failure is a *ShapeError.
func ParseQuestions(raw string, schema *gojsonschema.Schema) ([]models.Question, error) {
	text := StripCodeFence(raw)
	if text == "" {
		return nil, &ShapeError{Reason: "empty response"}
	}
	if !json.Valid([]byte(text)) {
		return nil, &ShapeError{Reason: "response is not valid JSON"}
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, &ShapeError{Reason: err.Error()}
	}
	if !result.Valid() {
		reasons := lo.Map(result.Errors(), func(e gojsonschema.ResultError, _ int) string {
			return e.String()
		})
		return nil, &ShapeError{Reason: strings.Join(reasons, "; ")}
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		return nil, &ShapeError{Reason: err.Error()}
	}
	return questions, nil
}
