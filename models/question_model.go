package models

const ChoicesPerQuestion = 4

// Question is the multiple-choice item as produced by the model and stored
// in the quiz data column.
type Question struct {
	Q       string   `json:"q"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}
