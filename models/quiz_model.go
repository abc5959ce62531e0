package models

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz is one generated quiz plus its submission history. Question and
// answer data never change after creation.
type Quiz struct {
	ID             string                           `gorm:"primaryKey;size:36"`
	Field          string                           `gorm:"type:text"`
	Topic          string                           `gorm:"type:text"`
	Data           datatypes.JSONType[[]Question]   `gorm:"column:data"`
	NumQuestions   int                              `gorm:"column:numQuestions;not null"`
	ShowGrade      bool                             `gorm:"column:showGrade;not null"`
	CorrectAnswers datatypes.JSONType[[]int]        `gorm:"column:correctAnswers"`
	Submissions    datatypes.JSONType[[]Submission] `gorm:"column:submissions"`

	CreatedAt time.Time
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (q *Quiz) Questions() []Question {
	return q.Data.Data()
}

func (q *Quiz) Answers() []int {
	return q.CorrectAnswers.Data()
}

func (q *Quiz) History() []Submission {
	return q.Submissions.Data()
}
