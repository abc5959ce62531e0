package models

import "time"

type Submission struct {
	SubmittedAt time.Time `json:"submittedAt"`
	Answers     []int     `json:"answers"`
	Score       int       `json:"score"`
	Percentage  float64   `json:"percentage"`
}
