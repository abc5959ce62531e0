package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/qura/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrQuizNotFound = errors.New("quiz not found")

// QuizStore persists quizzes in the single quizzes table. Every call takes
// its own connection from the pool for the lifetime of the statement.
type QuizStore struct {
	db *gorm.DB
}

func NewQuizStore(db *gorm.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) Create(ctx context.Context, quiz *models.Quiz) error {
	if err := s.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) Get(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.db.WithContext(ctx).First(&quiz, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	return &quiz, nil
}

// AppendSubmission adds sub to the end of the quiz's submission history.
// The row is locked for the read-modify-write on postgres; sqlite relies on
// the single connection configured in Connect.
func (s *QuizStore) AppendSubmission(ctx context.Context, id string, sub models.Submission) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "submissions").
			First(&quiz, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuizNotFound
			}
			return fmt.Errorf("load submissions for %s: %w", id, err)
		}

		history := append(quiz.History(), sub)
		err = tx.Model(&models.Quiz{}).
			Where("id = ?", id).
			Update("submissions", datatypes.NewJSONType(history)).Error
		if err != nil {
			return fmt.Errorf("append submission to %s: %w", id, err)
		}
		return nil
	})
}

func (s *QuizStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Quiz{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return n, nil
}
