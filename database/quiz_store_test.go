package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	config "github.com/anjiri1684/qura/configs"
	"github.com/anjiri1684/qura/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Connect(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func sampleQuiz(id string) *models.Quiz {
	questions := []models.Question{
		{Q: "2+2?", Choices: []string{"1", "2", "3", "4"}, Answer: 3},
		{Q: "Capital of France?", Choices: []string{"Paris", "Rome", "Berlin", "Madrid"}, Answer: 0},
	}
	return &models.Quiz{
		ID:             id,
		Field:          "General",
		Topic:          "Mixed",
		Data:           datatypes.NewJSONType(questions),
		NumQuestions:   len(questions),
		ShowGrade:      true,
		CorrectAnswers: datatypes.NewJSONType([]int{3, 0}),
		Submissions:    datatypes.NewJSONType([]models.Submission{}),
	}
}

func TestQuizStoreCreateAndGet(t *testing.T) {
	store := NewQuizStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Create(ctx, sampleQuiz("q-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, "q-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Field != "General" || got.Topic != "Mixed" || !got.ShowGrade {
		t.Fatalf("unexpected metadata: %+v", got)
	}
	if qs := got.Questions(); len(qs) != 2 || qs[1].Choices[0] != "Paris" {
		t.Fatalf("questions=%+v", qs)
	}
	if a := got.Answers(); len(a) != 2 || a[0] != 3 || a[1] != 0 {
		t.Fatalf("answers=%v", a)
	}
	if h := got.History(); len(h) != 0 {
		t.Fatalf("history=%v", h)
	}
}

func TestQuizStoreGetUnknown(t *testing.T) {
	store := NewQuizStore(newTestDB(t))

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestQuizStoreAppendSubmission(t *testing.T) {
	store := NewQuizStore(newTestDB(t))
	ctx := context.Background()
	if err := store.Create(ctx, sampleQuiz("q-2")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, answers := range [][]int{{3, 0}, {1, 0}} {
		sub := models.Submission{SubmittedAt: at.Add(time.Duration(i) * time.Minute), Answers: answers, Score: 2 - i, Percentage: float64(100 - 50*i)}
		if err := store.AppendSubmission(ctx, "q-2", sub); err != nil {
			t.Fatalf("AppendSubmission #%d: %v", i, err)
		}
	}

	got, err := store.Get(ctx, "q-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	h := got.History()
	if len(h) != 2 {
		t.Fatalf("history len=%d", len(h))
	}
	if h[0].Score != 2 || h[1].Score != 1 || h[1].Percentage != 50 {
		t.Fatalf("history=%+v", h)
	}
	if !h[0].SubmittedAt.Equal(at) {
		t.Fatalf("submittedAt=%s", h[0].SubmittedAt)
	}
}

func TestQuizStoreConcurrentAppendSubmission(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "quiz.db"),
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	store := NewQuizStore(db)
	ctx := context.Background()
	if err := store.Create(ctx, sampleQuiz("q-busy")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := models.Submission{SubmittedAt: time.Now().UTC(), Answers: []int{3, 0}, Score: i}
			if err := store.AppendSubmission(ctx, "q-busy", sub); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("AppendSubmission: %v", err)
	}

	got, err := store.Get(ctx, "q-busy")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	h := got.History()
	if len(h) != writers {
		t.Fatalf("history len=%d want %d", len(h), writers)
	}
	seen := make(map[int]bool, writers)
	for _, sub := range h {
		seen[sub.Score] = true
	}
	if len(seen) != writers {
		t.Fatalf("lost submissions: scores=%v", seen)
	}
}

func TestQuizStoreAppendSubmissionUnknown(t *testing.T) {
	store := NewQuizStore(newTestDB(t))

	err := store.AppendSubmission(context.Background(), "missing", models.Submission{})
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestQuizStoreCount(t *testing.T) {
	store := NewQuizStore(newTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Create(ctx, sampleQuiz(id)); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count=%d", n)
	}
}
