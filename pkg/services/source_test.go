package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/backsoul/ktet-quiz/pkg/quiz"
)

func makePool(n int) models.Batch {
	batch := make(models.Batch, n)
	for i := range batch {
		batch[i] = models.Question{
			ID:           i + 1,
			Question:     fmt.Sprintf("Question %d", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
		}
	}
	return batch
}

type fakeGenerator struct {
	batch    models.Batch
	err      error
	requests []models.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req models.GenerateRequest) (models.Batch, error) {
	f.requests = append(f.requests, req)
	return f.batch, f.err
}

type brokenStore struct {
	*MemoryStore
}

func (brokenStore) GetWindow(ctx context.Context, category string, offset, size int) (models.Batch, error) {
	return nil, errors.New("connection refused")
}

func newSource(t *testing.T, bundle models.Bundle, gen *fakeGenerator) *QuestionSource {
	t.Helper()
	store := NewMemoryStore()
	if err := store.LoadBundle(context.Background(), bundle); err != nil {
		t.Fatal(err)
	}
	return NewQuestionSource(store, gen, SourceConfig{
		BatchSize:         15,
		GenerateCount:     10,
		GenerateSubject:   "KTET Exam",
		NonQuizCategories: []string{"KTET Syllabus"},
	})
}

func TestResolveRejectsNonQuizCategories(t *testing.T) {
	gen := &fakeGenerator{batch: makePool(10)}
	source := newSource(t, models.Bundle{"KTET Syllabus": makePool(3)}, gen)

	for _, category := range []string{"KTET Syllabus", "ktet syllabus", "  KTET Syllabus ", ""} {
		_, err := source.Resolve(context.Background(), category)
		if !errors.Is(err, quiz.ErrInvalidCategory) {
			t.Errorf("Expected ErrInvalidCategory for %q, got %v", category, err)
		}
	}
	if len(gen.requests) != 0 {
		t.Errorf("Expected no generator calls, got %d", len(gen.requests))
	}
}

func TestResolvePrefersPresets(t *testing.T) {
	gen := &fakeGenerator{batch: makePool(10)}
	source := newSource(t, models.Bundle{"Pedagogy": makePool(37)}, gen)

	load, err := source.Resolve(context.Background(), "Pedagogy")
	if err != nil {
		t.Fatal(err)
	}
	if load.Mode != quiz.ModePreset || len(load.Batch) != 15 {
		t.Errorf("Expected 15 preset questions, got %d (%s)", len(load.Batch), load.Mode)
	}
	if len(gen.requests) != 0 {
		t.Errorf("Expected no generator calls, got %d", len(gen.requests))
	}

	var sizes []int
	for offset := 15; ; offset += 15 {
		batch, err := source.NextPreset(context.Background(), "Pedagogy", offset)
		if err != nil {
			t.Fatal(err)
		}
		sizes = append(sizes, len(batch))
		if len(batch) == 0 {
			break
		}
	}
	if fmt.Sprint(sizes) != "[15 7 0]" {
		t.Errorf("Expected pages [15 7 0], got %v", sizes)
	}
}

func TestResolveFallsBackToGenerator(t *testing.T) {
	tests := []struct {
		name   string
		bundle models.Bundle
	}{
		{"no entry", models.Bundle{"Pedagogy": makePool(3)}},
		{"empty entry", models.Bundle{"Mathematics": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{batch: makePool(10)}
			source := newSource(t, tt.bundle, gen)

			load, err := source.Resolve(context.Background(), "Mathematics")
			if err != nil {
				t.Fatal(err)
			}
			if load.Mode != quiz.ModeGenerated || len(load.Batch) != 10 {
				t.Errorf("Expected 10 generated questions, got %d (%s)", len(load.Batch), load.Mode)
			}

			want := models.GenerateRequest{Subject: "KTET Exam", Topic: "Mathematics", Count: 10}
			if len(gen.requests) != 1 || gen.requests[0] != want {
				t.Errorf("Unexpected generator requests: %+v", gen.requests)
			}
		})
	}
}

func TestResolveFallsBackWhenStoreUnavailable(t *testing.T) {
	gen := &fakeGenerator{batch: makePool(10)}
	source := NewQuestionSource(brokenStore{NewMemoryStore()}, gen, SourceConfig{})

	load, err := source.Resolve(context.Background(), "Pedagogy")
	if err != nil {
		t.Fatal(err)
	}
	if load.Mode != quiz.ModeGenerated {
		t.Errorf("Expected generated mode, got %s", load.Mode)
	}

	if _, err := source.NextPreset(context.Background(), "Pedagogy", 15); !errors.Is(err, quiz.ErrNetwork) {
		t.Errorf("Expected ErrNetwork from NextPreset, got %v", err)
	}
}

func TestResolvePropagatesGeneratorErrors(t *testing.T) {
	gen := &fakeGenerator{err: quiz.ErrTimeout}
	source := newSource(t, models.Bundle{}, gen)

	if _, err := source.Resolve(context.Background(), "Pedagogy"); !errors.Is(err, quiz.ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}
