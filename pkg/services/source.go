package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/backsoul/ktet-quiz/pkg/metrics"
	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/backsoul/ktet-quiz/pkg/quiz"
)

// BatchGenerator pide lotes al generador remoto
type BatchGenerator interface {
	Generate(ctx context.Context, req models.GenerateRequest) (models.Batch, error)
}

// SourceConfig parámetros del adaptador de preguntas
type SourceConfig struct {
	BatchSize         int
	GenerateCount     int
	GenerateSubject   string
	NonQuizCategories []string
}

// QuestionSource resuelve una categoría a un lote: primero las preguntas
// predefinidas, si no hay, el generador.
type QuestionSource struct {
	store     PresetStore
	generator BatchGenerator
	config    SourceConfig
	nonQuiz   map[string]struct{}
}

// NewQuestionSource crea el adaptador
func NewQuestionSource(store PresetStore, generator BatchGenerator, config SourceConfig) *QuestionSource {
	if config.BatchSize <= 0 {
		config.BatchSize = 15
	}
	if config.GenerateCount <= 0 {
		config.GenerateCount = 10
	}
	if config.GenerateSubject == "" {
		config.GenerateSubject = "KTET Exam"
	}

	nonQuiz := make(map[string]struct{}, len(config.NonQuizCategories))
	for _, name := range config.NonQuizCategories {
		if name = strings.TrimSpace(name); name != "" {
			nonQuiz[strings.ToLower(name)] = struct{}{}
		}
	}

	return &QuestionSource{
		store:     store,
		generator: generator,
		config:    config,
		nonQuiz:   nonQuiz,
	}
}

func (s *QuestionSource) isQuizCategory(category string) bool {
	if category == "" {
		return false
	}
	_, excluded := s.nonQuiz[strings.ToLower(category)]
	return !excluded
}

// Resolve carga el primer lote de una categoría
func (s *QuestionSource) Resolve(ctx context.Context, category string) (quiz.Load, error) {
	category = strings.TrimSpace(category)
	if !s.isQuizCategory(category) {
		return quiz.Load{}, fmt.Errorf("%w: %q", quiz.ErrInvalidCategory, category)
	}

	batch, err := s.store.GetWindow(ctx, category, 0, s.config.BatchSize)
	switch {
	case err != nil:
		log.Printf("⚠️ Almacén de preguntas no disponible para %q, usando el generador: %v", category, err)
	case len(batch) > 0:
		metrics.BatchLoads.WithLabelValues(quiz.ModePreset.String(), "ok").Inc()
		log.Printf("📖 %d preguntas predefinidas para %q", len(batch), category)
		return quiz.Load{Batch: batch, Mode: quiz.ModePreset}, nil
	}

	batch, err = s.Generate(ctx, category)
	if err != nil {
		return quiz.Load{}, err
	}
	return quiz.Load{Batch: batch, Mode: quiz.ModeGenerated}, nil
}

// NextPreset ventana siguiente; vacía cuando no quedan preguntas
func (s *QuestionSource) NextPreset(ctx context.Context, category string, offset int) (models.Batch, error) {
	batch, err := s.store.GetWindow(ctx, category, offset, s.config.BatchSize)
	if err != nil {
		metrics.BatchLoads.WithLabelValues(quiz.ModePreset.String(), "error").Inc()
		return nil, fmt.Errorf("%w: %v", quiz.ErrNetwork, err)
	}
	if len(batch) > 0 {
		metrics.BatchLoads.WithLabelValues(quiz.ModePreset.String(), "ok").Inc()
	}
	return batch, nil
}

// Generate pide un lote nuevo al generador
func (s *QuestionSource) Generate(ctx context.Context, category string) (models.Batch, error) {
	category = strings.TrimSpace(category)
	if !s.isQuizCategory(category) {
		return nil, fmt.Errorf("%w: %q", quiz.ErrInvalidCategory, category)
	}

	batch, err := s.generator.Generate(ctx, models.GenerateRequest{
		Subject: s.config.GenerateSubject,
		Topic:   category,
		Count:   s.config.GenerateCount,
	})
	if err != nil {
		metrics.BatchLoads.WithLabelValues(quiz.ModeGenerated.String(), "error").Inc()
		return nil, err
	}
	metrics.BatchLoads.WithLabelValues(quiz.ModeGenerated.String(), "ok").Inc()
	log.Printf("🤖 %d preguntas generadas para %q", len(batch), category)
	return batch, nil
}
