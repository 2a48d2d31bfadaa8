package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/backsoul/ktet-quiz/pkg/models"
)

// QuestionService maneja las preguntas predefinidas del quiz
type QuestionService struct {
	store           PresetStore
	filePath        string
	defaultCategory string
	batchSize       int
}

// NewQuestionService crea una nueva instancia del servicio
func NewQuestionService(store PresetStore, filePath, defaultCategory string, batchSize int) *QuestionService {
	if batchSize <= 0 {
		batchSize = 15
	}
	return &QuestionService{
		store:           store,
		filePath:        filePath,
		defaultCategory: defaultCategory,
		batchSize:       batchSize,
	}
}

// FilePath archivo del que se cargan las preguntas
func (s *QuestionService) FilePath() string {
	return s.filePath
}

// LoadQuestionsFromFile carga el bundle de preguntas al almacén
func (s *QuestionService) LoadQuestionsFromFile(ctx context.Context) (models.Bundle, error) {
	log.Printf("📂 Cargando preguntas desde: %s", s.filePath)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("error leyendo archivo JSON: %w", err)
	}

	bundle, err := ParseBundle(data, s.defaultCategory)
	if err != nil {
		return nil, fmt.Errorf("error interpretando %s: %w", s.filePath, err)
	}

	if err := s.store.LoadBundle(ctx, bundle); err != nil {
		return nil, fmt.Errorf("error cargando preguntas al almacén: %w", err)
	}

	log.Printf("✅ %d preguntas en %d categorías cargadas desde archivo", bundle.Total(), len(bundle))
	return bundle, nil
}

// ReloadQuestions recarga las preguntas desde el archivo JSON
func (s *QuestionService) ReloadQuestions(ctx context.Context) (models.Bundle, error) {
	log.Println("🔄 Recargando preguntas...")

	bundle, err := s.LoadQuestionsFromFile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error recargando preguntas: %w", err)
	}

	log.Println("✅ Preguntas recargadas exitosamente")
	return bundle, nil
}

// GetCategories categorías con preguntas predefinidas
func (s *QuestionService) GetCategories(ctx context.Context) ([]models.CategoryInfo, error) {
	categories, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo categorías: %w", err)
	}
	return categories, nil
}

// GetWindow una página de preguntas predefinidas con el total de la categoría
func (s *QuestionService) GetWindow(ctx context.Context, category string, offset int) (*models.QuestionResponse, error) {
	if offset < 0 {
		offset = 0
	}

	batch, err := s.store.GetWindow(ctx, category, offset, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo preguntas de %q: %w", category, err)
	}

	total, err := s.store.GetQuestionCount(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo conteo de preguntas: %w", err)
	}

	return &models.QuestionResponse{
		Category:  category,
		Questions: batch,
		Count:     len(batch),
		Offset:    offset,
		Total:     total,
	}, nil
}

// HealthCheck verifica que el almacén esté funcionando
func (s *QuestionService) HealthCheck(ctx context.Context) error {
	if err := s.store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("error en health check del almacén: %w", err)
	}
	return nil
}
