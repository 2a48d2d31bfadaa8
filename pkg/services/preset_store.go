package services

import (
	"context"
	"sort"
	"sync"

	"github.com/backsoul/ktet-quiz/pkg/models"
)

// PresetStore almacén de preguntas predefinidas por categoría
type PresetStore interface {
	LoadBundle(ctx context.Context, bundle models.Bundle) error
	GetWindow(ctx context.Context, category string, offset, size int) (models.Batch, error)
	GetQuestionCount(ctx context.Context, category string) (int, error)
	GetCategories(ctx context.Context) ([]models.CategoryInfo, error)
	HealthCheck(ctx context.Context) error
}

// MemoryStore almacén en memoria, usado cuando no hay Redis configurado
type MemoryStore struct {
	mu     sync.RWMutex
	bundle models.Bundle
}

// NewMemoryStore crea un almacén vacío
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bundle: models.Bundle{}}
}

// LoadBundle reemplaza todas las preguntas
func (m *MemoryStore) LoadBundle(ctx context.Context, bundle models.Bundle) error {
	copied := make(models.Bundle, len(bundle))
	for category, questions := range bundle {
		copied[category] = append(models.Batch(nil), questions...)
	}

	m.mu.Lock()
	m.bundle = copied
	m.mu.Unlock()
	return nil
}

// GetWindow devuelve hasta size preguntas desde offset
func (m *MemoryStore) GetWindow(ctx context.Context, category string, offset, size int) (models.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pool := m.bundle[category]
	if offset < 0 || size <= 0 || offset >= len(pool) {
		return models.Batch{}, nil
	}
	end := offset + size
	if end > len(pool) {
		end = len(pool)
	}
	return append(models.Batch(nil), pool[offset:end]...), nil
}

// GetQuestionCount número de preguntas de una categoría
func (m *MemoryStore) GetQuestionCount(ctx context.Context, category string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bundle[category]), nil
}

// GetCategories categorías no vacías ordenadas por nombre
func (m *MemoryStore) GetCategories(ctx context.Context) ([]models.CategoryInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := make([]models.CategoryInfo, 0, len(m.bundle))
	for name, questions := range m.bundle {
		if len(questions) == 0 {
			continue
		}
		categories = append(categories, models.CategoryInfo{Name: name, Count: len(questions)})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// HealthCheck siempre disponible
func (m *MemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}
