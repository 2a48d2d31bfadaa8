package quiz

import (
	"context"

	"github.com/backsoul/ktet-quiz/pkg/models"
)

// Presenter dibuja el estado del quiz. Solo lee los valores que recibe.
type Presenter interface {
	RenderLoading(category string)
	RenderQuestion(q models.Question, position, total int)
	RenderFeedback(result AnswerResult, explanation string)
	RenderProgress(position, total int)
	RenderFinalScore(score, total int)
	RenderError(message string)
}

// Load lote resuelto junto con su origen
type Load struct {
	Batch models.Batch
	Mode  SourceMode
}

// Source resuelve categorías a lotes de preguntas
type Source interface {
	// Resolve carga el primer lote de una categoría
	Resolve(ctx context.Context, category string) (Load, error)
	// NextPreset devuelve la ventana predefinida desde offset; vacía si no quedan preguntas
	NextPreset(ctx context.Context, category string, offset int) (models.Batch, error)
	// Generate pide un lote al generador remoto
	Generate(ctx context.Context, category string) (models.Batch, error)
}
