package models

import (
	"errors"
	"fmt"
	"strings"
)

// OptionCount número de opciones que debe tener cada pregunta
const OptionCount = 4

// Question estructura para representar una pregunta del quiz
type Question struct {
	ID           int      `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Batch lote ordenado de preguntas presentado como una ronda del quiz
type Batch []Question

var (
	errEmptyText     = errors.New("question text is empty")
	errOptionCount   = fmt.Errorf("question must have exactly %d options", OptionCount)
	errCorrectIndex  = fmt.Errorf("correctIndex must be between 0 and %d", OptionCount-1)
	errDuplicatedIDs = errors.New("duplicated question id in batch")
)

// Validate verifica las invariantes de una pregunta
func (q Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errEmptyText
	}
	if len(q.Options) != OptionCount {
		return errOptionCount
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return errCorrectIndex
	}
	return nil
}

// Public devuelve la pregunta sin la respuesta correcta ni la explicación
func (q Question) Public() PublicQuestion {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return PublicQuestion{
		ID:       q.ID,
		Question: q.Question,
		Options:  options,
	}
}

// PublicQuestion pregunta tal como se envía al jugador
type PublicQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// NumberMissingIDs asigna id a las preguntas marcadas en missing. Usa la
// posición (1..n) si está libre y si no el siguiente id sin usar. Un id 0
// explícito es válido y se respeta.
func (b Batch) NumberMissingIDs(missing []bool) {
	used := make(map[int]struct{}, len(b))
	for i := range b {
		if i >= len(missing) || !missing[i] {
			used[b[i].ID] = struct{}{}
		}
	}
	for i := range b {
		if i >= len(missing) || !missing[i] {
			continue
		}
		id := i + 1
		for {
			if _, taken := used[id]; !taken {
				break
			}
			id++
		}
		b[i].ID = id
		used[id] = struct{}{}
	}
}

// Validate verifica cada pregunta y que los ids sean únicos dentro del lote
func (b Batch) Validate() error {
	seen := make(map[int]struct{}, len(b))
	for i, q := range b {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d (position %d): %w", q.ID, i, err)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("question %d: %w", q.ID, errDuplicatedIDs)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// GenerateRequest cuerpo de POST /api/generate
type GenerateRequest struct {
	Subject string `json:"subject,omitempty"`
	Topic   string `json:"topic"`
	Count   int    `json:"count"`
}

// GenerateResponse respuesta exitosa de POST /api/generate
type GenerateResponse struct {
	Questions []Question `json:"questions"`
}

// ErrorEnvelope cuerpo de error de POST /api/generate
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIResponse estructura estándar para respuestas de API
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// QuestionResponse respuesta específica para preguntas
type QuestionResponse struct {
	Category  string     `json:"category,omitempty"`
	Questions []Question `json:"questions,omitempty"`
	Count     int        `json:"count"`
	Offset    int        `json:"offset"`
	Total     int        `json:"total"`
}

// CategoryInfo categoría con preguntas predefinidas
type CategoryInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Bundle preguntas predefinidas agrupadas por categoría
type Bundle map[string]Batch

// Total número de preguntas del bundle
func (b Bundle) Total() int {
	total := 0
	for _, questions := range b {
		total += len(questions)
	}
	return total
}
