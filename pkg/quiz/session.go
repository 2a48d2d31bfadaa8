package quiz

import (
	"github.com/backsoul/ktet-quiz/pkg/models"
)

// SourceMode origen de las preguntas de la sesión
type SourceMode int

const (
	ModePreset SourceMode = iota
	ModeGenerated
)

func (m SourceMode) String() string {
	if m == ModeGenerated {
		return "generated"
	}
	return "preset"
}

// AnswerResult resultado de responder la pregunta actual
type AnswerResult struct {
	Correct       bool `json:"correct"`
	SelectedIndex int  `json:"selectedIndex"`
	CorrectIndex  int  `json:"correctIndex"`
}

// Session estado mutable de un intento del quiz. Solo el Controller la modifica.
type Session struct {
	Batch        models.Batch
	Position     int
	Score        int
	Answered     bool
	Category     string
	Mode         SourceMode
	PresetOffset int
}

// NewSession crea una sesión vacía para una categoría
func NewSession(category string) *Session {
	return &Session{Category: category}
}

// StartBatch reinicia posición y puntaje con un nuevo lote
func (s *Session) StartBatch(batch models.Batch) error {
	if len(batch) == 0 {
		return ErrEmptyBatch
	}
	s.Batch = batch
	s.Position = 0
	s.Score = 0
	s.Answered = false
	return nil
}

// Current devuelve la pregunta en la posición actual
func (s *Session) Current() (models.Question, bool) {
	if s.Position < 0 || s.Position >= len(s.Batch) {
		return models.Question{}, false
	}
	return s.Batch[s.Position], true
}

// RecordAnswer registra la respuesta de la pregunta actual, una sola vez
func (s *Session) RecordAnswer(selectedIndex int) (AnswerResult, error) {
	q, ok := s.Current()
	if !ok {
		return AnswerResult{}, ErrNoCurrentQuestion
	}
	if s.Answered {
		return AnswerResult{}, ErrAlreadyAnswered
	}
	if selectedIndex < 0 || selectedIndex >= len(q.Options) {
		return AnswerResult{}, ErrInvalidOption
	}

	s.Answered = true
	correct := selectedIndex == q.CorrectIndex
	if correct {
		s.Score++
	}

	return AnswerResult{
		Correct:       correct,
		SelectedIndex: selectedIndex,
		CorrectIndex:  q.CorrectIndex,
	}, nil
}

// Advance pasa a la siguiente posición; devuelve false cuando el lote terminó
func (s *Session) Advance() bool {
	if s.Position < len(s.Batch) {
		s.Position++
	}
	s.Answered = false
	return s.Position < len(s.Batch)
}

// Done indica si se recorrió todo el lote
func (s *Session) Done() bool {
	return s.Position >= len(s.Batch)
}
