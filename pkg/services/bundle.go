package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/backsoul/ktet-quiz/pkg/models"
)

var errUnknownBundle = errors.New("unknown bundle format")

// bundleQuestion acepta los formatos de pregunta que han usado los bundles:
// correctIndex, answerIndex, o las claves a/b/c/d con la letra correcta.
type bundleQuestion struct {
	ID           *int     `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex"`
	AnswerIndex  *int     `json:"answerIndex"`
	A            string   `json:"a"`
	B            string   `json:"b"`
	C            string   `json:"c"`
	D            string   `json:"d"`
	Correct      string   `json:"correct"`
	Explanation  string   `json:"explanation"`
}

func (b bundleQuestion) toQuestion() models.Question {
	q := models.Question{
		Question:     strings.TrimSpace(b.Question),
		Options:      b.Options,
		CorrectIndex: -1,
		Explanation:  b.Explanation,
	}

	if b.ID != nil {
		q.ID = *b.ID
	}

	switch {
	case b.CorrectIndex != nil:
		q.CorrectIndex = *b.CorrectIndex
	case b.AnswerIndex != nil:
		q.CorrectIndex = *b.AnswerIndex
	}

	if len(q.Options) == 0 && b.A != "" {
		q.Options = []string{b.A, b.B, b.C, b.D}
		letter := strings.ToLower(strings.TrimSpace(b.Correct))
		if len(letter) == 1 && letter[0] >= 'a' && letter[0] <= 'd' {
			q.CorrectIndex = int(letter[0] - 'a')
		}
	}

	return q
}

type namedCategory struct {
	Name      string           `json:"name"`
	Questions []bundleQuestion `json:"questions"`
}

// ParseBundle interpreta un archivo de preguntas. Acepta:
//   - un arreglo plano (se guarda en defaultCategory)
//   - {"questions": [...], "metadata": {...}}
//   - {"categories": [{"name": ..., "questions": [...]}]}
//   - {"<categoría>": [...], ...}
//
// Las preguntas inválidas o con id repetido se descartan con un aviso.
func ParseBundle(data []byte, defaultCategory string) (models.Bundle, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errUnknownBundle
	}

	raw := map[string][]bundleQuestion{}

	switch trimmed[0] {
	case '[':
		var flat []bundleQuestion
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return nil, fmt.Errorf("error parsing JSON: %w", err)
		}
		raw[defaultCategory] = flat

	case '{':
		var top map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &top); err != nil {
			return nil, fmt.Errorf("error parsing JSON: %w", err)
		}

		if cats, ok := top["categories"]; ok {
			var named []namedCategory
			if err := json.Unmarshal(cats, &named); err != nil {
				return nil, fmt.Errorf("error parsing categories: %w", err)
			}
			for _, c := range named {
				name := strings.TrimSpace(c.Name)
				if name == "" {
					log.Printf("⚠️ Categoría sin nombre ignorada (%d preguntas)", len(c.Questions))
					continue
				}
				raw[name] = append(raw[name], c.Questions...)
			}
			break
		}

		if questions, ok := top["questions"]; ok {
			var flat []bundleQuestion
			if err := json.Unmarshal(questions, &flat); err != nil {
				return nil, fmt.Errorf("error parsing questions: %w", err)
			}
			raw[defaultCategory] = flat
			break
		}

		for name, value := range top {
			var list []bundleQuestion
			if err := json.Unmarshal(value, &list); err != nil {
				log.Printf("⚠️ Clave %q ignorada: no es una lista de preguntas", name)
				continue
			}
			raw[strings.TrimSpace(name)] = list
		}

	default:
		return nil, errUnknownBundle
	}

	bundle := make(models.Bundle, len(raw))
	for category, list := range raw {
		bundle[category] = cleanQuestions(category, list)
	}
	return bundle, nil
}

func cleanQuestions(category string, list []bundleQuestion) models.Batch {
	batch := make(models.Batch, 0, len(list))
	missing := make([]bool, 0, len(list))
	for _, b := range list {
		batch = append(batch, b.toQuestion())
		missing = append(missing, b.ID == nil)
	}
	batch.NumberMissingIDs(missing)

	seen := make(map[int]struct{}, len(batch))
	valid := batch[:0]
	for _, q := range batch {
		if err := q.Validate(); err != nil {
			log.Printf("⚠️ [%s] Pregunta %d descartada: %v", category, q.ID, err)
			continue
		}
		if _, dup := seen[q.ID]; dup {
			log.Printf("⚠️ [%s] Pregunta %d descartada: id repetido", category, q.ID)
			continue
		}
		seen[q.ID] = struct{}{}
		valid = append(valid, q)
	}
	return valid
}
