package websocket

import (
	"fmt"
	"log"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/backsoul/ktet-quiz/pkg/quiz"
)

// Tipos de mensajes que recibe el navegador
const (
	MessageLoading         = "loading"
	MessageQuestion        = "question"
	MessageFeedback        = "feedback"
	MessageProgress        = "progress"
	MessageFinalScore      = "finalScore"
	MessageError           = "error"
	MessagePresetsReloaded = "presetsReloaded"
)

// Presenter dibuja el quiz enviando mensajes por la conexión del jugador
type Presenter struct {
	client *Client
}

// NewPresenter crea el presentador de un cliente
func NewPresenter(client *Client) *Presenter {
	return &Presenter{client: client}
}

func (p *Presenter) send(msgType string, data interface{}) {
	if err := p.client.SendMessage(msgType, data); err != nil {
		log.Printf("⚠️ Error enviando %s: %v", msgType, err)
	}
}

func (p *Presenter) RenderLoading(category string) {
	p.send(MessageLoading, models.LoadingView{Category: category})
}

// RenderQuestion envía la pregunta sin la respuesta correcta
func (p *Presenter) RenderQuestion(q models.Question, position, total int) {
	p.send(MessageQuestion, models.QuestionView{
		Question: q.Public(),
		Position: position,
		Total:    total,
	})
}

func (p *Presenter) RenderFeedback(result quiz.AnswerResult, explanation string) {
	p.send(MessageFeedback, models.FeedbackView{
		Correct:       result.Correct,
		SelectedIndex: result.SelectedIndex,
		CorrectIndex:  result.CorrectIndex,
		Message:       feedbackText(result.Correct, explanation),
	})
}

func (p *Presenter) RenderProgress(position, total int) {
	p.send(MessageProgress, progressView(position, total))
}

func (p *Presenter) RenderFinalScore(score, total int) {
	p.send(MessageFinalScore, models.ScoreView{
		Score: score,
		Total: total,
		Text:  fmt.Sprintf("%d / %d", score, total),
	})
}

func (p *Presenter) RenderError(message string) {
	p.send(MessageError, models.ErrorView{Message: message})
}

func feedbackText(correct bool, explanation string) string {
	switch {
	case correct:
		if explanation == "" {
			return "Correct!"
		}
		return "Correct! " + explanation
	case explanation == "":
		return "Sorry, that's not correct."
	default:
		return "Incorrect. " + explanation
	}
}

func progressView(position, total int) models.ProgressView {
	view := models.ProgressView{
		Position: position,
		Total:    total,
		Text:     fmt.Sprintf("Question %d of %d", position+1, total),
	}
	if total > 0 {
		view.Percent = (position + 1) * 100 / total
	}
	return view
}
