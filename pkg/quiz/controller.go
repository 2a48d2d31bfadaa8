package quiz

import (
	"context"
	"log"
	"strings"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/google/uuid"
)

// State estado de la máquina del quiz
type State int

const (
	StateIdle State = iota
	StateLoading
	StateActive
	StateAnswered
	StateComplete
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateAnswered:
		return "answered"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Options parámetros de producto del controlador
type Options struct {
	// ContinueWithGenerated pide un lote generado al agotar las preguntas predefinidas
	ContinueWithGenerated bool
}

// Controller conduce la máquina de estados de una sesión del quiz.
// No es seguro para uso concurrente: cada conexión tiene el suyo.
type Controller struct {
	id      string
	source  Source
	view    Presenter
	opts    Options
	state   State
	session *Session

	// acumulado de los lotes terminados de la ronda actual
	totalScore     int
	totalQuestions int
}

// NewController crea un controlador en estado IDLE
func NewController(source Source, view Presenter, opts Options) *Controller {
	return &Controller{
		id:     uuid.NewString(),
		source: source,
		view:   view,
		opts:   opts,
		state:  StateIdle,
	}
}

// ID identificador de la sesión para logs
func (c *Controller) ID() string {
	return c.id
}

// State estado actual
func (c *Controller) State() State {
	return c.state
}

// Snapshot copia de solo lectura del estado de la sesión
func (c *Controller) Snapshot() models.SessionSnapshot {
	snap := models.SessionSnapshot{
		ID:    c.id,
		State: c.state.String(),
	}
	if c.session != nil {
		snap.Category = c.session.Category
		snap.Mode = c.session.Mode.String()
		snap.Position = c.session.Position
		snap.Total = len(c.session.Batch)
		snap.Score = c.session.Score
		snap.Answered = c.session.Answered
		snap.PresetOffset = c.session.PresetOffset
	}
	return snap
}

// Dispatch traduce un evento del navegador a una transición
func (c *Controller) Dispatch(ctx context.Context, event models.ClientEvent) {
	switch event.Type {
	case models.EventSelectCategory:
		c.SelectCategory(ctx, event.Category)
	case models.EventSelectOption:
		if event.Index != nil {
			c.SubmitAnswer(*event.Index)
		}
	case models.EventNext:
		c.Next(ctx)
	case models.EventRestart:
		c.Restart()
	default:
		log.Printf("⚠️ [%s] Evento desconocido: %q", c.id, event.Type)
	}
}

// SelectCategory IDLE -> LOADING -> ACTIVE | ERROR. Desde ERROR se reintenta.
func (c *Controller) SelectCategory(ctx context.Context, category string) {
	if c.state == StateError {
		c.reset()
	}
	if c.state != StateIdle {
		return
	}

	category = strings.TrimSpace(category)
	c.session = NewSession(category)
	c.state = StateLoading
	c.view.RenderLoading(category)
	log.Printf("📚 [%s] Cargando preguntas para %q", c.id, category)

	load, err := c.source.Resolve(ctx, category)
	if err != nil {
		c.fail(err)
		return
	}

	c.session.Mode = load.Mode
	c.begin(load.Batch)
}

// SubmitAnswer ACTIVE -> ANSWERED. Fuera de ACTIVE no hace nada.
func (c *Controller) SubmitAnswer(selectedIndex int) {
	if c.state != StateActive {
		return
	}

	result, err := c.session.RecordAnswer(selectedIndex)
	if err != nil {
		log.Printf("⚠️ [%s] Respuesta ignorada: %v", c.id, err)
		return
	}

	q, _ := c.session.Current()
	c.state = StateAnswered
	c.view.RenderFeedback(result, q.Explanation)
}

// Next ANSWERED -> ACTIVE | LOADING | COMPLETE
func (c *Controller) Next(ctx context.Context) {
	if c.state != StateAnswered {
		return
	}

	if c.session.Advance() {
		c.state = StateActive
		c.present()
		return
	}

	c.totalScore += c.session.Score
	c.totalQuestions += len(c.session.Batch)

	if c.session.Mode == ModeGenerated {
		c.complete()
		return
	}

	c.session.PresetOffset += len(c.session.Batch)
	c.state = StateLoading
	c.view.RenderLoading(c.session.Category)

	batch, err := c.source.NextPreset(ctx, c.session.Category, c.session.PresetOffset)
	if err != nil {
		c.fail(err)
		return
	}
	if len(batch) > 0 {
		c.begin(batch)
		return
	}

	if !c.opts.ContinueWithGenerated {
		c.complete()
		return
	}

	log.Printf("🤖 [%s] Preguntas predefinidas agotadas, generando con IA", c.id)
	c.session.Mode = ModeGenerated
	batch, err = c.source.Generate(ctx, c.session.Category)
	if err != nil {
		c.fail(err)
		return
	}
	// un lote generado vacío termina en ERROR (EmptyBatch) vía StartBatch
	c.begin(batch)
}

// Restart vuelve a IDLE y descarta la sesión
func (c *Controller) Restart() {
	if c.state == StateIdle || c.state == StateLoading {
		return
	}
	c.reset()
}

func (c *Controller) begin(batch models.Batch) {
	if err := c.session.StartBatch(batch); err != nil {
		c.fail(err)
		return
	}
	c.state = StateActive
	log.Printf("✅ [%s] %d preguntas listas (%s)", c.id, len(batch), c.session.Mode)
	c.present()
}

func (c *Controller) present() {
	q, ok := c.session.Current()
	if !ok {
		return
	}
	total := len(c.session.Batch)
	c.view.RenderQuestion(q, c.session.Position, total)
	c.view.RenderProgress(c.session.Position, total)
}

func (c *Controller) complete() {
	c.state = StateComplete
	log.Printf("🏁 [%s] Quiz terminado: %d/%d", c.id, c.totalScore, c.totalQuestions)
	c.view.RenderFinalScore(c.totalScore, c.totalQuestions)
	c.session = nil
}

func (c *Controller) fail(err error) {
	c.state = StateError
	log.Printf("❌ [%s] Error cargando preguntas: %v", c.id, err)
	c.view.RenderError(UserMessage(err))
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.session = nil
	c.totalScore = 0
	c.totalQuestions = 0
}
