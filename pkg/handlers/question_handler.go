package handlers

import (
	"fmt"
	"strconv"

	"github.com/backsoul/ktet-quiz/pkg/services"
	"github.com/backsoul/ktet-quiz/pkg/websocket"
	"github.com/valyala/fasthttp"
)

// QuestionHandler maneja las peticiones HTTP para preguntas predefinidas
type QuestionHandler struct {
	questionService *services.QuestionService
	hub             *websocket.Hub
}

// NewQuestionHandler crea una nueva instancia del handler
func NewQuestionHandler(questionService *services.QuestionService, hub *websocket.Hub) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		hub:             hub,
	}
}

// GetCategories maneja GET /api/categories
func (h *QuestionHandler) GetCategories(ctx *fasthttp.RequestCtx) {
	categories, err := h.questionService.GetCategories(ctx)
	if err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, fmt.Sprintf("Error obteniendo categorías: %v", err))
		return
	}

	respondWithSuccess(ctx, categories, "Categorías obtenidas exitosamente")
}

// GetQuestions maneja GET /api/questions?category=...&offset=...
func (h *QuestionHandler) GetQuestions(ctx *fasthttp.RequestCtx) {
	category := string(ctx.QueryArgs().Peek("category"))
	if category == "" {
		respondWithError(ctx, fasthttp.StatusBadRequest, "Parámetro 'category' es requerido")
		return
	}

	offset := 0
	if raw := string(ctx.QueryArgs().Peek("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(ctx, fasthttp.StatusBadRequest, "Parámetro 'offset' inválido")
			return
		}
		offset = n
	}

	window, err := h.questionService.GetWindow(ctx, category, offset)
	if err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, fmt.Sprintf("Error obteniendo preguntas: %v", err))
		return
	}

	respondWithSuccess(ctx, window, "Preguntas obtenidas exitosamente")
}

// ReloadQuestions maneja POST /api/questions/reload
func (h *QuestionHandler) ReloadQuestions(ctx *fasthttp.RequestCtx) {
	bundle, err := h.questionService.ReloadQuestions(ctx)
	if err != nil {
		respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error recargando preguntas: %v", err))
		return
	}

	summary := map[string]interface{}{
		"categories": len(bundle),
		"questions":  bundle.Total(),
	}
	if h.hub != nil {
		h.hub.BroadcastMessage(websocket.MessagePresetsReloaded, summary)
	}

	respondWithSuccess(ctx, summary, "Preguntas recargadas exitosamente")
}

// HealthCheck maneja GET /api/health
func (h *QuestionHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	if err := h.questionService.HealthCheck(ctx); err != nil {
		respondWithError(ctx, fasthttp.StatusServiceUnavailable, fmt.Sprintf("Servicio no disponible: %v", err))
		return
	}

	respondWithSuccess(ctx, map[string]interface{}{
		"status": "healthy",
		"store":  "connected",
	}, "Servicio funcionando correctamente")
}
