package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/backsoul/ktet-quiz/pkg/metrics"
	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/backsoul/ktet-quiz/pkg/services"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const (
	defaultTopic   = "General Knowledge"
	defaultSubject = "KTET Exam"
	defaultCount   = 10
	maxCount       = 50
)

// QuestionGenerator produce el objeto JSON con las preguntas
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req models.GenerateRequest) (json.RawMessage, error)
}

// GenerateHandler maneja POST /api/generate
type GenerateHandler struct {
	generator QuestionGenerator
}

// NewGenerateHandler crea el handler
func NewGenerateHandler(generator QuestionGenerator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

func respondWithEnvelope(ctx *fasthttp.RequestCtx, statusCode int, message, details string) {
	metrics.GenerateRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	respondWithJSON(ctx, statusCode, models.ErrorEnvelope{Error: message, Details: details})
}

// parseGenerateRequest lee el cuerpo y aplica los valores por defecto
func parseGenerateRequest(body []byte) (models.GenerateRequest, error) {
	req := models.GenerateRequest{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return req, err
		}
	}

	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		req.Topic = defaultTopic
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		req.Subject = defaultSubject
	}
	switch {
	case req.Count <= 0:
		req.Count = defaultCount
	case req.Count > maxCount:
		req.Count = maxCount
	}
	return req, nil
}

// Generate maneja POST /api/generate
func (h *GenerateHandler) Generate(ctx *fasthttp.RequestCtx) {
	requestID := uuid.NewString()
	ctx.Response.Header.Set("X-Request-ID", requestID)

	if !ctx.IsPost() {
		respondWithEnvelope(ctx, fasthttp.StatusMethodNotAllowed, "Method Not Allowed. Please use POST.", "")
		return
	}

	req, err := parseGenerateRequest(ctx.PostBody())
	if err != nil {
		respondWithEnvelope(ctx, fasthttp.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}

	log.Printf("📝 [%s] Solicitud de preguntas: tema %q, %d preguntas", requestID, req.Topic, req.Count)

	start := time.Now()
	questions, err := h.generator.GenerateQuestions(ctx, req)
	elapsed := time.Since(start)

	var providerErr *services.ProviderError
	var parseErr *services.ParseError
	switch {
	case err == nil:
		metrics.GenerateDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
		metrics.GenerateRequests.WithLabelValues(strconv.Itoa(fasthttp.StatusOK)).Inc()
		log.Printf("✅ [%s] Preguntas generadas para %q en %s", requestID, req.Topic, elapsed)
		ctx.Response.Header.Set("Content-Type", "application/json")
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBody(questions)

	case errors.Is(err, services.ErrMissingCredentials):
		log.Printf("❌ [%s] AI_API_KEY no está configurada", requestID)
		respondWithEnvelope(ctx, fasthttp.StatusInternalServerError, "API credentials are not configured on the server.", "")

	case errors.Is(err, services.ErrProviderTimeout):
		metrics.GenerateDuration.WithLabelValues("timeout").Observe(elapsed.Seconds())
		log.Printf("⏱️ [%s] El proveedor no respondió a tiempo", requestID)
		respondWithEnvelope(ctx, fasthttp.StatusGatewayTimeout, "The AI service took too long to respond. Please try again.", err.Error())

	case errors.As(err, &providerErr):
		metrics.GenerateDuration.WithLabelValues("provider_error").Observe(elapsed.Seconds())
		respondWithEnvelope(ctx, fasthttp.StatusBadGateway, "The AI service failed to generate questions. Please try again later.", providerErr.Body)

	case errors.As(err, &parseErr):
		metrics.GenerateDuration.WithLabelValues("parse_error").Observe(elapsed.Seconds())
		respondWithEnvelope(ctx, fasthttp.StatusInternalServerError, "The AI returned an invalid format. Could not parse the questions.", parseErr.Raw)

	default:
		log.Printf("❌ [%s] Error contactando al proveedor: %v", requestID, err)
		respondWithEnvelope(ctx, fasthttp.StatusInternalServerError, "An unexpected error occurred while contacting the AI service.", err.Error())
	}
}
