package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/valyala/fasthttp"
)

// Errores del proveedor de IA
var (
	ErrMissingCredentials = errors.New("API credentials are not configured on the server")
	ErrProviderTimeout    = errors.New("completion provider timed out")
)

// ProviderError respuesta no exitosa del proveedor
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion provider returned %d", e.Status)
}

// ParseError el contenido devuelto por el modelo no es JSON
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON from completion provider: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CompletionConfig datos del proveedor compatible con OpenAI
type CompletionConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []ChatCompletionMessage `json:"messages"`
	Stream   bool                    `json:"stream"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatCompletionMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are a helpful assistant that only responds in valid, raw JSON format without any extra text or markdown."

// CompletionService genera preguntas con un modelo de chat
type CompletionService struct {
	client *fasthttp.Client
	config CompletionConfig
}

// NewCompletionService crea el servicio; client nil usa uno por defecto
func NewCompletionService(client *fasthttp.Client, config CompletionConfig) *CompletionService {
	if client == nil {
		client = &fasthttp.Client{Name: "ktet-quiz"}
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &CompletionService{client: client, config: config}
}

func buildPrompt(req models.GenerateRequest) string {
	return fmt.Sprintf(`You are an expert question generator for the Kerala Teacher Eligibility Test (KTET).
Your task is to generate exactly %d multiple-choice questions.

CRITICAL INSTRUCTIONS:
1. The topic for these questions MUST be: <topic>%s</topic>. Do NOT generate questions on any other topic.
2. The subject context is: <subject>%s</subject>.
3. You MUST respond with ONLY a valid JSON object. Do not include any text, greetings, explanations, or markdown fences like `+"```json"+` before or after the JSON object.
4. The JSON structure MUST be: { "questions": [ ... ] }.
5. Each question object inside the "questions" array must have these exact keys: "id" (a unique number), "question" (string), "options" (an array of exactly 4 strings), "correctIndex" (a number from 0 to 3), and "explanation" (a string explaining the correct answer).

Now, generate the questions for the topic: <topic>%s</topic>.`, req.Count, req.Topic, req.Subject, req.Topic)
}

// stripFences quita los bloques ```json que algunos modelos añaden
func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// GenerateQuestions pide al proveedor las preguntas y devuelve el objeto JSON del modelo
func (s *CompletionService) GenerateQuestions(ctx context.Context, req models.GenerateRequest) (json.RawMessage, error) {
	if s.config.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	payload, err := json.Marshal(ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []ChatCompletionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error serializing chat request: %w", err)
	}

	httpReq := fasthttp.AcquireRequest()
	httpResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(httpReq)
	defer fasthttp.ReleaseResponse(httpResp)

	httpReq.SetRequestURI(s.config.BaseURL + "/chat/completions")
	httpReq.Header.SetMethod(fasthttp.MethodPost)
	httpReq.Header.SetContentType("application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	httpReq.SetBody(payload)

	deadline := time.Now().Add(s.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	log.Printf("🤖 Generando %d preguntas de %q con %s", req.Count, req.Topic, s.config.Model)
	if err := s.client.DoDeadline(httpReq, httpResp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, ErrProviderTimeout
		}
		return nil, fmt.Errorf("error contacting completion provider: %w", err)
	}

	if status := httpResp.StatusCode(); status < 200 || status >= 300 {
		body := string(httpResp.Body())
		log.Printf("❌ Error del proveedor (%s): %d %s", s.config.Model, status, body)
		return nil, &ProviderError{Status: status, Body: body}
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(httpResp.Body(), &completion); err != nil {
		return nil, &ParseError{Raw: string(httpResp.Body()), Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &ParseError{Raw: string(httpResp.Body()), Err: errors.New("no choices in completion")}
	}

	content := stripFences(completion.Choices[0].Message.Content)
	trimmed := []byte(content)
	if !json.Valid(trimmed) || !bytes.HasPrefix(trimmed, []byte("{")) {
		log.Printf("❌ Respuesta de IA no es JSON: %s", content)
		return nil, &ParseError{Raw: content, Err: errors.New("content is not a JSON object")}
	}

	return json.RawMessage(trimmed), nil
}
