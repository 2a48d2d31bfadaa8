package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/valyala/fasthttp"
)

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"questions":[]}`, `{"questions":[]}`},
		{"```json\n{\"questions\":[]}\n```", `{"questions":[]}`},
		{"```\n{\"questions\":[]}\n```", `{"questions":[]}`},
		{"  ```json{\"questions\":[]}```  ", `{"questions":[]}`},
	}

	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateQuestionsMissingKey(t *testing.T) {
	service := NewCompletionService(nil, CompletionConfig{BaseURL: "http://provider"})

	if _, err := service.GenerateQuestions(context.Background(), models.GenerateRequest{Topic: "Pedagogy", Count: 10}); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

func TestGenerateQuestionsCallsProvider(t *testing.T) {
	var auth, path string
	var sent ChatCompletionRequest
	client := startServer(t, func(ctx *fasthttp.RequestCtx) {
		auth = string(ctx.Request.Header.Peek("Authorization"))
		path = string(ctx.Path())
		json.Unmarshal(ctx.PostBody(), &sent)
		ctx.SetBodyString(completionBody("```json\n{\"questions\":[{\"id\":1,\"question\":\"Q\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"correctIndex\":0}]}\n```"))
	})

	service := NewCompletionService(client, CompletionConfig{
		BaseURL: "http://provider/api/v1/",
		APIKey:  "secret",
		Model:   "mistralai/mistral-7b-instruct:free",
		Timeout: time.Second,
	})

	raw, err := service.GenerateQuestions(context.Background(), models.GenerateRequest{Subject: "KTET Exam", Topic: "Child Development", Count: 5})
	if err != nil {
		t.Fatal(err)
	}

	if auth != "Bearer secret" {
		t.Errorf("Unexpected Authorization header: %q", auth)
	}
	if path != "/api/v1/chat/completions" {
		t.Errorf("Unexpected path: %q", path)
	}
	if sent.Model != "mistralai/mistral-7b-instruct:free" || len(sent.Messages) != 2 {
		t.Errorf("Unexpected chat request: %+v", sent)
	}
	if !strings.Contains(sent.Messages[1].Content, "<topic>Child Development</topic>") || !strings.Contains(sent.Messages[1].Content, "exactly 5") {
		t.Errorf("Prompt does not carry the request: %s", sent.Messages[1].Content)
	}

	var decoded models.GenerateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil || len(decoded.Questions) != 1 {
		t.Errorf("Expected one question, got %s (%v)", raw, err)
	}
}

func TestGenerateQuestionsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler fasthttp.RequestHandler
		check   func(t *testing.T, err error)
	}{
		{
			name:    "provider failure",
			handler: respond(429, `{"error":{"message":"rate limited"}}`),
			check: func(t *testing.T, err error) {
				var providerErr *ProviderError
				if !errors.As(err, &providerErr) || providerErr.Status != 429 || !strings.Contains(providerErr.Body, "rate limited") {
					t.Errorf("Expected ProviderError 429, got %v", err)
				}
			},
		},
		{
			name:    "content is prose",
			handler: respond(200, completionBody("Sure! Here are your questions: 1. ...")),
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) || !strings.HasPrefix(parseErr.Raw, "Sure!") {
					t.Errorf("Expected ParseError with raw content, got %v", err)
				}
			},
		},
		{
			name:    "no choices",
			handler: respond(200, `{"choices":[]}`),
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("Expected ParseError, got %v", err)
				}
			},
		},
		{
			name: "slow provider",
			handler: func(ctx *fasthttp.RequestCtx) {
				time.Sleep(200 * time.Millisecond)
				ctx.SetBodyString(completionBody(`{"questions":[]}`))
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrProviderTimeout) {
					t.Errorf("Expected ErrProviderTimeout, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewCompletionService(startServer(t, tt.handler), CompletionConfig{
				BaseURL: "http://provider",
				APIKey:  "secret",
				Model:   "test-model",
				Timeout: 50 * time.Millisecond,
			})
			_, err := service.GenerateQuestions(context.Background(), models.GenerateRequest{Topic: "Pedagogy", Count: 10})
			tt.check(t, err)
		})
	}
}
