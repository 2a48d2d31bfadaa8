package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/backsoul/ktet-quiz/pkg/services"
	"github.com/valyala/fasthttp"
)

type fakeGenerator struct {
	raw  json.RawMessage
	err  error
	reqs []models.GenerateRequest
}

func (f *fakeGenerator) GenerateQuestions(ctx context.Context, req models.GenerateRequest) (json.RawMessage, error) {
	f.reqs = append(f.reqs, req)
	return f.raw, f.err
}

func newRequest(method, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI("/api/generate")
	ctx.Request.SetBodyString(body)
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) models.ErrorEnvelope {
	t.Helper()
	var envelope models.ErrorEnvelope
	if err := json.Unmarshal(ctx.Response.Body(), &envelope); err != nil {
		t.Fatalf("invalid error envelope %q: %v", ctx.Response.Body(), err)
	}
	return envelope
}

func TestGenerateStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		err     error
		status  int
		message string
		details string
	}{
		{"wrong method", fasthttp.MethodGet, nil, 405, "Method Not Allowed. Please use POST.", ""},
		{"missing credentials", fasthttp.MethodPost, services.ErrMissingCredentials, 500, "API credentials are not configured on the server.", ""},
		{"provider failure", fasthttp.MethodPost, &services.ProviderError{Status: 429, Body: "rate limited"}, 502, "The AI service failed to generate questions. Please try again later.", "rate limited"},
		{"provider timeout", fasthttp.MethodPost, services.ErrProviderTimeout, 504, "The AI service took too long to respond. Please try again.", services.ErrProviderTimeout.Error()},
		{"unparseable content", fasthttp.MethodPost, &services.ParseError{Raw: "Sure! Here you go", Err: errors.New("bad")}, 500, "The AI returned an invalid format. Could not parse the questions.", "Sure! Here you go"},
		{"transport failure", fasthttp.MethodPost, errors.New("dial tcp: refused"), 500, "An unexpected error occurred while contacting the AI service.", "dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.err}
			ctx := newRequest(tt.method, `{"topic":"Pedagogy"}`)

			NewGenerateHandler(gen).Generate(ctx)

			if ctx.Response.StatusCode() != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, ctx.Response.StatusCode())
			}
			envelope := decodeEnvelope(t, ctx)
			if envelope.Error != tt.message || envelope.Details != tt.details {
				t.Errorf("Unexpected envelope: %+v", envelope)
			}
			if len(ctx.Response.Header.Peek("X-Request-ID")) == 0 {
				t.Error("Expected X-Request-ID header")
			}
		})
	}
}

func TestGenerateRejectsInvalidBody(t *testing.T) {
	gen := &fakeGenerator{}
	ctx := newRequest(fasthttp.MethodPost, `{"topic":`)

	NewGenerateHandler(gen).Generate(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Errorf("Expected 400, got %d", ctx.Response.StatusCode())
	}
	if len(gen.reqs) != 0 {
		t.Errorf("Expected no generator calls, got %d", len(gen.reqs))
	}
}

func TestGenerateSuccessAndDefaults(t *testing.T) {
	raw := json.RawMessage(`{"questions":[{"id":1,"question":"Q","options":["a","b","c","d"],"correctIndex":0}]}`)
	gen := &fakeGenerator{raw: raw}
	ctx := newRequest(fasthttp.MethodPost, "")

	NewGenerateHandler(gen).Generate(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("Expected 200, got %d", ctx.Response.StatusCode())
	}
	if string(ctx.Response.Body()) != string(raw) {
		t.Errorf("Unexpected body: %s", ctx.Response.Body())
	}

	want := models.GenerateRequest{Subject: "KTET Exam", Topic: "General Knowledge", Count: 10}
	if len(gen.reqs) != 1 || gen.reqs[0] != want {
		t.Errorf("Expected defaults %+v, got %+v", want, gen.reqs)
	}
}

func TestParseGenerateRequestClampsCount(t *testing.T) {
	req, err := parseGenerateRequest([]byte(`{"topic":" Mathematics ","count":500,"subject":"KTET Category I"}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.Topic != "Mathematics" || req.Count != maxCount || req.Subject != "KTET Category I" {
		t.Errorf("Unexpected request: %+v", req)
	}
}
