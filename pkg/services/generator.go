package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/backsoul/ktet-quiz/pkg/quiz"
	"github.com/valyala/fasthttp"
)

// GeneratorClient cliente de POST /api/generate
type GeneratorClient struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
}

// NewGeneratorClient crea el cliente; client nil usa uno por defecto
func NewGeneratorClient(client *fasthttp.Client, url string, timeout time.Duration) *GeneratorClient {
	if client == nil {
		client = &fasthttp.Client{Name: "ktet-quiz"}
	}
	if timeout <= 0 {
		timeout = 9 * time.Second
	}
	return &GeneratorClient{client: client, url: url, timeout: timeout}
}

type generateResult struct {
	status int
	body   []byte
	err    error
}

// Generate pide un lote al generador. Si vence el plazo devuelve ErrTimeout
// enseguida; la respuesta que llegue después se descarta.
func (g *GeneratorClient) Generate(ctx context.Context, req models.GenerateRequest) (models.Batch, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error serializing generate request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	deadline, _ := ctx.Deadline()

	// buffer de 1 para que la goroutine no quede bloqueada si nadie espera
	results := make(chan generateResult, 1)
	go func() {
		httpReq := fasthttp.AcquireRequest()
		httpResp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(httpReq)
		defer fasthttp.ReleaseResponse(httpResp)

		httpReq.SetRequestURI(g.url)
		httpReq.Header.SetMethod(fasthttp.MethodPost)
		httpReq.Header.SetContentType("application/json")
		httpReq.SetBody(payload)

		err := g.client.DoDeadline(httpReq, httpResp, deadline)
		results <- generateResult{
			status: httpResp.StatusCode(),
			body:   append([]byte(nil), httpResp.Body()...),
			err:    err,
		}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("⏱️ Generador sin respuesta tras %s para %q", g.timeout, req.Topic)
			return nil, quiz.ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", quiz.ErrNetwork, ctx.Err())
	case res := <-results:
		if res.err != nil {
			if errors.Is(res.err, fasthttp.ErrTimeout) {
				return nil, quiz.ErrTimeout
			}
			return nil, fmt.Errorf("%w: %v", quiz.ErrNetwork, res.err)
		}
		return decodeGenerateResponse(res.status, res.body)
	}
}

// generatedQuestion pregunta tal como llega del generador; id puede faltar
type generatedQuestion struct {
	ID           *int     `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

func (g generatedQuestion) toQuestion() models.Question {
	q := models.Question{
		Question:     g.Question,
		Options:      g.Options,
		CorrectIndex: g.CorrectIndex,
		Explanation:  g.Explanation,
	}
	if g.ID != nil {
		q.ID = *g.ID
	}
	return q
}

// decodeGenerateResponse traduce la respuesta del generador a un lote válido
func decodeGenerateResponse(status int, body []byte) (models.Batch, error) {
	if !json.Valid(body) {
		if status == fasthttp.StatusGatewayTimeout {
			return nil, quiz.ErrTimeout
		}
		if status != fasthttp.StatusOK {
			return nil, &quiz.UpstreamError{Status: status, Message: fasthttp.StatusMessage(status)}
		}
		return nil, quiz.ErrUnexpectedBody
	}

	if status != fasthttp.StatusOK {
		var envelope models.ErrorEnvelope
		_ = json.Unmarshal(body, &envelope)
		if status == fasthttp.StatusGatewayTimeout {
			return nil, fmt.Errorf("%w: %s", quiz.ErrTimeout, envelope.Error)
		}
		return nil, &quiz.UpstreamError{Status: status, Message: envelope.Error, Details: envelope.Details}
	}

	var response struct {
		Questions *[]generatedQuestion `json:"questions"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", quiz.ErrMalformedResponse, err)
	}
	if response.Questions == nil {
		return nil, fmt.Errorf("%w: missing questions array", quiz.ErrMalformedResponse)
	}

	batch := make(models.Batch, len(*response.Questions))
	missing := make([]bool, len(*response.Questions))
	for i, g := range *response.Questions {
		batch[i] = g.toQuestion()
		missing[i] = g.ID == nil
	}
	batch.NumberMissingIDs(missing)
	if err := batch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", quiz.ErrMalformedResponse, err)
	}
	return batch, nil
}
