package quiz

import (
	"errors"
	"fmt"
)

// Errores al cargar un lote de preguntas. Ninguno se reintenta automáticamente.
var (
	ErrInvalidCategory   = errors.New("invalid category")
	ErrEmptyBatch        = errors.New("empty batch")
	ErrTimeout           = errors.New("question source timed out")
	ErrUpstream          = errors.New("question generator failed")
	ErrMalformedResponse = errors.New("malformed generator response")
	ErrNetwork           = errors.New("network error")

	// ErrUnexpectedBody cuerpo que no es JSON, normalmente una página 404
	ErrUnexpectedBody = fmt.Errorf("%w: response body is not JSON", ErrNetwork)
)

// Errores de la sesión, absorbidos por el controlador
var (
	ErrAlreadyAnswered   = errors.New("question already answered")
	ErrNoCurrentQuestion = errors.New("no current question")
	ErrInvalidOption     = errors.New("invalid option index")
)

// UpstreamError respuesta no exitosa del generador remoto
type UpstreamError struct {
	Status  int
	Message string
	Details string
}

func (e *UpstreamError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("generator returned %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("generator returned %d: %s", e.Status, e.Message)
}

// Is permite errors.Is(err, ErrUpstream)
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// UserMessage traduce un error de carga a un mensaje para el jugador
func UserMessage(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCategory):
		return "This section is not a quiz topic. Please pick a quiz category."
	case errors.Is(err, ErrEmptyBatch):
		return "No questions were found for this category. Please try another one."
	case errors.Is(err, ErrTimeout):
		return "The question generator took too long to respond. Please try again."
	case errors.As(err, &upstream):
		if upstream.Message != "" {
			return fmt.Sprintf("The AI service failed to generate questions (%d): %s", upstream.Status, upstream.Message)
		}
		return fmt.Sprintf("The AI service failed to generate questions (status %d). Please try again later.", upstream.Status)
	case errors.Is(err, ErrUpstream):
		return "The AI service failed to generate questions. Please try again later."
	case errors.Is(err, ErrMalformedResponse):
		return "The AI returned questions in an invalid format. Please try again."
	case errors.Is(err, ErrUnexpectedBody):
		return "The server returned an unexpected response. This can happen if the API endpoint is not found (404)."
	case errors.Is(err, ErrNetwork):
		return "Could not load quiz data. Please check your connection and try again."
	default:
		return "Something went wrong while loading the quiz. Please try again."
	}
}
