package models

// Tipos de eventos que envía el navegador
const (
	EventSelectCategory = "selectCategory"
	EventSelectOption   = "selectOption"
	EventNext           = "next"
	EventRestart        = "restart"
)

// ClientEvent evento de usuario recibido por WebSocket
type ClientEvent struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Index    *int   `json:"index,omitempty"`
}
