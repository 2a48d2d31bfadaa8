package models

// SessionSnapshot vista de solo lectura de la sesión de un jugador
type SessionSnapshot struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	Mode         string `json:"mode"`
	State        string `json:"state"`
	Position     int    `json:"position"`
	Total        int    `json:"total"`
	Score        int    `json:"score"`
	Answered     bool   `json:"answered"`
	PresetOffset int    `json:"presetOffset"`
}

// QuestionView mensaje para mostrar una pregunta
type QuestionView struct {
	Question PublicQuestion `json:"question"`
	Position int            `json:"position"`
	Total    int            `json:"total"`
}

// FeedbackView mensaje con el resultado de una respuesta
type FeedbackView struct {
	Correct       bool   `json:"correct"`
	SelectedIndex int    `json:"selectedIndex"`
	CorrectIndex  int    `json:"correctIndex"`
	Message       string `json:"message"`
}

// ProgressView progreso dentro del lote actual
type ProgressView struct {
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Text     string `json:"text"`
	Percent  int    `json:"percent"`
}

// ScoreView puntaje final
type ScoreView struct {
	Score int    `json:"score"`
	Total int    `json:"total"`
	Text  string `json:"text"`
}

// ErrorView mensaje de error legible para el jugador
type ErrorView struct {
	Message string `json:"message"`
}

// LoadingView aviso de carga de preguntas
type LoadingView struct {
	Category string `json:"category"`
}
