package handlers

import (
	"context"
	"encoding/json"
	"log"

	"github.com/backsoul/ktet-quiz/pkg/metrics"
	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/backsoul/ktet-quiz/pkg/quiz"
	websocketHub "github.com/backsoul/ktet-quiz/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true
	},
}

// QuizSocketHandler una sesión de quiz por conexión WebSocket
type QuizSocketHandler struct {
	source quiz.Source
	hub    *websocketHub.Hub
	opts   quiz.Options
}

// NewQuizSocketHandler crea el handler
func NewQuizSocketHandler(source quiz.Source, hub *websocketHub.Hub, opts quiz.Options) *QuizSocketHandler {
	return &QuizSocketHandler{
		source: source,
		hub:    hub,
		opts:   opts,
	}
}

// HandleWebSocket maneja GET /ws
func (h *QuizSocketHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		client := websocketHub.NewClient(ws)
		h.hub.Register(client)
		defer h.hub.Unregister(client)

		metrics.ActiveQuizSessions.Inc()
		defer metrics.ActiveQuizSessions.Dec()

		h.serve(client, ws)
	})

	if err != nil {
		log.Printf("❌ Error upgrading to WebSocket: %v", err)
		ctx.Error("Error upgrading to WebSocket", fasthttp.StatusInternalServerError)
	}
}

type messageReader interface {
	ReadMessage() (messageType int, p []byte, err error)
}

// serve lee eventos hasta que se cierre la conexión. Todos los eventos de
// una conexión se procesan en esta goroutine.
func (h *QuizSocketHandler) serve(client *websocketHub.Client, conn messageReader) {
	sessionCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := quiz.NewController(h.source, websocketHub.NewPresenter(client), h.opts)
	log.Printf("🎮 [%s] Nueva sesión de quiz", controller.ID())
	defer func() {
		snap := controller.Snapshot()
		log.Printf("👋 [%s] Sesión cerrada en estado %s", snap.ID, snap.State)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ [%s] Error leyendo mensaje WebSocket: %v", controller.ID(), err)
			}
			return
		}

		var event models.ClientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("⚠️ [%s] Evento inválido: %v", controller.ID(), err)
			continue
		}

		controller.Dispatch(sessionCtx, event)
	}
}
