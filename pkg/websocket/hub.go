package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/fasthttp/websocket"
)

// Conn conexión WebSocket usada por los clientes
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client conexión registrada; las escrituras se serializan con writeMu
type Client struct {
	conn    Conn
	writeMu sync.Mutex
}

// NewClient envuelve una conexión
func NewClient(conn Conn) *Client {
	return &Client{conn: conn}
}

// Send escribe un mensaje ya serializado
func (c *Client) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// SendMessage serializa y escribe un mensaje tipado
func (c *Client) SendMessage(msgType string, data interface{}) error {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		return err
	}
	return c.Send(payload)
}

// Close cierra la conexión
func (c *Client) Close() error {
	return c.conn.Close()
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			log.Printf("🔌 Cliente WebSocket conectado. Total: %d", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			log.Printf("👋 Cliente WebSocket desconectado. Total: %d", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.Send(message); err != nil {
					log.Printf("⚠️ Error enviando mensaje WebSocket: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			return
		}
	}
}

// Stop termina Run
func (h *Hub) Stop() {
	close(h.done)
}

// Register y Unregister no bloquean después de Stop
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// ClientCount número de clientes conectados
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) BroadcastMessage(msgType string, data interface{}) {
	msg := Message{
		Type: msgType,
		Data: data,
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		log.Printf("❌ Error serializando mensaje: %v", err)
		return
	}

	select {
	case h.broadcast <- msgData:
	case <-h.done:
		log.Printf("⚠️ Hub detenido, mensaje %q descartado", msgType)
	}
}
