package websocket

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/backsoul/ktet-quiz/pkg/models"
	"github.com/backsoul/ktet-quiz/pkg/quiz"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) last(t *testing.T) map[string]interface{} {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("no messages sent")
	}
	var msg map[string]interface{}
	if err := json.Unmarshal(f.messages[len(f.messages)-1], &msg); err != nil {
		t.Fatalf("invalid message: %v", err)
	}
	return msg
}

var _ quiz.Presenter = (*Presenter)(nil)

func TestRenderQuestionHidesCorrectIndex(t *testing.T) {
	conn := &fakeConn{}
	p := NewPresenter(NewClient(conn))

	p.RenderQuestion(models.Question{
		ID:           7,
		Question:     "Who proposed the theory of multiple intelligences?",
		Options:      []string{"Piaget", "Gardner", "Bruner", "Vygotsky"},
		CorrectIndex: 1,
		Explanation:  "Howard Gardner, 1983.",
	}, 0, 15)

	raw := string(conn.messages[0])
	if strings.Contains(raw, "correctIndex") || strings.Contains(raw, "Howard Gardner") {
		t.Errorf("Question message leaks the answer: %s", raw)
	}

	msg := conn.last(t)
	if msg["type"] != MessageQuestion {
		t.Errorf("Expected type %q, got %v", MessageQuestion, msg["type"])
	}
}

func TestFeedbackText(t *testing.T) {
	tests := []struct {
		name        string
		correct     bool
		explanation string
		want        string
	}{
		{"correct with explanation", true, "Because.", "Correct! Because."},
		{"correct without explanation", true, "", "Correct!"},
		{"incorrect with explanation", false, "Because.", "Incorrect. Because."},
		{"incorrect without explanation", false, "", "Sorry, that's not correct."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := feedbackText(tt.correct, tt.explanation); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRenderFeedbackRevealsAnswer(t *testing.T) {
	conn := &fakeConn{}
	p := NewPresenter(NewClient(conn))

	p.RenderFeedback(quiz.AnswerResult{Correct: false, SelectedIndex: 1, CorrectIndex: 2}, "")

	msg := conn.last(t)
	data := msg["data"].(map[string]interface{})
	if data["correctIndex"].(float64) != 2 || data["selectedIndex"].(float64) != 1 {
		t.Errorf("Unexpected feedback data: %v", data)
	}
	if data["message"] != "Sorry, that's not correct." {
		t.Errorf("Unexpected feedback message: %v", data["message"])
	}
}

func TestProgressView(t *testing.T) {
	view := progressView(4, 10)
	if view.Text != "Question 5 of 10" || view.Percent != 50 {
		t.Errorf("Unexpected progress: %+v", view)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a, b := &fakeConn{}, &fakeConn{}
	hub.Register(NewClient(a))
	hub.Register(NewClient(b))
	hub.BroadcastMessage(MessagePresetsReloaded, map[string]int{"categories": 3})

	// una segunda operación síncrona garantiza que el broadcast ya se procesó
	extra := NewClient(&fakeConn{})
	hub.Register(extra)
	hub.Unregister(extra)

	for _, conn := range []*fakeConn{a, b} {
		if msg := conn.last(t); msg["type"] != MessagePresetsReloaded {
			t.Errorf("Expected broadcast, got %v", msg["type"])
		}
	}
	if hub.ClientCount() != 2 {
		t.Errorf("Expected 2 clients, got %d", hub.ClientCount())
	}
}

func TestHubCallsReturnAfterStop(t *testing.T) {
	hub := NewHub()
	hub.Stop()

	conn := &fakeConn{}
	client := NewClient(conn)
	returned := make(chan struct{})
	go func() {
		hub.Register(client)
		hub.BroadcastMessage(MessagePresetsReloaded, nil)
		hub.Unregister(client)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Hub calls blocked after Stop")
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if !conn.closed {
		t.Error("Expected Unregister to close the connection after Stop")
	}
	if len(conn.messages) != 0 {
		t.Errorf("Expected no messages after Stop, got %d", len(conn.messages))
	}
}
