package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"heritage/internal/hook/handlers"
	"heritage/internal/report"

	"github.com/gorilla/websocket"
)

// Event types sent over the analysis WebSocket.
const (
	EventStep   = "step"
	EventResult = "result"
	EventError  = "error"
)

// Event is one message of the analysis stream.
type Event struct {
	Type   string           `json:"type"`
	Step   *handlers.Step   `json:"step,omitempty"`
	Result *report.Analysis `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(ev)
}

// handleWebSocket reads one AnalyzeRequest, streams a step event per tool
// dispatch and ends with a result or error event. The invocation is
// cancelled if the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade: %v", err)
		return
	}
	c := &wsConn{conn: conn}
	defer conn.Close()

	var req AnalyzeRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = c.send(Event{Type: EventError, Error: "invalid request: " + err.Error()})
		return
	}
	if err := req.normalize(true); err != nil {
		_ = c.send(Event{Type: EventError, Error: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		// Keep reading so close frames are handled; an error means the peer is gone.
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	analysis, err := s.analyze(ctx, &req, func(step handlers.Step) {
		if err := c.send(Event{Type: EventStep, Step: &step}); err != nil {
			s.logger.Debug("websocket step: %v", err)
		}
	})
	if err != nil {
		s.logger.Error("analysis failed: %v", err)
		_ = c.send(Event{Type: EventError, Error: userMessage(err)})
		return
	}
	_ = c.send(Event{Type: EventResult, Result: analysis})

	c.mu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.mu.Unlock()
}
