package server

import (
	"net/http"
	"sync"
	"time"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/stylesheet"
	"github.com/gorilla/websocket"
)

type client struct {
	conn  *websocket.Conn
	queue chan any
	once  sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.queue) })
}

// send queues v without blocking; a full queue drops the message. Callers
// must not send after close.
func (c *client) send(v any) {
	select {
	case c.queue <- v:
	default:
		log.Debug("Dropping message for slow client %s", c.conn.RemoteAddr())
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for v := range c.queue {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(v); err != nil {
			log.Debug("WebSocket write failed: %v", err)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

type wsError struct {
	Error string `json:"error"`
	Ident string `json:"ident,omitempty"`
}

func (s *Server) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug("WebSocket upgrade failed: %v", err)
		return
	}
	c := &client{conn: conn, queue: make(chan any, clientQueueDepth)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	go c.writeLoop()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.close()
	}()

	for {
		var msg setVariableRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("WebSocket read failed: %v", err)
			}
			return
		}
		if msg.Ident == "" {
			c.send(wsError{Error: "missing ident"})
			continue
		}
		if !s.setVariable(msg.Ident, msg.Value) {
			c.send(wsError{Error: "unknown variable", Ident: msg.Ident})
		}
	}
}

func (s *Server) broadcast(ev stylesheet.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.send(ev)
	}
}
