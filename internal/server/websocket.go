package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/michaelbrown/icebreaker/internal/icebreaker"
	"github.com/michaelbrown/icebreaker/internal/profile"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsIncoming is a message from the client.
type wsIncoming struct {
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	LinkedIn profile.Record `json:"linkedin,omitempty"`
	Twitter  profile.Record `json:"twitter,omitempty"`
}

// wsOutgoing is a message to the client. Progress events reuse the
// pipeline event types; terminal messages are "done" and "error".
type wsOutgoing struct {
	Type       string `json:"type"`
	RunID      string `json:"run_id,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Content    string `json:"content,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Cancelled when the read loop exits, i.e. on client disconnect.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wsMu sync.Mutex
	send := func(msg wsOutgoing) {
		wsMu.Lock()
		defer wsMu.Unlock()
		s.wsWriteJSON(conn, msg)
	}

	requests := make(chan wsIncoming)
	go func() {
		defer close(requests)
		defer cancel()
		for {
			var msg wsIncoming
			if err := conn.ReadJSON(&msg); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Debug("websocket read error", "error", err)
				}
				return
			}
			select {
			case requests <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for msg := range requests {
		if msg.Type != "generate" || msg.Name == "" {
			send(wsOutgoing{Type: "error", Content: "invalid message"})
			continue
		}
		s.processWebSocketRequest(ctx, msg, send)
	}
}

func (s *Server) processWebSocketRequest(ctx context.Context, msg wsIncoming, send func(wsOutgoing)) {
	req := generateRequest{Name: msg.Name, LinkedIn: msg.LinkedIn, Twitter: msg.Twitter}

	run, err := s.generate(ctx, req, func(e icebreaker.Event) {
		send(wsOutgoing{
			Type:       string(e.Type),
			Provider:   e.Provider,
			Identifier: e.Identifier,
			Content:    e.Content,
		})
	})

	var runID string
	if run != nil {
		runID = run.ID
	}
	if err != nil {
		if ctx.Err() != nil {
			send(wsOutgoing{Type: "error", RunID: runID, Content: "interrupted"})
		} else {
			send(wsOutgoing{Type: "error", RunID: runID, Content: err.Error()})
		}
		return
	}

	send(wsOutgoing{Type: "done", RunID: runID, Content: run.Output})
}

func (s *Server) wsWriteJSON(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("websocket marshal error", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("websocket write error", "error", err)
	}
}
