package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/session"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/story"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsIncoming is a message from the client: a numbered choice or free text.
type wsIncoming struct {
	Type     string `json:"type"`
	ChoiceID int    `json:"choice_id,omitempty"`
	Content  string `json:"content,omitempty"`
}

// wsOutgoing is a message to the client.
type wsOutgoing struct {
	Type       string         `json:"type"`
	Content    string         `json:"content,omitempty"`
	Choices    []story.Choice `json:"choices,omitempty"`
	IsComplete bool           `json:"is_complete,omitempty"`
	Title      string         `json:"title,omitempty"`
}

// handleWebSocket serves interactive continuation of one story over a
// single connection: the client answers each paragraph's options in
// place instead of posting to /continue per turn.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Verify the story exists before upgrading
	if _, err := s.engine.Snapshot(id); err != nil {
		http.Error(w, "story not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	for {
		var msg wsIncoming
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			log.Error("websocket read", "err", err)
			return
		}

		var view *session.View
		switch msg.Type {
		case "choice":
			view, err = s.engine.AdvanceChoice(r.Context(), id, msg.ChoiceID)
		case "text":
			view, err = s.engine.AdvanceText(r.Context(), id, msg.Content)
		default:
			wsWriteJSON(conn, wsOutgoing{Type: "error", Content: "invalid message"})
			continue
		}
		if err != nil {
			wsWriteJSON(conn, wsOutgoing{Type: "error", Content: err.Error()})
			continue
		}

		if view.IsComplete {
			s.archiveStory(r, id)
		}

		wsWriteJSON(conn, wsOutgoing{
			Type:       "paragraph",
			Content:    view.Paragraph.Content,
			Choices:    view.Paragraph.Choices,
			IsComplete: view.IsComplete,
			Title:      view.Title,
		})
	}
}

func wsWriteJSON(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("websocket marshal", "err", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Error("websocket write", "err", err)
	}
}
