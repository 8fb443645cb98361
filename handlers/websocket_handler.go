package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/interclasses-scoreboard/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any.
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeScoreboard attaches a display to the scoreboard room.
func (h *WebSocketHandler) ServeScoreboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.RoomScoreboard)
}

// ServeBracket attaches a display to one bracket's room.
func (h *WebSocketHandler) ServeBracket(w http.ResponseWriter, r *http.Request) {
	room, err := bracketRoom(chi.URLParam(r, "bracketID"))
	if err != nil {
		http.Error(w, "invalid bracketID", http.StatusBadRequest)
		return
	}
	h.serve(w, r, room)
}

// bracketRoom names the room in the canonical lowercase form the change
// feed uses for ids.
func bracketRoom(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	return realtime.BracketRoom(id.String()), nil
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}
	h.hub.Attach(conn, room)
	h.logger.Debug("display connected", slog.String("room", room))
}
