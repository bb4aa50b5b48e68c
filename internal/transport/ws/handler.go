package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"murdermystery/internal/game"
	"murdermystery/internal/model"
	"murdermystery/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// GameSource is the part of the game service the socket handler reads from
type GameSource interface {
	HostView(ctx context.Context, code string) (*model.SessionView, error)
	GetGame(ctx context.Context, code string) (*model.SessionView, error)
	Authenticate(ctx context.Context, playerCode string) (*model.Game, *model.Player, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	games    GameSource
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. An origins list containing "*"
// accepts every origin.
func NewHandler(hub *Hub, games GameSource, origins []string) *Handler {
	return &Handler{
		hub:   hub,
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || OriginAllowed(origins, origin)
			},
		},
	}
}

// OriginAllowed reports whether origin is in the allow list
func OriginAllowed(origins []string, origin string) bool {
	for _, o := range origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// HostWS handles GET /v1/ws/games/{code}/host
func (h *Handler) HostWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	view, err := h.games.HostView(r.Context(), code)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	h.serve(w, r, &Connection{
		GameCode: code,
		IsHost:   true,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}, view)
}

// PlayerWS handles GET /v1/ws/games/{code}/player?code=<player code>
func (h *Handler) PlayerWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerCode := r.URL.Query().Get("code")

	if playerCode == "" {
		http.Error(w, "missing player code", http.StatusUnauthorized)
		return
	}

	g, p, err := h.games.Authenticate(r.Context(), playerCode)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if g.Code != code {
		http.Error(w, "player code not valid for this game", http.StatusForbidden)
		return
	}

	view, err := h.games.GetGame(r.Context(), code)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	h.serve(w, r, &Connection{
		GameCode: code,
		PlayerID: p.ID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}, view)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, conn *Connection, initial *model.SessionView) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("game", conn.GameCode).Msg("websocket upgrade failed")
		return
	}

	// Queue the current state before registering so it is the first frame sent.
	if data, err := encodeMessage(service.EventSessionState, initial); err == nil {
		conn.Send <- data
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func encodeMessage(msgType string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: MessageType(msgType), Payload: body})
}

func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		http.Error(w, "game not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, game.ErrPlayerNotFound):
		http.Error(w, "unknown or expired player code", http.StatusUnauthorized)
	default:
		log.Error().Err(err).Msg("websocket lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients only listen; anything they send is discarded.
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("game", conn.GameCode).Msg("websocket read error")
			}
			break
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
