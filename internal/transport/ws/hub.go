package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Presence messages generated by the hub itself. Game events use the names defined
// by the service layer.
const (
	MsgPlayerConnected    MessageType = "player-connected"
	MsgPlayerDisconnected MessageType = "player-disconnected"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for games
type Hub struct {
	// Game -> connections
	hostConns   map[string]*Connection
	playerConns map[string]map[string]*Connection // gameCode -> playerID -> conn

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	disconnect chan string
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	GameCode string
	PlayerID string // Empty for host connections
	IsHost   bool
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	GameCode string
	ToHost   bool
	ToPlayer string // Empty means all players, specific ID means one player
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		hostConns:   make(map[string]*Connection),
		playerConns: make(map[string]map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		disconnect:  make(chan string),
		broadcast:   make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				if prev, ok := h.hostConns[conn.GameCode]; ok && prev != conn {
					close(prev.Send)
				}
				h.hostConns[conn.GameCode] = conn
				log.Info().Str("game", conn.GameCode).Msg("host connected")
			} else {
				if h.playerConns[conn.GameCode] == nil {
					h.playerConns[conn.GameCode] = make(map[string]*Connection)
				}
				if prev, ok := h.playerConns[conn.GameCode][conn.PlayerID]; ok && prev != conn {
					close(prev.Send)
				}
				h.playerConns[conn.GameCode][conn.PlayerID] = conn
				log.Info().Str("game", conn.GameCode).Str("player", conn.PlayerID).Msg("player connected")

				h.notifyHost(conn.GameCode, MsgPlayerConnected, conn.PlayerID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsHost {
				if existing, ok := h.hostConns[conn.GameCode]; ok && existing == conn {
					delete(h.hostConns, conn.GameCode)
					close(conn.Send)
					log.Info().Str("game", conn.GameCode).Msg("host disconnected")
				}
			} else {
				if players, ok := h.playerConns[conn.GameCode]; ok {
					if existing, ok := players[conn.PlayerID]; ok && existing == conn {
						delete(players, conn.PlayerID)
						close(conn.Send)
						log.Info().Str("game", conn.GameCode).Str("player", conn.PlayerID).Msg("player disconnected")

						h.notifyHost(conn.GameCode, MsgPlayerDisconnected, conn.PlayerID)
					}
					if len(players) == 0 {
						delete(h.playerConns, conn.GameCode)
					}
				}
			}
			h.mu.Unlock()

		case code := <-h.disconnect:
			h.mu.Lock()
			if conn, ok := h.hostConns[code]; ok {
				close(conn.Send)
				delete(h.hostConns, code)
			}
			for _, conn := range h.playerConns[code] {
				close(conn.Send)
			}
			delete(h.playerConns, code)
			log.Info().Str("game", code).Msg("game sockets closed")
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToHost {
				if conn, ok := h.hostConns[msg.GameCode]; ok {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else if msg.ToPlayer != "" {
				// Send to specific player
				if players, ok := h.playerConns[msg.GameCode]; ok {
					if conn, ok := players[msg.ToPlayer]; ok {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			} else {
				// Broadcast to all players
				if players, ok := h.playerConns[msg.GameCode]; ok {
					for _, conn := range players {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// ConnectedPlayers returns how many players of a game have an open socket
func (h *Hub) ConnectedPlayers(gameCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.playerConns[gameCode])
}

func (h *Hub) send(gameCode string, toHost bool, toPlayer string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("game", gameCode).Str("type", msgType).Msg("failed to encode broadcast")
		return
	}
	h.broadcast <- &BroadcastMessage{
		GameCode: gameCode,
		ToHost:   toHost,
		ToPlayer: toPlayer,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// BroadcastToHost sends a message to the game host (implements service.Broadcaster)
func (h *Hub) BroadcastToHost(gameCode string, msgType string, payload interface{}) {
	h.send(gameCode, true, "", msgType, payload)
}

// BroadcastToPlayer sends a message to a specific player (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayer(gameCode, playerID string, msgType string, payload interface{}) {
	h.send(gameCode, false, playerID, msgType, payload)
}

// BroadcastToAllPlayers sends a message to all players in a game (implements service.Broadcaster)
func (h *Hub) BroadcastToAllPlayers(gameCode string, msgType string, payload interface{}) {
	h.send(gameCode, false, "", msgType, payload)
}

// DisconnectRoom closes every socket of a game (implements service.Broadcaster)
func (h *Hub) DisconnectRoom(gameCode string) {
	h.disconnect <- gameCode
}

func (h *Hub) notifyHost(gameCode string, msgType MessageType, playerID string) {
	if conn, ok := h.hostConns[gameCode]; ok {
		payload, _ := json.Marshal(map[string]string{"playerId": playerID})
		data, _ := json.Marshal(&Message{
			Type:    msgType,
			Payload: payload,
		})
		select {
		case conn.Send <- data:
		default:
		}
	}
}
