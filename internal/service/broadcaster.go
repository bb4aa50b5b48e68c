package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToHost(gameCode string, msgType string, payload interface{})
	BroadcastToPlayer(gameCode, playerID string, msgType string, payload interface{})
	BroadcastToAllPlayers(gameCode string, msgType string, payload interface{})
	DisconnectRoom(gameCode string)
}

// Event names sent to host and player sockets
const (
	EventSessionState = "session-state"
	EventPlayerKilled = "player-killed"
	EventGameEnded    = "game-ended"
	EventPlayerJoined = "player-joined"
	EventRoleAssigned = "role-assigned"
	EventVoteUpdate   = "vote-update"
)
