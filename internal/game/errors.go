package game

import "errors"

// Precondition violations. Expected negative outcomes of abilities and votes are
// reported through result values instead.
var (
	ErrInvalidPlayerCount = errors.New("invalid player count")
	ErrDuplicateName      = errors.New("player names must be unique")
	ErrSessionActive      = errors.New("game is already active")
	ErrGameNotFound       = errors.New("game not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrLobbyFull          = errors.New("lobby is full")
	ErrGameNotInLobby     = errors.New("game is not accepting players")
	ErrGameNotActive      = errors.New("game is not active")
	ErrInvalidName        = errors.New("player name is required")
	ErrInvalidSettings    = errors.New("invalid game settings")
)
