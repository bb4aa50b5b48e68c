package model

import "time"

type GameStatus string

const (
	GameLobby     GameStatus = "lobby"
	GameActive    GameStatus = "active"
	GameCompleted GameStatus = "completed"
	GameCancelled GameStatus = "cancelled"
)

// Winner names the side that won a game
type Winner string

const (
	WinnerAggressors Winner = "aggressors"
	WinnerSupport    Winner = "support"
)

// KillEventKind tags entries of the kill log
type KillEventKind string

const (
	KillEventKill      KillEventKind = "kill"
	KillEventVigilante KillEventKind = "vigilante"
	KillEventMimic     KillEventKind = "mimic"
	KillEventVote      KillEventKind = "vote"
	KillEventVictory   KillEventKind = "victory"
)

// KillEvent is one append-only entry of the game log
type KillEvent struct {
	ID         string        `json:"id" bson:"id"`
	Kind       KillEventKind `json:"kind" bson:"kind"`
	Murderer   string        `json:"murderer,omitempty" bson:"murderer,omitempty"` // actor player ID
	Victim     string        `json:"victim,omitempty" bson:"victim,omitempty"`     // target player ID
	Timestamp  time.Time     `json:"timestamp" bson:"timestamp"`
	Message    string        `json:"message" bson:"message"`
	Successful bool          `json:"successful" bson:"successful"`
}

// Game is one game session together with its players. It is stored and
// updated as a single document so multi-field mutations land together.
type Game struct {
	ID         string       `json:"id" bson:"id"` // Session ID; a reset gives the same code a new one
	Code       string       `json:"code" bson:"code"`
	Status     GameStatus   `json:"status" bson:"status"`
	Settings   GameSettings `json:"settings" bson:"settings"`
	Players    []*Player    `json:"players" bson:"players"`
	KillEvents []KillEvent  `json:"killEvents" bson:"killEvents"`
	Winner     Winner       `json:"winner,omitempty" bson:"winner,omitempty"`
	CreatedAt  time.Time    `json:"createdAt" bson:"createdAt"`
	StartedAt  *time.Time   `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt    *time.Time   `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	Version    int64        `json:"version" bson:"version"` // Optimistic concurrency counter
}

// IsActive reports whether abilities and votes are accepted
func (g *Game) IsActive() bool {
	return g.Status == GameActive && g.EndedAt == nil
}

// IsOver reports whether the game reached a terminal status
func (g *Game) IsOver() bool {
	return g.Status == GameCompleted || g.Status == GameCancelled
}

// Player finds a player by ID
func (g *Game) Player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByCode finds a player by their player code
func (g *Game) PlayerByCode(code string) *Player {
	for _, p := range g.Players {
		if p.Code == code {
			return p
		}
	}
	return nil
}

// AliveCount counts the players still in the game
func (g *Game) AliveCount() int {
	n := 0
	for _, p := range g.Players {
		if p.IsAlive {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, so a failed mutation never leaks into shared state
func (g *Game) Clone() *Game {
	c := *g
	c.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.InvestigatedPlayers = append([]TargetRecord(nil), p.InvestigatedPlayers...)
		cp.RevivedPlayers = append([]TargetRecord(nil), p.RevivedPlayers...)
		cp.MimickedPlayers = append([]TargetRecord(nil), p.MimickedPlayers...)
		if p.AbilityCooldowns != nil {
			cp.AbilityCooldowns = make(map[AbilityKind]time.Time, len(p.AbilityCooldowns))
			for k, v := range p.AbilityCooldowns {
				cp.AbilityCooldowns[k] = v
			}
		}
		if p.AbilityUses != nil {
			cp.AbilityUses = make(map[AbilityKind]int, len(p.AbilityUses))
			for k, v := range p.AbilityUses {
				cp.AbilityUses[k] = v
			}
		}
		c.Players[i] = &cp
	}
	c.KillEvents = append([]KillEvent(nil), g.KillEvents...)
	c.Settings.SupportRoles = append([]Role(nil), g.Settings.SupportRoles...)
	return &c
}
