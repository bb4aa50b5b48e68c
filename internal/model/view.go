package model

import "time"

// GameStats is a read projection of a game
type GameStats struct {
	TotalPlayers int      `json:"totalPlayers"`
	AlivePlayers int      `json:"alivePlayers"`
	DeadPlayers  int      `json:"deadPlayers"`
	Aggressors   int      `json:"aggressors"` // Alive aggressors
	Civilians    int      `json:"civilians"`  // Alive non-aggressors
	TotalKills   int      `json:"totalKills"`
	GameStarted  bool     `json:"gameStarted"`
	GameEnded    bool     `json:"gameEnded"`
	Duration     *float64 `json:"duration,omitempty"` // seconds
}

// SettingsView is the wire shape of game settings
type SettingsView struct {
	CooldownMinutes int   `json:"cooldownMinutes"`
	MaxPlayers      int   `json:"maxPlayers"`
	MurdererCount   int   `json:"murdererCount"`
	Theme           Theme `json:"theme"`
}

// SessionView is the full serialized game broadcast on every state change
type SessionView struct {
	ID         string       `json:"id"`
	Code       string       `json:"code"`
	IsActive   bool         `json:"isActive"`
	Status     GameStatus   `json:"status"`
	Players    []PlayerView `json:"players"`
	StartTime  *time.Time   `json:"startTime,omitempty"`
	EndTime    *time.Time   `json:"endTime,omitempty"`
	KillEvents []KillEvent  `json:"killEvents"`
	Settings   SettingsView `json:"settings"`
	Stats      GameStats    `json:"stats"`
	Winner     Winner       `json:"winner,omitempty"`
}

// SelfPlayer is a player's own record without the fields that would reveal someone
// else's role, such as which bodyguard is protecting them.
type SelfPlayer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	Email    string    `json:"email,omitempty"`
	Role     Role      `json:"role"`
	IsAlive  bool      `json:"isAlive"`
	JoinedAt time.Time `json:"joinedAt"`

	LastKillAt        *time.Time `json:"lastKillAt,omitempty"`
	CooldownExpiresAt *time.Time `json:"cooldownExpiresAt,omitempty"`
	Kills             int        `json:"kills"`
	VigilanteKills    int        `json:"vigilanteKills"`

	InvestigatedPlayers []TargetRecord `json:"investigatedPlayers,omitempty"`
	RevivedPlayers      []TargetRecord `json:"revivedPlayers,omitempty"`
	MimickedPlayers     []TargetRecord `json:"mimickedPlayers,omitempty"`

	AbilityCooldowns map[AbilityKind]time.Time `json:"abilityCooldowns,omitempty"`
	AbilityUses      map[AbilityKind]int       `json:"abilityUses,omitempty"`
	GrantedAbility   AbilityKind               `json:"grantedAbility,omitempty"`
}

// NewSelfPlayer projects p for its own player
func NewSelfPlayer(p *Player) *SelfPlayer {
	return &SelfPlayer{
		ID:                  p.ID,
		Name:                p.Name,
		Phone:               p.Phone,
		Email:               p.Email,
		Role:                p.Role,
		IsAlive:             p.IsAlive,
		JoinedAt:            p.JoinedAt,
		LastKillAt:          p.LastKillAt,
		CooldownExpiresAt:   p.CooldownExpiresAt,
		Kills:               p.Kills,
		VigilanteKills:      p.VigilanteKills,
		InvestigatedPlayers: p.InvestigatedPlayers,
		RevivedPlayers:      p.RevivedPlayers,
		MimickedPlayers:     p.MimickedPlayers,
		AbilityCooldowns:    p.AbilityCooldowns,
		AbilityUses:         p.AbilityUses,
		GrantedAbility:      p.GrantedAbility,
	}
}

// SelfView is what a player sees about themselves
type SelfView struct {
	Player    *SelfPlayer              `json:"player"`
	RoleLabel string                   `json:"roleLabel"`
	Abilities map[AbilityKind]UseCheck `json:"abilities"`
	Game      *SessionView             `json:"game"`
}

// SessionStart is returned by a one-shot start: the host view plus every player code
type SessionStart struct {
	Game    *SessionView         `json:"game"`
	Players []PlayerJoinResponse `json:"players"`
}
