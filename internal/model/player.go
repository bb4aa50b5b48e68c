package model

import "time"

// TargetRecord remembers who a player already used an ability on
type TargetRecord struct {
	TargetID string    `json:"targetId" bson:"targetId"`
	At       time.Time `json:"at" bson:"at"`
}

// Player represents a participant in one game
type Player struct {
	ID       string    `json:"id" bson:"id"`
	Code     string    `json:"-" bson:"code"` // Opaque player code, never echoed in public views
	Name     string    `json:"name" bson:"name"`
	Phone    string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Email    string    `json:"email,omitempty" bson:"email,omitempty"`
	Role     Role      `json:"role" bson:"role"`
	IsAlive  bool      `json:"isAlive" bson:"isAlive"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`

	LastKillAt        *time.Time `json:"lastKillAt,omitempty" bson:"lastKillAt,omitempty"`
	CooldownExpiresAt *time.Time `json:"cooldownExpiresAt,omitempty" bson:"cooldownExpiresAt,omitempty"`
	Kills             int        `json:"kills" bson:"kills"`
	VigilanteKills    int        `json:"vigilanteKills" bson:"vigilanteKills"`

	ProtectedBy         string     `json:"protectedBy,omitempty" bson:"protectedBy,omitempty"`
	ProtectionExpiresAt *time.Time `json:"protectionExpiresAt,omitempty" bson:"protectionExpiresAt,omitempty"`

	InvestigatedPlayers []TargetRecord `json:"investigatedPlayers,omitempty" bson:"investigatedPlayers,omitempty"`
	RevivedPlayers      []TargetRecord `json:"revivedPlayers,omitempty" bson:"revivedPlayers,omitempty"`
	MimickedPlayers     []TargetRecord `json:"mimickedPlayers,omitempty" bson:"mimickedPlayers,omitempty"`

	AbilityCooldowns map[AbilityKind]time.Time `json:"abilityCooldowns,omitempty" bson:"abilityCooldowns,omitempty"`
	AbilityUses      map[AbilityKind]int       `json:"abilityUses,omitempty" bson:"abilityUses,omitempty"`

	// One-time entitlement earned by mimicking another player
	GrantedAbility AbilityKind `json:"grantedAbility,omitempty" bson:"grantedAbility,omitempty"`
}

// NewPlayer creates a lobby player with the placeholder role
func NewPlayer(id, code, name string, now time.Time) *Player {
	return &Player{
		ID:       id,
		Code:     code,
		Name:     name,
		Role:     RoleCivilian,
		IsAlive:  true,
		JoinedAt: now,
	}
}

// Reset clears every per-game field, keeping identity
func (p *Player) Reset() {
	*p = Player{
		ID:       p.ID,
		Code:     p.Code,
		Name:     p.Name,
		Phone:    p.Phone,
		Email:    p.Email,
		Role:     RoleCivilian,
		IsAlive:  true,
		JoinedAt: p.JoinedAt,
	}
}

// IsProtected reports whether an unexpired protection covers the player at now
func (p *Player) IsProtected(now time.Time) bool {
	return p.ProtectedBy != "" && p.ProtectionExpiresAt != nil && now.Before(*p.ProtectionExpiresAt)
}

// HasTargeted reports whether id appears in the given target list
func HasTargeted(records []TargetRecord, id string) bool {
	for _, r := range records {
		if r.TargetID == id {
			return true
		}
	}
	return false
}

// PlayerView is the public projection broadcast to every client
type PlayerView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Role         Role       `json:"role,omitempty"`
	IsAlive      bool       `json:"isAlive"`
	JoinedAt     time.Time  `json:"joinedAt"`
	LastKillTime *time.Time `json:"lastKillTime,omitempty"`
}

// JoinRequest is what a player submits to join a lobby
type JoinRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// PlayerJoinResponse is returned when a player joins a lobby
type PlayerJoinResponse struct {
	PlayerID string `json:"playerId"`
	Code     string `json:"code"`
	GameCode string `json:"gameCode"`
}
