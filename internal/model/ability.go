package model

import "time"

// AbilityKind is the closed set of role abilities
type AbilityKind string

const (
	AbilityKill          AbilityKind = "kill"
	AbilityInvestigate   AbilityKind = "investigate"
	AbilityRevive        AbilityKind = "revive"
	AbilityProtect       AbilityKind = "protect"
	AbilityVigilanteKill AbilityKind = "vigilante_kill"
	AbilityMimic         AbilityKind = "mimic"
)

var roleAbilities = map[Role]AbilityKind{
	RoleMurderer:  AbilityKill,
	RoleDetective: AbilityInvestigate,
	RoleReviver:   AbilityRevive,
	RoleBodyguard: AbilityProtect,
	RoleVigilante: AbilityVigilanteKill,
	RoleTroll:     AbilityMimic,
}

// ParseAbility converts a wire name into an AbilityKind
func ParseAbility(name string) (AbilityKind, bool) {
	switch k := AbilityKind(name); k {
	case AbilityKill, AbilityInvestigate, AbilityRevive, AbilityProtect, AbilityVigilanteKill, AbilityMimic:
		return k, true
	}
	return "", false
}

// PrimaryAbility returns the ability a role is born with
func PrimaryAbility(r Role) (AbilityKind, bool) {
	k, ok := roleAbilities[r]
	return k, ok
}

// UseCheck answers "can this player use this ability right now"
type UseCheck struct {
	CanUse            bool   `json:"canUse"`
	Reason            string `json:"reason,omitempty"`
	CooldownRemaining int    `json:"cooldownRemaining,omitempty"` // seconds
	UsesRemaining     *int   `json:"usesRemaining,omitempty"`     // nil means unlimited
}

// AbilityResult is the outcome of an ability execution. A failed result is a normal
// negative outcome, not an error.
type AbilityResult struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	Data           map[string]interface{} `json:"data,omitempty"`
	CooldownExpiry *time.Time             `json:"cooldownExpiry,omitempty"`
}

// AbilityEventType distinguishes ability notifications
type AbilityEventType string

const (
	EventAbilityUsed   AbilityEventType = "ability-used"
	EventAbilityFailed AbilityEventType = "ability-failed"
)

// AbilityEvent is emitted by the dispatcher for every execution attempt
type AbilityEvent struct {
	Type     AbilityEventType `json:"type"`
	GameCode string           `json:"gameCode"`
	ActorID  string           `json:"actorId"`
	TargetID string           `json:"targetId,omitempty"`
	Ability  AbilityKind      `json:"ability"`
	Message  string           `json:"message"`
	At       time.Time        `json:"at"`
}
