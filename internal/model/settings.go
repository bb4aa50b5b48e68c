package model

import "time"

const (
	MinPlayers = 3

	DefaultMaxPlayers         = 20
	DefaultKillCooldownMin    = 5
	DefaultDetectiveCooldown  = 3
	DefaultReviverCooldown    = 10
	DefaultTrollCooldown      = 5
	DefaultProtectionMinutes  = 10
	DefaultVigilanteMaxKills  = 1
)

// GameSettings are the host-configurable rules of a game
type GameSettings struct {
	CooldownMinutes          int    `json:"cooldownMinutes" bson:"cooldownMinutes"` // Kill cooldown
	MaxPlayers               int    `json:"maxPlayers" bson:"maxPlayers"`
	MurdererCount            int    `json:"murdererCount" bson:"murdererCount"` // 0 derives a count from the roster size
	Theme                    Theme  `json:"theme" bson:"theme"`
	DetectiveCooldownMinutes int    `json:"detectiveCooldownMinutes" bson:"detectiveCooldownMinutes"`
	ReviverCooldownMinutes   int    `json:"reviverCooldownMinutes" bson:"reviverCooldownMinutes"`
	TrollCooldownMinutes     int    `json:"trollCooldownMinutes" bson:"trollCooldownMinutes"`
	ProtectionMinutes        int    `json:"protectionMinutes" bson:"protectionMinutes"`
	VigilanteMaxKills        int    `json:"vigilanteMaxKills" bson:"vigilanteMaxKills"`
	SupportRoles             []Role `json:"supportRoles,omitempty" bson:"supportRoles,omitempty"` // Priority order
}

// WithDefaults fills zero values. MurdererCount is left alone since 0 means "auto".
func (s GameSettings) WithDefaults() GameSettings {
	if s.CooldownMinutes <= 0 {
		s.CooldownMinutes = DefaultKillCooldownMin
	}
	if s.MaxPlayers <= 0 {
		s.MaxPlayers = DefaultMaxPlayers
	}
	if s.Theme == "" {
		s.Theme = ThemeClassic
	}
	if s.DetectiveCooldownMinutes <= 0 {
		s.DetectiveCooldownMinutes = DefaultDetectiveCooldown
	}
	if s.ReviverCooldownMinutes <= 0 {
		s.ReviverCooldownMinutes = DefaultReviverCooldown
	}
	if s.TrollCooldownMinutes <= 0 {
		s.TrollCooldownMinutes = DefaultTrollCooldown
	}
	if s.ProtectionMinutes <= 0 {
		s.ProtectionMinutes = DefaultProtectionMinutes
	}
	if s.VigilanteMaxKills <= 0 {
		s.VigilanteMaxKills = DefaultVigilanteMaxKills
	}
	if len(s.SupportRoles) == 0 {
		s.SupportRoles = append([]Role(nil), DefaultSupportOrder...)
	}
	return s
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func (s GameSettings) KillCooldown() time.Duration      { return minutes(s.CooldownMinutes) }
func (s GameSettings) DetectiveCooldown() time.Duration { return minutes(s.DetectiveCooldownMinutes) }
func (s GameSettings) ReviverCooldown() time.Duration   { return minutes(s.ReviverCooldownMinutes) }
func (s GameSettings) TrollCooldown() time.Duration     { return minutes(s.TrollCooldownMinutes) }
func (s GameSettings) ProtectionDuration() time.Duration {
	return minutes(s.ProtectionMinutes)
}
