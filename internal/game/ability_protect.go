package game

import (
	"time"

	"murdermystery/internal/model"
)

// protectAbility shields one living player from kills for a while. A bodyguard
// guards a single player at a time; expiry is checked lazily against the clock.
type protectAbility struct{}

func (protectAbility) Kind() model.AbilityKind { return model.AbilityProtect }
func (protectAbility) RequiresTarget() bool    { return true }

func (protectAbility) CanUse(actor *model.Player, g *model.Game, now time.Time) (bool, string) {
	if protecting(actor, g, now) != nil {
		return false, "you are already protecting someone"
	}
	return true, ""
}

func (protectAbility) Cooldown(model.GameSettings) time.Duration { return 0 }
func (protectAbility) MaxUses(model.GameSettings) int             { return 0 }

func (protectAbility) Execute(actor, target *model.Player, g *model.Game, env Env) model.AbilityResult {
	if res, ok := checkTarget(actor, target, targetAlive); !ok {
		return res
	}

	expires := env.Now.Add(g.Settings.ProtectionDuration())
	target.ProtectedBy = actor.ID
	target.ProtectionExpiresAt = &expires

	return model.AbilityResult{
		Success: true,
		Message: "you are protecting " + target.Name,
		Data: map[string]interface{}{
			"targetId":  target.ID,
			"expiresAt": expires,
		},
	}
}

// protecting returns the player actor currently shields, if any
func protecting(actor *model.Player, g *model.Game, now time.Time) *model.Player {
	for _, p := range g.Players {
		if p.IsAlive && p.ProtectedBy == actor.ID && p.IsProtected(now) {
			return p
		}
	}
	return nil
}
