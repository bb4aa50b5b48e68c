package game

import (
	"time"

	"murdermystery/internal/model"
)

// reviveAbility brings a dead player back. Death-derived state (kill log entries,
// any role reveal) is left as is.
type reviveAbility struct{}

func (reviveAbility) Kind() model.AbilityKind { return model.AbilityRevive }
func (reviveAbility) RequiresTarget() bool    { return true }

func (reviveAbility) CanUse(*model.Player, *model.Game, time.Time) (bool, string) {
	return true, ""
}

func (reviveAbility) Cooldown(s model.GameSettings) time.Duration { return s.ReviverCooldown() }
func (reviveAbility) MaxUses(model.GameSettings) int               { return 0 }

func (reviveAbility) Execute(actor, target *model.Player, g *model.Game, env Env) model.AbilityResult {
	if res, ok := checkTarget(actor, target, targetDead); !ok {
		return res
	}
	if model.HasTargeted(actor.RevivedPlayers, target.ID) {
		return fail("you already revived %s once", target.Name)
	}

	target.IsAlive = true
	actor.RevivedPlayers = append(actor.RevivedPlayers, model.TargetRecord{TargetID: target.ID, At: env.Now})

	return model.AbilityResult{
		Success: true,
		Message: target.Name + " is back in the game",
		Data:    map[string]interface{}{"targetId": target.ID},
	}
}
