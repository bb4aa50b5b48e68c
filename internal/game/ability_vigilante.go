package game

import (
	"time"

	"murdermystery/internal/model"
)

// vigilanteAbility is a limited guess: shoot an aggressor and they die, shoot anyone
// else and the vigilante dies instead. Both outcomes spend a use.
type vigilanteAbility struct{}

func (vigilanteAbility) Kind() model.AbilityKind { return model.AbilityVigilanteKill }
func (vigilanteAbility) RequiresTarget() bool    { return true }

func (vigilanteAbility) CanUse(*model.Player, *model.Game, time.Time) (bool, string) {
	return true, ""
}

func (vigilanteAbility) Cooldown(model.GameSettings) time.Duration { return 0 }
func (vigilanteAbility) MaxUses(s model.GameSettings) int          { return s.VigilanteMaxKills }

func (vigilanteAbility) Execute(actor, target *model.Player, g *model.Game, env Env) model.AbilityResult {
	if res, ok := checkTarget(actor, target, targetAlive); !ok {
		return res
	}

	actor.VigilanteKills++

	if model.IsAggressor(target.Role) {
		markDead(target)
		appendKillEvent(g, env, model.KillEventVigilante, actor, target, target.Name+" was brought to justice", true)
		return model.AbilityResult{
			Success: true,
			Message: "you got one: " + target.Name + " was a murderer",
			Data:    map[string]interface{}{"targetId": target.ID, "correct": true},
		}
	}

	markDead(actor)
	appendKillEvent(g, env, model.KillEventVigilante, actor, actor, actor.Name+" accused the wrong person and paid for it", true)
	return model.AbilityResult{
		Success: true,
		Message: target.Name + " was innocent. You have been eliminated",
		Data:    map[string]interface{}{"targetId": target.ID, "correct": false},
	}
}
