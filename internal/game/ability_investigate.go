package game

import (
	"time"

	"murdermystery/internal/model"
)

// investigateAbility reveals a living player's true role to the detective
type investigateAbility struct{}

func (investigateAbility) Kind() model.AbilityKind { return model.AbilityInvestigate }
func (investigateAbility) RequiresTarget() bool    { return true }

func (investigateAbility) CanUse(*model.Player, *model.Game, time.Time) (bool, string) {
	return true, ""
}

func (investigateAbility) Cooldown(s model.GameSettings) time.Duration {
	return s.DetectiveCooldown()
}
func (investigateAbility) MaxUses(model.GameSettings) int { return 0 }

func (investigateAbility) Execute(actor, target *model.Player, g *model.Game, env Env) model.AbilityResult {
	if res, ok := checkTarget(actor, target, targetAlive); !ok {
		return res
	}
	if model.HasTargeted(actor.InvestigatedPlayers, target.ID) {
		return fail("you already investigated %s", target.Name)
	}

	actor.InvestigatedPlayers = append(actor.InvestigatedPlayers, model.TargetRecord{TargetID: target.ID, At: env.Now})
	label := model.ThemedLabel(target.Role, g.Settings.Theme)

	return model.AbilityResult{
		Success: true,
		Message: target.Name + " is the " + label,
		Data: map[string]interface{}{
			"targetId":    target.ID,
			"role":        target.Role,
			"label":       label,
			"isAggressor": model.IsAggressor(target.Role),
		},
	}
}
