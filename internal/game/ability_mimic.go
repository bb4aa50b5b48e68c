package game

import (
	"time"

	"murdermystery/internal/model"
)

// mimicAbility copies another player's ability for one use. Copying a murderer is
// fatal to the troll before anything is granted.
type mimicAbility struct{}

func (mimicAbility) Kind() model.AbilityKind { return model.AbilityMimic }
func (mimicAbility) RequiresTarget() bool    { return true }

func (mimicAbility) CanUse(actor *model.Player, _ *model.Game, _ time.Time) (bool, string) {
	if actor.GrantedAbility != "" {
		return false, "use your copied ability first"
	}
	return true, ""
}

func (mimicAbility) Cooldown(s model.GameSettings) time.Duration { return s.TrollCooldown() }
func (mimicAbility) MaxUses(model.GameSettings) int               { return 0 }

func (mimicAbility) Execute(actor, target *model.Player, g *model.Game, env Env) model.AbilityResult {
	if res, ok := checkTarget(actor, target, targetAlive); !ok {
		return res
	}
	if model.HasTargeted(actor.MimickedPlayers, target.ID) {
		return fail("you already mimicked %s", target.Name)
	}

	if model.IsAggressor(target.Role) {
		markDead(actor)
		appendKillEvent(g, env, model.KillEventMimic, target, actor, actor.Name+" copied the wrong person", true)
		return model.AbilityResult{
			Success: true,
			Message: target.Name + " was a murderer. Mimicking them cost you your life",
			Data:    map[string]interface{}{"targetId": target.ID, "fatal": true},
		}
	}

	actor.MimickedPlayers = append(actor.MimickedPlayers, model.TargetRecord{TargetID: target.ID, At: env.Now})

	data := map[string]interface{}{"targetId": target.ID, "fatal": false}
	granted, ok := model.PrimaryAbility(target.Role)
	if !ok || granted == model.AbilityMimic {
		return model.AbilityResult{
			Success: true,
			Message: "you mimicked " + target.Name + " but there was nothing to copy",
			Data:    data,
		}
	}

	actor.GrantedAbility = granted
	data["grantedAbility"] = granted
	return model.AbilityResult{
		Success: true,
		Message: "you mimicked " + target.Name + " and may use " + string(granted) + " once",
		Data:    data,
	}
}
