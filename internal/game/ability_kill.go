package game

import (
	"time"

	"murdermystery/internal/model"
)

// killAbility lets a murderer eliminate a living player
type killAbility struct{}

func (killAbility) Kind() model.AbilityKind { return model.AbilityKill }
func (killAbility) RequiresTarget() bool    { return true }

func (killAbility) CanUse(actor *model.Player, g *model.Game, now time.Time) (bool, string) {
	return true, ""
}

func (killAbility) Cooldown(s model.GameSettings) time.Duration { return s.KillCooldown() }
func (killAbility) MaxUses(model.GameSettings) int               { return 0 }

func (a killAbility) Execute(actor, target *model.Player, g *model.Game, env Env) model.AbilityResult {
	if res, ok := checkTarget(actor, target, targetAlive); !ok {
		return res
	}

	// A protected target survives. The log records the attempt, but neither the
	// message nor the event says why it failed.
	if target.IsProtected(env.Now) {
		appendKillEvent(g, env, model.KillEventKill, actor, target, "An attack on "+target.Name+" failed", false)
		return fail("your attempt on %s failed", target.Name)
	}

	markDead(target)
	actor.LastKillAt = timePtr(env.Now)
	actor.CooldownExpiresAt = timePtr(env.Now.Add(a.Cooldown(g.Settings)))
	actor.Kills++
	appendKillEvent(g, env, model.KillEventKill, actor, target, target.Name+" was found dead", true)

	return model.AbilityResult{
		Success: true,
		Message: "you eliminated " + target.Name,
		Data:    map[string]interface{}{"victimId": target.ID},
	}
}
