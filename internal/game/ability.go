package game

import (
	"fmt"
	"time"

	"murdermystery/internal/model"
)

// Env carries the per-call inputs a resolver needs besides the players
type Env struct {
	Now   time.Time
	NewID func() string
}

// Resolver implements one ability. Checks shared by every ability (alive actor,
// active game, cooldown and use limits) live in the Dispatcher; a resolver adds its own
// conditions in CanUse and validates the target in Execute.
type Resolver interface {
	Kind() model.AbilityKind
	RequiresTarget() bool
	CanUse(actor *model.Player, g *model.Game, now time.Time) (bool, string)
	Execute(actor, target *model.Player, g *model.Game, env Env) model.AbilityResult
	// Cooldown applied after a successful use; 0 means none
	Cooldown(s model.GameSettings) time.Duration
	// MaxUses per game; 0 means unlimited
	MaxUses(s model.GameSettings) int
}

type targetRule int

const (
	targetAlive targetRule = iota
	targetDead
)

func fail(format string, args ...interface{}) model.AbilityResult {
	return model.AbilityResult{Success: false, Message: fmt.Sprintf(format, args...)}
}

// checkTarget enforces presence, no self-targeting and the alive/dead requirement
func checkTarget(actor, target *model.Player, rule targetRule) (model.AbilityResult, bool) {
	if target == nil {
		return fail("a target is required"), false
	}
	if target.ID == actor.ID {
		return fail("you cannot target yourself"), false
	}
	switch rule {
	case targetAlive:
		if !target.IsAlive {
			return fail("%s is already dead", target.Name), false
		}
	case targetDead:
		if target.IsAlive {
			return fail("%s is not dead", target.Name), false
		}
	}
	return model.AbilityResult{}, true
}

func appendKillEvent(g *model.Game, env Env, kind model.KillEventKind, actor, victim *model.Player, msg string, ok bool) {
	ev := model.KillEvent{
		ID:         env.NewID(),
		Kind:       kind,
		Timestamp:  env.Now,
		Message:    msg,
		Successful: ok,
	}
	if actor != nil {
		ev.Murderer = actor.ID
	}
	if victim != nil {
		ev.Victim = victim.ID
	}
	g.KillEvents = append(g.KillEvents, ev)
}

// markDead kills p and drops any protection it held, so its bodyguard is free again
func markDead(p *model.Player) {
	p.IsAlive = false
	p.ProtectedBy = ""
	p.ProtectionExpiresAt = nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
