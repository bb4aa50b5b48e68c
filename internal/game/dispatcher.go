package game

import (
	"math"
	"time"

	"murdermystery/internal/model"
)

// Dispatcher routes (role, ability) pairs to their resolver and owns the shared
// bookkeeping: liveness, cooldowns, use limits and ability events.
type Dispatcher struct {
	resolvers map[model.AbilityKind]Resolver
	newID     func() string
}

// NewDispatcher creates a dispatcher with every ability registered
func NewDispatcher(newID func() string) *Dispatcher {
	d := &Dispatcher{
		resolvers: make(map[model.AbilityKind]Resolver),
		newID:     newID,
	}
	for _, r := range []Resolver{
		killAbility{},
		investigateAbility{},
		reviveAbility{},
		protectAbility{},
		vigilanteAbility{},
		mimicAbility{},
	} {
		d.resolvers[r.Kind()] = r
	}
	return d
}

// resolve finds the resolver actor may use for kind. granted is true when the
// ability comes from a mimic entitlement instead of the actor's role.
func (d *Dispatcher) resolve(actor *model.Player, kind model.AbilityKind) (r Resolver, granted bool, ok bool) {
	if primary, has := model.PrimaryAbility(actor.Role); has && primary == kind {
		r, ok = d.resolvers[kind]
		return r, false, ok
	}
	if actor.GrantedAbility != "" && actor.GrantedAbility == kind {
		r, ok = d.resolvers[kind]
		return r, true, ok
	}
	return nil, false, false
}

// Abilities lists what actor can currently attempt (role ability plus any grant)
func (d *Dispatcher) Abilities(actor *model.Player) []model.AbilityKind {
	var out []model.AbilityKind
	if k, ok := model.PrimaryAbility(actor.Role); ok {
		out = append(out, k)
	}
	if actor.GrantedAbility != "" {
		out = append(out, actor.GrantedAbility)
	}
	return out
}

// CanUse reports whether actor may use kind at now. It never mutates and fails closed.
func (d *Dispatcher) CanUse(actor *model.Player, g *model.Game, kind model.AbilityKind, now time.Time) model.UseCheck {
	r, granted, ok := d.resolve(actor, kind)
	if !ok {
		return model.UseCheck{Reason: "ability not available for your role"}
	}
	if !g.IsActive() {
		return model.UseCheck{Reason: "game is not active"}
	}
	if !actor.IsAlive {
		return model.UseCheck{Reason: "dead players cannot use abilities"}
	}

	check := model.UseCheck{}
	if !granted {
		check.UsesRemaining = d.RemainingUses(actor, g, kind)
		if secs := d.RemainingCooldown(actor, kind, now); secs > 0 {
			check.Reason = "ability is on cooldown"
			check.CooldownRemaining = secs
			return check
		}
		if check.UsesRemaining != nil && *check.UsesRemaining == 0 {
			check.Reason = "no uses remaining"
			return check
		}
	}

	if ok, reason := r.CanUse(actor, g, now); !ok {
		check.Reason = reason
		return check
	}
	check.CanUse = true
	return check
}

// Execute performs kind for actor against target. An unknown ability or a failed
// precondition comes back as an unsuccessful result. State changes are made in
// place on g; on success the actor's use counter and cooldown are recorded.
func (d *Dispatcher) Execute(actor *model.Player, g *model.Game, kind model.AbilityKind, target *model.Player, now time.Time, emit func(model.AbilityEvent)) model.AbilityResult {
	event := model.AbilityEvent{
		GameCode: g.Code,
		ActorID:  actor.ID,
		Ability:  kind,
		At:       now,
	}
	if target != nil {
		event.TargetID = target.ID
	}
	finish := func(res model.AbilityResult) model.AbilityResult {
		event.Type = model.EventAbilityFailed
		if res.Success {
			event.Type = model.EventAbilityUsed
		}
		event.Message = res.Message
		if emit != nil {
			emit(event)
		}
		return res
	}

	r, granted, ok := d.resolve(actor, kind)
	if !ok {
		return finish(fail("ability %q not found for your role", kind))
	}

	if check := d.CanUse(actor, g, kind, now); !check.CanUse {
		res := fail("%s", check.Reason)
		if check.CooldownRemaining > 0 {
			res.Data = map[string]interface{}{"cooldownRemaining": check.CooldownRemaining}
		}
		return finish(res)
	}
	if r.RequiresTarget() && target == nil {
		return finish(fail("a target is required"))
	}

	res := r.Execute(actor, target, g, Env{Now: now, NewID: d.newID})
	if !res.Success {
		return finish(res)
	}

	if actor.AbilityUses == nil {
		actor.AbilityUses = make(map[model.AbilityKind]int)
	}
	actor.AbilityUses[kind]++

	if granted {
		actor.GrantedAbility = ""
	} else if cd := r.Cooldown(g.Settings); cd > 0 {
		if actor.AbilityCooldowns == nil {
			actor.AbilityCooldowns = make(map[model.AbilityKind]time.Time)
		}
		expiry := now.Add(cd)
		actor.AbilityCooldowns[kind] = expiry
		res.CooldownExpiry = &expiry
	}
	return finish(res)
}

// RemainingCooldown returns whole seconds until kind is usable again, 0 when ready
func (d *Dispatcher) RemainingCooldown(actor *model.Player, kind model.AbilityKind, now time.Time) int {
	expiry, ok := actor.AbilityCooldowns[kind]
	if !ok || !now.Before(expiry) {
		return 0
	}
	return int(math.Ceil(expiry.Sub(now).Seconds()))
}

// RemainingUses returns nil for unlimited abilities
func (d *Dispatcher) RemainingUses(actor *model.Player, g *model.Game, kind model.AbilityKind) *int {
	r, ok := d.resolvers[kind]
	if !ok {
		return nil
	}
	limit := r.MaxUses(g.Settings)
	if limit <= 0 {
		return nil
	}
	left := max(0, limit-actor.AbilityUses[kind])
	return &left
}
