package game

import (
	"fmt"
	"math"
	"time"

	"murdermystery/internal/model"
)

// CheckWinCondition looks at the living players only. Aggressors win once they match
// or outnumber a non-empty rest; support wins when no aggressor is alive. An empty
// Winner means play continues.
func CheckWinCondition(g *model.Game) model.Winner {
	aggressors, others := 0, 0
	for _, p := range g.Players {
		if !p.IsAlive {
			continue
		}
		if model.IsAggressor(p.Role) {
			aggressors++
		} else {
			others++
		}
	}

	switch {
	case aggressors == 0:
		return model.WinnerSupport
	case others > 0 && aggressors >= others:
		return model.WinnerAggressors
	}
	return ""
}

// FinishIfWon ends an active game when a side has won, appending the victory entry
func FinishIfWon(g *model.Game, env Env) model.Winner {
	if !g.IsActive() {
		return g.Winner
	}
	w := CheckWinCondition(g)
	if w == "" {
		return ""
	}

	g.Status = model.GameCompleted
	g.EndedAt = timePtr(env.Now)
	g.Winner = w

	msg := "The murderers have taken over"
	if w == model.WinnerSupport {
		msg = "Every murderer has been stopped"
	}
	appendKillEvent(g, env, model.KillEventVictory, nil, nil, msg, true)
	return w
}

// Eliminate removes a player by vote, logs it and settles the game if that decided it
func Eliminate(g *model.Game, target *model.Player, env Env) model.Winner {
	markDead(target)
	appendKillEvent(g, env, model.KillEventVote, nil, target, fmt.Sprintf("%s was voted out", target.Name), true)
	return FinishIfWon(g, env)
}

// EliminationThreshold is ceil(alive * 0.7), computed on integers
func EliminationThreshold(alive int) int {
	if alive <= 0 {
		return 0
	}
	return (alive*7 + 9) / 10
}

// VotePercentage is the share of living players behind a target, one decimal
func VotePercentage(count, alive int) float64 {
	if alive <= 0 {
		return 0
	}
	return math.Round(float64(count)*1000/float64(alive)) / 10
}

// Stats projects a game into its summary numbers
func Stats(g *model.Game, now time.Time) model.GameStats {
	s := model.GameStats{
		TotalPlayers: len(g.Players),
		GameStarted:  g.StartedAt != nil,
		GameEnded:    g.EndedAt != nil,
	}
	for _, p := range g.Players {
		if !p.IsAlive {
			s.DeadPlayers++
			continue
		}
		s.AlivePlayers++
		if model.IsAggressor(p.Role) {
			s.Aggressors++
		} else {
			s.Civilians++
		}
	}
	// Every death caused by an ability counts, including a vigilante's misfire and
	// a fatal mimic. Votes and the victory entry do not.
	for _, ev := range g.KillEvents {
		if !ev.Successful {
			continue
		}
		switch ev.Kind {
		case model.KillEventKill, model.KillEventVigilante, model.KillEventMimic:
			s.TotalKills++
		}
	}
	if g.StartedAt != nil {
		end := now
		if g.EndedAt != nil {
			end = *g.EndedAt
		}
		d := end.Sub(*g.StartedAt).Seconds()
		s.Duration = &d
	}
	return s
}

// Serialize builds the wire view of a game. With revealRoles false (player-facing
// broadcasts) roles of living players and kill authors stay hidden until the end.
func Serialize(g *model.Game, now time.Time, revealRoles bool) *model.SessionView {
	reveal := revealRoles || g.IsOver()

	view := &model.SessionView{
		ID:        g.ID,
		Code:      g.Code,
		IsActive:  g.IsActive(),
		Status:    g.Status,
		Players:   make([]model.PlayerView, 0, len(g.Players)),
		StartTime: g.StartedAt,
		EndTime:   g.EndedAt,
		Settings: model.SettingsView{
			CooldownMinutes: g.Settings.CooldownMinutes,
			MaxPlayers:      g.Settings.MaxPlayers,
			MurdererCount:   g.Settings.MurdererCount,
			Theme:           g.Settings.Theme,
		},
		Stats:  Stats(g, now),
		Winner: g.Winner,
	}

	for _, p := range g.Players {
		pv := model.PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			IsAlive:  p.IsAlive,
			JoinedAt: p.JoinedAt,
		}
		if reveal || !p.IsAlive {
			pv.Role = p.Role
		}
		if reveal {
			pv.LastKillTime = p.LastKillAt
		}
		view.Players = append(view.Players, pv)
	}

	view.KillEvents = make([]model.KillEvent, 0, len(g.KillEvents))
	for _, ev := range g.KillEvents {
		if !reveal {
			ev.Murderer = ""
		}
		view.KillEvents = append(view.KillEvents, ev)
	}
	if !reveal {
		// aggressor counts would give the game away
		view.Stats.Aggressors = 0
		view.Stats.Civilians = 0
	}
	return view
}
