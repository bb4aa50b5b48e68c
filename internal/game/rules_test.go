package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murdermystery/internal/model"
)

func TestCheckWinCondition(t *testing.T) {
	tests := []struct {
		name  string
		roles []model.Role
		dead  []int
		want  model.Winner
	}{
		{"two vs two", []model.Role{model.RoleMurderer, model.RoleMurderer, model.RoleCivilian, model.RoleDetective}, nil, model.WinnerAggressors},
		{"no aggressors left", []model.Role{model.RoleMurderer, model.RoleCivilian, model.RoleCivilian}, []int{0}, model.WinnerSupport},
		{"one vs three", []model.Role{model.RoleMurderer, model.RoleCivilian, model.RoleCivilian, model.RoleReviver}, nil, ""},
		{"only aggressors alive", []model.Role{model.RoleMurderer, model.RoleCivilian}, []int{1}, ""},
		{"dead players ignored", []model.Role{model.RoleMurderer, model.RoleCivilian, model.RoleCivilian, model.RoleCivilian}, []int{1, 2}, model.WinnerAggressors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := activeGame(tt.roles...)
			for _, i := range tt.dead {
				g.Players[i].IsAlive = false
			}
			assert.Equal(t, tt.want, CheckWinCondition(g))
		})
	}
}

func TestFinishIfWon(t *testing.T) {
	g := activeGame(model.RoleMurderer, model.RoleCivilian, model.RoleCivilian)
	env := Env{Now: t0.Add(time.Hour), NewID: seqID()}

	assert.Empty(t, FinishIfWon(g, env))
	assert.Equal(t, model.GameActive, g.Status)

	g.Players[1].IsAlive = false
	assert.Equal(t, model.WinnerAggressors, FinishIfWon(g, env))
	assert.Equal(t, model.GameCompleted, g.Status)
	require.NotNil(t, g.EndedAt)
	require.Len(t, g.KillEvents, 1)
	assert.Equal(t, model.KillEventVictory, g.KillEvents[0].Kind)

	// already over: no second victory entry
	FinishIfWon(g, env)
	assert.Len(t, g.KillEvents, 1)
}

func TestEliminationThreshold(t *testing.T) {
	assert.Equal(t, 7, EliminationThreshold(10))
	assert.Equal(t, 3, EliminationThreshold(3))
	assert.Equal(t, 3, EliminationThreshold(4))
	assert.Equal(t, 5, EliminationThreshold(7))
	assert.Equal(t, 0, EliminationThreshold(0))
	assert.Equal(t, 70.0, VotePercentage(7, 10))
	assert.Equal(t, 33.3, VotePercentage(1, 3))
}

func TestStats(t *testing.T) {
	g := activeGame(model.RoleMurderer, model.RoleCivilian, model.RoleCivilian, model.RoleBodyguard)
	d := NewDispatcher(seqID())
	require.True(t, d.Execute(g.Players[0], g, model.AbilityKill, g.Players[1], t0, nil).Success)

	s := Stats(g, t0.Add(90*time.Second))
	assert.Equal(t, 4, s.TotalPlayers)
	assert.Equal(t, 3, s.AlivePlayers)
	assert.Equal(t, 1, s.DeadPlayers)
	assert.Equal(t, 1, s.Aggressors)
	assert.Equal(t, 2, s.Civilians)
	assert.Equal(t, 1, s.TotalKills)
	assert.True(t, s.GameStarted)
	assert.False(t, s.GameEnded)
	require.NotNil(t, s.Duration)
	assert.Equal(t, 90.0, *s.Duration)

	lobby := &model.Game{Status: model.GameLobby}
	assert.Nil(t, Stats(lobby, t0).Duration)
}

func TestStats_CountsSelfInflictedDeathsAlike(t *testing.T) {
	g := activeGame(model.RoleMurderer, model.RoleVigilante, model.RoleTroll, model.RoleCivilian, model.RoleCivilian,
		model.RoleCivilian, model.RoleCivilian, model.RoleCivilian)
	d := NewDispatcher(seqID())
	m, vig, troll := g.Players[0], g.Players[1], g.Players[2]

	res := d.Execute(vig, g, model.AbilityVigilanteKill, g.Players[3], t0, nil)
	require.True(t, res.Success)
	require.False(t, vig.IsAlive)
	res = d.Execute(troll, g, model.AbilityMimic, m, t0, nil)
	require.True(t, res.Success)
	require.False(t, troll.IsAlive)
	Eliminate(g, g.Players[4], Env{Now: t0, NewID: seqID()})

	s := Stats(g, t0)
	assert.Equal(t, 2, s.TotalKills, "misfire and fatal mimic count, the vote does not")
	assert.Equal(t, 3, s.DeadPlayers)
}

func TestSerialize_HidesSecretsFromPlayers(t *testing.T) {
	g := activeGame(model.RoleMurderer, model.RoleCivilian, model.RoleCivilian, model.RoleBodyguard)
	d := NewDispatcher(seqID())
	require.True(t, d.Execute(g.Players[0], g, model.AbilityKill, g.Players[1], t0, nil).Success)

	public := Serialize(g, t0, false)
	assert.Empty(t, public.Players[0].Role)
	assert.Equal(t, model.RoleCivilian, public.Players[1].Role, "dead players are revealed")
	assert.Empty(t, public.KillEvents[0].Murderer)
	assert.True(t, public.IsActive)

	host := Serialize(g, t0, true)
	assert.Equal(t, model.RoleMurderer, host.Players[0].Role)
	assert.Equal(t, g.Players[0].ID, host.KillEvents[0].Murderer)
	assert.Equal(t, g.Settings.CooldownMinutes, host.Settings.CooldownMinutes)
}

func TestEliminate(t *testing.T) {
	g := activeGame(model.RoleMurderer, model.RoleCivilian, model.RoleCivilian, model.RoleDetective)
	env := Env{Now: t0, NewID: seqID()}

	assert.Empty(t, Eliminate(g, g.Players[1], env))
	assert.False(t, g.Players[1].IsAlive)
	require.Len(t, g.KillEvents, 1)
	assert.Equal(t, model.KillEventVote, g.KillEvents[0].Kind)
	assert.Empty(t, g.KillEvents[0].Murderer)

	assert.Equal(t, model.WinnerSupport, Eliminate(g, g.Players[0], env))
	assert.Equal(t, model.GameCompleted, g.Status)
}
