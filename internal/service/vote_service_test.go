package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murdermystery/internal/game"
	"murdermystery/internal/model"
)

func TestCastVote_EliminatesAtSeventyPercent(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	g := e.start(t, 10, 2)

	target := byRole(g, false)[0]
	var voters []*model.Player
	for _, p := range g.Players {
		if p.ID != target.ID {
			voters = append(voters, p)
		}
	}

	for i := 0; i < 6; i++ {
		out, err := e.votes.CastVote(ctx, g.Code, voters[i].ID, target.ID)
		require.NoError(t, err)
		require.True(t, out.Accepted, out.Message)
		assert.False(t, out.Eliminated)
		assert.Equal(t, i+1, out.VoteCount)
		assert.Equal(t, 7, out.Threshold)
	}
	assert.True(t, e.load(t, g.Code).Player(target.ID).IsAlive, "six of ten is not enough")

	results, err := e.votes.Results(ctx, g.Code)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.VoteTally{TargetID: target.ID, TargetName: target.Name, Count: 6}, results[0])

	out, err := e.votes.CastVote(ctx, g.Code, voters[6].ID, target.ID)
	require.NoError(t, err)
	assert.True(t, out.Eliminated)
	assert.Equal(t, 70.0, out.Percentage)
	require.NotNil(t, out.EliminatedPlayer)
	assert.Equal(t, target.ID, out.EliminatedPlayer.ID)

	stored := e.load(t, g.Code)
	assert.False(t, stored.Player(target.ID).IsAlive)
	assert.Equal(t, model.KillEventVote, stored.KillEvents[len(stored.KillEvents)-1].Kind)

	results, err = e.votes.Results(ctx, g.Code)
	require.NoError(t, err)
	assert.Empty(t, results, "an elimination clears the round")

	// the round is over, so earlier voters may vote again
	out, err = e.votes.CastVote(ctx, g.Code, voters[0].ID, voters[1].ID)
	require.NoError(t, err)
	assert.True(t, out.Accepted)
}

func TestCastVote_Rejections(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	g := e.start(t, 6, 1)

	m := byRole(g, true)[0]
	others := byRole(g, false)
	_, err := e.games.RecordKill(ctx, g.Code, m.ID, others[0].ID)
	require.NoError(t, err)

	tests := []struct {
		name          string
		voter, target string
		want          string
	}{
		{"dead voter", others[0].ID, others[1].ID, "dead players cannot vote"},
		{"dead target", others[1].ID, others[0].ID, others[0].Name + " is already dead"},
		{"self vote", others[1].ID, others[1].ID, "you cannot vote for yourself"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.votes.CastVote(ctx, g.Code, tt.voter, tt.target)
			require.NoError(t, err)
			assert.False(t, out.Accepted)
			assert.Equal(t, tt.want, out.Message)
		})
	}

	out, err := e.votes.CastVote(ctx, g.Code, others[1].ID, m.ID)
	require.NoError(t, err)
	require.True(t, out.Accepted)

	out, err = e.votes.CastVote(ctx, g.Code, others[1].ID, others[2].ID)
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, "you have already voted", out.Message)

	_, err = e.votes.CastVote(ctx, g.Code, others[1].ID, "ghost")
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)
}

func TestCastVote_EliminatingLastMurdererEndsGame(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	g := e.start(t, 4, 1)

	m := byRole(g, true)[0]
	others := byRole(g, false)
	require.Len(t, others, 3)
	for i, voter := range others {
		out, err := e.votes.CastVote(ctx, g.Code, voter.ID, m.ID)
		require.NoError(t, err)
		if i < 2 {
			assert.False(t, out.Eliminated)
			continue
		}
		assert.True(t, out.Eliminated)
		assert.Equal(t, model.WinnerSupport, out.Winner)
	}

	stored := e.load(t, g.Code)
	assert.Equal(t, model.GameCompleted, stored.Status)
	assert.Len(t, e.bc.find("host", EventGameEnded), 1)

	out, err := e.votes.CastVote(ctx, g.Code, others[0].ID, others[1].ID)
	require.NoError(t, err)
	assert.False(t, out.Accepted)
}

func TestCastVote_FailedSaveRetractsVote(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	g := e.start(t, 4, 1)

	m := byRole(g, true)[0]
	others := byRole(g, false)
	for _, voter := range others[:2] {
		out, err := e.votes.CastVote(ctx, g.Code, voter.ID, m.ID)
		require.NoError(t, err)
		require.True(t, out.Accepted)
	}

	repo := e.breakStore()
	repo.failSave = true
	_, err := e.votes.CastVote(ctx, g.Code, others[2].ID, m.ID)
	require.ErrorIs(t, err, errStoreDown)

	results, err := e.votes.Results(ctx, g.Code)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Count, "the failed vote is not counted")
	assert.True(t, e.load(t, g.Code).Player(m.ID).IsAlive)

	repo.failSave = false
	out, err := e.votes.CastVote(ctx, g.Code, others[2].ID, m.ID)
	require.NoError(t, err)
	require.True(t, out.Accepted, out.Message)
	assert.True(t, out.Eliminated)
	assert.False(t, e.load(t, g.Code).Player(m.ID).IsAlive)
}

func TestResetVotes(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	g := e.start(t, 6, 1)

	_, err := e.votes.CastVote(ctx, g.Code, g.Players[0].ID, g.Players[1].ID)
	require.NoError(t, err)

	require.NoError(t, e.votes.ResetVotes(ctx, g.Code))
	results, err := e.votes.Results(ctx, g.Code)
	require.NoError(t, err)
	assert.Empty(t, results)

	out, err := e.votes.CastVote(ctx, g.Code, g.Players[0].ID, g.Players[1].ID)
	require.NoError(t, err)
	assert.True(t, out.Accepted)

	assert.ErrorIs(t, e.votes.ResetVotes(ctx, "NOPE00"), game.ErrGameNotFound)
}
