package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murdermystery/internal/model"
)

func newGame(code string) *model.Game {
	now := time.Now()
	return &model.Game{
		ID:        "id-" + code,
		Code:      code,
		Status:    model.GameLobby,
		CreatedAt: now,
		Players:   []*model.Player{model.NewPlayer("p1", "pc-"+code, "Ann", now)},
	}
}

func TestMemoryGameRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepo()

	require.NoError(t, repo.Create(ctx, newGame("AAAAAA")))
	assert.ErrorIs(t, repo.Create(ctx, newGame("AAAAAA")), ErrDuplicateCode)

	g, err := repo.GetByCode(ctx, "AAAAAA")
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "Ann", g.Players[0].Name)

	g, err = repo.GetByPlayerCode(ctx, "pc-AAAAAA")
	require.NoError(t, err)
	require.NotNil(t, g)

	missing, err := repo.GetByCode(ctx, "ZZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryGameRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepo()
	require.NoError(t, repo.Create(ctx, newGame("BBBBBB")))

	g, _ := repo.GetByCode(ctx, "BBBBBB")
	g.Players[0].IsAlive = false

	again, _ := repo.GetByCode(ctx, "BBBBBB")
	assert.True(t, again.Players[0].IsAlive)
}

func TestMemoryGameRepo_SaveChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepo()
	require.NoError(t, repo.Create(ctx, newGame("CCCCCC")))

	first, _ := repo.GetByCode(ctx, "CCCCCC")
	second, _ := repo.GetByCode(ctx, "CCCCCC")

	first.Status = model.GameActive
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	second.Status = model.GameCancelled
	assert.ErrorIs(t, repo.Save(ctx, second), ErrVersionConflict)

	stored, _ := repo.GetByCode(ctx, "CCCCCC")
	assert.Equal(t, model.GameActive, stored.Status)
}

func TestMemoryGameRepo_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepo()
	require.NoError(t, repo.Create(ctx, newGame("DDDDDD")))
	require.NoError(t, repo.Create(ctx, newGame("EEEEEE")))

	games, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 2)

	require.NoError(t, repo.Delete(ctx, "DDDDDD"))
	games, _ = repo.List(ctx)
	assert.Len(t, games, 1)
}

func TestMemoryGameRepo_ReplaceSwapsSession(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryGameRepo()
	require.NoError(t, repo.Create(ctx, newGame("FFFFFF")))

	prev, _ := repo.GetByCode(ctx, "FFFFFF")
	next := newGame("FFFFFF")
	next.ID = "fresh"
	next.Version = prev.Version + 1
	require.NoError(t, repo.Replace(ctx, prev, next))

	stored, _ := repo.GetByCode(ctx, "FFFFFF")
	assert.Equal(t, "fresh", stored.ID)

	// prev is gone, so replacing it again is a conflict and leaves the store alone
	other := newGame("FFFFFF")
	other.ID = "other"
	assert.ErrorIs(t, repo.Replace(ctx, prev, other), ErrVersionConflict)
	stored, _ = repo.GetByCode(ctx, "FFFFFF")
	assert.Equal(t, "fresh", stored.ID)
}
