package repository

import (
	"context"
	"sort"
	"sync"

	"murdermystery/internal/model"
)

// MemoryGameRepo keeps games in process. Stored values are copies, so callers
// can mutate what they read without touching the store.
type MemoryGameRepo struct {
	mu    sync.RWMutex
	games map[string]*model.Game // code -> game
}

// NewMemoryGameRepo creates an empty in-memory repository
func NewMemoryGameRepo() *MemoryGameRepo {
	return &MemoryGameRepo{
		games: make(map[string]*model.Game),
	}
}

func (r *MemoryGameRepo) Create(_ context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.Code]; ok {
		return ErrDuplicateCode
	}
	r.games[game.Code] = game.Clone()
	return nil
}

func (r *MemoryGameRepo) GetByCode(_ context.Context, code string) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.games[code]; ok {
		return g.Clone(), nil
	}
	return nil, nil
}

func (r *MemoryGameRepo) GetByPlayerCode(_ context.Context, playerCode string) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.games {
		if g.PlayerByCode(playerCode) != nil {
			return g.Clone(), nil
		}
	}
	return nil, nil
}

func (r *MemoryGameRepo) Save(_ context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.games[game.Code]
	if !ok || cur.ID != game.ID || cur.Version != game.Version {
		return ErrVersionConflict
	}
	game.Version++
	r.games[game.Code] = game.Clone()
	return nil
}

func (r *MemoryGameRepo) Replace(_ context.Context, prev, next *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.games[prev.Code]
	if !ok || cur.ID != prev.ID || cur.Version != prev.Version || next.Code != prev.Code {
		return ErrVersionConflict
	}
	r.games[prev.Code] = next.Clone()
	return nil
}

func (r *MemoryGameRepo) List(_ context.Context) ([]*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Game, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryGameRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, code)
	return nil
}
