package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"murdermystery/internal/cache"
	"murdermystery/internal/game"
	"murdermystery/internal/model"
	"murdermystery/internal/repository"
)

// errNoChange lets an update callback finish without writing
var errNoChange = errors.New("no change")

type gameLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *gameLocks) lock(code string) func() {
	l.mu.Lock()
	m, ok := l.locks[code]
	if !ok {
		m = &sync.Mutex{}
		l.locks[code] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// gameStore serializes mutations per game code inside this process. Writes across
// processes are guarded by the repository's version check.
type gameStore struct {
	repo      repository.GameRepo
	snapshots cache.SnapshotCache
	locks     *gameLocks
	now       func() time.Time
}

func newGameStore(repo repository.GameRepo, snapshots cache.SnapshotCache) *gameStore {
	return &gameStore{
		repo:      repo,
		snapshots: snapshots,
		locks:     newGameLocks(),
		now:       time.Now,
	}
}

func (s *gameStore) load(ctx context.Context, code string) (*model.Game, error) {
	g, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: %s", game.ErrGameNotFound, code)
	}
	return g, nil
}

func (s *gameStore) save(ctx context.Context, g *model.Game) error {
	if err := s.repo.Save(ctx, g); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	s.refreshSnapshot(ctx, g)
	return nil
}

// update loads the game under its lock, applies fn and saves the result. fn works on
// a private copy, so an error leaves the stored game untouched.
func (s *gameStore) update(ctx context.Context, code string, fn func(g *model.Game) error) (*model.Game, error) {
	unlock := s.locks.lock(code)
	defer unlock()

	g, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		if errors.Is(err, errNoChange) {
			return g, nil
		}
		return nil, err
	}
	if err := s.save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *gameStore) refreshSnapshot(ctx context.Context, g *model.Game) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Set(ctx, game.Serialize(g, s.now(), false)); err != nil {
		log.Warn().Err(err).Str("game", g.Code).Msg("failed to cache game snapshot")
	}
}

func (s *gameStore) dropSnapshot(ctx context.Context, code string) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Delete(ctx, code); err != nil {
		log.Warn().Err(err).Str("game", code).Msg("failed to drop game snapshot")
	}
}

// killNotice is the payload of player-killed
type killNotice struct {
	Event  model.KillEvent   `json:"event"`
	Victim *model.PlayerView `json:"victim,omitempty"`
}

// gameEndedNotice is the payload of game-ended
type gameEndedNotice struct {
	Winner model.Winner       `json:"winner,omitempty"`
	Status model.GameStatus   `json:"status"`
	Game   *model.SessionView `json:"game"`
}

// notifier fans game events out to sockets. Hosts get full views, players get
// redacted ones.
type notifier struct {
	broadcaster Broadcaster
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (n *notifier) SetBroadcaster(b Broadcaster) {
	n.broadcaster = b
}

func (n *notifier) toHost(code, msgType string, payload interface{}) {
	if n.broadcaster != nil {
		n.broadcaster.BroadcastToHost(code, msgType, payload)
	}
}

func (n *notifier) toPlayer(code, playerID, msgType string, payload interface{}) {
	if n.broadcaster != nil {
		n.broadcaster.BroadcastToPlayer(code, playerID, msgType, payload)
	}
}

func (n *notifier) toAll(code, msgType string, payload interface{}) {
	if n.broadcaster != nil {
		n.broadcaster.BroadcastToAllPlayers(code, msgType, payload)
	}
}

func (n *notifier) publishState(g *model.Game, now time.Time) {
	n.toHost(g.Code, EventSessionState, game.Serialize(g, now, true))
	n.toAll(g.Code, EventSessionState, game.Serialize(g, now, false))
}

// announceKillEvents sends player-killed for deaths and game-ended for a victory entry
func (n *notifier) announceKillEvents(g *model.Game, events []model.KillEvent, now time.Time) {
	for _, ev := range events {
		switch ev.Kind {
		case model.KillEventVictory:
			n.announceEnd(g, now)
			continue
		case model.KillEventKill, model.KillEventVigilante, model.KillEventMimic, model.KillEventVote:
		default:
			continue
		}
		if !ev.Successful {
			continue
		}

		notice := killNotice{Event: ev}
		if victim := g.Player(ev.Victim); victim != nil {
			notice.Victim = &model.PlayerView{
				ID:       victim.ID,
				Name:     victim.Name,
				Role:     victim.Role,
				IsAlive:  victim.IsAlive,
				JoinedAt: victim.JoinedAt,
			}
		}
		n.toHost(g.Code, EventPlayerKilled, notice)

		if !g.IsOver() {
			notice.Event.Murderer = ""
		}
		n.toAll(g.Code, EventPlayerKilled, notice)
	}
}

func (n *notifier) announceEnd(g *model.Game, now time.Time) {
	n.toHost(g.Code, EventGameEnded, gameEndedNotice{Winner: g.Winner, Status: g.Status, Game: game.Serialize(g, now, true)})
	n.toAll(g.Code, EventGameEnded, gameEndedNotice{Winner: g.Winner, Status: g.Status, Game: game.Serialize(g, now, false)})
}
