package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"

	"murdermystery/internal/cache"
	"murdermystery/internal/game"
	"murdermystery/internal/model"
	"murdermystery/internal/repository"
)

// GameService runs the game lifecycle: lobbies, role assignment, abilities and host
// controls. Every mutation goes through the per-game store.
type GameService struct {
	notifier
	store      *gameStore
	votes      cache.VoteCache
	codes      *CodeService
	dispatcher *game.Dispatcher
	newID      func() string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGameService creates a new game service. snapshots may be nil.
func NewGameService(
	repo repository.GameRepo,
	votes cache.VoteCache,
	snapshots cache.SnapshotCache,
	codes *CodeService,
) *GameService {
	return &GameService{
		store:      newGameStore(repo, snapshots),
		votes:      votes,
		codes:      codes,
		dispatcher: game.NewDispatcher(uuid.NewString),
		newID:      uuid.NewString,
		rng:        newRand(),
	}
}

func newRand() *rand.Rand {
	var b [16]byte
	_, _ = crand.Read(b[:])
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}

// SetClock replaces the wall clock, used by tests
func (s *GameService) SetClock(now func() time.Time) {
	s.store.now = now
}

// SetRand replaces the role assignment source, used by tests
func (s *GameService) SetRand(r *rand.Rand) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng = r
}

func (s *GameService) env() game.Env {
	return game.Env{Now: s.store.now(), NewID: s.newID}
}

// CreateLobby creates a lobby game that players can join
func (s *GameService) CreateLobby(ctx context.Context, settings model.GameSettings) (*model.Game, error) {
	settings = settings.WithDefaults()
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	g, err := s.create(ctx, func(code string) (*model.Game, error) {
		return s.newGame(code, settings), nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("game", g.Code).Msg("lobby created")
	return g, nil
}

// StartSession creates a game with the given players and starts it in one step.
// Nothing is stored unless every check passes.
func (s *GameService) StartSession(ctx context.Context, names []string, settings model.GameSettings) (*model.SessionStart, error) {
	settings = settings.WithDefaults()
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	cleaned, err := validateNames(names, settings.MaxPlayers)
	if err != nil {
		return nil, err
	}
	k, err := game.ResolveMurdererCount(settings.MurdererCount, len(cleaned))
	if err != nil {
		return nil, err
	}

	g, err := s.create(ctx, func(code string) (*model.Game, error) {
		g := s.newGame(code, settings)
		for _, name := range cleaned {
			p, err := s.newPlayer(code, name, g.CreatedAt)
			if err != nil {
				return nil, err
			}
			g.Players = append(g.Players, p)
		}
		if err := s.assignRoles(g, k); err != nil {
			return nil, err
		}
		started := g.CreatedAt
		g.Status = model.GameActive
		g.StartedAt = &started
		return g, nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("game", g.Code).Int("players", len(g.Players)).Int("murderers", k).Msg("session started")
	s.publishState(g, s.store.now())

	start := &model.SessionStart{Game: game.Serialize(g, s.store.now(), true)}
	for _, p := range g.Players {
		start.Players = append(start.Players, model.PlayerJoinResponse{PlayerID: p.ID, Code: p.Code, GameCode: g.Code})
	}
	return start, nil
}

// JoinLobby adds a player to a lobby and returns their player code
func (s *GameService) JoinLobby(ctx context.Context, code string, req model.JoinRequest) (*model.PlayerJoinResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, game.ErrInvalidName
	}

	var joined *model.Player
	g, err := s.store.update(ctx, code, func(g *model.Game) error {
		switch {
		case g.Status == model.GameActive:
			return game.ErrSessionActive
		case g.Status != model.GameLobby:
			return game.ErrGameNotInLobby
		case len(g.Players) >= g.Settings.MaxPlayers:
			return fmt.Errorf("%w: %d players", game.ErrLobbyFull, g.Settings.MaxPlayers)
		}

		folder := cases.Fold()
		key := folder.String(name)
		for _, p := range g.Players {
			if folder.String(p.Name) == key {
				return fmt.Errorf("%w: %s", game.ErrDuplicateName, name)
			}
		}

		p, err := s.newPlayer(g.Code, name, s.store.now())
		if err != nil {
			return err
		}
		p.Phone = strings.TrimSpace(req.Phone)
		p.Email = strings.TrimSpace(req.Email)
		g.Players = append(g.Players, p)
		joined = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("game", g.Code).Str("player", joined.ID).Msg("player joined")
	view := model.PlayerView{ID: joined.ID, Name: joined.Name, IsAlive: true, JoinedAt: joined.JoinedAt}
	s.toHost(g.Code, EventPlayerJoined, view)
	s.toAll(g.Code, EventPlayerJoined, view)
	s.publishState(g, s.store.now())

	return &model.PlayerJoinResponse{PlayerID: joined.ID, Code: joined.Code, GameCode: g.Code}, nil
}

// StartGame assigns roles to the players in a lobby and activates the game
func (s *GameService) StartGame(ctx context.Context, code string) (*model.Game, error) {
	g, err := s.store.update(ctx, code, func(g *model.Game) error {
		switch g.Status {
		case model.GameLobby:
		case model.GameActive:
			return game.ErrSessionActive
		default:
			return game.ErrGameNotInLobby
		}
		n := len(g.Players)
		if n > g.Settings.MaxPlayers {
			return fmt.Errorf("%w: %d players, max %d", game.ErrInvalidPlayerCount, n, g.Settings.MaxPlayers)
		}
		k, err := game.ResolveMurdererCount(g.Settings.MurdererCount, n)
		if err != nil {
			return err
		}
		if err := s.assignRoles(g, k); err != nil {
			return err
		}
		now := s.store.now()
		g.Status = model.GameActive
		g.StartedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("game", g.Code).Int("players", len(g.Players)).Msg("game started")
	for _, p := range g.Players {
		s.toPlayer(g.Code, p.ID, EventRoleAssigned, map[string]interface{}{
			"role":  p.Role,
			"label": model.ThemedLabel(p.Role, g.Settings.Theme),
		})
	}
	s.publishState(g, s.store.now())
	return g, nil
}

// UseAbility executes an ability for a player. Domain rejections come back as an
// unsuccessful result, not an error.
func (s *GameService) UseAbility(ctx context.Context, code, playerID string, kind model.AbilityKind, targetID string) (model.AbilityResult, error) {
	return s.runAbility(ctx, code, playerID, kind, targetID)
}

// RecordKill is the host's kill entry point; it takes the same path as a murderer's
// own kill ability.
func (s *GameService) RecordKill(ctx context.Context, code, murdererID, victimID string) (model.AbilityResult, error) {
	return s.runAbility(ctx, code, murdererID, model.AbilityKill, victimID)
}

func (s *GameService) runAbility(ctx context.Context, code, actorID string, kind model.AbilityKind, targetID string) (model.AbilityResult, error) {
	var (
		res       model.AbilityResult
		events    []model.AbilityEvent
		newKills  []model.KillEvent
		collected = func(ev model.AbilityEvent) { events = append(events, ev) }
	)

	g, err := s.store.update(ctx, code, func(g *model.Game) error {
		actor := g.Player(actorID)
		if actor == nil {
			return fmt.Errorf("%w: %s", game.ErrPlayerNotFound, actorID)
		}
		var target *model.Player
		if targetID != "" {
			if target = g.Player(targetID); target == nil {
				res = model.AbilityResult{Message: "target player not found"}
				return errNoChange
			}
		}

		before := len(g.KillEvents)
		env := s.env()
		res = s.dispatcher.Execute(actor, g, kind, target, env.Now, collected)
		if res.Success {
			game.FinishIfWon(g, env)
		}
		newKills = append(newKills, g.KillEvents[before:]...)

		if !res.Success && len(newKills) == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return model.AbilityResult{}, err
	}

	now := s.store.now()
	for _, ev := range events {
		logEv := log.Debug()
		if ev.Type == model.EventAbilityUsed {
			logEv = log.Info()
		}
		logEv.Str("game", g.Code).Str("player", ev.ActorID).Str("ability", string(ev.Ability)).Str("result", ev.Message).Msg(string(ev.Type))

		s.toPlayer(g.Code, ev.ActorID, string(ev.Type), ev)
		s.toHost(g.Code, string(ev.Type), ev)
	}
	if len(newKills) > 0 {
		s.announceKillEvents(g, newKills, now)
		s.publishState(g, now)
	} else if res.Success {
		s.publishState(g, now)
	}
	return res, nil
}

// CheckAbility reports whether a player could use an ability right now
func (s *GameService) CheckAbility(ctx context.Context, code, playerID string, kind model.AbilityKind) (model.UseCheck, error) {
	g, err := s.store.load(ctx, code)
	if err != nil {
		return model.UseCheck{}, err
	}
	p := g.Player(playerID)
	if p == nil {
		return model.UseCheck{}, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, playerID)
	}
	return s.dispatcher.CanUse(p, g, kind, s.store.now()), nil
}

// Authenticate resolves a player code to its game and player
func (s *GameService) Authenticate(ctx context.Context, playerCode string) (*model.Game, *model.Player, error) {
	claims, err := s.codes.Verify(playerCode)
	if err != nil {
		return nil, nil, err
	}
	g, err := s.store.repo.GetByPlayerCode(ctx, playerCode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find player: %w", err)
	}
	if g == nil {
		return nil, nil, game.ErrPlayerNotFound
	}
	if g.Code != claims.GameCode {
		return nil, nil, ErrInvalidCode
	}
	return g, g.PlayerByCode(playerCode), nil
}

// GetGame returns the public view of a game, served from the snapshot cache when warm
func (s *GameService) GetGame(ctx context.Context, code string) (*model.SessionView, error) {
	if s.store.snapshots != nil {
		view, err := s.store.snapshots.Get(ctx, code)
		if err != nil {
			log.Warn().Err(err).Str("game", code).Msg("snapshot read failed")
		} else if view != nil {
			return view, nil
		}
	}

	g, err := s.store.load(ctx, code)
	if err != nil {
		return nil, err
	}
	s.store.refreshSnapshot(ctx, g)
	return game.Serialize(g, s.store.now(), false), nil
}

// HostView returns the unredacted view of a game
func (s *GameService) HostView(ctx context.Context, code string) (*model.SessionView, error) {
	g, err := s.store.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return game.Serialize(g, s.store.now(), true), nil
}

// Stats returns the computed statistics of a game
func (s *GameService) Stats(ctx context.Context, code string) (*model.GameStats, error) {
	g, err := s.store.load(ctx, code)
	if err != nil {
		return nil, err
	}
	stats := game.Stats(g, s.store.now())
	return &stats, nil
}

// Self returns a player's own view including role and ability availability
func (s *GameService) Self(ctx context.Context, code, playerID string) (*model.SelfView, error) {
	g, err := s.store.load(ctx, code)
	if err != nil {
		return nil, err
	}
	p := g.Player(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, playerID)
	}

	now := s.store.now()
	abilities := make(map[model.AbilityKind]model.UseCheck)
	for _, kind := range s.dispatcher.Abilities(p) {
		abilities[kind] = s.dispatcher.CanUse(p, g, kind, now)
	}
	return &model.SelfView{
		Player:    model.NewSelfPlayer(p),
		RoleLabel: model.ThemedLabel(p.Role, g.Settings.Theme),
		Abilities: abilities,
		Game:      game.Serialize(g, now, false),
	}, nil
}

// ListGames returns public views of every stored game, newest first
func (s *GameService) ListGames(ctx context.Context) ([]*model.SessionView, error) {
	games, err := s.store.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	now := s.store.now()
	views := make([]*model.SessionView, 0, len(games))
	for _, g := range games {
		views = append(views, game.Serialize(g, now, false))
	}
	return views, nil
}

// EndGame cancels a game that has not finished yet
func (s *GameService) EndGame(ctx context.Context, code string) (*model.Game, error) {
	g, err := s.store.update(ctx, code, func(g *model.Game) error {
		if g.IsOver() {
			return fmt.Errorf("%w: game already ended", game.ErrGameNotActive)
		}
		now := s.store.now()
		g.Status = model.GameCancelled
		g.EndedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.votes.Reset(ctx, g.ID); err != nil {
		log.Warn().Err(err).Str("game", g.Code).Msg("failed to clear votes")
	}
	log.Info().Str("game", g.Code).Msg("game cancelled")
	now := s.store.now()
	s.announceEnd(g, now)
	s.publishState(g, now)
	return g, nil
}

// ResetSession discards all state of a game and reopens it as a fresh lobby with the
// same code and roster. The old session keeps its identity; the new one gets a new ID.
func (s *GameService) ResetSession(ctx context.Context, code string) (*model.Game, error) {
	unlock := s.store.locks.lock(code)
	defer unlock()

	old, err := s.store.load(ctx, code)
	if err != nil {
		return nil, err
	}

	next := s.newGame(code, old.Settings)
	for _, p := range old.Players {
		cp := *p
		cp.Reset()
		next.Players = append(next.Players, &cp)
	}

	next.Version = old.Version + 1
	if err := s.store.repo.Replace(ctx, old, next); err != nil {
		return nil, fmt.Errorf("failed to reset game: %w", err)
	}
	if err := s.votes.Reset(ctx, old.ID); err != nil {
		log.Warn().Err(err).Str("game", code).Msg("failed to clear votes")
	}
	s.store.refreshSnapshot(ctx, next)

	log.Info().Str("game", code).Str("previous", old.ID).Str("session", next.ID).Msg("session reset")
	s.publishState(next, s.store.now())
	return next, nil
}

// DeleteGame removes a game and disconnects its sockets
func (s *GameService) DeleteGame(ctx context.Context, code string) error {
	unlock := s.store.locks.lock(code)
	defer unlock()

	g, err := s.store.load(ctx, code)
	if err != nil {
		return err
	}
	if err := s.store.repo.Delete(ctx, code); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if err := s.votes.Reset(ctx, g.ID); err != nil {
		log.Warn().Err(err).Str("game", code).Msg("failed to clear votes")
	}
	s.store.dropSnapshot(ctx, code)
	if s.broadcaster != nil {
		s.broadcaster.DisconnectRoom(code)
	}

	log.Info().Str("game", code).Msg("game deleted")
	return nil
}

func (s *GameService) newGame(code string, settings model.GameSettings) *model.Game {
	return &model.Game{
		ID:        s.newID(),
		Code:      code,
		Status:    model.GameLobby,
		Settings:  settings,
		CreatedAt: s.store.now(),
	}
}

func (s *GameService) newPlayer(gameCode, name string, now time.Time) (*model.Player, error) {
	id := s.newID()
	code, err := s.codes.Issue(gameCode, id)
	if err != nil {
		return nil, fmt.Errorf("failed to issue player code: %w", err)
	}
	return model.NewPlayer(id, code, name, now), nil
}

func (s *GameService) assignRoles(g *model.Game, k int) error {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return game.AssignRoles(g.Players, k, g.Settings.SupportRoles, s.rng)
}

// create picks an unused code, builds the game for it and inserts it, retrying when
// another writer took the code first.
func (s *GameService) create(ctx context.Context, build func(code string) (*model.Game, error)) (*model.Game, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code, err := s.generateGameCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate game code: %w", err)
		}
		g, err := build(code)
		if err != nil {
			return nil, err
		}
		err = s.store.repo.Create(ctx, g)
		if errors.Is(err, repository.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}
		s.store.refreshSnapshot(ctx, g)
		return g, nil
	}
	return nil, fmt.Errorf("failed to generate unique game code")
}

// generateGameCode creates a 6-char alphanumeric code
func (s *GameService) generateGameCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := crand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		existing, err := s.store.repo.GetByCode(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("no free game code after retries")
}

func validateSettings(s model.GameSettings) error {
	if s.MurdererCount < 0 {
		return fmt.Errorf("%w: murdererCount must not be negative", game.ErrInvalidPlayerCount)
	}
	if s.MaxPlayers < model.MinPlayers {
		return fmt.Errorf("%w: maxPlayers must be at least %d", game.ErrInvalidSettings, model.MinPlayers)
	}
	if s.Theme != model.ThemeClassic && s.Theme != model.ThemeHoliday {
		return fmt.Errorf("%w: unknown theme %q", game.ErrInvalidSettings, s.Theme)
	}
	seen := make(map[model.Role]bool)
	for _, r := range s.SupportRoles {
		if !model.IsSupport(r) || seen[r] {
			return fmt.Errorf("%w: support role %q", game.ErrInvalidSettings, r)
		}
		seen[r] = true
	}
	return nil
}

// validateNames trims names and checks count and case-insensitive uniqueness
func validateNames(names []string, maxPlayers int) ([]string, error) {
	if len(names) < model.MinPlayers {
		return nil, fmt.Errorf("%w: need at least %d players, got %d", game.ErrInvalidPlayerCount, model.MinPlayers, len(names))
	}
	if len(names) > maxPlayers {
		return nil, fmt.Errorf("%w: %d players, max %d", game.ErrInvalidPlayerCount, len(names), maxPlayers)
	}

	folder := cases.Fold()
	seen := make(map[string]bool, len(names))
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, game.ErrInvalidName
		}
		key := folder.String(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", game.ErrDuplicateName, name)
		}
		seen[key] = true
		cleaned = append(cleaned, name)
	}
	return cleaned, nil
}
