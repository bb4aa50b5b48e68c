package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"murdermystery/internal/cache"
	"murdermystery/internal/game"
	"murdermystery/internal/model"
)

// VoteService casts votes and eliminates a player once enough of the living agree
type VoteService struct {
	notifier
	store *gameStore
	votes cache.VoteCache
	newID func() string
}

// NewVoteService creates a vote service sharing the game service's store
func NewVoteService(games *GameService, votes cache.VoteCache) *VoteService {
	return &VoteService{
		store: games.store,
		votes: votes,
		newID: games.newID,
	}
}

type voteUpdate struct {
	TargetID   string  `json:"targetId,omitempty"`
	VoteCount  int     `json:"voteCount"`
	Threshold  int     `json:"threshold"`
	Percentage float64 `json:"percentage"`
	Eliminated bool    `json:"eliminated"`
	Reset      bool    `json:"reset,omitempty"`
}

func rejectVote(format string, args ...interface{}) *model.VoteOutcome {
	return &model.VoteOutcome{Message: fmt.Sprintf(format, args...)}
}

// CastVote records voterID's vote for targetID and eliminates the target when the
// tally reaches ceil(alive * 0.7). An elimination clears every vote of the game.
func (s *VoteService) CastVote(ctx context.Context, code, voterID, targetID string) (*model.VoteOutcome, error) {
	unlock := s.store.locks.lock(code)
	defer unlock()

	g, err := s.store.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if !g.IsActive() {
		return rejectVote("game is not active"), nil
	}
	voter := g.Player(voterID)
	if voter == nil {
		return nil, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, voterID)
	}
	target := g.Player(targetID)
	if target == nil {
		return nil, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, targetID)
	}

	switch {
	case !voter.IsAlive:
		return rejectVote("dead players cannot vote"), nil
	case voter.ID == target.ID:
		return rejectVote("you cannot vote for yourself"), nil
	case !target.IsAlive:
		return rejectVote("%s is already dead", target.Name), nil
	}

	count, err := s.votes.Cast(ctx, g.ID, voter.ID, target.ID)
	if errors.Is(err, cache.ErrAlreadyVoted) {
		return rejectVote("you have already voted"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	alive := g.AliveCount()
	out := &model.VoteOutcome{
		Accepted:   true,
		VoteCount:  count,
		Percentage: game.VotePercentage(count, alive),
		Threshold:  game.EliminationThreshold(alive),
	}
	log.Debug().Str("game", g.Code).Str("player", voter.ID).Str("target", target.ID).Int("votes", count).Int("threshold", out.Threshold).Msg("vote cast")

	if count < out.Threshold {
		update := voteUpdate{TargetID: target.ID, VoteCount: count, Threshold: out.Threshold, Percentage: out.Percentage}
		s.toHost(g.Code, EventVoteUpdate, update)
		s.toAll(g.Code, EventVoteUpdate, update)
		return out, nil
	}

	before := len(g.KillEvents)
	env := game.Env{Now: s.store.now(), NewID: s.newID}
	out.Eliminated = true
	out.Winner = game.Eliminate(g, target, env)
	out.EliminatedPlayer = &model.PlayerView{
		ID:       target.ID,
		Name:     target.Name,
		Role:     target.Role,
		IsAlive:  false,
		JoinedAt: target.JoinedAt,
	}

	if err := s.store.save(ctx, g); err != nil {
		if _, rerr := s.votes.Retract(ctx, g.ID, voter.ID, target.ID); rerr != nil {
			log.Error().Err(rerr).Str("game", g.Code).Str("player", voter.ID).Msg("failed to retract vote after failed save")
		}
		return nil, err
	}
	if err := s.votes.Reset(ctx, g.ID); err != nil {
		return nil, fmt.Errorf("failed to clear votes: %w", err)
	}

	log.Info().Str("game", g.Code).Str("player", target.ID).Int("votes", count).Msg("player voted out")
	update := voteUpdate{TargetID: target.ID, VoteCount: count, Threshold: out.Threshold, Percentage: out.Percentage, Eliminated: true}
	s.toHost(g.Code, EventVoteUpdate, update)
	s.toAll(g.Code, EventVoteUpdate, update)
	s.announceKillEvents(g, g.KillEvents[before:], env.Now)
	s.publishState(g, env.Now)
	return out, nil
}

// ResetVotes deletes every vote of the game
func (s *VoteService) ResetVotes(ctx context.Context, code string) error {
	g, err := s.store.load(ctx, code)
	if err != nil {
		return err
	}
	if err := s.votes.Reset(ctx, g.ID); err != nil {
		return fmt.Errorf("failed to reset votes: %w", err)
	}

	log.Info().Str("game", g.Code).Msg("votes reset")
	s.toHost(g.Code, EventVoteUpdate, voteUpdate{Reset: true})
	s.toAll(g.Code, EventVoteUpdate, voteUpdate{Reset: true})
	return nil
}

// Results returns the tally with names, highest count first. Targets without votes
// are left out.
func (s *VoteService) Results(ctx context.Context, code string) ([]model.VoteTally, error) {
	g, err := s.store.load(ctx, code)
	if err != nil {
		return nil, err
	}
	counts, err := s.votes.Results(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote results: %w", err)
	}

	tallies := make([]model.VoteTally, 0, len(counts))
	for _, c := range counts {
		p := g.Player(c.TargetID)
		if p == nil || c.Count <= 0 {
			continue
		}
		tallies = append(tallies, model.VoteTally{TargetID: p.ID, TargetName: p.Name, Count: c.Count})
	}
	return tallies, nil
}
