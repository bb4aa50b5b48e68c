package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrAlreadyVoted = errors.New("voter has already voted")

// VoteCache keeps per-game vote tallies in a ZSET and who voted for whom in a HASH
type VoteCache interface {
	// Cast records voterID's vote and returns the target's new count
	Cast(ctx context.Context, gameID, voterID, targetID string) (int, error)
	// Retract undoes voterID's vote for targetID; it reports whether there was one
	Retract(ctx context.Context, gameID, voterID, targetID string) (bool, error)
	Results(ctx context.Context, gameID string) ([]VoteCount, error)
	Reset(ctx context.Context, gameID string) error
}

// VoteCount is one target's tally
type VoteCount struct {
	TargetID string `json:"targetId"`
	Count    int    `json:"count"`
}

// HSETNX then ZINCRBY so a voter can never be counted twice
var castScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[2], ARGV[1], ARGV[2]) == 0 then
  return -1
end
local n = redis.call('ZINCRBY', KEYS[1], 1, ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[3])
redis.call('EXPIRE', KEYS[2], ARGV[3])
return tonumber(n)
`)

// Only removes the vote when it still points at the expected target
var retractScript = redis.NewScript(`
if redis.call('HGET', KEYS[2], ARGV[1]) ~= ARGV[2] then
  return 0
end
redis.call('HDEL', KEYS[2], ARGV[1])
redis.call('ZINCRBY', KEYS[1], -1, ARGV[2])
return 1
`)

type voteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVoteCache creates a new vote cache
func NewVoteCache(client *redis.Client) VoteCache {
	return &voteCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *voteCache) tallyKey(gameID string) string {
	return fmt.Sprintf("game:%s:votes", gameID)
}

func (c *voteCache) votersKey(gameID string) string {
	return fmt.Sprintf("game:%s:voters", gameID)
}

func (c *voteCache) Cast(ctx context.Context, gameID, voterID, targetID string) (int, error) {
	keys := []string{c.tallyKey(gameID), c.votersKey(gameID)}
	n, err := castScript.Run(ctx, c.client, keys, voterID, targetID, int(c.ttl.Seconds())).Int()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrAlreadyVoted
	}
	return n, nil
}

func (c *voteCache) Retract(ctx context.Context, gameID, voterID, targetID string) (bool, error) {
	keys := []string{c.tallyKey(gameID), c.votersKey(gameID)}
	n, err := retractScript.Run(ctx, c.client, keys, voterID, targetID).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *voteCache) Results(ctx context.Context, gameID string) ([]VoteCount, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.tallyKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	counts := make([]VoteCount, 0, len(results))
	for _, z := range results {
		if z.Score <= 0 {
			continue
		}
		counts = append(counts, VoteCount{
			TargetID: z.Member.(string),
			Count:    int(z.Score),
		})
	}
	return counts, nil
}

func (c *voteCache) Reset(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, c.tallyKey(gameID), c.votersKey(gameID)).Err()
}
