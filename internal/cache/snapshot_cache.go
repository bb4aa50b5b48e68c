package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"murdermystery/internal/model"
)

// SnapshotCache holds the last serialized public state of each game
type SnapshotCache interface {
	Set(ctx context.Context, view *model.SessionView) error
	Get(ctx context.Context, code string) (*model.SessionView, error)
	Delete(ctx context.Context, code string) error
}

type snapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache creates a new snapshot cache. A zero ttl falls back to 10 minutes.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) SnapshotCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &snapshotCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *snapshotCache) key(code string) string {
	return fmt.Sprintf("game:%s:state", code)
}

func (c *snapshotCache) Set(ctx context.Context, view *model.SessionView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(view.Code), data, c.ttl).Err()
}

func (c *snapshotCache) Get(ctx context.Context, code string) (*model.SessionView, error) {
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var view model.SessionView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *snapshotCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}
