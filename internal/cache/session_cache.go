package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LudovicRocher01/Glow/internal/game"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 6 * time.Hour

// SessionCache keeps session snapshots in Redis so a restarted server can
// resume games that were in progress.
type SessionCache interface {
	Set(ctx context.Context, snap *game.Snapshot) error
	Get(ctx context.Context, code string) (*game.Snapshot, error)
	Delete(ctx context.Context, code string) error
	Codes(ctx context.Context) ([]string, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a session cache. A non-positive ttl uses DefaultTTL.
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &sessionCache{client: client, ttl: ttl}
}

const keyPrefix = "glou:session:"

func key(code string) string {
	return fmt.Sprintf("%s%s", keyPrefix, code)
}

func (c *sessionCache) Set(ctx context.Context, snap *game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(snap.Code), data, c.ttl).Err()
}

// Get returns nil, nil when no snapshot is stored for code.
func (c *sessionCache) Get(ctx context.Context, code string) (*game.Snapshot, error) {
	data, err := c.client.Get(ctx, key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap game.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *sessionCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, key(code)).Err()
}

// Codes lists the session codes that currently have a snapshot.
func (c *sessionCache) Codes(ctx context.Context) ([]string, error) {
	var (
		out    []string
		cursor uint64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			out = append(out, k[len(keyPrefix):])
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}
