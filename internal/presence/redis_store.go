package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kanban-board-api/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one key per (project, user) with the idle timeout as TTL,
// so a crashed client's cursor expires on its own.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "presence:"}
}

func (s *RedisStore) key(projectID, uid string) string {
	return s.prefix + projectID + ":" + uid
}

func (s *RedisStore) Put(ctx context.Context, projectID string, p models.Presence, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal presence: %w", err)
	}
	if err := s.client.Set(ctx, s.key(projectID, p.UID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save presence: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, projectID, uid string) error {
	if err := s.client.Del(ctx, s.key(projectID, uid)).Err(); err != nil {
		return fmt.Errorf("delete presence: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, projectID string) ([]models.Presence, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+projectID+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan presence: %w", err)
	}
	out := []models.Presence{}
	if len(keys) == 0 {
		return out, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load presence: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // expired between SCAN and MGET
		}
		var p models.Presence
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("unmarshal presence: %w", err)
		}
		out = append(out, p)
	}
	sortByUID(out)
	return out, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
