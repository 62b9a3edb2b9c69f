// Package session stores the per-session analysis record in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stage names the step of the linear flow a session is in.
type Stage string

const (
	// StageSelecting: parties detected, waiting for the user to pick a side.
	StageSelecting Stage = "selecting"
	// StageNeedsParties: detection insufficient after the retry; manual entry required.
	StageNeedsParties Stage = "needs_parties"
	// StageReported: a perspective report has been generated.
	StageReported Stage = "reported"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found or expired")

// Record carries everything a session accumulates across the flow. It is
// written whole at every step and deleted whole on reset.
type Record struct {
	ID            string    `json:"id"`
	Stage         Stage     `json:"stage"`
	SourceName    string    `json:"source_name"`
	Document      string    `json:"document"`
	Summary       string    `json:"summary,omitempty"`
	Parties       []string  `json:"parties"`
	SelectedParty string    `json:"selected_party,omitempty"`
	Report        string    `json:"report,omitempty"`
	Warning       string    `json:"warning,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RedisStore persists session records with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
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

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Save writes the whole record and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	rec.UpdatedAt = time.Now()
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(rec.ID), jsonData, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load retrieves a session record by id.
func (s *RedisStore) Load(ctx context.Context, id string) (Record, error) {
	jsonData, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(jsonData), &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal session record: %w", err)
	}
	return rec, nil
}

// Delete removes a session record. Deleting a missing record is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
