package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/starford/leadsync/internal/apperr"
	"github.com/starford/leadsync/internal/models"
)

// Redis stores records as fields of one hash, keyed by email, each value
// being the JSON-encoded record. Every save is a single HSET.
type Redis struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

var _ Store = (*Redis)(nil)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: ping redis %s: %w", opts.Addr, err)
	}
	return NewRedis(client, opts.Key, logger), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, key string, logger *slog.Logger) *Redis {
	if key == "" {
		key = "leadsync:notes"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, key: key, logger: logger}
}

// Save upserts the record for email.
func (s *Redis) Save(ctx context.Context, email, note string, summary *string) (models.NoteRecord, error) {
	e := entry{Note: note, Summary: summary}
	raw, err := json.Marshal(e)
	if err != nil {
		return models.NoteRecord{}, fmt.Errorf("%w: encode: %w", apperr.ErrStorage, err)
	}
	if err := s.client.HSet(ctx, s.key, email, raw).Err(); err != nil {
		return models.NoteRecord{}, fmt.Errorf("%w: hset: %w", apperr.ErrStorage, err)
	}
	return e.record(email), nil
}

// Get returns the record for email. An undecodable value reads as absent.
func (s *Redis) Get(ctx context.Context, email string) (models.NoteRecord, error) {
	raw, err := s.client.HGet(ctx, s.key, email).Result()
	if errors.Is(err, redis.Nil) {
		return models.NoteRecord{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.NoteRecord{}, fmt.Errorf("%w: hget: %w", apperr.ErrStorage, err)
	}
	e, ok := s.decode(email, raw)
	if !ok {
		return models.NoteRecord{}, apperr.ErrNotFound
	}
	return e.record(email), nil
}

// GetAll returns every decodable record.
func (s *Redis) GetAll(ctx context.Context) (map[string]models.NoteRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall: %w", apperr.ErrStorage, err)
	}
	out := make(map[string]models.NoteRecord, len(fields))
	for email, raw := range fields {
		if e, ok := s.decode(email, raw); ok {
			out[email] = e.record(email)
		}
	}
	return out, nil
}

// Close closes the client.
func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) decode(email, raw string) (entry, bool) {
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		s.logger.Warn("storage: corrupt redis record skipped",
			slog.String("key", s.key), slog.String("email", email), slog.String("error", err.Error()))
		return entry{}, false
	}
	return e, true
}
