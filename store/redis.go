package store

import (
	"context"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// The redis store implements the NoteStore interface using a Redis list as
// the backend. Notes are appended with RPUSH, so list order matches
// insertion order. The key namespace is organized as follows:
// - `/<prefix>/notestore/notes` for the note list
type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a NoteStore backed by the given Redis client.
func NewRedisStore(client *redis.Client, prefix string) NoteStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *redisStore) notesKey() string {
	return path.Join(s.prefix, "notestore", "notes")
}

func (s *redisStore) Add(ctx context.Context, message string) error {
	if err := s.client.RPush(ctx, s.notesKey(), message).Err(); err != nil {
		return errors.Wrap(err, "failed to store note in Redis")
	}
	return nil
}

func (s *redisStore) List(ctx context.Context) ([]string, error) {
	notes, err := s.client.LRange(ctx, s.notesKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notes from Redis")
	}
	return notes, nil
}

func (s *redisStore) Latest(ctx context.Context) (string, error) {
	note, err := s.client.LIndex(ctx, s.notesKey(), -1).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoNotes
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to get latest note from Redis")
	}
	return note, nil
}

func (s *redisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.notesKey()).Result()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count notes in Redis")
	}
	return int(n), nil
}
