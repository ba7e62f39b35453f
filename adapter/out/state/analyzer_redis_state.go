// Package state provides the Redis-backed implementation of the
// namespaced key-value store.
package state

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"analyzer_server/pkg/apperr"
)

// RedisStateStore persists JSON values under "state:<namespace>:<key>".
// Values have no TTL; the daily summary reset deletes the history key
// explicitly.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func stateKey(namespace, key string) string {
	return "state:" + namespace + ":" + key
}

// Get unmarshals the stored value into dest. Returns false when the
// key is absent.
func (s *RedisStateStore) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	raw, err := s.client.Get(ctx, stateKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, apperr.StateError("get", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, apperr.StateError("unmarshal", err)
	}
	return true, nil
}

// Set stores value as JSON, replacing any previous value.
func (s *RedisStateStore) Set(ctx context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperr.StateError("marshal", err)
	}
	if err := s.client.Set(ctx, stateKey(namespace, key), raw, 0).Err(); err != nil {
		return apperr.StateError("set", err)
	}
	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *RedisStateStore) Delete(ctx context.Context, namespace, key string) error {
	if err := s.client.Del(ctx, stateKey(namespace, key)).Err(); err != nil {
		return apperr.StateError("delete", err)
	}
	return nil
}
