package impl

import (
	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
)

// RedisStore buffers writes locally and flushes them in a single MULTI/EXEC
// transaction on Save, so the request's transitions land atomically.
type RedisStore struct {
	RedisClient *redis.Client

	pendingSets    map[string]string
	pendingRemoves map[string]bool
}

func MakeRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		RedisClient:    redisClient,
		pendingSets:    make(map[string]string),
		pendingRemoves: make(map[string]bool),
	}
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	if s.pendingRemoves[key] {
		return "", false, nil
	}
	if v, ok := s.pendingSets[key]; ok {
		return v, true, nil
	}
	v, err := s.RedisClient.Get(key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis store get %q", key)
	}
	return v, true, nil
}

func (s *RedisStore) Set(key string, value string) error {
	s.pendingSets[key] = value
	delete(s.pendingRemoves, key)
	return nil
}

func (s *RedisStore) Remove(key string) error {
	s.pendingRemoves[key] = true
	delete(s.pendingSets, key)
	return nil
}

func (s *RedisStore) Save() error {
	if len(s.pendingSets) == 0 && len(s.pendingRemoves) == 0 {
		return nil
	}
	pipe := s.RedisClient.TxPipeline()
	for k, v := range s.pendingSets {
		pipe.Set(k, v, 0)
	}
	for k := range s.pendingRemoves {
		pipe.Del(k)
	}
	if _, err := pipe.Exec(); err != nil {
		return errors.Wrap(err, "redis store save")
	}
	s.pendingSets = make(map[string]string)
	s.pendingRemoves = make(map[string]bool)
	return nil
}
