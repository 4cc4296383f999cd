package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a shared Redis client.  Every key is
// namespaced under "room:<name>:" so all rooms can share one client
// while keeping their ledgers isolated.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore returns a Store scoped to the given room name.
func NewRedisStore(rdb *redis.Client, room string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "room:" + room + ":"}
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

// Get reads a value, translating a Redis miss into ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

// Put writes a value with no expiry; confirmed reservations must
// outlive any process and any TTL.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, s.key(key), value, 0).Err()
}

// Delete removes a key.  Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

// SetAlarm persists the wake-up timestamp as epoch milliseconds.  The
// zero time clears the alarm.
func (s *RedisStore) SetAlarm(ctx context.Context, at time.Time) error {
	if at.IsZero() {
		return s.rdb.Del(ctx, s.key(keyAlarm)).Err()
	}
	return s.rdb.Set(ctx, s.key(keyAlarm), strconv.FormatInt(at.UnixMilli(), 10), 0).Err()
}

// GetAlarm returns the persisted wake-up timestamp, or the zero time
// when no alarm is armed.
func (s *RedisStore) GetAlarm(ctx context.Context) (time.Time, error) {
	v, err := s.rdb.Get(ctx, s.key(keyAlarm)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
