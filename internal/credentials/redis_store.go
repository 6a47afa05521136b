package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/inviteportal/internal/clock"
)

const (
	DefaultRedisKey = "invite:credentials:override"

	fieldToken     = "token"
	fieldAccountID = "account_id"
	fieldUpdatedAt = "updated_at"
)

// RedisStore shares the runtime override between portal instances through a
// single Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
	clock  clock.Clock
}

func NewRedisStore(client *redis.Client, key string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis override store requires a redis client")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, clock: clock.System}, nil
}

func (s *RedisStore) Load(ctx context.Context) (Override, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Override{}, fmt.Errorf("read override: %w", err)
	}
	return overrideFromHash(values), nil
}

// Apply writes the patch fields and reads back the merged hash in one
// MULTI/EXEC.
func (s *RedisStore) Apply(ctx context.Context, p Patch) (Override, error) {
	fields := map[string]any{
		fieldUpdatedAt: s.clock.Now().UTC().Format(time.RFC3339Nano),
	}
	if p.Token != "" {
		fields[fieldToken] = p.Token
	}
	if p.AccountID != "" {
		fields[fieldAccountID] = p.AccountID
	}

	var read *redis.MapStringStringCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, fields)
		read = pipe.HGetAll(ctx, s.key)
		return nil
	})
	if err != nil {
		return Override{}, fmt.Errorf("write override: %w", err)
	}
	return overrideFromHash(read.Val()), nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear override: %w", err)
	}
	return nil
}

func overrideFromHash(values map[string]string) Override {
	o := Override{
		Token:     values[fieldToken],
		AccountID: values[fieldAccountID],
	}
	if raw := values[fieldUpdatedAt]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			o.UpdatedAt = ts
		}
	}
	return o
}
