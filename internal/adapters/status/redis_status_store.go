package status

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "waypoint:status:"

// RedisStore keeps one hash per session: field = system name, value = status.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func sessionKey(session string) string { return redisKeyPrefix + session }

func (s *RedisStore) Load(ctx context.Context, session string) (_ map[string]domain.Status, err error) {
	defer obs.Time(ctx, "status.redis.Load")(&err)

	if s.Client == nil {
		return nil, errors.New("status store: redis client is nil")
	}

	raw, err := s.Client.HGetAll(ctx, sessionKey(session)).Result()
	if err != nil {
		return nil, fmt.Errorf("load statuses: hgetall: %w", err)
	}

	out := make(map[string]domain.Status, len(raw))
	for name, v := range raw {
		st, err := domain.ParseStatus(v)
		if err != nil {
			return nil, fmt.Errorf("load statuses: system %q: %w", name, err)
		}
		out[name] = st
	}
	return out, nil
}

func (s *RedisStore) Save(ctx context.Context, session string, statuses map[string]domain.Status) (err error) {
	defer obs.Time(ctx, "status.redis.Save")(&err)

	if s.Client == nil {
		return errors.New("status store: redis client is nil")
	}
	if session == "" {
		return errors.New("save statuses: session must not be empty")
	}
	if len(statuses) == 0 {
		return nil
	}

	fields := make([]any, 0, 2*len(statuses))
	for name, st := range statuses {
		if strings.TrimSpace(name) == "" {
			return errors.New("save statuses: empty system name")
		}
		if _, err := domain.ParseStatus(string(st)); err != nil {
			return fmt.Errorf("save statuses: system %q: %w", name, err)
		}
		fields = append(fields, name, string(st))
	}

	if err := s.Client.HSet(ctx, sessionKey(session), fields...).Err(); err != nil {
		return fmt.Errorf("save statuses: hset: %w", err)
	}
	return nil
}
