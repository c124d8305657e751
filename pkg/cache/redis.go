package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dukex/salesflow/pkg/models"
	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "salesflow:workflows:"

// DefaultRedisTTL applies when a RedisStore is created without a positive TTL.
const DefaultRedisTTL = 5 * time.Minute

// setScript writes a trigger field only while the tenant generation still matches ARGV[1].
// The hash TTL is set once, when the hash is created, so entries of a tenant never outlive
// the first of them by more than the TTL.
var setScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return 1
`)

// RedisStore shares entries between workers. Each tenant is one hash with a field per
// trigger next to a generation counter. Both keys share a hash tag so they live on the same
// cluster slot.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}

	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, tenantID int64, trigger models.Trigger) ([]*models.Workflow, bool, error) {
	data, err := s.client.HGet(ctx, redisKey(tenantID), redisField(trigger)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to read cached workflows: %w", err)
	}

	var workflows []*models.Workflow

	err = json.Unmarshal(data, &workflows)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode cached workflows: %w", err)
	}

	return workflows, true, nil
}

func (s *RedisStore) Generation(ctx context.Context, tenantID int64) (uint64, error) {
	generation, err := s.client.Get(ctx, redisGenerationKey(tenantID)).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}

	return generation, nil
}

func (s *RedisStore) Set(ctx context.Context, tenantID int64, trigger models.Trigger, generation uint64, workflows []*models.Workflow) error {
	data, err := json.Marshal(workflows)
	if err != nil {
		return fmt.Errorf("failed to encode workflows: %w", err)
	}

	keys := []string{redisKey(tenantID), redisGenerationKey(tenantID)}

	err = setScript.Run(ctx, s.client, keys,
		strconv.FormatUint(generation, 10),
		redisField(trigger),
		data,
		s.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to cache workflows: %w", err)
	}

	return nil
}

func (s *RedisStore) InvalidateTenant(ctx context.Context, tenantID int64) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, redisGenerationKey(tenantID))
		pipe.Del(ctx, redisKey(tenantID))

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate cached workflows: %w", err)
	}

	return nil
}

func redisKey(tenantID int64) string {
	return redisKeyPrefix + "{" + strconv.FormatInt(tenantID, 10) + "}"
}

func redisGenerationKey(tenantID int64) string {
	return redisKey(tenantID) + ":generation"
}

func redisField(trigger models.Trigger) string {
	return strconv.Itoa(int(trigger))
}
