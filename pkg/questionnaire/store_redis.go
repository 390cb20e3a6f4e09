package questionnaire

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vocapoll/vocax/pkg/redis"
)

// registerScript adds a completer only while the cap allows it, atomically.
// Re-registering an existing member always succeeds (idempotent).
// KEYS[1] = completer set, ARGV[1] = participant, ARGV[2] = cap (0 = none).
var registerScript = goredis.NewScript(`
if redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
	return {1, redis.call("SCARD", KEYS[1])}
end
local cap = tonumber(ARGV[2])
local count = redis.call("SCARD", KEYS[1])
if cap > 0 and count >= cap then
	return {0, count}
end
redis.call("SADD", KEYS[1], ARGV[1])
return {1, count + 1}
`)

// RedisCompletionStore keeps one completer set per questionnaire.
type RedisCompletionStore struct {
	client *redis.Client
}

// NewRedisCompletionStore wraps the shared Redis client.
func NewRedisCompletionStore(client *redis.Client) *RedisCompletionStore {
	return &RedisCompletionStore{client: client}
}

func completersKey(questionnaireID string) string {
	return fmt.Sprintf("completers:%s", questionnaireID)
}

func (s *RedisCompletionStore) Register(ctx context.Context, questionnaireID, participant string, cap uint64) (bool, uint64, error) {
	res, err := registerScript.Run(ctx, s.client.GetClient(),
		[]string{completersKey(questionnaireID)}, participant, cap).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("register completer: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("register completer: unexpected script reply %v", res)
	}
	return res[0] == 1, uint64(res[1]), nil
}

func (s *RedisCompletionStore) IsRegistered(ctx context.Context, questionnaireID, participant string) (bool, error) {
	return s.client.GetClient().SIsMember(ctx, completersKey(questionnaireID), participant).Result()
}

func (s *RedisCompletionStore) Count(ctx context.Context, questionnaireID string) (uint64, error) {
	n, err := s.client.GetClient().SCard(ctx, completersKey(questionnaireID)).Result()
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}
