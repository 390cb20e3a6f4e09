package eligibility

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vocapoll/vocax/pkg/redis"
)

// budgetTTL keeps today's and yesterday's records reachable for streak
// carry-over, with slack for clock skew between writers.
const budgetTTL = 72 * time.Hour

// RedisBudgetStore persists budgets as one hash per participant+day.
type RedisBudgetStore struct {
	client *redis.Client
}

// NewRedisBudgetStore wraps the shared Redis client.
func NewRedisBudgetStore(client *redis.Client) *RedisBudgetStore {
	return &RedisBudgetStore{client: client}
}

func budgetKey(participant string, day Day) string {
	return fmt.Sprintf("budget:%s:%s", participant, day)
}

// Get loads the budget for participant+day, or (nil, nil) when absent.
func (s *RedisBudgetStore) Get(ctx context.Context, participant string, day Day) (*Budget, error) {
	vals, err := s.client.GetClient().HGetAll(ctx, budgetKey(participant, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	b := &Budget{Participant: participant, Day: day}
	if _, err := fmt.Sscanf(vals["votes_used"], "%d", &b.VotesUsed); err != nil {
		return nil, fmt.Errorf("corrupt budget record %s: %w", budgetKey(participant, day), err)
	}
	_, _ = fmt.Sscanf(vals["current_streak"], "%d", &b.CurrentStreak)
	_, _ = fmt.Sscanf(vals["longest_streak"], "%d", &b.LongestStreak)
	return b, nil
}

// Put upserts the budget and refreshes its TTL.
func (s *RedisBudgetStore) Put(ctx context.Context, budget *Budget) error {
	key := budgetKey(budget.Participant, budget.Day)
	rdb := s.client.GetClient()

	_, err := rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"votes_used":     budget.VotesUsed,
			"current_streak": budget.CurrentStreak,
			"longest_streak": budget.LongestStreak,
		})
		pipe.Expire(ctx, key, budgetTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	return nil
}
