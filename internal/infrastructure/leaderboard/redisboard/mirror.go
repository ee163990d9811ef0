package redisboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bescout/fantasy-events/internal/domain/leaderboard"
)

const defaultTTL = 14 * 24 * time.Hour

// Mirror keeps an event's final standings in a Redis sorted set keyed by
// rank. It is a pure read model; settlement and payouts never read it.
type Mirror struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMirror(client *redis.Client) *Mirror {
	return &Mirror{client: client, ttl: defaultTTL}
}

func (m *Mirror) Publish(ctx context.Context, eventID string, entries []leaderboard.Entry) error {
	ranksKey := ranksKey(eventID)
	scoresKey := scoresKey(eventID)
	rewardsKey := rewardsKey(eventID)

	pipe := m.client.TxPipeline()
	pipe.Del(ctx, ranksKey, scoresKey, rewardsKey)

	members := make([]redis.Z, 0, len(entries))
	scores := make(map[string]string, len(entries))
	rewards := make(map[string]string, len(entries))
	for _, entry := range entries {
		members = append(members, redis.Z{
			Score:  float64(entry.Rank),
			Member: entry.UserID,
		})
		scores[entry.UserID] = strconv.Itoa(entry.TotalScore)
		rewards[entry.UserID] = strconv.FormatInt(entry.RewardAmount, 10)
	}
	if len(members) > 0 {
		pipe.ZAdd(ctx, ranksKey, members...)
		pipe.HSet(ctx, scoresKey, scores)
		pipe.HSet(ctx, rewardsKey, rewards)
	}
	pipe.Expire(ctx, ranksKey, m.ttl)
	pipe.Expire(ctx, scoresKey, m.ttl)
	pipe.Expire(ctx, rewardsKey, m.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish leaderboard for event %s: %w", eventID, err)
	}
	return nil
}

func (m *Mirror) Top(ctx context.Context, eventID string, limit int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := m.client.ZRangeWithScores(ctx, ranksKey(eventID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard ranks for event %s: %w", eventID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	userIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, fmt.Sprint(row.Member))
	}

	totals, err := m.client.HMGet(ctx, scoresKey(eventID), userIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard scores for event %s: %w", eventID, err)
	}
	amounts, err := m.client.HMGet(ctx, rewardsKey(eventID), userIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard rewards for event %s: %w", eventID, err)
	}

	entries := make([]leaderboard.Entry, 0, len(rows))
	for i, row := range rows {
		total := 0
		if i < len(totals) && totals[i] != nil {
			if parsed, err := strconv.Atoi(fmt.Sprint(totals[i])); err == nil {
				total = parsed
			}
		}
		var reward int64
		if i < len(amounts) && amounts[i] != nil {
			if parsed, err := strconv.ParseInt(fmt.Sprint(amounts[i]), 10, 64); err == nil {
				reward = parsed
			}
		}
		entries = append(entries, leaderboard.Entry{
			EventID:      eventID,
			UserID:       userIDs[i],
			Rank:         int(row.Score),
			TotalScore:   total,
			RewardAmount: reward,
		})
	}

	return entries, nil
}

func (m *Mirror) Drop(ctx context.Context, eventID string) error {
	if err := m.client.Del(ctx, ranksKey(eventID), scoresKey(eventID), rewardsKey(eventID)).Err(); err != nil {
		return fmt.Errorf("drop leaderboard for event %s: %w", eventID, err)
	}
	return nil
}

func ranksKey(eventID string) string {
	return "leaderboard:" + eventID + ":ranks"
}

func scoresKey(eventID string) string {
	return "leaderboard:" + eventID + ":scores"
}

func rewardsKey(eventID string) string {
	return "leaderboard:" + eventID + ":rewards"
}
