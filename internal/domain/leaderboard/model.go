package leaderboard

import "context"

// Entry is one ranked row of an event's final standings. RewardAmount is
// what the rank earns from the event's reward table, zero for unpaid ranks.
type Entry struct {
	EventID      string
	UserID       string
	Rank         int
	TotalScore   int
	RewardAmount int64
}

// Mirror is an optional read model for standings (e.g. a Redis sorted
// set). It is never an input to payouts; losing it loses nothing but read
// performance.
type Mirror interface {
	Publish(ctx context.Context, eventID string, entries []Entry) error
	Top(ctx context.Context, eventID string, limit int) ([]Entry, error)
	Drop(ctx context.Context, eventID string) error
}
