package lineup

import "context"

// Repository exposes lineup persistence operations.
type Repository interface {
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (Lineup, bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]Lineup, error)
	ListByUser(ctx context.Context, userID string) ([]Lineup, error)
	Upsert(ctx context.Context, lu Lineup) error
	Delete(ctx context.Context, userID, eventID string) error
	// ClearScoresByEvent wipes slot scores, totals and ranks for every
	// lineup of an event.
	ClearScoresByEvent(ctx context.Context, eventID string) error
}
