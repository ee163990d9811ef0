package event

import (
	"context"
	"time"
)

// Repository exposes event persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (Event, bool, error)
	ListByGameweek(ctx context.Context, gameweek int) ([]Event, error)
	ListByStatuses(ctx context.Context, statuses ...Status) ([]Event, error)
	Create(ctx context.Context, evt Event) error
	Update(ctx context.Context, evt Event) error
	// AdjustEntries moves the entry counter by delta (positive or negative).
	AdjustEntries(ctx context.Context, id string, delta int) error
	// MarkScored sets scoredAt and moves the event to ended only when
	// scoredAt is still unset. It returns false when another settlement won
	// the race.
	MarkScored(ctx context.Context, id string, at time.Time) (bool, error)
	// ClearScored removes scoredAt and returns the event to the given
	// status.
	ClearScored(ctx context.Context, id string, status Status) error
}

// GameweekRepository tracks the engine's active gameweek pointer.
type GameweekRepository interface {
	Current(ctx context.Context) (int, error)
	Set(ctx context.Context, gameweek int) error
}
