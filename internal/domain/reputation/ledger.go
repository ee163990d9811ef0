package reputation

import (
	"context"
	"time"
)

// Dimension is one axis of a user's scout score.
type Dimension string

const (
	DimensionTrader  Dimension = "trader"
	DimensionManager Dimension = "manager"
	DimensionAnalyst Dimension = "analyst"
)

// Delta is a signed scout-score adjustment tied to an event outcome.
type Delta struct {
	UserID    string
	EventID   string
	Dimension Dimension
	Amount    int
	Reason    string
	CreatedAt time.Time
}

// Ledger records scout-score deltas. The arena bottom-decile malus goes
// through here, never through the wallet.
type Ledger interface {
	Apply(ctx context.Context, d Delta) error
	ListByEvent(ctx context.Context, eventID string) ([]Delta, error)
}
