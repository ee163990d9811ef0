package wallet

import (
	"context"
	"time"
)

// CreditRequest asks the payment rail to credit a user once per idempotency
// key.
type CreditRequest struct {
	IdempotencyKey string
	UserID         string
	Amount         int64
	Reference      string
}

// CreditOutcome reports whether the rail applied the credit or had already
// seen the key.
type CreditOutcome struct {
	Applied bool
	RailRef string
}

// Rail is the outbound payment port. Credits are never reversed by the
// engine.
type Rail interface {
	Credit(ctx context.Context, req CreditRequest) (CreditOutcome, error)
}

// Payout is the engine's own record of a credit, used both for idempotency
// and as the guard that blocks resets after money moved.
type Payout struct {
	EventID        string
	UserID         string
	Rank           int
	Amount         int64
	IdempotencyKey string
	RailRef        string
	CreditedAt     time.Time
}

// PayoutRepository exposes payout record persistence.
type PayoutRepository interface {
	GetByEventAndUser(ctx context.Context, eventID, userID string) (Payout, bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]Payout, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
	Record(ctx context.Context, p Payout) error
}

// Key builds the idempotency key for an event/user credit.
func Key(eventID, userID string) string {
	return eventID + "::" + userID
}
