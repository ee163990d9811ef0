package holding

import (
	"context"

	"github.com/bescout/fantasy-events/internal/domain/card"
)

// Profile is the slice of account state the engine needs for eligibility.
type Profile struct {
	UserID           string
	SubscriptionTier int
	ClubID           string
}

// Oracle answers ownership questions against the card ledger. Holdings
// counts must be read fresh at validation time; implementations may cache
// the card catalog but never the counts.
type Oracle interface {
	// HoldingsForUser returns copies owned per card ID.
	HoldingsForUser(ctx context.Context, userID string) (map[string]int, error)
	Profile(ctx context.Context, userID string) (Profile, error)
	CardsByID(ctx context.Context, cardIDs []string) (map[string]card.Card, error)
}
