package lineup

import (
	"errors"
	"time"
)

var (
	ErrIncompleteLineup  = errors.New("lineup does not fill the formation")
	ErrEligibilityNotMet = errors.New("lineup eligibility requirements not met")
	ErrInsufficientCards = errors.New("not enough free card copies")
)

// Lineup stores one user's slot allocation for an event, plus the scores
// written by settlement.
type Lineup struct {
	UserID      string
	EventID     string
	Slots       map[string]string // slot key -> card ID
	SubmittedAt time.Time
	UpdatedAt   time.Time

	SlotScores   map[string]int
	TotalScore   int
	Rank         int
	RewardAmount int64
}

func (l Lineup) CardIDs() []string {
	ids := make([]string, 0, len(l.Slots))
	for _, id := range l.Slots {
		ids = append(ids, id)
	}
	return ids
}

// Scored reports whether settlement has written scores to this lineup.
func (l Lineup) Scored() bool {
	return l.SlotScores != nil
}
