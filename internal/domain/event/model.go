package event

import (
	"fmt"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/formation"
)

// Mode distinguishes classic payout events from arena events, which also
// carry a reputation malus for the bottom ranks.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeArena   Mode = "arena"
)

var AllModes = map[Mode]struct{}{
	ModeClassic: {},
	ModeArena:   {},
}

// Tier scopes who an event is aimed at.
type Tier string

const (
	TierUser  Tier = "user"
	TierClub  Tier = "club"
	TierArena Tier = "arena"
)

var AllTiers = map[Tier]struct{}{
	TierUser:  {},
	TierClub:  {},
	TierArena: {},
}

// Requirements gate who may enter an event and how many card copies each
// slot consumes.
type Requirements struct {
	MinSubscriptionTier int
	SpecificClubID      string
	MinClubPlayers      int
	CardsPerSlot        int
	MinTotalCards       int
}

// RewardRange pays Amount to every rank in [FromRank, ToRank].
type RewardRange struct {
	FromRank int
	ToRank   int
	Amount   int64
}

// Event is a time-boxed competition users enter by allocating a lineup.
// StartsAt, LocksAt and EndsAt bound the window: submissions close once
// LocksAt passes, whatever the status says.
type Event struct {
	ID                string
	Gameweek          int
	Name              string
	Mode              Mode
	Tier              Tier
	Status            Status
	FormationKey      string
	Requirements      Requirements
	MaxEntries        int
	CurrentEntries    int
	PrizePool         int64
	Rewards           []RewardRange
	StartsAt          *time.Time
	LocksAt           *time.Time
	EndsAt            *time.Time
	ScoredAt          *time.Time
	ClonedFromEventID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if e.Name == "" {
		return fmt.Errorf("event name is required")
	}
	if e.Gameweek <= 0 {
		return fmt.Errorf("event gameweek must be greater than zero")
	}
	if _, ok := AllModes[e.Mode]; !ok {
		return fmt.Errorf("invalid event mode: %s", e.Mode)
	}
	if _, ok := AllTiers[e.Tier]; !ok {
		return fmt.Errorf("invalid event tier: %s", e.Tier)
	}
	if _, ok := AllStatuses[e.Status]; !ok {
		return fmt.Errorf("invalid event status: %s", e.Status)
	}
	if _, ok := formation.ByKey(e.FormationKey); !ok {
		return fmt.Errorf("unknown formation key: %s", e.FormationKey)
	}
	if e.MaxEntries < 0 {
		return fmt.Errorf("event max entries must not be negative")
	}
	if e.Requirements.CardsPerSlot < 1 {
		return fmt.Errorf("event cards per slot must be at least 1")
	}
	if e.PrizePool < 0 {
		return fmt.Errorf("event prize pool must not be negative")
	}
	if e.StartsAt != nil && e.LocksAt != nil && e.LocksAt.Before(*e.StartsAt) {
		return fmt.Errorf("event locks at %s before it starts at %s", e.LocksAt.Format(time.RFC3339), e.StartsAt.Format(time.RFC3339))
	}
	if e.LocksAt != nil && e.EndsAt != nil && e.EndsAt.Before(*e.LocksAt) {
		return fmt.Errorf("event ends at %s before it locks at %s", e.EndsAt.Format(time.RFC3339), e.LocksAt.Format(time.RFC3339))
	}

	return e.validateRewards()
}

// validateRewards rejects overlapping ranges and tables whose worst-case
// payout exceeds the prize pool.
func (e Event) validateRewards() error {
	var maxPayout int64
	prevTo := 0
	for i, r := range e.Rewards {
		if r.FromRank < 1 || r.ToRank < r.FromRank {
			return fmt.Errorf("invalid reward range %d..%d", r.FromRank, r.ToRank)
		}
		if r.FromRank <= prevTo {
			return fmt.Errorf("reward ranges must be ordered and disjoint: range %d starts at %d", i, r.FromRank)
		}
		if r.Amount < 0 {
			return fmt.Errorf("reward amount must not be negative")
		}
		prevTo = r.ToRank
		maxPayout += int64(r.ToRank-r.FromRank+1) * r.Amount
	}

	if maxPayout > e.PrizePool {
		return fmt.Errorf("reward table pays %d which exceeds prize pool %d", maxPayout, e.PrizePool)
	}

	return nil
}

// RewardForRank returns the payout amount for a leaderboard rank, or false
// when no range covers it.
func (e Event) RewardForRank(rank int) (int64, bool) {
	for _, r := range e.Rewards {
		if rank >= r.FromRank && rank <= r.ToRank {
			return r.Amount, true
		}
	}
	return 0, false
}

func (e Event) Formation() formation.Formation {
	f, _ := formation.ByKey(e.FormationKey)
	return f
}

// InRegistration reports whether the lifecycle status alone permits
// lineup changes.
func (e Event) InRegistration() bool {
	return e.Status == StatusRegistering || e.Status == StatusLateReg
}

// AcceptsLineups reports whether lineups may be submitted or withdrawn at
// the given instant. Once LocksAt passes the event is locked even if the
// status transition has not run yet.
func (e Event) AcceptsLineups(now time.Time) bool {
	if !e.InRegistration() {
		return false
	}
	if e.LocksAt != nil && !now.Before(*e.LocksAt) {
		return false
	}
	return true
}
