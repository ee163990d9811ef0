package memory

import (
	"time"

	"github.com/bescout/fantasy-events/internal/domain/card"
	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/formation"
	"github.com/bescout/fantasy-events/internal/domain/holding"
)

const (
	ClubIDGaruda   = "club-garuda"
	ClubIDHarimau  = "club-harimau"
	ClubIDRajawali = "club-rajawali"
	ClubIDKomodo   = "club-komodo"
)

func SeedCards() []card.Card {
	return []card.Card{
		{ID: "card-gar-gk-01", Name: "Bayu Pradana", ClubID: ClubIDGaruda, Position: card.PositionGoalkeeper},
		{ID: "card-gar-def-01", Name: "Rizky Ridho", ClubID: ClubIDGaruda, Position: card.PositionDefender},
		{ID: "card-gar-def-02", Name: "Elkan Baggott", ClubID: ClubIDGaruda, Position: card.PositionDefender},
		{ID: "card-gar-mid-01", Name: "Marc Klok", ClubID: ClubIDGaruda, Position: card.PositionMidfielder},
		{ID: "card-gar-mid-02", Name: "Ricky Kambuaya", ClubID: ClubIDGaruda, Position: card.PositionMidfielder},
		{ID: "card-gar-att-01", Name: "Egy Maulana", ClubID: ClubIDGaruda, Position: card.PositionAttacker},

		{ID: "card-har-gk-01", Name: "Nadeo Argawinata", ClubID: ClubIDHarimau, Position: card.PositionGoalkeeper},
		{ID: "card-har-def-01", Name: "Asnawi Mangkualam", ClubID: ClubIDHarimau, Position: card.PositionDefender},
		{ID: "card-har-def-02", Name: "Pratama Arhan", ClubID: ClubIDHarimau, Position: card.PositionDefender},
		{ID: "card-har-mid-01", Name: "Ivar Jenner", ClubID: ClubIDHarimau, Position: card.PositionMidfielder},
		{ID: "card-har-mid-02", Name: "Rafael Struick", ClubID: ClubIDHarimau, Position: card.PositionMidfielder},
		{ID: "card-har-att-01", Name: "Witan Sulaeman", ClubID: ClubIDHarimau, Position: card.PositionAttacker},

		{ID: "card-raj-gk-01", Name: "Ernando Ari", ClubID: ClubIDRajawali, Position: card.PositionGoalkeeper},
		{ID: "card-raj-def-01", Name: "Jordi Amat", ClubID: ClubIDRajawali, Position: card.PositionDefender},
		{ID: "card-raj-def-02", Name: "Sandy Walsh", ClubID: ClubIDRajawali, Position: card.PositionDefender},
		{ID: "card-raj-mid-01", Name: "Thom Haye", ClubID: ClubIDRajawali, Position: card.PositionMidfielder},
		{ID: "card-raj-mid-02", Name: "Nathan Tjoe-A-On", ClubID: ClubIDRajawali, Position: card.PositionMidfielder},
		{ID: "card-raj-att-01", Name: "Ragnar Oratmangoen", ClubID: ClubIDRajawali, Position: card.PositionAttacker},

		{ID: "card-kom-gk-01", Name: "Maarten Paes", ClubID: ClubIDKomodo, Position: card.PositionGoalkeeper},
		{ID: "card-kom-def-01", Name: "Jay Idzes", ClubID: ClubIDKomodo, Position: card.PositionDefender},
		{ID: "card-kom-def-02", Name: "Calvin Verdonk", ClubID: ClubIDKomodo, Position: card.PositionDefender},
		{ID: "card-kom-mid-01", Name: "Eliano Reijnders", ClubID: ClubIDKomodo, Position: card.PositionMidfielder},
		{ID: "card-kom-mid-02", Name: "Joey Pelupessy", ClubID: ClubIDKomodo, Position: card.PositionMidfielder},
		{ID: "card-kom-att-01", Name: "Ole Romeny", ClubID: ClubIDKomodo, Position: card.PositionAttacker},
	}
}

// SeedEvents returns an open catalogue for one gameweek: a free-for-all
// classic, a tier-gated classic and an arena.
func SeedEvents(gameweek int) []event.Event {
	now := time.Now().UTC()
	startsAt := now
	locksAt := now.Add(6 * 24 * time.Hour)
	endsAt := now.Add(7 * 24 * time.Hour)
	return []event.Event{
		{
			ID:           "evt-rookie-cup",
			Gameweek:     gameweek,
			Name:         "Rookie Cup",
			Mode:         event.ModeClassic,
			Tier:         event.TierUser,
			Status:       event.StatusRegistering,
			FormationKey: formation.KeyBalanced,
			Requirements: event.Requirements{CardsPerSlot: 1},
			MaxEntries:   1000,
			PrizePool:    10_000,
			Rewards: []event.RewardRange{
				{FromRank: 1, ToRank: 1, Amount: 2_500},
				{FromRank: 2, ToRank: 3, Amount: 1_000},
				{FromRank: 4, ToRank: 10, Amount: 500},
			},
			StartsAt:  &startsAt,
			LocksAt:   &locksAt,
			EndsAt:    &endsAt,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:           "evt-pro-league",
			Gameweek:     gameweek,
			Name:         "Pro League",
			Mode:         event.ModeClassic,
			Tier:         event.TierUser,
			Status:       event.StatusRegistering,
			FormationKey: formation.KeyOffensive,
			Requirements: event.Requirements{
				MinSubscriptionTier: 2,
				CardsPerSlot:        1,
			},
			MaxEntries: 200,
			PrizePool:  50_000,
			Rewards: []event.RewardRange{
				{FromRank: 1, ToRank: 1, Amount: 15_000},
				{FromRank: 2, ToRank: 5, Amount: 5_000},
			},
			StartsAt:  &startsAt,
			LocksAt:   &locksAt,
			EndsAt:    &endsAt,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:           "evt-arena-weekly",
			Gameweek:     gameweek,
			Name:         "Weekly Arena",
			Mode:         event.ModeArena,
			Tier:         event.TierArena,
			Status:       event.StatusRegistering,
			FormationKey: formation.KeyTwinStriker,
			Requirements: event.Requirements{CardsPerSlot: 2},
			MaxEntries:   100,
			PrizePool:    20_000,
			Rewards: []event.RewardRange{
				{FromRank: 1, ToRank: 1, Amount: 8_000},
				{FromRank: 2, ToRank: 3, Amount: 3_000},
			},
			StartsAt:  &startsAt,
			LocksAt:   &locksAt,
			EndsAt:    &endsAt,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// SeedDemoUsers loads two users with full holdings into the oracle so a
// fresh dev instance can submit lineups immediately.
func SeedDemoUsers(oracle *Oracle, cards []card.Card) {
	oracle.SetProfile(holding.Profile{UserID: "demo-alice", SubscriptionTier: 3, ClubID: ClubIDGaruda})
	oracle.SetProfile(holding.Profile{UserID: "demo-bob", SubscriptionTier: 1, ClubID: ClubIDHarimau})

	for _, c := range cards {
		oracle.SetHolding("demo-alice", c.ID, 2)
		oracle.SetHolding("demo-bob", c.ID, 1)
	}
}
