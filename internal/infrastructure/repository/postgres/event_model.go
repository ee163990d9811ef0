package postgres

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/bescout/fantasy-events/internal/domain/event"
)

type eventTableModel struct {
	ID                  string     `db:"id"`
	Gameweek            int        `db:"gameweek"`
	Name                string     `db:"name"`
	Mode                string     `db:"mode"`
	Tier                string     `db:"tier"`
	Status              string     `db:"status"`
	FormationKey        string     `db:"formation_key"`
	MinSubscriptionTier int        `db:"min_subscription_tier"`
	SpecificClubID      string     `db:"specific_club_id"`
	MinClubPlayers      int        `db:"min_club_players"`
	CardsPerSlot        int        `db:"cards_per_slot"`
	MinTotalCards       int        `db:"min_total_cards"`
	MaxEntries          int        `db:"max_entries"`
	CurrentEntries      int        `db:"current_entries"`
	PrizePool           int64      `db:"prize_pool"`
	Rewards             []byte     `db:"rewards"`
	StartsAt            *time.Time `db:"starts_at"`
	LocksAt             *time.Time `db:"locks_at"`
	EndsAt              *time.Time `db:"ends_at"`
	ScoredAt            *time.Time `db:"scored_at"`
	ClonedFromEventID   string     `db:"cloned_from_event_id"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

type eventInsertModel struct {
	ID                  string     `db:"id"`
	Gameweek            int        `db:"gameweek"`
	Name                string     `db:"name"`
	Mode                string     `db:"mode"`
	Tier                string     `db:"tier"`
	Status              string     `db:"status"`
	FormationKey        string     `db:"formation_key"`
	MinSubscriptionTier int        `db:"min_subscription_tier"`
	SpecificClubID      string     `db:"specific_club_id"`
	MinClubPlayers      int        `db:"min_club_players"`
	CardsPerSlot        int        `db:"cards_per_slot"`
	MinTotalCards       int        `db:"min_total_cards"`
	MaxEntries          int        `db:"max_entries"`
	CurrentEntries      int        `db:"current_entries"`
	PrizePool           int64      `db:"prize_pool"`
	Rewards             []byte     `db:"rewards"`
	StartsAt            *time.Time `db:"starts_at"`
	LocksAt             *time.Time `db:"locks_at"`
	EndsAt              *time.Time `db:"ends_at"`
	ScoredAt            *time.Time `db:"scored_at"`
	ClonedFromEventID   string     `db:"cloned_from_event_id"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

func eventFromRow(row eventTableModel) (event.Event, error) {
	var rewards []event.RewardRange
	if len(row.Rewards) > 0 {
		if err := sonic.Unmarshal(row.Rewards, &rewards); err != nil {
			return event.Event{}, errors.Wrap(err, "decode event rewards")
		}
	}

	return event.Event{
		ID:           row.ID,
		Gameweek:     row.Gameweek,
		Name:         row.Name,
		Mode:         event.Mode(row.Mode),
		Tier:         event.Tier(row.Tier),
		Status:       event.Status(row.Status),
		FormationKey: row.FormationKey,
		Requirements: event.Requirements{
			MinSubscriptionTier: row.MinSubscriptionTier,
			SpecificClubID:      row.SpecificClubID,
			MinClubPlayers:      row.MinClubPlayers,
			CardsPerSlot:        row.CardsPerSlot,
			MinTotalCards:       row.MinTotalCards,
		},
		MaxEntries:        row.MaxEntries,
		CurrentEntries:    row.CurrentEntries,
		PrizePool:         row.PrizePool,
		Rewards:           rewards,
		StartsAt:          row.StartsAt,
		LocksAt:           row.LocksAt,
		EndsAt:            row.EndsAt,
		ScoredAt:          row.ScoredAt,
		ClonedFromEventID: row.ClonedFromEventID,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

func eventToInsertModel(evt event.Event) (eventInsertModel, error) {
	rewards, err := sonic.Marshal(evt.Rewards)
	if err != nil {
		return eventInsertModel{}, errors.Wrap(err, "encode event rewards")
	}

	return eventInsertModel{
		ID:                  evt.ID,
		Gameweek:            evt.Gameweek,
		Name:                evt.Name,
		Mode:                string(evt.Mode),
		Tier:                string(evt.Tier),
		Status:              string(evt.Status),
		FormationKey:        evt.FormationKey,
		MinSubscriptionTier: evt.Requirements.MinSubscriptionTier,
		SpecificClubID:      evt.Requirements.SpecificClubID,
		MinClubPlayers:      evt.Requirements.MinClubPlayers,
		CardsPerSlot:        evt.Requirements.CardsPerSlot,
		MinTotalCards:       evt.Requirements.MinTotalCards,
		MaxEntries:          evt.MaxEntries,
		CurrentEntries:      evt.CurrentEntries,
		PrizePool:           evt.PrizePool,
		Rewards:             rewards,
		StartsAt:            evt.StartsAt,
		LocksAt:             evt.LocksAt,
		EndsAt:              evt.EndsAt,
		ScoredAt:            evt.ScoredAt,
		ClonedFromEventID:   evt.ClonedFromEventID,
		CreatedAt:           evt.CreatedAt,
		UpdatedAt:           evt.UpdatedAt,
	}, nil
}
