package postgres

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/bescout/fantasy-events/internal/domain/lineup"
)

type lineupTableModel struct {
	UserID       string    `db:"user_id"`
	EventID      string    `db:"event_id"`
	Slots        []byte    `db:"slots"`
	SubmittedAt  time.Time `db:"submitted_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	SlotScores   []byte    `db:"slot_scores"`
	TotalScore   int       `db:"total_score"`
	Rank         int       `db:"rank"`
	RewardAmount int64     `db:"reward_amount"`
}

type lineupInsertModel struct {
	UserID       string    `db:"user_id"`
	EventID      string    `db:"event_id"`
	Slots        []byte    `db:"slots"`
	SubmittedAt  time.Time `db:"submitted_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	SlotScores   []byte    `db:"slot_scores"`
	TotalScore   int       `db:"total_score"`
	Rank         int       `db:"rank"`
	RewardAmount int64     `db:"reward_amount"`
}

func lineupFromRow(row lineupTableModel) (lineup.Lineup, error) {
	var slots map[string]string
	if len(row.Slots) > 0 {
		if err := sonic.Unmarshal(row.Slots, &slots); err != nil {
			return lineup.Lineup{}, errors.Wrap(err, "decode lineup slots")
		}
	}

	var slotScores map[string]int
	if len(row.SlotScores) > 0 {
		if err := sonic.Unmarshal(row.SlotScores, &slotScores); err != nil {
			return lineup.Lineup{}, errors.Wrap(err, "decode lineup slot scores")
		}
	}

	return lineup.Lineup{
		UserID:       row.UserID,
		EventID:      row.EventID,
		Slots:        slots,
		SubmittedAt:  row.SubmittedAt,
		UpdatedAt:    row.UpdatedAt,
		SlotScores:   slotScores,
		TotalScore:   row.TotalScore,
		Rank:         row.Rank,
		RewardAmount: row.RewardAmount,
	}, nil
}

func lineupToInsertModel(item lineup.Lineup) (lineupInsertModel, error) {
	slots, err := sonic.Marshal(item.Slots)
	if err != nil {
		return lineupInsertModel{}, errors.Wrap(err, "encode lineup slots")
	}

	var slotScores []byte
	if item.SlotScores != nil {
		slotScores, err = sonic.Marshal(item.SlotScores)
		if err != nil {
			return lineupInsertModel{}, errors.Wrap(err, "encode lineup slot scores")
		}
	}

	return lineupInsertModel{
		UserID:       item.UserID,
		EventID:      item.EventID,
		Slots:        slots,
		SubmittedAt:  item.SubmittedAt,
		UpdatedAt:    item.UpdatedAt,
		SlotScores:   slotScores,
		TotalScore:   item.TotalScore,
		Rank:         item.Rank,
		RewardAmount: item.RewardAmount,
	}, nil
}
