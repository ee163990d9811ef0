package scoring

import (
	"github.com/bescout/fantasy-events/internal/domain/card"
	"github.com/bescout/fantasy-events/internal/domain/result"
)

// Func turns one card's gameweek stats into a slot score. The settlement
// pipeline treats it as opaque; swapping weights never touches settlement.
type Func func(pos card.Position, stats result.CardStats) int

// Default mirrors common fantasy weights: appearance, goals scaled by
// position, assists, defensive bonuses, discipline.
func Default(pos card.Position, stats result.CardStats) int {
	points := 0

	if stats.MinutesPlayed > 0 {
		points++
	}
	if stats.MinutesPlayed >= 60 {
		points++
	}

	switch pos {
	case card.PositionGoalkeeper, card.PositionDefender:
		points += stats.Goals * 6
	case card.PositionMidfielder:
		points += stats.Goals * 5
	default:
		points += stats.Goals * 4
	}
	points += stats.Assists * 3

	if stats.CleanSheet && stats.MinutesPlayed >= 60 {
		switch pos {
		case card.PositionGoalkeeper, card.PositionDefender:
			points += 4
		case card.PositionMidfielder:
			points++
		}
	}
	if pos == card.PositionGoalkeeper {
		points += stats.Saves / 3
	}
	if pos == card.PositionGoalkeeper || pos == card.PositionDefender {
		points -= stats.GoalsConceded / 2
	}

	points -= stats.YellowCards
	points -= stats.RedCards * 3

	return points
}
