package result

import (
	"context"
	"errors"
)

var ErrResultsUnavailable = errors.New("results not available for gameweek")

// CardStats holds one card's raw match figures for a gameweek.
type CardStats struct {
	CardID        string
	MinutesPlayed int
	Goals         int
	Assists       int
	CleanSheet    bool
	GoalsConceded int
	Saves         int
	YellowCards   int
	RedCards      int
}

// Results is the full stat set for one gameweek.
type Results struct {
	Gameweek  int
	Simulated bool
	ByCard    map[string]CardStats
}

// Feed supplies gameweek results. ResultsFor returns found=false when the
// gameweek has no data yet.
type Feed interface {
	ResultsFor(ctx context.Context, gameweek int) (Results, bool, error)
}

// Simulator is implemented by feeds that can fabricate results on demand,
// used by the gameweek runner in environments without a live provider.
type Simulator interface {
	Simulate(ctx context.Context, gameweek int) error
}
