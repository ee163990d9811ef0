package resultsfeed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bescout/fantasy-events/internal/domain/card"
	"github.com/bescout/fantasy-events/internal/domain/result"
)

func feedCards() []card.Card {
	return []card.Card{
		{ID: "c-gk", Name: "Keeper", ClubID: "club-a", Position: card.PositionGoalkeeper},
		{ID: "c-d1", Name: "Back", ClubID: "club-a", Position: card.PositionDefender},
		{ID: "c-m1", Name: "Engine", ClubID: "club-b", Position: card.PositionMidfielder},
		{ID: "c-a1", Name: "Striker", ClubID: "club-b", Position: card.PositionAttacker},
	}
}

func TestSimulatedFeedEmptyUntilSimulated(t *testing.T) {
	feed := NewSimulatedFeed(feedCards(), 42)

	_, found, err := feed.ResultsFor(t.Context(), 1)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, feed.Simulate(t.Context(), 1))

	res, found, err := feed.ResultsFor(t.Context(), 1)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, res.Simulated)
	require.Len(t, res.ByCard, len(feedCards()))
	for _, c := range feedCards() {
		stats, ok := res.ByCard[c.ID]
		require.True(t, ok, "missing stats for %s", c.ID)
		require.GreaterOrEqual(t, stats.MinutesPlayed, 45)
	}
}

func TestSimulatedFeedIsDeterministic(t *testing.T) {
	first := NewSimulatedFeed(feedCards(), 42)
	second := NewSimulatedFeed(feedCards(), 42)

	require.NoError(t, first.Simulate(t.Context(), 3))
	require.NoError(t, second.Simulate(t.Context(), 3))

	a, _, err := first.ResultsFor(t.Context(), 3)
	require.NoError(t, err)
	b, _, err := second.ResultsFor(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, a, b)

	// A different seed must not reproduce the same stat lines.
	other := NewSimulatedFeed(feedCards(), 43)
	require.NoError(t, other.Simulate(t.Context(), 3))
	c, _, err := other.ResultsFor(t.Context(), 3)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestSimulatedFeedSimulateIsIdempotent(t *testing.T) {
	feed := NewSimulatedFeed(feedCards(), 42)

	require.NoError(t, feed.Simulate(t.Context(), 1))
	before, _, err := feed.ResultsFor(t.Context(), 1)
	require.NoError(t, err)

	require.NoError(t, feed.Simulate(t.Context(), 1))
	after, _, err := feed.ResultsFor(t.Context(), 1)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestSimulatedFeedPutOverrides(t *testing.T) {
	feed := NewSimulatedFeed(feedCards(), 42)
	require.NoError(t, feed.Simulate(t.Context(), 1))

	fixed := result.Results{
		Gameweek: 1,
		ByCard: map[string]result.CardStats{
			"c-a1": {CardID: "c-a1", MinutesPlayed: 90, Goals: 3},
		},
	}
	feed.Put(fixed)

	res, found, err := feed.ResultsFor(t.Context(), 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, fixed, res)

	feed.Drop(1)
	_, found, err = feed.ResultsFor(t.Context(), 1)
	require.NoError(t, err)
	require.False(t, found)
}
