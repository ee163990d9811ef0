package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/lineup"
	"github.com/bescout/fantasy-events/internal/domain/result"
	"github.com/bescout/fantasy-events/internal/infrastructure/repository/memory"
	"github.com/bescout/fantasy-events/internal/infrastructure/resultsfeed"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedResults gives every test card a known stat line so totals are
// predictable: c-a1 lineups total 47, c-a2 lineups total 42.
func fixedResults(gameweek int) result.Results {
	return result.Results{
		Gameweek: gameweek,
		ByCard: map[string]result.CardStats{
			"c-gk": {CardID: "c-gk", MinutesPlayed: 90, Saves: 6, CleanSheet: true},
			"c-d1": {CardID: "c-d1", MinutesPlayed: 90, CleanSheet: true},
			"c-d2": {CardID: "c-d2", MinutesPlayed: 90, Goals: 1, CleanSheet: true},
			"c-m1": {CardID: "c-m1", MinutesPlayed: 90, Goals: 1},
			"c-m2": {CardID: "c-m2", MinutesPlayed: 30, Assists: 1},
			"c-a1": {CardID: "c-a1", MinutesPlayed: 90, Goals: 2},
			"c-a2": {CardID: "c-a2", MinutesPlayed: 90, Goals: 1, YellowCards: 1},
		},
	}
}

func seedLineup(t *testing.T, repo lineup.Repository, userID, eventID string, slots map[string]string, submittedAt time.Time) {
	t.Helper()
	err := repo.Upsert(t.Context(), lineup.Lineup{
		UserID:      userID,
		EventID:     eventID,
		Slots:       slots,
		SubmittedAt: submittedAt,
		UpdatedAt:   submittedAt,
	})
	require.NoError(t, err)
}

func TestScoringServiceSettlesEvent(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))

	feed := resultsfeed.NewSimulatedFeed(nil, 1)
	feed.Put(fixedResults(1))

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	seedLineup(t, lineupRepo, "user-a", "evt-1", balancedSlots(), base)

	weaker := balancedSlots()
	weaker["att"] = "c-a2"
	seedLineup(t, lineupRepo, "user-b", "evt-1", weaker, base.Add(time.Minute))

	service := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, nil, discardLogger())
	scoredAt := time.Date(2026, 3, 8, 20, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return scoredAt }

	settlement, err := service.ScoreEvent(t.Context(), "evt-1")
	require.NoError(t, err)
	require.Equal(t, "evt-1", settlement.EventID)
	require.True(t, settlement.ScoredAt.Equal(scoredAt))

	require.Len(t, settlement.Entries, 2)
	require.Equal(t, "user-a", settlement.Entries[0].UserID)
	require.Equal(t, 1, settlement.Entries[0].Rank)
	require.Equal(t, 47, settlement.Entries[0].TotalScore)
	require.EqualValues(t, 500, settlement.Entries[0].RewardAmount)
	require.Equal(t, "user-b", settlement.Entries[1].UserID)
	require.Equal(t, 2, settlement.Entries[1].Rank)
	require.Equal(t, 42, settlement.Entries[1].TotalScore)
	require.EqualValues(t, 100, settlement.Entries[1].RewardAmount)

	evt, _, err := eventRepo.GetByID(t.Context(), "evt-1")
	require.NoError(t, err)
	require.NotNil(t, evt.ScoredAt)

	stored, exists, err := lineupRepo.GetByUserAndEvent(t.Context(), "user-a", "evt-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.True(t, stored.Scored())
	require.Equal(t, 10, stored.SlotScores["att"])
	require.Equal(t, 47, stored.TotalScore)
	require.EqualValues(t, 500, stored.RewardAmount)
}

func TestScoringServiceIsIdempotent(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))

	feed := resultsfeed.NewSimulatedFeed(nil, 1)
	feed.Put(fixedResults(1))
	seedLineup(t, lineupRepo, "user-a", "evt-1", balancedSlots(), time.Now().UTC())

	service := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, nil, discardLogger())

	_, err := service.ScoreEvent(t.Context(), "evt-1")
	require.NoError(t, err)

	_, err = service.ScoreEvent(t.Context(), "evt-1")
	require.ErrorIs(t, err, event.ErrAlreadyScored)
}

func TestScoringServiceResultsUnavailable(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))

	feed := resultsfeed.NewSimulatedFeed(nil, 1) // no results injected

	service := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, nil, discardLogger())

	_, err := service.ScoreEvent(t.Context(), "evt-1")
	require.ErrorIs(t, err, result.ErrResultsUnavailable)
}

func TestScoringServiceRefusesUnscorableStatus(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()

	evt := testEvent("evt-upcoming", 1)
	evt.Status = event.StatusUpcoming
	mustCreateEvent(t, eventRepo, evt)

	cancelled := testEvent("evt-cancelled", 1)
	cancelled.Status = event.StatusCancelled
	mustCreateEvent(t, eventRepo, cancelled)

	feed := resultsfeed.NewSimulatedFeed(nil, 1)
	feed.Put(fixedResults(1))

	service := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, nil, discardLogger())

	_, err := service.ScoreEvent(t.Context(), "evt-upcoming")
	require.ErrorIs(t, err, event.ErrNotReadyToScore)

	_, err = service.ScoreEvent(t.Context(), "evt-cancelled")
	require.ErrorIs(t, err, event.ErrNotReadyToScore)
}

func TestScoringServiceTieBreaksOnSubmissionTime(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))

	feed := resultsfeed.NewSimulatedFeed(nil, 1)
	feed.Put(fixedResults(1))

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	// Identical lineups, identical totals. user-z submitted first and must
	// outrank user-a; user-b and user-c tie on time too, so user ID decides.
	seedLineup(t, lineupRepo, "user-z", "evt-1", balancedSlots(), base)
	seedLineup(t, lineupRepo, "user-a", "evt-1", balancedSlots(), base.Add(time.Hour))
	seedLineup(t, lineupRepo, "user-c", "evt-1", balancedSlots(), base.Add(2*time.Hour))
	seedLineup(t, lineupRepo, "user-b", "evt-1", balancedSlots(), base.Add(2*time.Hour))

	service := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, nil, discardLogger())

	settlement, err := service.ScoreEvent(t.Context(), "evt-1")
	require.NoError(t, err)
	require.Len(t, settlement.Entries, 4)

	order := make([]string, 0, 4)
	for _, entry := range settlement.Entries {
		order = append(order, entry.UserID)
	}
	require.Equal(t, []string{"user-z", "user-a", "user-b", "user-c"}, order)
}

func TestScoringServiceDistributesRewards(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	payoutRepo := memory.NewPayoutRepository()
	rail := memory.NewRail()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))

	feed := resultsfeed.NewSimulatedFeed(nil, 1)
	feed.Put(fixedResults(1))

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	seedLineup(t, lineupRepo, "user-a", "evt-1", balancedSlots(), base)

	weaker := balancedSlots()
	weaker["att"] = "c-a2"
	seedLineup(t, lineupRepo, "user-b", "evt-1", weaker, base.Add(time.Minute))

	rewards := NewRewardService(payoutRepo, rail, memory.NewReputationLedger(), discardLogger())
	service := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, rewards, discardLogger())

	_, err := service.ScoreEvent(t.Context(), "evt-1")
	require.NoError(t, err)

	// Rank 1 pays 500, ranks 2-3 pay 100 in the test reward table.
	require.EqualValues(t, 500, rail.CreditedTotal("user-a"))
	require.EqualValues(t, 100, rail.CreditedTotal("user-b"))

	count, err := payoutRepo.CountByEvent(t.Context(), "evt-1")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestScoringServiceLeaderboard(t *testing.T) {
	eventRepo := memory.NewEventRepository()
	lineupRepo := memory.NewLineupRepository()
	mustCreateEvent(t, eventRepo, testEvent("evt-1", 1))

	feed := resultsfeed.NewSimulatedFeed(nil, 1)
	feed.Put(fixedResults(1))

	service := NewScoringService(eventRepo, lineupRepo, feed, testOracle(1), nil, nil, discardLogger())

	_, err := service.Leaderboard(t.Context(), "evt-1", 10)
	require.ErrorIs(t, err, event.ErrNotYetScored)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	seedLineup(t, lineupRepo, "user-a", "evt-1", balancedSlots(), base)

	weaker := balancedSlots()
	weaker["att"] = "c-a2"
	seedLineup(t, lineupRepo, "user-b", "evt-1", weaker, base.Add(time.Minute))

	_, err = service.ScoreEvent(t.Context(), "evt-1")
	require.NoError(t, err)

	entries, err := service.Leaderboard(t.Context(), "evt-1", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "user-a", entries[0].UserID)
	require.Equal(t, 47, entries[0].TotalScore)
	require.EqualValues(t, 500, entries[0].RewardAmount)
}
