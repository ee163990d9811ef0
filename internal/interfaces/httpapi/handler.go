package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/leaderboard"
	"github.com/bescout/fantasy-events/internal/domain/lineup"
	"github.com/bescout/fantasy-events/internal/usecase"
)

type Handler struct {
	eventService    *usecase.EventService
	lineupService   *usecase.LineupService
	scoringService  *usecase.ScoringService
	resetService    *usecase.ResetService
	gameweekService *usecase.GameweekService
	logger          *slog.Logger
	validator       *validator.Validate
}

func NewHandler(
	eventService *usecase.EventService,
	lineupService *usecase.LineupService,
	scoringService *usecase.ScoringService,
	resetService *usecase.ResetService,
	gameweekService *usecase.GameweekService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		eventService:    eventService,
		lineupService:   lineupService,
		scoringService:  scoringService,
		resetService:    resetService,
		gameweekService: gameweekService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type eventDTO struct {
	ID                  string           `json:"id"`
	Gameweek            int              `json:"gameweek"`
	Name                string           `json:"name"`
	Mode                string           `json:"mode"`
	Tier                string           `json:"tier"`
	Status              string           `json:"status"`
	FormationKey        string           `json:"formationKey"`
	MinSubscriptionTier int              `json:"minSubscriptionTier"`
	SpecificClubID      string           `json:"specificClubId,omitempty"`
	MinClubPlayers      int              `json:"minClubPlayers,omitempty"`
	CardsPerSlot        int              `json:"cardsPerSlot"`
	MinTotalCards       int              `json:"minTotalCards,omitempty"`
	MaxEntries          int              `json:"maxEntries"`
	CurrentEntries      int              `json:"currentEntries"`
	PrizePool           int64            `json:"prizePool"`
	Rewards             []rewardRangeDTO `json:"rewards"`
	StartsAt            string           `json:"startsAt,omitempty"`
	LocksAt             string           `json:"locksAt,omitempty"`
	EndsAt              string           `json:"endsAt,omitempty"`
	ScoredAt            string           `json:"scoredAt,omitempty"`
	ClonedFromEventID   string           `json:"clonedFromEventId,omitempty"`
	CreatedAt           string           `json:"createdAt"`
	UpdatedAt           string           `json:"updatedAt"`
}

type rewardRangeDTO struct {
	FromRank int   `json:"fromRank" validate:"required,min=1"`
	ToRank   int   `json:"toRank" validate:"required,min=1"`
	Amount   int64 `json:"amount" validate:"min=0"`
}

type lineupDTO struct {
	UserID       string            `json:"userId"`
	EventID      string            `json:"eventId"`
	Slots        map[string]string `json:"slots"`
	SubmittedAt  string            `json:"submittedAt"`
	UpdatedAt    string            `json:"updatedAt"`
	SlotScores   map[string]int    `json:"slotScores,omitempty"`
	TotalScore   int               `json:"totalScore"`
	Rank         int               `json:"rank,omitempty"`
	RewardAmount int64             `json:"rewardAmount,omitempty"`
}

type leaderboardEntryDTO struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"userId"`
	TotalScore   int    `json:"totalScore"`
	RewardAmount int64  `json:"rewardAmount"`
}

type settlementDTO struct {
	EventID  string `json:"eventId"`
	Gameweek int    `json:"gameweek"`
	ScoredAt string `json:"scoredAt"`
	Entries  int    `json:"entries"`
}

type gameweekReportDTO struct {
	Gameweek      int               `json:"gameweek"`
	NextGameweek  int               `json:"nextGameweek"`
	ClosedCount   int               `json:"closedCount"`
	ScoredCount   int               `json:"scoredCount"`
	SkippedCount  int               `json:"skippedCount"`
	ClonedCount   int               `json:"clonedCount"`
	EventFailures []eventFailureDTO `json:"eventFailures,omitempty"`
}

type eventFailureDTO struct {
	EventID string `json:"eventId"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func eventToDTO(ctx context.Context, v event.Event) eventDTO {
	ctx, span := startSpan(ctx, "httpapi.eventToDTO")
	defer span.End()

	rewards := make([]rewardRangeDTO, 0, len(v.Rewards))
	for _, r := range v.Rewards {
		rewards = append(rewards, rewardRangeDTO{
			FromRank: r.FromRank,
			ToRank:   r.ToRank,
			Amount:   r.Amount,
		})
	}

	return eventDTO{
		ID:                  v.ID,
		Gameweek:            v.Gameweek,
		Name:                v.Name,
		Mode:                string(v.Mode),
		Tier:                string(v.Tier),
		Status:              string(v.Status),
		FormationKey:        v.FormationKey,
		MinSubscriptionTier: v.Requirements.MinSubscriptionTier,
		SpecificClubID:      v.Requirements.SpecificClubID,
		MinClubPlayers:      v.Requirements.MinClubPlayers,
		CardsPerSlot:        v.Requirements.CardsPerSlot,
		MinTotalCards:       v.Requirements.MinTotalCards,
		MaxEntries:          v.MaxEntries,
		CurrentEntries:      v.CurrentEntries,
		PrizePool:           v.PrizePool,
		Rewards:             rewards,
		StartsAt:            formatOptionalTime(v.StartsAt),
		LocksAt:             formatOptionalTime(v.LocksAt),
		EndsAt:              formatOptionalTime(v.EndsAt),
		ScoredAt:            formatOptionalTime(v.ScoredAt),
		ClonedFromEventID:   v.ClonedFromEventID,
		CreatedAt:           v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func lineupToDTO(ctx context.Context, item lineup.Lineup) lineupDTO {
	ctx, span := startSpan(ctx, "httpapi.lineupToDTO")
	defer span.End()

	slots := make(map[string]string, len(item.Slots))
	for k, v := range item.Slots {
		slots[k] = v
	}

	var slotScores map[string]int
	if item.SlotScores != nil {
		slotScores = make(map[string]int, len(item.SlotScores))
		for k, v := range item.SlotScores {
			slotScores[k] = v
		}
	}

	return lineupDTO{
		UserID:       item.UserID,
		EventID:      item.EventID,
		Slots:        slots,
		SubmittedAt:  item.SubmittedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    item.UpdatedAt.UTC().Format(time.RFC3339),
		SlotScores:   slotScores,
		TotalScore:   item.TotalScore,
		Rank:         item.Rank,
		RewardAmount: item.RewardAmount,
	}
}

func leaderboardToDTO(ctx context.Context, entries []leaderboard.Entry) []leaderboardEntryDTO {
	ctx, span := startSpan(ctx, "httpapi.leaderboardToDTO")
	defer span.End()

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, leaderboardEntryDTO{
			Rank:         entry.Rank,
			UserID:       entry.UserID,
			TotalScore:   entry.TotalScore,
			RewardAmount: entry.RewardAmount,
		})
	}
	return items
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
