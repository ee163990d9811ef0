package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/usecase"
)

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEvent")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	item, err := h.eventService.GetByID(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "get event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(ctx, item))
}

func (h *Handler) ListEventsByGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEventsByGameweek")
	defer span.End()

	raw := strings.TrimSpace(r.URL.Query().Get("gameweek"))
	gameweek := 0
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: gameweek must be an integer", usecase.ErrInvalidInput))
			return
		}
		gameweek = parsed
	} else {
		current, err := h.gameweekService.CurrentGameweek(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "resolve current gameweek failed", "error", err)
			writeError(ctx, w, err)
			return
		}
		gameweek = current
	}

	events, err := h.eventService.ListByGameweek(ctx, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "list events failed", "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]eventDTO, 0, len(events))
	for _, evt := range events {
		items = append(items, eventToDTO(ctx, evt))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateEvent")
	defer span.End()

	var req createEventRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rewards := make([]event.RewardRange, 0, len(req.Rewards))
	for _, r := range req.Rewards {
		rewards = append(rewards, event.RewardRange{
			FromRank: r.FromRank,
			ToRank:   r.ToRank,
			Amount:   r.Amount,
		})
	}

	startsAt, err := parseOptionalTime(req.StartsAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: startsAt: %v", usecase.ErrInvalidInput, err))
		return
	}
	locksAt, err := parseOptionalTime(req.LocksAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: locksAt: %v", usecase.ErrInvalidInput, err))
		return
	}
	endsAt, err := parseOptionalTime(req.EndsAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: endsAt: %v", usecase.ErrInvalidInput, err))
		return
	}

	item, err := h.eventService.Create(ctx, usecase.CreateEventInput{
		Gameweek:     req.Gameweek,
		Name:         req.Name,
		Mode:         req.Mode,
		Tier:         req.Tier,
		FormationKey: req.FormationKey,
		Requirements: event.Requirements{
			MinSubscriptionTier: req.MinSubscriptionTier,
			SpecificClubID:      req.SpecificClubID,
			MinClubPlayers:      req.MinClubPlayers,
			CardsPerSlot:        req.CardsPerSlot,
			MinTotalCards:       req.MinTotalCards,
		},
		MaxEntries: req.MaxEntries,
		PrizePool:  req.PrizePool,
		Rewards:    rewards,
		StartsAt:   startsAt,
		LocksAt:    locksAt,
		EndsAt:     endsAt,
		OpenNow:    req.OpenNow,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create event failed", "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(ctx, item))
}

func (h *Handler) ChangeEventStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ChangeEventStatus")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	var req changeStatusRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	next, err := event.ParseStatus(req.Status)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	item, err := h.eventService.ChangeStatus(ctx, eventID, next)
	if err != nil {
		h.logger.WarnContext(ctx, "change event status failed", "event_id", eventID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(ctx, item))
}

func (h *Handler) CloneEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CloneEvent")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	item, err := h.eventService.CloneForNextGameweek(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "clone event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(ctx, item))
}

type createEventRequest struct {
	Gameweek            int              `json:"gameweek" validate:"required,min=1"`
	Name                string           `json:"name" validate:"required,max=120"`
	Mode                string           `json:"mode" validate:"required,oneof=classic arena"`
	Tier                string           `json:"tier" validate:"required,oneof=user club arena"`
	FormationKey        string           `json:"formationKey" validate:"required"`
	MinSubscriptionTier int              `json:"minSubscriptionTier" validate:"min=0"`
	SpecificClubID      string           `json:"specificClubId"`
	MinClubPlayers      int              `json:"minClubPlayers" validate:"min=0"`
	CardsPerSlot        int              `json:"cardsPerSlot" validate:"min=0"`
	MinTotalCards       int              `json:"minTotalCards" validate:"min=0"`
	MaxEntries          int              `json:"maxEntries" validate:"min=0"`
	PrizePool           int64            `json:"prizePool" validate:"min=0"`
	Rewards             []rewardRangeDTO `json:"rewards" validate:"dive"`
	StartsAt            string           `json:"startsAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	LocksAt             string           `json:"locksAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndsAt              string           `json:"endsAt" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	OpenNow             bool             `json:"openNow"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}
