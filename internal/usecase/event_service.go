package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/platform/id"
)

type CreateEventInput struct {
	Gameweek     int
	Name         string
	Mode         string
	Tier         string
	FormationKey string
	Requirements event.Requirements
	MaxEntries   int
	PrizePool    int64
	Rewards      []event.RewardRange
	StartsAt     *time.Time
	LocksAt      *time.Time
	EndsAt       *time.Time
	OpenNow      bool
}

// gameweekInterval is how far event windows shift when a template is
// cloned into the next gameweek.
const gameweekInterval = 7 * 24 * time.Hour

// EventService manages the event catalogue and its lifecycle transitions.
type EventService struct {
	eventRepo event.Repository
	idGen     id.Generator
	now       func() time.Time
}

func NewEventService(eventRepo event.Repository, idGen id.Generator) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		idGen:     idGen,
		now:       time.Now,
	}
}

func (s *EventService) Create(ctx context.Context, input CreateEventInput) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Create")
	defer span.End()

	eventID, err := s.idGen.NewID()
	if err != nil {
		return event.Event{}, fmt.Errorf("generate event id: %w", err)
	}

	status := event.StatusUpcoming
	if input.OpenNow {
		status = event.StatusRegistering
	}

	now := s.now().UTC()
	evt := event.Event{
		ID:           eventID,
		Gameweek:     input.Gameweek,
		Name:         strings.TrimSpace(input.Name),
		Mode:         event.Mode(strings.TrimSpace(input.Mode)),
		Tier:         event.Tier(strings.TrimSpace(input.Tier)),
		Status:       status,
		FormationKey: strings.TrimSpace(input.FormationKey),
		Requirements: input.Requirements,
		MaxEntries:   input.MaxEntries,
		PrizePool:    input.PrizePool,
		Rewards:      input.Rewards,
		StartsAt:     input.StartsAt,
		LocksAt:      input.LocksAt,
		EndsAt:       input.EndsAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if evt.Requirements.CardsPerSlot == 0 {
		evt.Requirements.CardsPerSlot = 1
	}

	if err := evt.Validate(); err != nil {
		return event.Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.eventRepo.Create(ctx, evt); err != nil {
		return event.Event{}, fmt.Errorf("create event: %w", err)
	}

	return evt, nil
}

func (s *EventService) GetByID(ctx context.Context, eventID string) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.GetByID")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return event.Event{}, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}

	evt, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get event by id: %w", err)
	}
	if !exists {
		return event.Event{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}

	return evt, nil
}

func (s *EventService) ListByGameweek(ctx context.Context, gameweek int) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.ListByGameweek")
	defer span.End()

	if gameweek <= 0 {
		return nil, fmt.Errorf("%w: gameweek must be greater than zero", ErrInvalidInput)
	}

	events, err := s.eventRepo.ListByGameweek(ctx, gameweek)
	if err != nil {
		return nil, fmt.Errorf("list events by gameweek: %w", err)
	}

	return events, nil
}

// ChangeStatus moves an event one lifecycle step. Anything but a legal
// single step fails with event.ErrInvalidTransition.
func (s *EventService) ChangeStatus(ctx context.Context, eventID string, next event.Status) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.ChangeStatus")
	defer span.End()

	evt, err := s.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, err
	}

	newStatus, err := evt.Status.Transition(next)
	if err != nil {
		return event.Event{}, err
	}

	evt.Status = newStatus
	evt.UpdatedAt = s.now().UTC()
	if err := s.eventRepo.Update(ctx, evt); err != nil {
		return event.Event{}, fmt.Errorf("update event status: %w", err)
	}

	return evt, nil
}

func (s *EventService) OpenRegistration(ctx context.Context, eventID string) (event.Event, error) {
	return s.ChangeStatus(ctx, eventID, event.StatusRegistering)
}

func (s *EventService) CloseRegistration(ctx context.Context, eventID string) (event.Event, error) {
	return s.ChangeStatus(ctx, eventID, event.StatusRunning)
}

func (s *EventService) Cancel(ctx context.Context, eventID string) (event.Event, error) {
	return s.ChangeStatus(ctx, eventID, event.StatusCancelled)
}

// CloneForNextGameweek copies an event's template into the following
// gameweek with fresh counters and an open registration window.
func (s *EventService) CloneForNextGameweek(ctx context.Context, eventID string) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.CloneForNextGameweek")
	defer span.End()

	src, err := s.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, err
	}

	cloneID, err := s.idGen.NewID()
	if err != nil {
		return event.Event{}, fmt.Errorf("generate event id: %w", err)
	}

	now := s.now().UTC()
	clone := src
	clone.ID = cloneID
	clone.Gameweek = src.Gameweek + 1
	clone.Status = event.StatusRegistering
	clone.CurrentEntries = 0
	clone.ScoredAt = nil
	clone.ClonedFromEventID = src.ID
	clone.Rewards = append([]event.RewardRange(nil), src.Rewards...)
	clone.StartsAt = shiftTime(src.StartsAt, gameweekInterval)
	clone.LocksAt = shiftTime(src.LocksAt, gameweekInterval)
	clone.EndsAt = shiftTime(src.EndsAt, gameweekInterval)
	clone.CreatedAt = now
	clone.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, clone); err != nil {
		return event.Event{}, fmt.Errorf("create cloned event: %w", err)
	}

	return clone, nil
}

func shiftTime(t *time.Time, by time.Duration) *time.Time {
	if t == nil {
		return nil
	}
	shifted := t.Add(by)
	return &shifted
}
