package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/formation"
	"github.com/bescout/fantasy-events/internal/domain/holding"
	"github.com/bescout/fantasy-events/internal/domain/lineup"
)

type SubmitLineupInput struct {
	UserID  string
	EventID string
	Slots   map[string]string
}

// LineupService is the allocation engine: it validates submissions in a
// fixed order (lock, completeness, eligibility, scarcity, capacity) and
// returns the first failure.
type LineupService struct {
	eventRepo  event.Repository
	lineupRepo lineup.Repository
	oracle     holding.Oracle
	now        func() time.Time

	// allocMu serializes validate-and-upsert so two submissions cannot
	// spend the same card copies.
	allocMu sync.Mutex
}

func NewLineupService(eventRepo event.Repository, lineupRepo lineup.Repository, oracle holding.Oracle) *LineupService {
	return &LineupService{
		eventRepo:  eventRepo,
		lineupRepo: lineupRepo,
		oracle:     oracle,
		now:        time.Now,
	}
}

func (s *LineupService) GetByUserAndEvent(ctx context.Context, userID, eventID string) (lineup.Lineup, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.GetByUserAndEvent")
	defer span.End()

	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return lineup.Lineup{}, false, fmt.Errorf("%w: user_id and event_id are required", ErrInvalidInput)
	}

	item, exists, err := s.lineupRepo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return lineup.Lineup{}, false, fmt.Errorf("get lineup by user and event: %w", err)
	}

	return item, exists, nil
}

func (s *LineupService) Submit(ctx context.Context, input SubmitLineupInput) (lineup.Lineup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.Submit")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.EventID = strings.TrimSpace(input.EventID)
	if input.UserID == "" {
		return lineup.Lineup{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if input.EventID == "" {
		return lineup.Lineup{}, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}

	slots, err := normalizeSlots(input.Slots)
	if err != nil {
		return lineup.Lineup{}, err
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	evt, exists, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		return lineup.Lineup{}, fmt.Errorf("get event by id: %w", err)
	}
	if !exists {
		return lineup.Lineup{}, fmt.Errorf("%w: event=%s", ErrNotFound, input.EventID)
	}
	if !evt.AcceptsLineups(s.now().UTC()) {
		return lineup.Lineup{}, fmt.Errorf("%w: status=%s", event.ErrEventLocked, evt.Status)
	}

	form := evt.Formation()
	if err := validateCompleteness(form, slots); err != nil {
		return lineup.Lineup{}, err
	}

	// Holdings are read fresh inside the critical section; stale counts
	// would let two events spend the same copies.
	holdings, err := s.oracle.HoldingsForUser(ctx, input.UserID)
	if err != nil {
		return lineup.Lineup{}, fmt.Errorf("%w: load holdings: %v", ErrDependencyUnavailable, err)
	}

	if err := s.validateEligibility(ctx, evt, form, input.UserID, slots, holdings); err != nil {
		return lineup.Lineup{}, err
	}
	if err := s.validateScarcity(ctx, evt, input.UserID, slots, holdings); err != nil {
		return lineup.Lineup{}, err
	}

	existing, hasEntry, err := s.lineupRepo.GetByUserAndEvent(ctx, input.UserID, input.EventID)
	if err != nil {
		return lineup.Lineup{}, fmt.Errorf("get existing lineup: %w", err)
	}
	if !hasEntry && evt.MaxEntries > 0 && evt.CurrentEntries >= evt.MaxEntries {
		return lineup.Lineup{}, fmt.Errorf("%w: %d/%d entries", event.ErrEventFull, evt.CurrentEntries, evt.MaxEntries)
	}

	now := s.now().UTC()
	item := lineup.Lineup{
		UserID:      input.UserID,
		EventID:     input.EventID,
		Slots:       slots,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if hasEntry {
		// Resubmission keeps the original submission time; it decides
		// leaderboard tie-breaks.
		item.SubmittedAt = existing.SubmittedAt
	}

	if err := s.lineupRepo.Upsert(ctx, item); err != nil {
		return lineup.Lineup{}, fmt.Errorf("save lineup: %w", err)
	}
	if !hasEntry {
		if err := s.eventRepo.AdjustEntries(ctx, evt.ID, 1); err != nil {
			return lineup.Lineup{}, fmt.Errorf("increment event entries: %w", err)
		}
	}

	return item, nil
}

func (s *LineupService) Withdraw(ctx context.Context, userID, eventID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.Withdraw")
	defer span.End()

	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return fmt.Errorf("%w: user_id and event_id are required", ErrInvalidInput)
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	evt, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	if !evt.AcceptsLineups(s.now().UTC()) {
		return fmt.Errorf("%w: status=%s", event.ErrEventLocked, evt.Status)
	}

	_, hasEntry, err := s.lineupRepo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return fmt.Errorf("get existing lineup: %w", err)
	}
	if !hasEntry {
		return fmt.Errorf("%w: lineup user=%s event=%s", ErrNotFound, userID, eventID)
	}

	if err := s.lineupRepo.Delete(ctx, userID, eventID); err != nil {
		return fmt.Errorf("delete lineup: %w", err)
	}
	if err := s.eventRepo.AdjustEntries(ctx, eventID, -1); err != nil {
		return fmt.Errorf("decrement event entries: %w", err)
	}

	return nil
}

func normalizeSlots(raw map[string]string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no slots assigned", lineup.ErrIncompleteLineup)
	}

	slots := make(map[string]string, len(raw))
	for key, cardID := range raw {
		key = strings.TrimSpace(key)
		cardID = strings.TrimSpace(cardID)
		if key == "" {
			return nil, fmt.Errorf("%w: slot key cannot be empty", ErrInvalidInput)
		}
		if cardID == "" {
			return nil, fmt.Errorf("%w: slot %s has no card", lineup.ErrIncompleteLineup, key)
		}
		slots[key] = cardID
	}

	return slots, nil
}

func validateCompleteness(form formation.Formation, slots map[string]string) error {
	for _, slot := range form.Slots {
		if _, ok := slots[slot.Key]; !ok {
			return fmt.Errorf("%w: slot %s is empty", lineup.ErrIncompleteLineup, slot.Key)
		}
	}
	for key := range slots {
		if _, ok := form.SlotByKey(key); !ok {
			return fmt.Errorf("%w: unknown slot %s for formation %s", lineup.ErrIncompleteLineup, key, form.Key)
		}
	}

	seen := make(map[string]string, len(slots))
	for key, cardID := range slots {
		if prev, dup := seen[cardID]; dup {
			return fmt.Errorf("%w: card %s assigned to both %s and %s", lineup.ErrIncompleteLineup, cardID, prev, key)
		}
		seen[cardID] = key
	}

	return nil
}

func (s *LineupService) validateEligibility(ctx context.Context, evt event.Event, form formation.Formation, userID string, slots map[string]string, holdings map[string]int) error {
	req := evt.Requirements

	if req.MinSubscriptionTier > 0 {
		profile, err := s.oracle.Profile(ctx, userID)
		if err != nil {
			return fmt.Errorf("%w: load profile: %v", ErrDependencyUnavailable, err)
		}
		if profile.SubscriptionTier < req.MinSubscriptionTier {
			return fmt.Errorf("%w: subscription tier %d below required %d", lineup.ErrEligibilityNotMet, profile.SubscriptionTier, req.MinSubscriptionTier)
		}
	}

	cardIDs := make([]string, 0, len(slots))
	for _, cardID := range slots {
		cardIDs = append(cardIDs, cardID)
	}
	cards, err := s.oracle.CardsByID(ctx, cardIDs)
	if err != nil {
		return fmt.Errorf("%w: resolve cards: %v", ErrDependencyUnavailable, err)
	}

	clubPlayers := 0
	for key, cardID := range slots {
		c, ok := cards[cardID]
		if !ok {
			return fmt.Errorf("%w: unknown card %s", lineup.ErrEligibilityNotMet, cardID)
		}
		slot, _ := form.SlotByKey(key)
		if c.Position != slot.Position {
			return fmt.Errorf("%w: card %s is %s, slot %s needs %s", lineup.ErrEligibilityNotMet, cardID, c.Position, key, slot.Position)
		}
		if req.SpecificClubID != "" && c.ClubID == req.SpecificClubID {
			clubPlayers++
		}
	}

	if req.SpecificClubID != "" && clubPlayers < req.MinClubPlayers {
		return fmt.Errorf("%w: need %d cards from club %s, got %d", lineup.ErrEligibilityNotMet, req.MinClubPlayers, req.SpecificClubID, clubPlayers)
	}

	if req.MinTotalCards > 0 {
		total := 0
		for _, copies := range holdings {
			total += copies
		}
		if total < req.MinTotalCards {
			return fmt.Errorf("%w: collection holds %d cards, event requires %d", lineup.ErrEligibilityNotMet, total, req.MinTotalCards)
		}
	}

	return nil
}

// validateScarcity verifies the user owns enough free copies of every
// allocated card. Copies committed to other events count as spent unless
// that event is already settled, settling or cancelled.
func (s *LineupService) validateScarcity(ctx context.Context, evt event.Event, userID string, slots map[string]string, holdings map[string]int) error {
	others, err := s.lineupRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list lineups by user: %w", err)
	}

	usedElsewhere := make(map[string]int)
	for _, other := range others {
		if other.EventID == evt.ID {
			continue
		}
		otherEvt, exists, err := s.eventRepo.GetByID(ctx, other.EventID)
		if err != nil {
			return fmt.Errorf("get event %s: %w", other.EventID, err)
		}
		if !exists || releasesHoldings(otherEvt.Status) {
			continue
		}
		perSlot := otherEvt.Requirements.CardsPerSlot
		if perSlot < 1 {
			perSlot = 1
		}
		for _, cardID := range other.Slots {
			usedElsewhere[cardID] += perSlot
		}
	}

	slotsUsing := make(map[string]int, len(slots))
	for _, cardID := range slots {
		slotsUsing[cardID]++
	}

	perSlot := evt.Requirements.CardsPerSlot
	for cardID, count := range slotsUsing {
		need := perSlot * count
		free := holdings[cardID] - usedElsewhere[cardID]
		if free < need {
			return fmt.Errorf("%w: card %s needs %d free copies, has %d", lineup.ErrInsufficientCards, cardID, need, free)
		}
	}

	return nil
}

// releasesHoldings reports whether an event in this status no longer pins
// the cards allocated to it.
func releasesHoldings(status event.Status) bool {
	switch status {
	case event.StatusEnded, event.StatusScoring, event.StatusCancelled:
		return true
	default:
		return false
	}
}
