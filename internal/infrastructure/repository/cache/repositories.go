package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/bescout/fantasy-events/internal/domain/event"
	"github.com/bescout/fantasy-events/internal/domain/lineup"
	basecache "github.com/bescout/fantasy-events/internal/platform/cache"
)

// EventRepository caches event reads in front of a slower store. Writes go
// straight through and drop the affected keys.
type EventRepository struct {
	next  event.Repository
	cache *basecache.Store
}

func NewEventRepository(next event.Repository, cache *basecache.Store) *EventRepository {
	return &EventRepository{next: next, cache: cache}
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (event.Event, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, eventByIDKey(id), func(ctx context.Context) (any, error) {
		evt, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedEventByID{value: evt, exists: exists}, nil
	})
	if err != nil {
		return event.Event{}, false, err
	}

	cached, _ := v.(cachedEventByID)
	return cached.value, cached.exists, nil
}

func (r *EventRepository) ListByGameweek(ctx context.Context, gameweek int) ([]event.Event, error) {
	key := "event:gameweek:" + strconv.Itoa(gameweek)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByGameweek(ctx, gameweek)
		if err != nil {
			return nil, err
		}
		return append([]event.Event(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]event.Event)
	return append([]event.Event(nil), items...), nil
}

// ListByStatuses is not cached; status sweeps feed the gameweek runner and
// must see fresh state.
func (r *EventRepository) ListByStatuses(ctx context.Context, statuses ...event.Status) ([]event.Event, error) {
	return r.next.ListByStatuses(ctx, statuses...)
}

func (r *EventRepository) Create(ctx context.Context, evt event.Event) error {
	if err := r.next.Create(ctx, evt); err != nil {
		return err
	}
	r.invalidate(ctx, evt.ID, evt.Gameweek)
	return nil
}

func (r *EventRepository) Update(ctx context.Context, evt event.Event) error {
	if err := r.next.Update(ctx, evt); err != nil {
		return err
	}
	r.invalidate(ctx, evt.ID, evt.Gameweek)
	return nil
}

func (r *EventRepository) AdjustEntries(ctx context.Context, id string, delta int) error {
	if err := r.next.AdjustEntries(ctx, id, delta); err != nil {
		return err
	}
	r.invalidateByID(ctx, id)
	return nil
}

func (r *EventRepository) MarkScored(ctx context.Context, id string, at time.Time) (bool, error) {
	won, err := r.next.MarkScored(ctx, id, at)
	if err != nil {
		return false, err
	}
	r.invalidateByID(ctx, id)
	return won, nil
}

func (r *EventRepository) ClearScored(ctx context.Context, id string, status event.Status) error {
	if err := r.next.ClearScored(ctx, id, status); err != nil {
		return err
	}
	r.invalidateByID(ctx, id)
	return nil
}

func (r *EventRepository) invalidate(ctx context.Context, id string, gameweek int) {
	r.cache.Delete(ctx, eventByIDKey(id))
	r.cache.Delete(ctx, "event:gameweek:"+strconv.Itoa(gameweek))
}

// invalidateByID is used where the caller only has the event ID; the
// gameweek list may be stale for up to the TTL, which only delays a
// catalogue read, never settlement.
func (r *EventRepository) invalidateByID(ctx context.Context, id string) {
	r.cache.Delete(ctx, eventByIDKey(id))
	r.cache.DeletePrefix(ctx, "event:gameweek:")
}

type cachedEventByID struct {
	value  event.Event
	exists bool
}

func eventByIDKey(id string) string {
	return "event:id:" + id
}

// LineupRepository caches per-user lineup lookups, the hottest read on the
// API. Event-wide listings used by settlement always hit the next store.
type LineupRepository struct {
	next  lineup.Repository
	cache *basecache.Store
}

func NewLineupRepository(next lineup.Repository, cache *basecache.Store) *LineupRepository {
	return &LineupRepository{next: next, cache: cache}
}

func (r *LineupRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (lineup.Lineup, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, lineupKey(userID, eventID), func(ctx context.Context) (any, error) {
		lu, exists, err := r.next.GetByUserAndEvent(ctx, userID, eventID)
		if err != nil {
			return nil, err
		}
		return cachedLineup{value: cloneLineup(lu), exists: exists}, nil
	})
	if err != nil {
		return lineup.Lineup{}, false, err
	}

	cached, _ := v.(cachedLineup)
	return cloneLineup(cached.value), cached.exists, nil
}

func (r *LineupRepository) ListByEvent(ctx context.Context, eventID string) ([]lineup.Lineup, error) {
	return r.next.ListByEvent(ctx, eventID)
}

func (r *LineupRepository) ListByUser(ctx context.Context, userID string) ([]lineup.Lineup, error) {
	return r.next.ListByUser(ctx, userID)
}

func (r *LineupRepository) Upsert(ctx context.Context, lu lineup.Lineup) error {
	if err := r.next.Upsert(ctx, lu); err != nil {
		return err
	}
	r.cache.Delete(ctx, lineupKey(lu.UserID, lu.EventID))
	return nil
}

func (r *LineupRepository) Delete(ctx context.Context, userID, eventID string) error {
	if err := r.next.Delete(ctx, userID, eventID); err != nil {
		return err
	}
	r.cache.Delete(ctx, lineupKey(userID, eventID))
	return nil
}

func (r *LineupRepository) ClearScoresByEvent(ctx context.Context, eventID string) error {
	if err := r.next.ClearScoresByEvent(ctx, eventID); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "lineup:")
	return nil
}

type cachedLineup struct {
	value  lineup.Lineup
	exists bool
}

func cloneLineup(lu lineup.Lineup) lineup.Lineup {
	out := lu
	if lu.Slots != nil {
		out.Slots = make(map[string]string, len(lu.Slots))
		for k, v := range lu.Slots {
			out.Slots[k] = v
		}
	}
	if lu.SlotScores != nil {
		out.SlotScores = make(map[string]int, len(lu.SlotScores))
		for k, v := range lu.SlotScores {
			out.SlotScores[k] = v
		}
	}
	return out
}

func lineupKey(userID, eventID string) string {
	return "lineup:user:" + userID + ":event:" + eventID
}
