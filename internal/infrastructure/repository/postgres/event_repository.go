package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bescout/fantasy-events/internal/domain/event"
	qb "github.com/bescout/fantasy-events/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (event.Event, bool, error) {
	query, args, err := eventBaseSelectBuilder().
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build get event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("get event: %w", err)
	}

	evt, err := eventFromRow(row)
	if err != nil {
		return event.Event{}, false, err
	}
	return evt, true, nil
}

func (r *EventRepository) ListByGameweek(ctx context.Context, gameweek int) ([]event.Event, error) {
	query, args, err := eventBaseSelectBuilder().
		Where(qb.Eq("gameweek", gameweek)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list events by gameweek query: %w", err)
	}

	return r.selectEvents(ctx, query, args)
}

func (r *EventRepository) ListByStatuses(ctx context.Context, statuses ...event.Status) ([]event.Event, error) {
	values := make([]any, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	query, args, err := eventBaseSelectBuilder().
		Where(qb.In("status", values)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list events by statuses query: %w", err)
	}

	return r.selectEvents(ctx, query, args)
}

func (r *EventRepository) selectEvents(ctx context.Context, query string, args []any) ([]event.Event, error) {
	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		evt, err := eventFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, nil
}

func (r *EventRepository) Create(ctx context.Context, evt event.Event) error {
	model, err := eventToInsertModel(evt)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("events", model, "")
	if err != nil {
		return fmt.Errorf("build event insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) Update(ctx context.Context, evt event.Event) error {
	model, err := eventToInsertModel(evt)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("events").
		Set("gameweek", model.Gameweek).
		Set("name", model.Name).
		Set("mode", model.Mode).
		Set("tier", model.Tier).
		Set("status", model.Status).
		Set("formation_key", model.FormationKey).
		Set("min_subscription_tier", model.MinSubscriptionTier).
		Set("specific_club_id", model.SpecificClubID).
		Set("min_club_players", model.MinClubPlayers).
		Set("cards_per_slot", model.CardsPerSlot).
		Set("min_total_cards", model.MinTotalCards).
		Set("max_entries", model.MaxEntries).
		Set("current_entries", model.CurrentEntries).
		Set("prize_pool", model.PrizePool).
		Set("rewards", model.Rewards).
		Set("starts_at", model.StartsAt).
		Set("locks_at", model.LocksAt).
		Set("ends_at", model.EndsAt).
		Set("scored_at", model.ScoredAt).
		Set("cloned_from_event_id", model.ClonedFromEventID).
		Set("updated_at", model.UpdatedAt).
		Where(qb.Eq("id", evt.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build event update query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update event: event %s not found", evt.ID)
	}
	return nil
}

func (r *EventRepository) AdjustEntries(ctx context.Context, id string, delta int) error {
	query, args, err := qb.Update("events").
		SetExpr("current_entries", "GREATEST(current_entries + $1, 0)", delta).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build adjust entries query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("adjust event entries: %w", err)
	}
	return nil
}

// MarkScored is the settlement check-and-set: the WHERE clause lets only
// one caller win.
func (r *EventRepository) MarkScored(ctx context.Context, id string, at time.Time) (bool, error) {
	query, args, err := qb.Update("events").
		Set("scored_at", at).
		Set("status", string(event.StatusEnded)).
		Set("updated_at", at).
		Where(
			qb.Eq("id", id),
			qb.IsNull("scored_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark scored query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark event scored: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark event scored rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *EventRepository) ClearScored(ctx context.Context, id string, status event.Status) error {
	query, args, err := qb.Update("events").
		Set("scored_at", nil).
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear scored query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear event scored state: %w", err)
	}
	return nil
}

func eventBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("events")
}
