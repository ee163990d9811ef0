package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bescout/fantasy-events/internal/domain/lineup"
	qb "github.com/bescout/fantasy-events/internal/platform/querybuilder"
)

type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

func (r *LineupRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (lineup.Lineup, bool, error) {
	query, args, err := lineupBaseSelectBuilder().
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("event_id", eventID),
		).
		ToSQL()
	if err != nil {
		return lineup.Lineup{}, false, fmt.Errorf("build get lineup query: %w", err)
	}

	var row lineupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.Lineup{}, false, nil
		}
		return lineup.Lineup{}, false, fmt.Errorf("get lineup: %w", err)
	}

	item, err := lineupFromRow(row)
	if err != nil {
		return lineup.Lineup{}, false, err
	}
	return item, true, nil
}

func (r *LineupRepository) ListByEvent(ctx context.Context, eventID string) ([]lineup.Lineup, error) {
	query, args, err := lineupBaseSelectBuilder().
		Where(qb.Eq("event_id", eventID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lineups by event query: %w", err)
	}

	return r.selectLineups(ctx, query, args)
}

func (r *LineupRepository) ListByUser(ctx context.Context, userID string) ([]lineup.Lineup, error) {
	query, args, err := lineupBaseSelectBuilder().
		Where(qb.Eq("user_id", userID)).
		OrderBy("event_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lineups by user query: %w", err)
	}

	return r.selectLineups(ctx, query, args)
}

func (r *LineupRepository) selectLineups(ctx context.Context, query string, args []any) ([]lineup.Lineup, error) {
	var rows []lineupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list lineups: %w", err)
	}

	out := make([]lineup.Lineup, 0, len(rows))
	for _, row := range rows {
		item, err := lineupFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *LineupRepository) Upsert(ctx context.Context, item lineup.Lineup) error {
	model, err := lineupToInsertModel(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("lineups", model, `ON CONFLICT (user_id, event_id)
DO UPDATE SET
    slots = EXCLUDED.slots,
    submitted_at = EXCLUDED.submitted_at,
    updated_at = EXCLUDED.updated_at,
    slot_scores = EXCLUDED.slot_scores,
    total_score = EXCLUDED.total_score,
    rank = EXCLUDED.rank,
    reward_amount = EXCLUDED.reward_amount`)
	if err != nil {
		return fmt.Errorf("build lineup upsert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert lineup: %w", err)
	}
	return nil
}

func (r *LineupRepository) Delete(ctx context.Context, userID, eventID string) error {
	query := "DELETE FROM lineups WHERE user_id = $1 AND event_id = $2"
	if _, err := r.db.ExecContext(ctx, query, userID, eventID); err != nil {
		return fmt.Errorf("delete lineup: %w", err)
	}
	return nil
}

func (r *LineupRepository) ClearScoresByEvent(ctx context.Context, eventID string) error {
	query, args, err := qb.Update("lineups").
		Set("slot_scores", nil).
		Set("total_score", 0).
		Set("rank", 0).
		Set("reward_amount", 0).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("event_id", eventID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear lineup scores query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear lineup scores: %w", err)
	}
	return nil
}

func lineupBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("lineups")
}
