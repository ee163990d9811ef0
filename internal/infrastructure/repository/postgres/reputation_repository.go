package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bescout/fantasy-events/internal/domain/reputation"
	qb "github.com/bescout/fantasy-events/internal/platform/querybuilder"
)

type reputationDeltaModel struct {
	UserID    string    `db:"user_id"`
	EventID   string    `db:"event_id"`
	Dimension string    `db:"dimension"`
	Amount    int       `db:"amount"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

type ReputationLedger struct {
	db *sqlx.DB
}

func NewReputationLedger(db *sqlx.DB) *ReputationLedger {
	return &ReputationLedger{db: db}
}

func (r *ReputationLedger) Apply(ctx context.Context, d reputation.Delta) error {
	model := reputationDeltaModel{
		UserID:    d.UserID,
		EventID:   d.EventID,
		Dimension: string(d.Dimension),
		Amount:    d.Amount,
		Reason:    d.Reason,
		CreatedAt: d.CreatedAt,
	}

	query, args, err := qb.InsertModel("reputation_deltas", model, "")
	if err != nil {
		return fmt.Errorf("build reputation delta insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert reputation delta: %w", err)
	}
	return nil
}

func (r *ReputationLedger) ListByEvent(ctx context.Context, eventID string) ([]reputation.Delta, error) {
	query, args, err := qb.Select("*").From("reputation_deltas").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list reputation deltas query: %w", err)
	}

	var rows []reputationDeltaModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list reputation deltas: %w", err)
	}

	out := make([]reputation.Delta, 0, len(rows))
	for _, row := range rows {
		out = append(out, reputation.Delta{
			UserID:    row.UserID,
			EventID:   row.EventID,
			Dimension: reputation.Dimension(row.Dimension),
			Amount:    row.Amount,
			Reason:    row.Reason,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
