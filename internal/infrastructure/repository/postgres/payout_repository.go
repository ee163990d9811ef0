package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bescout/fantasy-events/internal/domain/wallet"
	qb "github.com/bescout/fantasy-events/internal/platform/querybuilder"
)

type payoutTableModel struct {
	EventID        string    `db:"event_id"`
	UserID         string    `db:"user_id"`
	Rank           int       `db:"rank"`
	Amount         int64     `db:"amount"`
	IdempotencyKey string    `db:"idempotency_key"`
	RailRef        string    `db:"rail_ref"`
	CreditedAt     time.Time `db:"credited_at"`
}

type PayoutRepository struct {
	db *sqlx.DB
}

func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (wallet.Payout, bool, error) {
	query, args, err := qb.Select("*").From("payouts").
		Where(
			qb.Eq("event_id", eventID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return wallet.Payout{}, false, fmt.Errorf("build get payout query: %w", err)
	}

	var row payoutTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wallet.Payout{}, false, nil
		}
		return wallet.Payout{}, false, fmt.Errorf("get payout: %w", err)
	}

	return payoutFromRow(row), true, nil
}

func (r *PayoutRepository) ListByEvent(ctx context.Context, eventID string) ([]wallet.Payout, error) {
	query, args, err := qb.Select("*").From("payouts").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("rank").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list payouts query: %w", err)
	}

	var rows []payoutTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}

	out := make([]wallet.Payout, 0, len(rows))
	for _, row := range rows {
		out = append(out, payoutFromRow(row))
	}
	return out, nil
}

func (r *PayoutRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("payouts").
		Where(qb.Eq("event_id", eventID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count payouts query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count payouts: %w", err)
	}
	return count, nil
}

func (r *PayoutRepository) Record(ctx context.Context, p wallet.Payout) error {
	model := payoutTableModel{
		EventID:        p.EventID,
		UserID:         p.UserID,
		Rank:           p.Rank,
		Amount:         p.Amount,
		IdempotencyKey: p.IdempotencyKey,
		RailRef:        p.RailRef,
		CreditedAt:     p.CreditedAt,
	}

	query, args, err := qb.InsertModel("payouts", model, "ON CONFLICT (event_id, user_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build payout insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record payout: %w", err)
	}
	return nil
}

func payoutFromRow(row payoutTableModel) wallet.Payout {
	return wallet.Payout{
		EventID:        row.EventID,
		UserID:         row.UserID,
		Rank:           row.Rank,
		Amount:         row.Amount,
		IdempotencyKey: row.IdempotencyKey,
		RailRef:        row.RailRef,
		CreditedAt:     row.CreditedAt,
	}
}
