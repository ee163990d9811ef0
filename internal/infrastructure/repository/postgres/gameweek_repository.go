package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// GameweekRepository keeps the active gameweek pointer in a single-row
// state table.
type GameweekRepository struct {
	db *sqlx.DB
}

func NewGameweekRepository(db *sqlx.DB) *GameweekRepository {
	return &GameweekRepository{db: db}
}

func (r *GameweekRepository) Current(ctx context.Context) (int, error) {
	var gameweek int
	err := r.db.GetContext(ctx, &gameweek, "SELECT current_gameweek FROM engine_state WHERE id = 1")
	if err != nil {
		if isNotFound(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("read current gameweek: %w", err)
	}
	return gameweek, nil
}

func (r *GameweekRepository) Set(ctx context.Context, gameweek int) error {
	query := `INSERT INTO engine_state (id, current_gameweek, updated_at) VALUES (1, $1, NOW())
ON CONFLICT (id) DO UPDATE SET current_gameweek = EXCLUDED.current_gameweek, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, gameweek); err != nil {
		return fmt.Errorf("set current gameweek: %w", err)
	}
	return nil
}
