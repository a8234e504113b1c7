package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/fightprob/internal/database"
	"github.com/yourusername/fightprob/internal/models"
)

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// Insert inserts a single odds quote
func (r *PostgresOddsRepository) Insert(ctx context.Context, quote *models.OddsQuote) error {
	query := `
		INSERT INTO odds_quotes (time, bout_id, fighter_id, sportsbook, american)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		quote.Time, quote.BoutID, quote.FighterID, quote.Sportsbook, quote.American,
	)
	if err != nil {
		return fmt.Errorf("failed to insert odds quote: %w", err)
	}
	return nil
}

// InsertBatch inserts multiple quotes using a bulk COPY
func (r *PostgresOddsRepository) InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	columns := []string{"time", "bout_id", "fighter_id", "sportsbook", "american"}
	source := make([][]any, len(quotes))
	for i, q := range quotes {
		source[i] = []any{q.Time, q.BoutID, q.FighterID, q.Sportsbook, q.American}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"odds_quotes"}, columns, pgx.CopyFromRows(source))
	if err != nil {
		return fmt.Errorf("failed to batch insert odds quotes: %w", err)
	}
	if count != int64(len(quotes)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(quotes))
	}
	return nil
}

// GetByBoutID retrieves all quotes for a bout, newest first
func (r *PostgresOddsRepository) GetByBoutID(ctx context.Context, boutID uuid.UUID) ([]*models.OddsQuote, error) {
	query := `
		SELECT time, bout_id, fighter_id, sportsbook, american
		FROM odds_quotes WHERE bout_id = $1 ORDER BY time DESC
	`
	rows, err := r.db.GetPool().Query(ctx, query, boutID)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]*models.OddsQuote, 0)
	for rows.Next() {
		quote := &models.OddsQuote{}
		if err := rows.Scan(&quote.Time, &quote.BoutID, &quote.FighterID, &quote.Sportsbook, &quote.American); err != nil {
			return nil, fmt.Errorf("failed to scan odds quote: %w", err)
		}
		quotes = append(quotes, quote)
	}
	return quotes, rows.Err()
}

// GetLatest retrieves the freshest quote for one side of a bout
func (r *PostgresOddsRepository) GetLatest(ctx context.Context, boutID, fighterID uuid.UUID) (*models.OddsQuote, error) {
	query := `
		SELECT time, bout_id, fighter_id, sportsbook, american
		FROM odds_quotes WHERE bout_id = $1 AND fighter_id = $2
		ORDER BY time DESC LIMIT 1
	`
	quote := &models.OddsQuote{}
	err := r.db.GetPool().QueryRow(ctx, query, boutID, fighterID).Scan(
		&quote.Time, &quote.BoutID, &quote.FighterID, &quote.Sportsbook, &quote.American,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest odds quote: %w", err)
	}
	return quote, nil
}
