package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/fightprob/internal/database"
	"github.com/yourusername/fightprob/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Upsert inserts or replaces the prediction for a bout
func (r *PostgresPredictionRepository) Upsert(ctx context.Context, p *models.PredictionRecord) error {
	query := `
		INSERT INTO predictions (id, bout_id, fighter_id, opponent_id, division, probability, prob_low, prob_high, market_prob, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (bout_id) DO UPDATE
		SET probability = EXCLUDED.probability,
		    prob_low = EXCLUDED.prob_low,
		    prob_high = EXCLUDED.prob_high,
		    market_prob = EXCLUDED.market_prob,
		    predicted_at = EXCLUDED.predicted_at
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		p.ID, p.BoutID, p.FighterID, p.OpponentID, p.Division,
		p.Probability, p.ProbLow, p.ProbHigh, p.MarketProb, p.PredictedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert prediction: %w", err)
	}
	return nil
}

// GetByBoutID retrieves the current prediction for a bout
func (r *PostgresPredictionRepository) GetByBoutID(ctx context.Context, boutID uuid.UUID) (*models.PredictionRecord, error) {
	query := `
		SELECT id, bout_id, fighter_id, opponent_id, division, probability, prob_low, prob_high, market_prob, predicted_at
		FROM predictions WHERE bout_id = $1
	`
	p := &models.PredictionRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, boutID).Scan(
		&p.ID, &p.BoutID, &p.FighterID, &p.OpponentID, &p.Division,
		&p.Probability, &p.ProbLow, &p.ProbHigh, &p.MarketProb, &p.PredictedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// GetRecent retrieves predictions made since the cutoff, newest first
func (r *PostgresPredictionRepository) GetRecent(ctx context.Context, since time.Time) ([]*models.PredictionRecord, error) {
	query := `
		SELECT id, bout_id, fighter_id, opponent_id, division, probability, prob_low, prob_high, market_prob, predicted_at
		FROM predictions WHERE predicted_at >= $1 ORDER BY predicted_at DESC
	`
	rows, err := r.db.GetPool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]*models.PredictionRecord, 0)
	for rows.Next() {
		p := &models.PredictionRecord{}
		if err := rows.Scan(
			&p.ID, &p.BoutID, &p.FighterID, &p.OpponentID, &p.Division,
			&p.Probability, &p.ProbLow, &p.ProbHigh, &p.MarketProb, &p.PredictedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// NewRepositories wires all postgres repositories over one pool
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Fighters:    NewPostgresFighterRepository(db),
		Bouts:       NewPostgresBoutRepository(db),
		Odds:        NewPostgresOddsRepository(db),
		Predictions: NewPostgresPredictionRepository(db),
	}
}
