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

// PostgresBoutRepository implements BoutRepository for PostgreSQL
type PostgresBoutRepository struct {
	db *database.DB
}

// NewPostgresBoutRepository creates a new bout repository
func NewPostgresBoutRepository(db *database.DB) BoutRepository {
	return &PostgresBoutRepository{db: db}
}

const boutColumns = `id, event_id, fighter_id, opponent_id, division, scheduled_rounds, event_date, winner_id, method, end_round`

func scanBout(row pgx.Row) (*models.Bout, error) {
	bout := &models.Bout{}
	err := row.Scan(
		&bout.ID, &bout.EventID, &bout.FighterID, &bout.OpponentID,
		&bout.Division, &bout.ScheduledRounds, &bout.EventDate,
		&bout.WinnerID, &bout.Method, &bout.EndRound,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan bout: %w", err)
	}
	return bout, nil
}

// Create inserts a new bout
func (r *PostgresBoutRepository) Create(ctx context.Context, bout *models.Bout) error {
	query := `
		INSERT INTO bouts (` + boutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		bout.ID, bout.EventID, bout.FighterID, bout.OpponentID,
		bout.Division, bout.ScheduledRounds, bout.EventDate,
		bout.WinnerID, bout.Method, bout.EndRound,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bout: %w", err)
	}
	return nil
}

// GetByID retrieves a bout by ID
func (r *PostgresBoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bout, error) {
	query := `SELECT ` + boutColumns + ` FROM bouts WHERE id = $1`
	return scanBout(r.db.GetPool().QueryRow(ctx, query, id))
}

// GetUpcoming retrieves unresolved bouts ordered by event date
func (r *PostgresBoutRepository) GetUpcoming(ctx context.Context, limit int) ([]*models.Bout, error) {
	query := `
		SELECT ` + boutColumns + ` FROM bouts
		WHERE winner_id IS NULL AND event_date >= NOW()
		ORDER BY event_date ASC LIMIT $1
	`
	return r.queryBouts(ctx, query, limit)
}

// GetResolvedByDivision retrieves resolved bouts for one division in
// chronological order, suitable for Elo replay and age-curve fitting.
func (r *PostgresBoutRepository) GetResolvedByDivision(ctx context.Context, division string) ([]*models.Bout, error) {
	query := `
		SELECT ` + boutColumns + ` FROM bouts
		WHERE winner_id IS NOT NULL AND division = $1
		ORDER BY event_date ASC
	`
	return r.queryBouts(ctx, query, division)
}

// GetResolvedSince retrieves resolved bouts since a cutoff in
// chronological order.
func (r *PostgresBoutRepository) GetResolvedSince(ctx context.Context, since time.Time) ([]*models.Bout, error) {
	query := `
		SELECT ` + boutColumns + ` FROM bouts
		WHERE winner_id IS NOT NULL AND event_date >= $1
		ORDER BY event_date ASC
	`
	return r.queryBouts(ctx, query, since)
}

// GetLastResolvedFor retrieves a fighter's most recent resolved bout
// before the cutoff, on either side of the card.
func (r *PostgresBoutRepository) GetLastResolvedFor(ctx context.Context, fighterID uuid.UUID, before time.Time) (*models.Bout, error) {
	query := `
		SELECT ` + boutColumns + ` FROM bouts
		WHERE winner_id IS NOT NULL
		  AND (fighter_id = $1 OR opponent_id = $1)
		  AND event_date < $2
		ORDER BY event_date DESC LIMIT 1
	`
	return scanBout(r.db.GetPool().QueryRow(ctx, query, fighterID, before))
}

// Update updates an existing bout (typically to record the result)
func (r *PostgresBoutRepository) Update(ctx context.Context, bout *models.Bout) error {
	query := `
		UPDATE bouts
		SET winner_id = $2, method = $3, end_round = $4
		WHERE id = $1
	`
	tag, err := r.db.GetPool().Exec(ctx, query, bout.ID, bout.WinnerID, bout.Method, bout.EndRound)
	if err != nil {
		return fmt.Errorf("failed to update bout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PostgresBoutRepository) queryBouts(ctx context.Context, query string, args ...any) ([]*models.Bout, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bouts: %w", err)
	}
	defer rows.Close()

	bouts := make([]*models.Bout, 0)
	for rows.Next() {
		bout, err := scanBout(rows)
		if err != nil {
			return nil, err
		}
		bouts = append(bouts, bout)
	}
	return bouts, rows.Err()
}
