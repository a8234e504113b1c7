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

// PostgresFighterRepository implements FighterRepository for PostgreSQL
type PostgresFighterRepository struct {
	db *database.DB
}

// NewPostgresFighterRepository creates a new fighter repository
func NewPostgresFighterRepository(db *database.DB) FighterRepository {
	return &PostgresFighterRepository{db: db}
}

// Create inserts a new fighter
func (r *PostgresFighterRepository) Create(ctx context.Context, fighter *models.Fighter) error {
	query := `
		INSERT INTO fighters (id, name, division, date_of_birth, height_in, reach_in, stance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		fighter.ID, fighter.Name, fighter.Division, fighter.DateOfBirth,
		fighter.HeightIn, fighter.ReachIn, fighter.Stance,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fighter: %w", err)
	}
	return nil
}

// GetByID retrieves a fighter by ID
func (r *PostgresFighterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Fighter, error) {
	query := `
		SELECT id, name, division, date_of_birth, height_in, reach_in, stance, created_at, updated_at
		FROM fighters WHERE id = $1
	`
	fighter := &models.Fighter{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&fighter.ID, &fighter.Name, &fighter.Division, &fighter.DateOfBirth,
		&fighter.HeightIn, &fighter.ReachIn, &fighter.Stance,
		&fighter.CreatedAt, &fighter.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fighter: %w", err)
	}
	return fighter, nil
}

// GetByName retrieves a fighter by exact name
func (r *PostgresFighterRepository) GetByName(ctx context.Context, name string) (*models.Fighter, error) {
	query := `
		SELECT id, name, division, date_of_birth, height_in, reach_in, stance, created_at, updated_at
		FROM fighters WHERE name = $1
	`
	fighter := &models.Fighter{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&fighter.ID, &fighter.Name, &fighter.Division, &fighter.DateOfBirth,
		&fighter.HeightIn, &fighter.ReachIn, &fighter.Stance,
		&fighter.CreatedAt, &fighter.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fighter by name: %w", err)
	}
	return fighter, nil
}

// GetByDivision retrieves all fighters in a division
func (r *PostgresFighterRepository) GetByDivision(ctx context.Context, division string) ([]*models.Fighter, error) {
	query := `
		SELECT id, name, division, date_of_birth, height_in, reach_in, stance, created_at, updated_at
		FROM fighters WHERE division = $1 ORDER BY name
	`
	rows, err := r.db.GetPool().Query(ctx, query, division)
	if err != nil {
		return nil, fmt.Errorf("failed to query fighters: %w", err)
	}
	defer rows.Close()

	fighters := make([]*models.Fighter, 0)
	for rows.Next() {
		fighter := &models.Fighter{}
		if err := rows.Scan(
			&fighter.ID, &fighter.Name, &fighter.Division, &fighter.DateOfBirth,
			&fighter.HeightIn, &fighter.ReachIn, &fighter.Stance,
			&fighter.CreatedAt, &fighter.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fighter: %w", err)
		}
		fighters = append(fighters, fighter)
	}
	return fighters, rows.Err()
}

// Update updates an existing fighter
func (r *PostgresFighterRepository) Update(ctx context.Context, fighter *models.Fighter) error {
	query := `
		UPDATE fighters
		SET name = $2, division = $3, date_of_birth = $4, height_in = $5, reach_in = $6, stance = $7, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.GetPool().Exec(ctx, query,
		fighter.ID, fighter.Name, fighter.Division, fighter.DateOfBirth,
		fighter.HeightIn, fighter.ReachIn, fighter.Stance,
	)
	if err != nil {
		return fmt.Errorf("failed to update fighter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
