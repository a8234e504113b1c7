// Package repository provides data access for fighters, bouts, odds and
// predictions.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/fightprob/internal/models"
)

// FighterRepository defines the interface for fighter data access
type FighterRepository interface {
	Create(ctx context.Context, fighter *models.Fighter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Fighter, error)
	GetByName(ctx context.Context, name string) (*models.Fighter, error)
	GetByDivision(ctx context.Context, division string) ([]*models.Fighter, error)
	Update(ctx context.Context, fighter *models.Fighter) error
}

// BoutRepository defines the interface for bout data access
type BoutRepository interface {
	Create(ctx context.Context, bout *models.Bout) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bout, error)
	GetUpcoming(ctx context.Context, limit int) ([]*models.Bout, error)
	GetResolvedByDivision(ctx context.Context, division string) ([]*models.Bout, error)
	GetResolvedSince(ctx context.Context, since time.Time) ([]*models.Bout, error)
	GetLastResolvedFor(ctx context.Context, fighterID uuid.UUID, before time.Time) (*models.Bout, error)
	Update(ctx context.Context, bout *models.Bout) error
}

// OddsRepository defines the interface for odds quote data access
type OddsRepository interface {
	Insert(ctx context.Context, quote *models.OddsQuote) error
	InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error
	GetByBoutID(ctx context.Context, boutID uuid.UUID) ([]*models.OddsQuote, error)
	GetLatest(ctx context.Context, boutID, fighterID uuid.UUID) (*models.OddsQuote, error)
}

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	Upsert(ctx context.Context, prediction *models.PredictionRecord) error
	GetByBoutID(ctx context.Context, boutID uuid.UUID) (*models.PredictionRecord, error)
	GetRecent(ctx context.Context, since time.Time) ([]*models.PredictionRecord, error)
}

// Repositories bundles all repository implementations
type Repositories struct {
	Fighters    FighterRepository
	Bouts       BoutRepository
	Odds        OddsRepository
	Predictions PredictionRepository
}
