// Package service composes ratings, age curves, the external classifier
// and calibration into the prediction and refresh workflows.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/calibration"
	"github.com/yourusername/fightprob/internal/classifier"
	"github.com/yourusername/fightprob/internal/config"
	"github.com/yourusername/fightprob/internal/features"
	"github.com/yourusername/fightprob/internal/ingestion"
	"github.com/yourusername/fightprob/internal/metrics"
	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/persistence"
	"github.com/yourusername/fightprob/internal/repository"
)

// Predictor serves calibrated win probabilities for upcoming bouts.
type Predictor struct {
	mu           sync.RWMutex
	calibrator   *calibration.Calibrator
	repos        *repository.Repositories
	builder      *features.Builder
	classifier   classifier.Client
	store        persistence.Store
	cfg          config.ModelConfig
	modelVersion string
	featureNames []string
	logger       *logrus.Logger
}

// NewPredictor creates a predictor. The calibrator is loaded lazily from
// the artifact store on first use; a refresher may swap in a fresh one.
func NewPredictor(
	repos *repository.Repositories,
	builder *features.Builder,
	cls classifier.Client,
	store persistence.Store,
	modelCfg config.ModelConfig,
	modelVersion string,
	components []string,
	logger *logrus.Logger,
) *Predictor {
	return &Predictor{
		repos:        repos,
		builder:      builder,
		classifier:   cls,
		store:        store,
		cfg:          modelCfg,
		modelVersion: modelVersion,
		featureNames: features.Names(components),
		logger:       logger,
	}
}

// SetCalibrator swaps in a freshly trained calibrator.
func (p *Predictor) SetCalibrator(c *calibration.Calibrator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calibrator = c
}

// getCalibrator returns the active calibrator, loading the persisted
// artifact on first use. A missing artifact is surfaced as
// models.ErrMissingArtifact so callers can report the service unready.
func (p *Predictor) getCalibrator() (*calibration.Calibrator, error) {
	p.mu.RLock()
	c := p.calibrator
	p.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calibrator != nil {
		return p.calibrator, nil
	}
	loaded, err := calibration.Load(p.store)
	if err != nil {
		return nil, err
	}
	p.calibrator = loaded
	return loaded, nil
}

// Predict produces a calibrated win probability for the primary fighter
// of an upcoming bout, stores it, and returns the record.
func (p *Predictor) Predict(ctx context.Context, boutID uuid.UUID) (*models.PredictionRecord, error) {
	start := time.Now()

	calibrator, err := p.getCalibrator()
	if err != nil {
		metrics.RecordPredictionError("missing_artifact")
		return nil, err
	}

	bout, err := p.repos.Bouts.GetByID(ctx, boutID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.RecordPredictionError("unknown_bout")
			return nil, fmt.Errorf("%w: unknown bout %s", models.ErrInvalidInput, boutID)
		}
		return nil, err
	}
	if bout.IsResolved() {
		metrics.RecordPredictionError("resolved_bout")
		return nil, fmt.Errorf("%w: bout %s is already resolved", models.ErrInvalidInput, boutID)
	}

	input, err := p.buildInput(ctx, bout)
	if err != nil {
		return nil, err
	}

	featureMap, err := p.builder.Build(*input)
	if err != nil {
		return nil, err
	}

	score, err := p.classifier.PredictProba(ctx, bout.ID, features.Flatten(featureMap, p.featureNames), p.modelVersion)
	if err != nil {
		metrics.RecordPredictionError("classifier")
		return nil, err
	}

	record := &models.PredictionRecord{
		ID:          uuid.New(),
		BoutID:      bout.ID,
		FighterID:   bout.FighterID,
		OpponentID:  bout.OpponentID,
		Division:    bout.Division,
		Probability: calibrator.TransformOne(score.Probability, bout.Division),
		PredictedAt: time.Now().UTC(),
	}
	record.WithBand(p.cfg.ConfidenceDelta)
	if marketProb, ok := featureMap["market_prob"]; ok && len(input.Markets) > 0 {
		record.MarketProb = &marketProb
	}

	if err := p.repos.Predictions.Upsert(ctx, record); err != nil {
		// Serving stays up even when the write-behind fails
		p.logger.WithError(err).WithField("bout_id", bout.ID).Warn("Failed to store prediction")
	}

	metrics.RecordPredictionServed(time.Since(start).Seconds())
	return record, nil
}

// buildInput gathers the fighters, recency and market context for a bout.
// Market data is optional; everything else is required.
func (p *Predictor) buildInput(ctx context.Context, bout *models.Bout) (*features.Input, error) {
	fighter, err := p.repos.Fighters.GetByID(ctx, bout.FighterID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown fighter %s", models.ErrInvalidInput, bout.FighterID)
		}
		return nil, err
	}
	opponent, err := p.repos.Fighters.GetByID(ctx, bout.OpponentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown fighter %s", models.ErrInvalidInput, bout.OpponentID)
		}
		return nil, err
	}

	input := &features.Input{
		Bout:             bout,
		Fighter:          fighter,
		Opponent:         opponent,
		FighterLastBout:  p.lastBoutTime(ctx, bout.FighterID, bout.EventDate),
		OpponentLastBout: p.lastBoutTime(ctx, bout.OpponentID, bout.EventDate),
	}

	quotes, err := p.repos.Odds.GetByBoutID(ctx, bout.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if len(quotes) > 0 {
		raw := make([]models.OddsQuote, len(quotes))
		for i, q := range quotes {
			raw[i] = *q
		}
		snapshots, err := ingestion.BuildBookSnapshots(bout.ID, raw)
		if err == nil {
			for range snapshots {
				metrics.RecordShinSolve()
			}
			input.Markets = snapshots
		} else if !errors.Is(err, models.ErrInsufficientData) {
			return nil, err
		}
	}

	return input, nil
}

func (p *Predictor) lastBoutTime(ctx context.Context, fighterID uuid.UUID, before time.Time) *time.Time {
	last, err := p.repos.Bouts.GetLastResolvedFor(ctx, fighterID, before)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			p.logger.WithError(err).WithField("fighter_id", fighterID).Warn("Failed to look up last bout")
		}
		return nil
	}
	return &last.EventDate
}
