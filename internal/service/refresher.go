package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/agecurve"
	"github.com/yourusername/fightprob/internal/calibration"
	"github.com/yourusername/fightprob/internal/classifier"
	"github.com/yourusername/fightprob/internal/config"
	"github.com/yourusername/fightprob/internal/elo"
	"github.com/yourusername/fightprob/internal/features"
	"github.com/yourusername/fightprob/internal/metrics"
	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/persistence"
	"github.com/yourusername/fightprob/internal/repository"
)

// Refresher rebuilds the model state from resolved bouts: age curves are
// refit per division, ratings are replayed chronologically, and the
// calibrator is retrained on pre-fight classifier scores against outcomes.
type Refresher struct {
	repos        *repository.Repositories
	engine       *elo.Engine
	ages         *agecurve.Registry
	classifier   classifier.Client
	predictor    *Predictor
	store        persistence.Store
	modelCfg     config.ModelConfig
	eloCfg       config.EloConfig
	modelVersion string
	logger       *logrus.Logger
}

// NewRefresher creates a refresher that feeds the given predictor and
// shared rating engine.
func NewRefresher(
	repos *repository.Repositories,
	engine *elo.Engine,
	ages *agecurve.Registry,
	cls classifier.Client,
	predictor *Predictor,
	store persistence.Store,
	modelCfg config.ModelConfig,
	eloCfg config.EloConfig,
	modelVersion string,
	logger *logrus.Logger,
) *Refresher {
	return &Refresher{
		repos:        repos,
		engine:       engine,
		ages:         ages,
		classifier:   cls,
		predictor:    predictor,
		store:        store,
		modelCfg:     modelCfg,
		eloCfg:       eloCfg,
		modelVersion: modelVersion,
		logger:       logger,
	}
}

// Run executes a full refresh. On success the shared engine holds the
// replayed ratings and the predictor the retrained calibrator; failures
// leave the previous state serving.
func (r *Refresher) Run(ctx context.Context) error {
	start := time.Now()
	r.logger.Info("Starting model refresh")

	if err := r.refitAgeCurves(); err != nil {
		return fmt.Errorf("age curve refit failed: %w", err)
	}

	// Replay scores must come from the scratch engine's features, not
	// from entries cached against the currently published ratings.
	if cached, ok := r.classifier.(*classifier.CachedClient); ok {
		cached.ClearCache()
	}

	samples, scratch, err := r.replay(ctx)
	if err != nil {
		return fmt.Errorf("rating replay failed: %w", err)
	}

	calibrator, err := calibration.Train(
		samples.scores, samples.targets, samples.divisions,
		r.modelCfg.CalibrationMethod, r.modelCfg.CalibrationMinSamples,
	)
	if err != nil {
		return fmt.Errorf("calibration training failed: %w", err)
	}
	if err := calibrator.Save(r.store); err != nil {
		return fmt.Errorf("calibration persist failed: %w", err)
	}
	for division := range calibrator.Models {
		metrics.RecordCalibrationFit(division)
	}

	// Publish the new state only after every stage has succeeded
	snapshot := scratch.Snapshot()
	r.engine.Restore(snapshot)
	r.predictor.SetCalibrator(calibrator)
	metrics.RatedFighters.Set(float64(len(snapshot)))

	if cached, ok := r.classifier.(*classifier.CachedClient); ok {
		cached.ClearCache()
	}

	elapsed := time.Since(start)
	metrics.RecordRefresh(elapsed.Seconds(), float64(time.Now().Unix()))
	r.logger.WithFields(logrus.Fields{
		"duration":       elapsed,
		"samples":        len(samples.scores),
		"rated_fighters": len(snapshot),
	}).Info("Model refresh complete")
	return nil
}

func (r *Refresher) refitAgeCurves() error {
	for _, division := range models.Divisions {
		if _, err := r.ages.Refit(division); err != nil {
			return fmt.Errorf("division %s: %w", division, err)
		}
	}
	metrics.AgeCurvesLoaded.Set(float64(len(models.Divisions)))
	return nil
}

// calibrationSamples collects (raw score, outcome, division) triples.
type calibrationSamples struct {
	scores    []float64
	targets   []float64
	divisions []string
}

// replay walks all resolved bouts in chronological order through a
// scratch engine, scoring each bout with pre-fight ratings before
// applying its result.
func (r *Refresher) replay(ctx context.Context) (*calibrationSamples, *elo.Engine, error) {
	bouts, err := r.repos.Bouts.GetResolvedSince(ctx, time.Time{})
	if err != nil {
		return nil, nil, err
	}

	scratch := elo.NewEngine(r.eloCfg.Components, r.eloCfg.KBase)
	builder := features.NewBuilder(scratch, r.ages, r.logger)
	names := features.Names(r.eloCfg.Components)

	samples := &calibrationSamples{}
	lastSeen := make(map[uuid.UUID]time.Time)
	skipped := 0

	for _, bout := range bouts {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		fighter, opponent, err := r.lookupFighters(ctx, bout)
		if err != nil {
			skipped++
			continue
		}

		input := features.Input{
			Bout:             bout,
			Fighter:          fighter,
			Opponent:         opponent,
			FighterLastBout:  seenAt(lastSeen, bout.FighterID),
			OpponentLastBout: seenAt(lastSeen, bout.OpponentID),
		}

		featureMap, err := builder.Build(input)
		if err != nil {
			return nil, nil, err
		}

		score, err := r.classifier.PredictProba(ctx, bout.ID, features.Flatten(featureMap, names), r.modelVersion)
		if err != nil {
			return nil, nil, err
		}
		samples.scores = append(samples.scores, score.Probability)
		samples.targets = append(samples.targets, bout.Result())
		samples.divisions = append(samples.divisions, bout.Division)

		scratch.RecordBout(
			bout.FighterID, bout.OpponentID, bout.Division, bout.Result(),
			featureMap["fighter_age_effect"], featureMap["opponent_age_effect"],
		)
		metrics.BoutsReplayedTotal.Inc()

		lastSeen[bout.FighterID] = bout.EventDate
		lastSeen[bout.OpponentID] = bout.EventDate
	}

	if skipped > 0 {
		r.logger.WithField("skipped", skipped).Warn("Skipped bouts with missing fighter records during replay")
	}
	if len(samples.scores) == 0 {
		return nil, nil, fmt.Errorf("%w: no resolved bouts to replay", models.ErrInsufficientData)
	}
	return samples, scratch, nil
}

func (r *Refresher) lookupFighters(ctx context.Context, bout *models.Bout) (*models.Fighter, *models.Fighter, error) {
	fighter, err := r.repos.Fighters.GetByID(ctx, bout.FighterID)
	if err != nil {
		return nil, nil, err
	}
	opponent, err := r.repos.Fighters.GetByID(ctx, bout.OpponentID)
	if err != nil {
		return nil, nil, err
	}
	return fighter, opponent, nil
}

func seenAt(lastSeen map[uuid.UUID]time.Time, fighterID uuid.UUID) *time.Time {
	if t, ok := lastSeen[fighterID]; ok {
		return &t
	}
	return nil
}

// AgeHistoryProvider builds age-curve fitting buckets from resolved
// bouts: each bout contributes both corners' (age, won) observations.
func AgeHistoryProvider(bouts repository.BoutRepository, fighters repository.FighterRepository) agecurve.HistoryProviderFunc {
	return func(division string) ([]agecurve.Bucket, error) {
		ctx := context.Background()
		resolved, err := bouts.GetResolvedByDivision(ctx, division)
		if err != nil {
			return nil, err
		}

		ages := make([]float64, 0, 2*len(resolved))
		won := make([]bool, 0, 2*len(resolved))
		for _, bout := range resolved {
			fighter, err := fighters.GetByID(ctx, bout.FighterID)
			if err != nil {
				continue
			}
			opponent, err := fighters.GetByID(ctx, bout.OpponentID)
			if err != nil {
				continue
			}
			if fighter.DateOfBirth != nil {
				ages = append(ages, fighter.AgeAt(bout.EventDate, 0))
				won = append(won, bout.Result() == 1.0)
			}
			if opponent.DateOfBirth != nil {
				ages = append(ages, opponent.AgeAt(bout.EventDate, 0))
				won = append(won, bout.Result() == 0.0)
			}
		}
		if len(ages) == 0 {
			return nil, models.ErrInsufficientData
		}
		return agecurve.BucketOutcomes(ages, won)
	}
}
