// Package features assembles the model input vector for a bout from
// ratings, age curves and market prices.
package features

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/fightprob/internal/agecurve"
	"github.com/yourusername/fightprob/internal/elo"
	"github.com/yourusername/fightprob/internal/models"
)

const (
	// DefaultActivityGapDays is used when a fighter has no prior bout on record.
	DefaultActivityGapDays = 365.0
	// DefaultMarketProb is used when no market snapshot is available.
	DefaultMarketProb = 0.5
)

// Input carries everything needed to build features for one bout.
// Market snapshots are optional and may span multiple sportsbooks.
type Input struct {
	Bout             *models.Bout
	Fighter          *models.Fighter
	Opponent         *models.Fighter
	FighterLastBout  *time.Time
	OpponentLastBout *time.Time
	Markets          []*models.MarketSnapshot
}

// Builder turns bout inputs into named feature maps with a stable ordering.
type Builder struct {
	engine *elo.Engine
	ages   *agecurve.Registry
	logger *logrus.Logger
}

// NewBuilder creates a feature builder over the given rating engine and
// age-curve registry.
func NewBuilder(engine *elo.Engine, ages *agecurve.Registry, logger *logrus.Logger) *Builder {
	return &Builder{engine: engine, ages: ages, logger: logger}
}

// Names returns the canonical feature ordering for the given rating
// components. The classifier depends on this ordering being stable.
func Names(components []string) []string {
	names := make([]string, 0, 2*len(components)+10)
	for _, c := range components {
		names = append(names, "fighter_"+c)
	}
	for _, c := range components {
		names = append(names, "opponent_"+c)
	}
	names = append(names,
		"fighter_age", "opponent_age",
		"fighter_age_effect", "opponent_age_effect", "age_diff",
		"fighter_activity_gap_days", "opponent_activity_gap_days",
		"scheduled_rounds", "is_main_event", "market_prob",
	)
	return names
}

// Build computes the feature map for a bout. Missing optional inputs
// fall back to neutral values rather than failing the prediction.
func (b *Builder) Build(in Input) (map[string]float64, error) {
	if in.Bout == nil || in.Fighter == nil || in.Opponent == nil {
		return nil, fmt.Errorf("%w: bout and both fighters are required", models.ErrInvalidInput)
	}
	if in.Fighter.ID != in.Bout.FighterID || in.Opponent.ID != in.Bout.OpponentID {
		return nil, fmt.Errorf("%w: fighters do not match bout", models.ErrInvalidInput)
	}

	division := in.Bout.Division
	anchor := agecurve.Anchor(division)

	fighterVec := b.engine.Vector(in.Fighter.ID, division)
	opponentVec := b.engine.Vector(in.Opponent.ID, division)

	features := make(map[string]float64, 2*len(fighterVec.Components)+10)
	for i, c := range fighterVec.Components {
		features["fighter_"+c] = fighterVec.Ratings[i]
	}
	for i, c := range opponentVec.Components {
		features["opponent_"+c] = opponentVec.Ratings[i]
	}

	fighterAge := in.Fighter.AgeAt(in.Bout.EventDate, anchor)
	opponentAge := in.Opponent.AgeAt(in.Bout.EventDate, anchor)
	features["fighter_age"] = fighterAge
	features["opponent_age"] = opponentAge
	features["age_diff"] = fighterAge - opponentAge

	fighterEffect, err := b.ages.Effect(division, fighterAge)
	if err != nil {
		return nil, fmt.Errorf("age effect for fighter: %w", err)
	}
	opponentEffect, err := b.ages.Effect(division, opponentAge)
	if err != nil {
		return nil, fmt.Errorf("age effect for opponent: %w", err)
	}
	features["fighter_age_effect"] = fighterEffect
	features["opponent_age_effect"] = opponentEffect

	features["fighter_activity_gap_days"] = activityGapDays(in.FighterLastBout, in.Bout.EventDate)
	features["opponent_activity_gap_days"] = activityGapDays(in.OpponentLastBout, in.Bout.EventDate)

	features["scheduled_rounds"] = float64(in.Bout.ScheduledRounds)
	if in.Bout.IsMainEvent() {
		features["is_main_event"] = 1
	} else {
		features["is_main_event"] = 0
	}

	features["market_prob"] = marketProb(in.Markets, in.Bout.FighterID)

	return features, nil
}

// Flatten orders a feature map into a slice following the given names.
// Absent names are zero-filled so the vector width never varies.
func Flatten(features map[string]float64, names []string) []float64 {
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = features[name]
	}
	return values
}

func activityGapDays(last *time.Time, eventDate time.Time) float64 {
	if last == nil {
		return DefaultActivityGapDays
	}
	gap := eventDate.Sub(*last).Hours() / 24
	if gap < 0 {
		return 0
	}
	return gap
}

// marketProb takes the median of the fighter's Shin fair prices across
// the available snapshots. Prices are already de-vigorized upstream.
func marketProb(markets []*models.MarketSnapshot, fighterID uuid.UUID) float64 {
	fair := make([]float64, 0, len(markets))
	for _, m := range markets {
		if m == nil {
			continue
		}
		for i, id := range m.FighterIDs {
			if id == fighterID && i < len(m.Fair) {
				fair = append(fair, m.Fair[i])
			}
		}
	}
	if len(fair) == 0 {
		return DefaultMarketProb
	}
	sort.Float64s(fair)
	mid := len(fair) / 2
	if len(fair)%2 == 1 {
		return fair[mid]
	}
	return (fair[mid-1] + fair[mid]) / 2
}
