package agecurve

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/fightprob/internal/models"
	"github.com/yourusername/fightprob/internal/persistence"
)

// HistoryProvider supplies bucketed age/outcome aggregates for a division.
// An empty slice (or models.ErrInsufficientData) triggers the synthetic
// fallback curve.
type HistoryProvider interface {
	AgeOutcomes(division string) ([]Bucket, error)
}

// HistoryProviderFunc adapts a function to the HistoryProvider interface.
type HistoryProviderFunc func(division string) ([]Bucket, error)

// AgeOutcomes implements HistoryProvider.
func (f HistoryProviderFunc) AgeOutcomes(division string) ([]Bucket, error) {
	return f(division)
}

// Registry owns the fitted age-curve models: one artifact per division,
// loaded once and cached for the process lifetime. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	cache   map[string]*Model
	store   persistence.Store
	history HistoryProvider
	logger  *logrus.Logger
}

// NewRegistry creates a registry backed by the given artifact store.
// history may be nil, in which case every division falls back to the
// synthetic anchor curve.
func NewRegistry(store persistence.Store, history HistoryProvider, logger *logrus.Logger) *Registry {
	return &Registry{
		cache:   make(map[string]*Model),
		store:   store,
		history: history,
		logger:  logger,
	}
}

func artifactName(division string) string {
	return fmt.Sprintf("age_curves/%s", division)
}

// GetOrFit returns the model for a division, loading the persisted
// artifact when present and fitting (then persisting) otherwise.
func (r *Registry) GetOrFit(division string) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if model, ok := r.cache[division]; ok {
		return model, nil
	}

	model := &Model{}
	err := r.store.Load(artifactName(division), model)
	if err == nil && len(model.Coefficients) > 0 {
		r.cache[division] = model
		return model, nil
	}
	if err != nil && !errors.Is(err, models.ErrMissingArtifact) {
		return nil, err
	}

	model, err = r.fit(division)
	if err != nil {
		return nil, err
	}
	if err := r.store.Save(artifactName(division), model); err != nil {
		return nil, err
	}
	r.cache[division] = model
	return model, nil
}

func (r *Registry) fit(division string) (*Model, error) {
	if r.history != nil {
		buckets, err := r.history.AgeOutcomes(division)
		if err != nil && !errors.Is(err, models.ErrInsufficientData) {
			return nil, err
		}
		if len(buckets) > 0 {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"division": division, "buckets": len(buckets)}).
					Info("Fitting age curve from history")
			}
			return Fit(division, buckets)
		}
	}
	if r.logger != nil {
		r.logger.WithField("division", division).Info("No age history, fitting synthetic anchor curve")
	}
	return FitSynthetic(division)
}

// Refit fits a fresh model for a division from current history,
// overwriting any persisted artifact. Used by the scheduled refresh.
func (r *Registry) Refit(division string) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	model, err := r.fit(division)
	if err != nil {
		return nil, err
	}
	if err := r.store.Save(artifactName(division), model); err != nil {
		return nil, err
	}
	r.cache[division] = model
	return model, nil
}

// Effect evaluates the age effect for a division, fitting on first use.
func (r *Registry) Effect(division string, age float64) (float64, error) {
	model, err := r.GetOrFit(division)
	if err != nil {
		return 0, err
	}
	return model.Effect(age), nil
}

// Clear drops all cached models. Intended for tests.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*Model)
}
