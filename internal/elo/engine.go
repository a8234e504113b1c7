package elo

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultKBase is the baseline K-factor before age modulation.
const DefaultKBase = 24.0

type ratingKey struct {
	FighterID uuid.UUID
	Division  string
}

// Engine owns the current (fighter, division) -> vector mapping and
// applies pairwise updates. Vectors themselves are immutable; the engine
// swaps in the updated copies. Safe for concurrent readers and writers.
type Engine struct {
	mu         sync.RWMutex
	components []string
	kBase      float64
	ratings    map[ratingKey]Vector
}

// NewEngine creates an engine rating the given components. An empty
// component list falls back to the canonical discipline set.
func NewEngine(components []string, kBase float64) *Engine {
	if len(components) == 0 {
		components = DefaultComponents
	}
	if kBase <= 0 {
		kBase = DefaultKBase
	}
	return &Engine{
		components: components,
		kBase:      kBase,
		ratings:    make(map[ratingKey]Vector),
	}
}

// Vector returns the current vector for a fighter in a division,
// lazily creating a default one on first access.
func (e *Engine) Vector(fighterID uuid.UUID, division string) Vector {
	key := ratingKey{FighterID: fighterID, Division: division}

	e.mu.RLock()
	v, ok := e.ratings[key]
	e.mu.RUnlock()
	if ok {
		return v
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.ratings[key]; ok {
		return v
	}
	v = NewVector(e.components)
	e.ratings[key] = v
	return v
}

// RecordBout applies the update rule for a resolved bout. The K-factor
// is modulated by the age-curve effect difference between the fighters:
// k = kBase * (1 + effectA - effectB). The effects are supplied by the
// caller; the update rule itself is agnostic to how they were derived.
func (e *Engine) RecordBout(fighterA, fighterB uuid.UUID, division string, result, ageEffectA, ageEffectB float64) (Vector, Vector) {
	vectorA := e.Vector(fighterA, division)
	vectorB := e.Vector(fighterB, division)

	kFactor := e.kBase * (1 + ageEffectA - ageEffectB)
	newA, newB := Update(vectorA, vectorB, result, kFactor)

	e.mu.Lock()
	e.ratings[ratingKey{FighterID: fighterA, Division: division}] = newA
	e.ratings[ratingKey{FighterID: fighterB, Division: division}] = newB
	e.mu.Unlock()
	return newA, newB
}

// Snapshot returns a copy of all current vectors for persistence.
func (e *Engine) Snapshot() map[uuid.UUID]map[string]Vector {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[uuid.UUID]map[string]Vector)
	for key, v := range e.ratings {
		byDivision, ok := out[key.FighterID]
		if !ok {
			byDivision = make(map[string]Vector)
			out[key.FighterID] = byDivision
		}
		byDivision[key.Division] = v
	}
	return out
}

// Restore replaces the engine state with previously persisted vectors.
func (e *Engine) Restore(snapshot map[uuid.UUID]map[string]Vector) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ratings = make(map[ratingKey]Vector)
	for fighterID, byDivision := range snapshot {
		for division, v := range byDivision {
			e.ratings[ratingKey{FighterID: fighterID, Division: division}] = v
		}
	}
}
