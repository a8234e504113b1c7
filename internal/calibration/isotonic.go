package calibration

import (
	"fmt"
	"sort"

	"github.com/yourusername/fightprob/internal/models"
)

type isotonicMethod struct{}

func (isotonicMethod) Name() string { return MethodIsotonic }

// IsotonicModel is a monotone non-decreasing step mapping from score to
// probability, produced by pool-adjacent-violators regression.
type IsotonicModel struct {
	Thresholds []float64 `json:"thresholds"`
	Values     []float64 `json:"values"`
}

// Fit runs weighted pool-adjacent-violators over the (score, target)
// pairs sorted by score.
func (isotonicMethod) Fit(scores []float64, targets []float64) (Fitted, error) {
	if len(scores) != len(targets) {
		return nil, fmt.Errorf("%w: scores and targets length mismatch (%d vs %d)", models.ErrInvalidInput, len(scores), len(targets))
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no samples to calibrate", models.ErrInsufficientData)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return scores[order[i]] < scores[order[j]] })

	// Each block starts as one sample; adjacent blocks that violate
	// monotonicity are pooled into their weighted mean.
	type block struct {
		value  float64
		weight float64
		xMax   float64
	}
	blocks := make([]block, 0, len(order))
	for _, idx := range order {
		blocks = append(blocks, block{value: targets[idx], weight: 1, xMax: scores[idx]})
		for len(blocks) > 1 {
			last := len(blocks) - 1
			if blocks[last-1].value <= blocks[last].value {
				break
			}
			merged := block{
				value:  (blocks[last-1].value*blocks[last-1].weight + blocks[last].value*blocks[last].weight) / (blocks[last-1].weight + blocks[last].weight),
				weight: blocks[last-1].weight + blocks[last].weight,
				xMax:   blocks[last].xMax,
			}
			blocks = blocks[:last-1]
			blocks = append(blocks, merged)
		}
	}

	model := &IsotonicModel{
		Thresholds: make([]float64, len(blocks)),
		Values:     make([]float64, len(blocks)),
	}
	for i, b := range blocks {
		model.Thresholds[i] = b.xMax
		model.Values[i] = b.value
	}
	return model, nil
}

// Apply evaluates the step function, clipping scores outside the fitted
// range to the nearest boundary value.
func (m *IsotonicModel) Apply(score float64) float64 {
	if len(m.Thresholds) == 0 {
		return 0.5
	}
	if score <= m.Thresholds[0] {
		return m.Values[0]
	}
	last := len(m.Thresholds) - 1
	if score >= m.Thresholds[last] {
		return m.Values[last]
	}
	idx := sort.SearchFloat64s(m.Thresholds, score)
	return m.Values[idx]
}
