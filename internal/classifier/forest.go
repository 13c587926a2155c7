package classifier

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForestConfig holds random forest hyperparameters.
type ForestConfig struct {
	NEstimators     int    `json:"n_estimators"`
	Seed            uint64 `json:"seed"`
	MaxFeatures     int    `json:"max_features,omitempty"` // 0 means sqrt(n_features)
	MaxDepth        int    `json:"max_depth,omitempty"`    // 0 means unlimited
	MinSamplesSplit int    `json:"min_samples_split,omitempty"`
	Workers         int    `json:"-"`
}

// DefaultForestConfig returns 100 trees seeded with 42.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NEstimators:     100,
		Seed:            42,
		MinSamplesSplit: 2,
	}
}

// Forest is a bagged ensemble of CART trees.
type Forest struct {
	Config    ForestConfig `json:"config"`
	NClasses  int          `json:"n_classes"`
	NFeatures int          `json:"n_features"`
	Trees     []*Tree      `json:"trees"`
}

// NewForest creates an unfitted forest.
func NewForest(cfg ForestConfig) *Forest {
	if cfg.NEstimators <= 0 {
		cfg.NEstimators = 100
	}
	return &Forest{Config: cfg}
}

// Fit trains every tree on its own bootstrap sample. Trees are built
// concurrently; tree t always uses random stream t so results do not depend
// on scheduling.
func (f *Forest) Fit(ctx context.Context, X []SparseVector, y []int, nClasses, nFeatures int) error {
	if len(X) == 0 || len(X) != len(y) {
		return &InputError{Message: fmt.Sprintf("forest needs matching non-empty inputs, got %d rows and %d labels", len(X), len(y))}
	}
	if nFeatures <= 0 {
		return &InsufficientDataError{Message: "forest needs at least one feature"}
	}

	maxFeatures := f.Config.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(nFeatures))))
	}
	maxFeatures = min(maxFeatures, nFeatures)

	workers := f.Config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*Tree, f.Config.NEstimators)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := range trees {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rng := newRand(f.Config.Seed, uint64(t)+1)
			sample := make([]int, len(X))
			for i := range sample {
				sample[i] = rng.IntN(len(X))
			}
			b := newTreeBuilder(X, y, nClasses, nFeatures, maxFeatures, f.Config.MaxDepth, f.Config.MinSamplesSplit, rng)
			trees[t] = b.build(sample)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to fit forest: %w", err)
	}

	f.NClasses = nClasses
	f.NFeatures = nFeatures
	f.Trees = trees
	return nil
}

// PredictProba averages the class distributions of all trees.
func (f *Forest) PredictProba(x SparseVector) []float64 {
	proba := make([]float64, f.NClasses)
	if len(f.Trees) == 0 {
		return proba
	}
	for _, t := range f.Trees {
		for c, p := range t.predict(x) {
			proba[c] += p
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.Trees))
	}
	return proba
}

// Predict returns the most probable class id and its probability. Ties go to
// the lowest id.
func (f *Forest) Predict(x SparseVector) (int, float64) {
	return argmax(f.PredictProba(x))
}

func argmax(values []float64) (int, float64) {
	best, bestVal := -1, math.Inf(-1)
	for i, v := range values {
		if v > bestVal {
			best, bestVal = i, v
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestVal
}
