package arena

import (
	"math"

	"golang.org/x/sync/errgroup"

	"thrustersim/atomicfloat"
	"thrustersim/heuristic"
	"thrustersim/motordata"
	"thrustersim/paramspec"
)

// DataParallel fans a step out across a fixed worker pool, each worker
// advancing a disjoint, contiguous partition of the population (spec
// section 5: "no seed mutates another's state, so no locking is
// required"). bestScore is the one piece of genuinely shared state, a
// lock-free gauge of the best score any worker observed since the last
// Reset.
type DataParallel struct {
	shared
	Workers   int
	bestScore float64
}

// NewDataParallel builds a DataParallel arena with the given worker count
// (clamped to at least 1).
func NewDataParallel(param paramspec.Parameterisation, settings Settings, rngSeed int64, workers int) *DataParallel {
	if workers < 1 {
		workers = 1
	}
	return &DataParallel{shared: newShared(param, settings, rngSeed), Workers: workers}
}

func (a *DataParallel) Reset(pointCount int, settings heuristic.Settings) {
	a.reset(pointCount, settings)
	atomicfloat.AtomicSet(&a.bestScore, math.Inf(-1))
}
func (a *DataParallel) SetHeuristic(settings heuristic.Settings) { a.setHeuristic(settings) }
func (a *DataParallel) LookupIndex(id int) (int, bool)           { return a.lookupIndex(id) }

// BestScoreObserved returns the best score any worker has recorded across
// completed Step calls, read without locking.
func (a *DataParallel) BestScoreObserved() float64 {
	return atomicfloat.AtomicRead(&a.bestScore)
}

func (a *DataParallel) Step(data *motordata.Table) []OptimizationOutput {
	n := len(a.seeds)
	if n > 0 {
		workers := a.Workers
		if workers > n {
			workers = n
		}
		chunk := (n + workers - 1) / workers

		var g errgroup.Group
		for w := 0; w < workers; w++ {
			lo := w * chunk
			hi := lo + chunk
			if hi > n {
				hi = n
			}
			if lo >= hi {
				continue
			}
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					stepOne(&a.seeds[i], a.param, data, a.settings, a.heuristicSettings)
					if !math.IsNaN(a.seeds[i].score) {
						atomicfloat.AtomicMax(&a.bestScore, a.seeds[i].score)
					}
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	outputs, ranking := rank(a.seeds)
	a.ranking = ranking
	return outputs
}
