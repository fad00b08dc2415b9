package arena

import (
	"thrustersim/heuristic"
	"thrustersim/motordata"
	"thrustersim/paramspec"
)

// Serial advances every seed on the calling goroutine, in population
// order (spec section 4.H / 5: the reference, single-threaded stepper
// scenario S4 compares the data-parallel arena against).
type Serial struct {
	shared
}

// NewSerial builds a Serial arena for the given parameterisation, seeded
// deterministically from rngSeed (spec section 8 scenario S3).
func NewSerial(param paramspec.Parameterisation, settings Settings, rngSeed int64) *Serial {
	return &Serial{shared: newShared(param, settings, rngSeed)}
}

func (a *Serial) Reset(pointCount int, settings heuristic.Settings) { a.reset(pointCount, settings) }
func (a *Serial) SetHeuristic(settings heuristic.Settings)          { a.setHeuristic(settings) }
func (a *Serial) LookupIndex(id int) (int, bool)                    { return a.lookupIndex(id) }

func (a *Serial) Step(data *motordata.Table) []OptimizationOutput {
	for i := range a.seeds {
		stepOne(&a.seeds[i], a.param, data, a.settings, a.heuristicSettings)
	}
	outputs, ranking := rank(a.seeds)
	a.ranking = ranking
	return outputs
}
