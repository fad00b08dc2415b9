// Package arena owns a population of optimisation seeds and steps them,
// serially or data-parallel, tracking per-seed stagnation and emitting the
// top-ranked configurations each round (spec section 4.H).
package arena

import (
	"math"
	"math/rand"
	"sort"

	"thrustersim/adamstep"
	"thrustersim/allocator"
	"thrustersim/geometry"
	"thrustersim/heuristic"
	"thrustersim/motordata"
	"thrustersim/numeric"
	"thrustersim/paramspec"
)

// MotorPose is the erased-id materialisation of one motor in a
// configuration: plain position/orientation/direction, no dependency on
// whether the owning parameterisation used named X3D ids or opaque
// integers (spec section 4.H: "OptimizationOutput ... motor configuration
// (erased-id form)").
type MotorPose struct {
	Position    [3]float64
	Orientation [3]float64
	Direction   geometry.Direction
}

func erase(cfg *geometry.Config) []MotorPose {
	motors := cfg.Motors()
	ids := cfg.IDs()
	out := make([]MotorPose, len(ids))
	for i, id := range ids {
		m := motors[id]
		px, py, pz := m.Position.Values()
		ox, oy, oz := m.Orientation.Values()
		out[i] = MotorPose{
			Position:    [3]float64{px, py, pz},
			Orientation: [3]float64{ox, oy, oz},
			Direction:   m.Direction,
		}
	}
	return out
}

// OptimizationOutput is one ranked seed's externally visible state after a
// step (spec section 4.H).
type OptimizationOutput struct {
	Index         int
	ID            int
	ScaledScore   float64
	MotorConfig   []MotorPose
	RawParameters []float64
	Unscaled      heuristic.Terms
	Scaled        heuristic.Terms
}

// seed is one population member's full internal state.
type seed struct {
	id        int
	state     adamstep.State
	score     float64
	unscaled  heuristic.Terms
	scaled    heuristic.Terms
	config    *geometry.Config
	validRank bool // false for a seed whose last evaluation produced NaN
}

// Arena is the small contract spec section 4.H describes.
type Arena interface {
	Reset(pointCount int, settings heuristic.Settings)
	SetHeuristic(settings heuristic.Settings)
	Step(data *motordata.Table) []OptimizationOutput
	LookupIndex(id int) (int, bool)
}

// Settings bundles the knobs shared by both arena implementations.
type Settings struct {
	Allocator allocator.Settings
	Adam      adamstep.Config
}

func DefaultSettings() Settings {
	return Settings{Allocator: allocator.DefaultSettings(), Adam: adamstep.DefaultConfig()}
}

// shared holds the state and logic common to both the serial and
// data-parallel arenas; each embeds it and supplies its own Step.
type shared struct {
	param             paramspec.Parameterisation
	settings          Settings
	heuristicSettings heuristic.Settings
	rng               *rand.Rand

	seeds   []seed
	nextID  int
	ranking map[int]int
}

func newShared(param paramspec.Parameterisation, settings Settings, rngSeed int64) shared {
	return shared{
		param:   param,
		settings: settings,
		rng:     rand.New(rand.NewSource(rngSeed)),
		ranking: make(map[int]int),
	}
}

func (s *shared) reset(pointCount int, heuristicSettings heuristic.Settings) {
	points := s.param.InitialPoints(pointCount, s.rng)
	s.seeds = make([]seed, pointCount)
	for i, p := range points {
		s.seeds[i] = seed{id: s.nextID, state: adamstep.NewState(p), score: math.Inf(-1)}
		s.nextID++
	}
	s.heuristicSettings = heuristicSettings
	s.ranking = make(map[int]int)
}

func (s *shared) setHeuristic(settings heuristic.Settings) {
	s.heuristicSettings = settings
}

func (s *shared) lookupIndex(id int) (int, bool) {
	idx, ok := s.ranking[id]
	return idx, ok
}

// stepOne advances a single non-done seed by one Adam step, capturing the
// motor configuration and score breakdown the AD pass computed along the
// way (spec section 4.G / 4.H).
func stepOne(sd *seed, param paramspec.Parameterisation, data *motordata.Table, settings Settings, heuristicSettings heuristic.Settings) {
	if sd.state.Done {
		sd.validRank = !math.IsNaN(sd.score)
		return
	}

	var lastBreakdown heuristic.Breakdown
	var lastConfig *geometry.Config

	objective := func(point []numeric.Dual) numeric.Dual {
		cfg := param.MotorConfig(point)
		pv := allocator.AxisMaxima(cfg, data, settings.Allocator)
		lastBreakdown = heuristic.Score(pv, cfg, heuristicSettings)
		lastConfig = cfg
		return lastBreakdown.Total
	}

	next, score := adamstep.Step(sd.state, settings.Adam, objective, param.Normalise)

	sd.state = next
	sd.score = score.Value
	sd.unscaled = lastBreakdown.Unscaled
	sd.scaled = lastBreakdown.Scaled
	sd.config = lastConfig
	sd.validRank = !score.IsNaN()
}

// rank stable-sorts seeds by score descending, silently excluding any
// whose last evaluation produced NaN (spec section 4.H step semantics;
// NaN seeds remain in the population -- they may recover after a
// heuristic swap -- but never appear in a ranked output), and returns the
// ranked OptimizationOutput slice plus the id->index map to install.
func rank(seeds []seed) ([]OptimizationOutput, map[int]int) {
	ranked := make([]seed, 0, len(seeds))
	for _, sd := range seeds {
		if sd.validRank {
			ranked = append(ranked, sd)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	outputs := make([]OptimizationOutput, len(ranked))
	ranking := make(map[int]int, len(ranked))
	for i, sd := range ranked {
		var pose []MotorPose
		if sd.config != nil {
			pose = erase(sd.config)
		}
		outputs[i] = OptimizationOutput{
			Index:         i,
			ID:            sd.id,
			ScaledScore:   sd.score,
			MotorConfig:   pose,
			RawParameters: append([]float64(nil), sd.state.Point...),
			Unscaled:      sd.unscaled,
			Scaled:        sd.scaled,
		}
		ranking[sd.id] = i
	}
	return outputs, ranking
}
