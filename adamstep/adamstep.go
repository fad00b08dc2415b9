// Package adamstep implements the single first-order ascent step every
// optimisation seed takes each round (spec section 4.G): one forward-mode
// AD pass over the flat parameter vector, an Adam moment update, orientation
// renormalisation, and the stagnation/termination bookkeeping the arena
// consults to decide whether a seed keeps running.
package adamstep

import (
	"math"

	"thrustersim/numeric"
)

// Config holds Adam's hyperparameters plus the two stagnation/termination
// knobs from spec section 4.G, all at their documented defaults.
type Config struct {
	Beta1    float64
	Beta2    float64
	Epsilon  float64
	StepSize float64

	// FrontierRatioThreshold is the multiple of the best score observed
	// so far a new score must exceed to refresh the frontier.
	FrontierRatioThreshold float64
	// FrontierTimeLimit is how many steps a seed may go without refreshing
	// its frontier before termination is proposed.
	FrontierTimeLimit int
	// CriticalPointEpsilon is the gradient-norm stationarity threshold:
	// termination is proposed when the squared gradient norm falls below
	// its square.
	CriticalPointEpsilon float64
}

// DefaultConfig returns the reference values from spec section 4.G / 6.
func DefaultConfig() Config {
	return Config{
		Beta1:    0.9,
		Beta2:    0.999,
		Epsilon:  1e-10,
		StepSize: 0.01,

		FrontierRatioThreshold: 1.01,
		FrontierTimeLimit:      25,
		CriticalPointEpsilon:   0.1,
	}
}

// State is one optimisation seed's mutable Adam state (spec section 3):
// the flat parameter vector, the running first/second moments (same
// shape), the step counter, the frontier (best score observed and the
// time it was observed), and whether termination has been proposed.
type State struct {
	Point        []float64
	FirstMoment  []float64
	SecondMoment []float64
	Time         int

	FrontierScore float64
	FrontierTime  int

	Done bool
}

// NewState seeds a fresh Adam state for point: zero moments, time 0, an
// unobserved (-Inf) frontier, and not done.
func NewState(point []float64) State {
	dim := len(point)
	return State{
		Point:         append([]float64(nil), point...),
		FirstMoment:   make([]float64, dim),
		SecondMoment:  make([]float64, dim),
		Time:          0,
		FrontierScore: math.Inf(-1),
		FrontierTime:  0,
		Done:          false,
	}
}

// Step performs one Adam update of state against objective -- the closure
// composing score(config(point)) the caller (the arena, via a
// parameterisation and heuristic) assembles (spec section 4.G step 1). It:
//
//  1. seeds a single dual-number pass over state.Point via objective,
//  2. updates the biased moments and applies bias correction,
//  3. ascends state.Point by the corrected step,
//  4. calls normalise to restore any orientation sub-vectors to unit norm,
//  5. refreshes the frontier if the new score clears the ratio threshold,
//  6. proposes termination if the gradient is near-stationary or the
//     frontier has gone stale past FrontierTimeLimit.
//
// Returns the updated state and the score observed before the step (the
// value callers record against this time step).
func Step(state State, cfg Config, objective func([]numeric.Dual) numeric.Dual, normalise func([]float64) []float64) (State, numeric.Dual) {
	dualPoint := numeric.FromVec(state.Point)
	score := objective(dualPoint)

	grad := score.Grad
	if grad == nil {
		grad = make([]float64, len(state.Point))
	}

	state.Time++
	t := float64(state.Time)
	biasCorrect1 := 1 - math.Pow(cfg.Beta1, t)
	biasCorrect2 := 1 - math.Pow(cfg.Beta2, t)

	next := make([]float64, len(state.Point))
	for i, g := range grad {
		m := cfg.Beta1*state.FirstMoment[i] + (1-cfg.Beta1)*g
		v := cfg.Beta2*state.SecondMoment[i] + (1-cfg.Beta2)*g*g
		state.FirstMoment[i] = m
		state.SecondMoment[i] = v

		mHat := m / biasCorrect1
		vHat := v / biasCorrect2

		// Ascend: the objective is a score to maximise, not a loss to
		// minimise (spec section 4.G: "First-order ascent").
		next[i] = state.Point[i] + cfg.StepSize*mHat/(math.Sqrt(vHat)+cfg.Epsilon)
	}

	state.Point = normalise(next)

	if score.Value > state.FrontierScore*cfg.FrontierRatioThreshold {
		state.FrontierScore = score.Value
		state.FrontierTime = state.Time
	}

	gradNormSquared := 0.0
	for _, g := range grad {
		gradNormSquared += g * g
	}
	stationary := gradNormSquared < cfg.CriticalPointEpsilon*cfg.CriticalPointEpsilon
	stale := state.Time-state.FrontierTime > cfg.FrontierTimeLimit
	if stationary || stale {
		state.Done = true
	}

	return state, score
}
