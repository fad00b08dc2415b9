package adamstep

import (
	"testing"

	"thrustersim/numeric"

	. "github.com/smartystreets/goconvey/convey"
)

// sphereObjective scores -||point||^2, maximised at the origin, so Adam
// ascent on it should push point toward zero.
func sphereObjective(point []numeric.Dual) numeric.Dual {
	sum := numeric.Const(0)
	for _, p := range point {
		sum = sum.Add(p.Mul(p))
	}
	return sum.Neg()
}

func identityNormalise(p []float64) []float64 { return p }

func TestStepAscendsTowardTheOptimum(t *testing.T) {
	Convey("Given a state seeded away from the sphere objective's optimum", t, func() {
		state := NewState([]float64{1, 1})
		cfg := DefaultConfig()

		Convey("100 steps strictly improve the score", func() {
			_, initialScore := Step(state, cfg, sphereObjective, identityNormalise)
			for i := 0; i < 100; i++ {
				state, _ = Step(state, cfg, sphereObjective, identityNormalise)
			}
			_, finalScore := Step(state, cfg, sphereObjective, identityNormalise)
			So(finalScore.Value, ShouldBeGreaterThan, initialScore.Value)
		})
	})
}

func TestStepNormalisesAfterUpdate(t *testing.T) {
	Convey("Given a normalise callback that always returns a fixed unit vector", t, func() {
		state := NewState([]float64{5, 5})
		cfg := DefaultConfig()
		fixed := func(p []float64) []float64 { return []float64{1, 0} }

		Convey("the resulting state.Point is exactly what normalise returned", func() {
			next, _ := Step(state, cfg, sphereObjective, fixed)
			So(next.Point, ShouldResemble, []float64{1, 0})
		})
	})
}

func TestTerminationOnStationarity(t *testing.T) {
	Convey("Given a constant-gradient-free objective", t, func() {
		state := NewState([]float64{0})
		cfg := DefaultConfig()
		flat := func(point []numeric.Dual) numeric.Dual { return numeric.Const(1) }

		Convey("the first step proposes termination (zero gradient is stationary)", func() {
			next, _ := Step(state, cfg, flat, identityNormalise)
			So(next.Done, ShouldBeTrue)
		})
	})
}

func TestFrontierRefreshesOnImprovement(t *testing.T) {
	Convey("Given a state whose frontier has not yet been observed", t, func() {
		state := NewState([]float64{1})
		cfg := DefaultConfig()

		Convey("the first step sets the frontier to the initial score and time", func() {
			next, score := Step(state, cfg, sphereObjective, identityNormalise)
			So(next.FrontierScore, ShouldEqual, score.Value)
			So(next.FrontierTime, ShouldEqual, 1)
		})
	})
}
