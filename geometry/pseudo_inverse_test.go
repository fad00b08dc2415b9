package geometry

import (
	"testing"

	"thrustersim/numeric"

	. "github.com/smartystreets/goconvey/convey"
)

// fullRankX3DConfig builds an 8-motor configuration whose allocation matrix
// has full row rank (six independent wrench directions), the case spec
// section 8 invariant 6 is stated against.
func fullRankX3DConfig() *Config {
	type corner struct {
		id          MotorID
		position    [3]float64
		orientation [3]float64
		direction   Direction
	}
	corners := []corner{
		{FrontLeftBottom, [3]float64{-0.2, -0.15, -0.1}, [3]float64{0, 0, 1}, Clockwise},
		{FrontLeftTop, [3]float64{-0.2, 0.15, -0.1}, [3]float64{0, 0, 1}, CounterClockwise},
		{FrontRightBottom, [3]float64{0.2, -0.15, -0.1}, [3]float64{0, 0, 1}, CounterClockwise},
		{FrontRightTop, [3]float64{0.2, 0.15, -0.1}, [3]float64{0, 0, 1}, Clockwise},
		{BackLeftBottom, [3]float64{-0.2, -0.15, 0.1}, [3]float64{1, 0, 0}, Clockwise},
		{BackLeftTop, [3]float64{-0.2, 0.15, 0.1}, [3]float64{1, 0, 0}, CounterClockwise},
		{BackRightBottom, [3]float64{0.2, -0.15, 0.1}, [3]float64{0, 1, 0}, CounterClockwise},
		{BackRightTop, [3]float64{0.2, 0.15, 0.1}, [3]float64{0, 1, 0}, Clockwise},
	}

	motors := make(map[MotorID]Motor, len(corners))
	for _, c := range corners {
		motors[c.id] = Motor{
			Position:    V3Const(c.position[0], c.position[1], c.position[2]),
			Orientation: V3Const(c.orientation[0], c.orientation[1], c.orientation[2]).Normalized(),
			Direction:   c.direction,
		}
	}
	return NewConfig(motors, V3Const(0, 0, 0))
}

// svdPseudoInverseAt converts the Config's runtime Matrix to a plain
// float64 mat.Dense, inverts it independently via gonum's SVD, and returns
// it indexed the same way as Config.PseudoInverse.Data (motor id -> row of
// 6 coefficients), so it can be compared term by term against the damped
// runtime pseudo-inverse.
func svdPseudoInverseAt(cfg *Config) map[MotorID][6]float64 {
	valueMatrix := cfg.Matrix.ValueMatrix()
	inv := PseudoInverseSVD(valueMatrix)

	out := make(map[MotorID][6]float64, len(cfg.Matrix.Cols))
	for row, id := range cfg.Matrix.Cols {
		var coeffs [6]float64
		for k := 0; k < 6; k++ {
			coeffs[k] = inv.At(row, k)
		}
		out[id] = coeffs
	}
	return out
}

// TestDampedPseudoInverseMatchesSVDReference checks spec section 8
// invariant 6: for a full-rank configuration the runtime's damped,
// differentiable pseudo-inverse (Config.PseudoInverse, used by the
// allocator) agrees with the exact SVD-based reference to within 1e-6 per
// coefficient.
func TestDampedPseudoInverseMatchesSVDReference(t *testing.T) {
	Convey("Given a full-rank 8-motor X3D configuration", t, func() {
		cfg := fullRankX3DConfig()
		reference := svdPseudoInverseAt(cfg)

		Convey("the damped runtime pseudo-inverse agrees with the SVD reference", func() {
			for _, id := range cfg.IDs() {
				damped := cfg.PseudoInverse.Data[id]
				want := reference[id]
				for k := 0; k < 6; k++ {
					So(damped[k].Value, ShouldAlmostEqual, want[k], 1e-6)
				}
			}
		})
	})
}

// TestForwardReverseRoundTrip checks the other half of invariant 6: with a
// full-rank matrix, M * (M+ * w) reproduces w for an arbitrary requested
// wrench, i.e. the reverse solve's thrusts realise exactly the wrench
// asked for whenever the wrench lies in M's column space (which it does for
// any wrench once M has full row rank).
func TestForwardReverseRoundTrip(t *testing.T) {
	Convey("Given a full-rank configuration and an arbitrary target wrench", t, func() {
		cfg := fullRankX3DConfig()
		wrench := Wrench{
			Force:  V3(numeric.Const(1.5), numeric.Const(-0.5), numeric.Const(0.25)),
			Torque: V3(numeric.Const(0.1), numeric.Const(-0.2), numeric.Const(0.05)),
		}

		Convey("ReverseSolve followed by ForwardSolve recovers the wrench", func() {
			thrusts := cfg.ReverseSolve(wrench)
			recovered := cfg.ForwardSolve(thrusts)

			wantCol := wrench.Column()
			gotCol := recovered.Column()
			for k := 0; k < 6; k++ {
				So(gotCol[k].Value, ShouldAlmostEqual, wantCol[k].Value, 1e-6)
			}
		})
	})
}
