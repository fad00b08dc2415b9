package paramspec

import (
	"math"
	"math/rand"
	"testing"

	"thrustersim/numeric"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFibonacciSphere(t *testing.T) {
	Convey("Given a Fibonacci sphere of 200 points", t, func() {
		points := FibonacciSphere(200)

		Convey("every point is unit-norm within 1e-6", func() {
			for _, p := range points {
				norm := math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
				So(norm, ShouldAlmostEqual, 1, 1e-6)
			}
		})

		Convey("it is deterministic across calls", func() {
			again := FibonacciSphere(200)
			So(again, ShouldResemble, points)
		})
	})
}

func TestFixedX3DMotorConfig(t *testing.T) {
	Convey("Given a FixedX3D parameterisation and a seed orientation", t, func() {
		f := FixedX3D{Width: 0.325, Length: 0.355, Height: 0.241}
		point := numeric.FromVec([]float64{0.254, -0.571, 0.781})

		Convey("MotorConfig produces 8 motors with unit-norm orientations", func() {
			cfg := f.MotorConfig(point)
			So(len(cfg.IDs()), ShouldEqual, 8)
			for _, id := range cfg.IDs() {
				o := cfg.Motors()[id].Orientation
				norm := math.Sqrt(o.X.Value*o.X.Value + o.Y.Value*o.Y.Value + o.Z.Value*o.Z.Value)
				So(norm, ShouldAlmostEqual, 1, 1e-9)
			}
		})

		Convey("gradients flow from the seed params into every motor's orientation", func() {
			cfg := f.MotorConfig(point)
			for _, id := range cfg.IDs() {
				o := cfg.Motors()[id].Orientation
				So(o.X.Grad, ShouldNotBeNil)
			}
		})
	})
}

func TestSymmetricalHalfMirroring(t *testing.T) {
	Convey("Given a SymmetricalHalf parameterisation with k=2", t, func() {
		s := SymmetricalHalf{K: 2}
		rng := rand.New(rand.NewSource(1))
		points := s.InitialPoints(1, rng)
		So(len(points), ShouldEqual, 1)
		So(len(points[0]), ShouldEqual, 12)

		Convey("the mirrored motor's X position is the negation of its source", func() {
			dual := numeric.FromVec(points[0])
			cfg := s.MotorConfig(dual)
			for k := 0; k < 2; k++ {
				src := cfg.Motors()[0+2*k]
				mirror := cfg.Motors()[1+2*k]
				So(mirror.Position.X.Value, ShouldAlmostEqual, -src.Position.X.Value, 1e-12)
				So(mirror.Direction, ShouldNotEqual, src.Direction)
			}
		})
	})
}

func TestNormaliseRestoresUnitNorm(t *testing.T) {
	Convey("Given an Unconstrained point whose orientation block drifted off the unit sphere", t, func() {
		u := Unconstrained{N: 1}
		point := []float64{0, 0, 0, 2, 0, 0}

		Convey("Normalise rescales it back to unit norm", func() {
			out := u.Normalise(point)
			So(out[3], ShouldAlmostEqual, 1, 1e-12)
			So(out[4], ShouldAlmostEqual, 0, 1e-12)
			So(out[5], ShouldAlmostEqual, 0, 1e-12)
		})
	})
}
