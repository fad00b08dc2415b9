package paramspec

import (
	"math/rand"

	"thrustersim/geometry"
	"thrustersim/numeric"
)

// symmetricalHalfSeedBox bounds the small box new symmetrical-half seeds
// are drawn from (spec section 4.F: "Seed uniformly in a small box").
const symmetricalHalfSeedBox = 0.3

// SymmetricalHalf frees k motors in the +X half-space (position and
// orientation, 6 scalars each); the opposite half is produced by
// mirroring every free motor through reflectYZ (spec section 4.F).
// Mirrored motors spin opposite their source motor, the conventional way
// to cancel the net reaction torque of a symmetric thruster pair -- an
// assumption the spec and original source leave implicit, recorded here
// and in DESIGN.md.
type SymmetricalHalf struct {
	K            int
	CentreOfMass geometry.Vec3
}

func (s SymmetricalHalf) Dim() int { return 6 * s.K }

func (s SymmetricalHalf) InitialPoints(n int, rng *rand.Rand) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		point := make([]float64, s.Dim())
		for k := 0; k < s.K; k++ {
			base := 6 * k
			point[base+0] = rng.Float64() * symmetricalHalfSeedBox        // x in +X half
			point[base+1] = (rng.Float64()*2 - 1) * symmetricalHalfSeedBox // y
			point[base+2] = (rng.Float64()*2 - 1) * symmetricalHalfSeedBox // z
			o := randomUnitVector(rng)
			point[base+3], point[base+4], point[base+5] = o[0], o[1], o[2]
		}
		out[i] = point
	}
	return out
}

func (s SymmetricalHalf) MotorConfig(point []numeric.Dual) *geometry.Config {
	motors := make(map[geometry.MotorID]geometry.Motor, 2*s.K)
	for k := 0; k < s.K; k++ {
		base := 6 * k
		position := geometry.Vec3{X: point[base+0], Y: point[base+1], Z: point[base+2]}
		orientation := geometry.Vec3{X: point[base+3], Y: point[base+4], Z: point[base+5]}.Normalized()

		primaryDir := geometry.Clockwise
		if k%2 == 1 {
			primaryDir = geometry.CounterClockwise
		}
		mirrorDir := geometry.CounterClockwise
		if primaryDir == geometry.CounterClockwise {
			mirrorDir = geometry.Clockwise
		}

		motors[geometry.MotorID(2*k)] = geometry.Motor{Position: position, Orientation: orientation, Direction: primaryDir}
		motors[geometry.MotorID(2*k+1)] = geometry.Motor{
			Position:    reflectYZ.apply(position),
			Orientation: reflectYZ.apply(orientation),
			Direction:   mirrorDir,
		}
	}
	return geometry.NewConfig(motors, s.CentreOfMass)
}

// Normalise restores each motor block's 3-vector orientation sub-vector to
// unit norm; position components pass through untouched.
func (s SymmetricalHalf) Normalise(point []float64) []float64 {
	for k := 0; k < s.K; k++ {
		base := 6 * k
		x, y, z := point[base+3], point[base+4], point[base+5]
		n := x*x + y*y + z*z
		if n == 0 {
			continue
		}
		inv := 1 / sqrtNorm(n)
		point[base+3], point[base+4], point[base+5] = x*inv, y*inv, z*inv
	}
	return point
}
