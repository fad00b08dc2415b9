package paramspec

import (
	"math/rand"

	"thrustersim/geometry"
	"thrustersim/numeric"
)

// unconstrainedSeedBox bounds the small box new unconstrained seeds are
// drawn from, matching the symmetrical-half seeding convention (spec
// section 4.F is silent on this variant's seed distribution; recorded as a
// resolved open question in DESIGN.md).
const unconstrainedSeedBox = 0.3

// Unconstrained frees all n motors independently: no symmetry, no
// mirroring (spec section 4.F). Spin direction alternates by motor index
// parity, the same convention FixedX3D uses for its reflection parity.
type Unconstrained struct {
	N            int
	CentreOfMass geometry.Vec3
}

func (u Unconstrained) Dim() int { return 6 * u.N }

func (u Unconstrained) InitialPoints(n int, rng *rand.Rand) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		point := make([]float64, u.Dim())
		for m := 0; m < u.N; m++ {
			base := 6 * m
			point[base+0] = (rng.Float64()*2 - 1) * unconstrainedSeedBox
			point[base+1] = (rng.Float64()*2 - 1) * unconstrainedSeedBox
			point[base+2] = (rng.Float64()*2 - 1) * unconstrainedSeedBox
			o := randomUnitVector(rng)
			point[base+3], point[base+4], point[base+5] = o[0], o[1], o[2]
		}
		out[i] = point
	}
	return out
}

func (u Unconstrained) MotorConfig(point []numeric.Dual) *geometry.Config {
	motors := make(map[geometry.MotorID]geometry.Motor, u.N)
	for m := 0; m < u.N; m++ {
		base := 6 * m
		position := geometry.Vec3{X: point[base+0], Y: point[base+1], Z: point[base+2]}
		orientation := geometry.Vec3{X: point[base+3], Y: point[base+4], Z: point[base+5]}.Normalized()
		direction := geometry.Clockwise
		if m%2 == 1 {
			direction = geometry.CounterClockwise
		}
		motors[geometry.MotorID(m)] = geometry.Motor{Position: position, Orientation: orientation, Direction: direction}
	}
	return geometry.NewConfig(motors, u.CentreOfMass)
}

func (u Unconstrained) Normalise(point []float64) []float64 {
	for m := 0; m < u.N; m++ {
		base := 6 * m
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
