// Package paramspec maps a flat parameter vector to a structured motor
// configuration under one of three structural priors -- fixed-geometry
// single orientation, a free symmetric half-set, or fully unconstrained --
// and back (spec section 4.F). This is the one layer the Adam step (G)
// reaches through to get a differentiable geometry.Config out of a flat
// []numeric.Dual.
package paramspec

import (
	"math"
	"math/rand"

	"thrustersim/geometry"
	"thrustersim/numeric"
)

// Parameterisation is the small contract every variant implements (spec
// section 4.F): how many scalars make up a point, how to seed a batch of
// them, how to turn a seeded point into a motor configuration, and how to
// restore the unit-norm orientation invariant after an optimiser step.
type Parameterisation interface {
	// Dim is the flat parameter vector's length.
	Dim() int

	// InitialPoints seeds n fresh parameter vectors.
	InitialPoints(n int, rng *rand.Rand) [][]float64

	// MotorConfig builds a motor configuration from a (possibly
	// AD-seeded) parameter vector; len(point) == Dim().
	MotorConfig(point []numeric.Dual) *geometry.Config

	// Normalise restores every orientation sub-vector in point to unit
	// norm in place and returns it, after a raw Adam update may have
	// pushed it off the unit sphere.
	Normalise(point []float64) []float64
}

// randomUnitVector draws a uniformly distributed point on S^2 via
// normalised Gaussian coordinates, drawn with math/rand's NormFloat64.
func randomUnitVector(rng *rand.Rand) [3]float64 {
	x, y, z := rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()
	n := x*x + y*y + z*z
	if n == 0 {
		return [3]float64{0, 0, 1}
	}
	inv := 1 / math.Sqrt(n)
	return [3]float64{x * inv, y * inv, z * inv}
}

// sqrtNorm is shared by the variants' Normalise implementations.
func sqrtNorm(v float64) float64 { return math.Sqrt(v) }
