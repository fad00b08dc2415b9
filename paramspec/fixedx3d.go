package paramspec

import (
	"math"
	"math/rand"

	"thrustersim/geometry"
	"thrustersim/numeric"
)

// reflection is one of the three mirror symmetries the 8-motor X3D layout
// is built from (spec section 4.F), grounded on the VectorTransform enum
// (ReflectXY/ReflectYZ/ReflectXZ) this was distilled from: each negates
// exactly one axis of both the seed position and the seed orientation.
type reflection int

const (
	reflectXY reflection = iota // negate Z
	reflectYZ                   // negate X
	reflectXZ                   // negate Y
)

func (r reflection) apply(v geometry.Vec3) geometry.Vec3 {
	switch r {
	case reflectXY:
		return geometry.V3(v.X, v.Y, v.Z.Neg())
	case reflectYZ:
		return geometry.V3(v.X.Neg(), v.Y, v.Z)
	default: // reflectXZ
		return geometry.V3(v.X, v.Y.Neg(), v.Z)
	}
}

// x3dLayout lists, for each of the 8 motors, the chain of reflections
// applied to the FrontRightTop seed motor to reach it. The chain's parity
// (even/odd length) also decides spin direction alternation.
var x3dLayout = []struct {
	id    geometry.MotorID
	chain []reflection
}{
	{geometry.FrontRightTop, nil},
	{geometry.FrontRightBottom, []reflection{reflectXY}},
	{geometry.FrontLeftTop, []reflection{reflectYZ}},
	{geometry.BackRightTop, []reflection{reflectXZ}},
	{geometry.FrontLeftBottom, []reflection{reflectXY, reflectYZ}},
	{geometry.BackLeftTop, []reflection{reflectYZ, reflectXZ}},
	{geometry.BackRightBottom, []reflection{reflectXZ, reflectXY}},
	{geometry.BackLeftBottom, []reflection{reflectXY, reflectYZ, reflectXZ}},
}

// FixedX3D places 8 motors at the corners of a fixed-dimension box, every
// orientation derived from a single 3-dimensional seed orientation by the
// three axis reflections (spec section 4.F). Width/Length/Height are
// construction-time constants, not optimised parameters.
type FixedX3D struct {
	Width, Length, Height float64
	CentreOfMass          geometry.Vec3
}

func (f FixedX3D) Dim() int { return 3 }

// InitialPoints seeds every point from the Fibonacci sphere (spec section
// 4.F: "Seed from the Fibonacci sphere"), ignoring rng so the sequence is
// fully deterministic given n (spec section 8 scenario S3).
func (f FixedX3D) InitialPoints(n int, rng *rand.Rand) [][]float64 {
	sphere := FibonacciSphere(n)
	out := make([][]float64, n)
	for i, v := range sphere {
		out[i] = []float64{v[0], v[1], v[2]}
	}
	return out
}

func (f FixedX3D) MotorConfig(point []numeric.Dual) *geometry.Config {
	seedOrientation := geometry.Vec3{X: point[0], Y: point[1], Z: point[2]}.Normalized()
	seedPosition := geometry.V3Const(f.Width/2, f.Length/2, f.Height/2)

	motors := make(map[geometry.MotorID]geometry.Motor, len(x3dLayout))
	for _, entry := range x3dLayout {
		position, orientation := seedPosition, seedOrientation
		for _, r := range entry.chain {
			position = r.apply(position)
			orientation = r.apply(orientation)
		}
		direction := geometry.Clockwise
		if len(entry.chain)%2 == 1 {
			direction = geometry.CounterClockwise
		}
		motors[entry.id] = geometry.Motor{Position: position, Orientation: orientation, Direction: direction}
	}

	return geometry.NewConfig(motors, f.CentreOfMass)
}

func (f FixedX3D) Normalise(point []float64) []float64 {
	x, y, z := point[0], point[1], point[2]
	n := x*x + y*y + z*z
	if n == 0 {
		return point
	}
	inv := 1 / math.Sqrt(n)
	point[0], point[1], point[2] = x*inv, y*inv, z*inv
	return point
}
