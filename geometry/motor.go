// Package geometry builds the 6xN motor allocation matrix and its
// pseudo-inverse from a set of motor positions/orientations (spec section
// 4.B), and provides the forward/reverse solves the allocator drives.
package geometry

import "thrustersim/numeric"

// Direction is the spin sense of a motor's propeller, which flips the sign
// of the torque contribution the motor's reaction induces (spec section 3).
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

func (d Direction) sign() float64 {
	if d == Clockwise {
		return 1
	}
	return -1
}

// Vec3 is a 3-vector of differentiable scalars: a motor position or unit
// orientation as it flows through the AD pipeline.
type Vec3 struct {
	X, Y, Z numeric.Dual
}

func V3(x, y, z numeric.Dual) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func V3Const(x, y, z float64) Vec3 {
	return Vec3{X: numeric.Const(x), Y: numeric.Const(y), Z: numeric.Const(z)}
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X.Add(b.X), a.Y.Add(b.Y), a.Z.Add(b.Z)} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X.Sub(b.X), a.Y.Sub(b.Y), a.Z.Sub(b.Z)} }
func (a Vec3) Scale(s numeric.Dual) Vec3 {
	return Vec3{a.X.Mul(s), a.Y.Mul(s), a.Z.Mul(s)}
}
func (a Vec3) ScaleFloat(s float64) Vec3 {
	return Vec3{a.X.MulFloat(s), a.Y.MulFloat(s), a.Z.MulFloat(s)}
}
func (a Vec3) DivFloatVec(s float64) Vec3 {
	return Vec3{a.X.DivFloat(s), a.Y.DivFloat(s), a.Z.DivFloat(s)}
}

func (a Vec3) Dot(b Vec3) numeric.Dual {
	return a.X.Mul(b.X).Add(a.Y.Mul(b.Y)).Add(a.Z.Mul(b.Z))
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y.Mul(b.Z).Sub(a.Z.Mul(b.Y)),
		Y: a.Z.Mul(b.X).Sub(a.X.Mul(b.Z)),
		Z: a.X.Mul(b.Y).Sub(a.Y.Mul(b.X)),
	}
}

func (a Vec3) NormSquared() numeric.Dual {
	return a.Dot(a)
}

func (a Vec3) Norm() numeric.Dual {
	return a.NormSquared().Sqrt()
}

// Normalized returns a unit-norm copy of a. Callers (the parameterisations,
// spec section 4.F) must call this after every parameter update so the
// invariant "orientation is unit-norm at evaluation time" (spec section 3)
// holds.
func (a Vec3) Normalized() Vec3 {
	n := a.Norm()
	return a.Scale(numeric.Const(1).Div(n))
}

func (a Vec3) Values() (float64, float64, float64) {
	return a.X.Value, a.Y.Value, a.Z.Value
}

// Motor is a single thruster: position from the body-frame origin (metres),
// unit thrust orientation, and propeller spin sense.
type Motor struct {
	Position    Vec3
	Orientation Vec3
	Direction   Direction
}

// Axis enumerates the six cardinal body-frame wrench directions. Iteration
// order is fixed (spec section 3: "seeds mapping-key hashing in the
// heuristic's breakdown").
type Axis int

const (
	X Axis = iota
	Y
	Z
	XRot
	YRot
	ZRot
)

// Axes is the fixed, observable iteration order over all six axes.
var Axes = [6]Axis{X, Y, Z, XRot, YRot, ZRot}

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	case XRot:
		return "XRot"
	case YRot:
		return "YRot"
	case ZRot:
		return "ZRot"
	default:
		return "?"
	}
}

// UnitWrench returns the canonical unit wrench for axis: one in the
// force/torque slot corresponding to axis, zero elsewhere.
func UnitWrench(axis Axis) Wrench {
	var w Wrench
	switch axis {
	case X:
		w.Force = V3Const(1, 0, 0)
	case Y:
		w.Force = V3Const(0, 1, 0)
	case Z:
		w.Force = V3Const(0, 0, 1)
	case XRot:
		w.Torque = V3Const(1, 0, 0)
	case YRot:
		w.Torque = V3Const(0, 1, 0)
	case ZRot:
		w.Torque = V3Const(0, 0, 1)
	}
	return w
}

// Wrench combines a 3-D force and a 3-D torque (the glossary's "wrench").
type Wrench struct {
	Force  Vec3
	Torque Vec3
}

func (w Wrench) Column() [6]numeric.Dual {
	return [6]numeric.Dual{w.Force.X, w.Force.Y, w.Force.Z, w.Torque.X, w.Torque.Y, w.Torque.Z}
}

func WrenchFromColumn(c [6]numeric.Dual) Wrench {
	return Wrench{
		Force:  Vec3{c[0], c[1], c[2]},
		Torque: Vec3{c[3], c[4], c[5]},
	}
}
