package geometry

import (
	"sort"

	"thrustersim/numeric"
)

// MotorID identifies a motor within a Config. X3DMotorID values convert
// directly to MotorID so the fixed 8-motor X3D layout and an arbitrary
// unconstrained layout share one representation (spec section 3: "a fixed
// symbolic 8-motor X3D enum or an opaque integer").
type MotorID int

// X3DMotorID is the canonical 8-corner ROV layout.
type X3DMotorID = MotorID

const (
	FrontLeftBottom X3DMotorID = iota
	FrontLeftTop
	FrontRightBottom
	FrontRightTop
	BackLeftBottom
	BackLeftTop
	BackRightBottom
	BackRightTop
)

// pseudoInverseDamping is the small Tikhonov term added to M*M^T before
// inversion. It keeps the pseudo-inverse differentiable and well defined
// even when a configuration's motor geometry is momentarily rank deficient
// mid-optimisation (spec section 4.B: "configurations whose M is
// numerically rank-deficient still produce a minimum-norm M+").
const pseudoInverseDamping = 1e-9

// Config is a motor configuration: a mapping from motor identifier to
// Motor, plus the centre of mass used to build torque arms. Matrix and
// PseudoInverse are derived, recomputed by NewConfig on every construction
// (spec section 3).
type Config struct {
	ids          []MotorID
	motors       map[MotorID]Motor
	CentreOfMass Vec3

	Matrix        Matrix
	PseudoInverse PseudoInv
}

// Matrix is the 6xN allocation matrix: column i is
// [orientation_i ; (position_i - centre_of_mass) x orientation_i * sign_i].
type Matrix struct {
	Cols []MotorID
	Data [6][]numeric.Dual
}

// PseudoInv is the Nx6 Moore-Penrose pseudo-inverse of a Matrix.
type PseudoInv struct {
	Cols []MotorID
	Data map[MotorID][6]numeric.Dual
}

// NewConfig builds a Config (and its derived Matrix/PseudoInverse) from a
// motor set and centre of mass. Motor iteration order is the ascending
// sort of ids, so the matrix columns -- and therefore every downstream
// computation -- are deterministic given the same input map (spec section
// 8 invariant 3 and scenario S3 depend on this).
func NewConfig(motors map[MotorID]Motor, centreOfMass Vec3) *Config {
	ids := make([]MotorID, 0, len(motors))
	for id := range motors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	cfg := &Config{
		ids:          ids,
		motors:       motors,
		CentreOfMass: centreOfMass,
	}
	cfg.Matrix = buildMatrix(ids, motors, centreOfMass)
	cfg.PseudoInverse = buildPseudoInverse(cfg.Matrix)
	return cfg
}

// Motors returns the id -> Motor map this Config was built from.
func (c *Config) Motors() map[MotorID]Motor { return c.motors }

// IDs returns the deterministic motor ordering used for matrix columns.
func (c *Config) IDs() []MotorID { return c.ids }

func buildMatrix(ids []MotorID, motors map[MotorID]Motor, com Vec3) Matrix {
	m := Matrix{Cols: ids}
	for r := 0; r < 6; r++ {
		m.Data[r] = make([]numeric.Dual, len(ids))
	}

	for col, id := range ids {
		motor := motors[id]
		arm := motor.Position.Sub(com)
		torque := arm.Cross(motor.Orientation).ScaleFloat(motor.Direction.sign())

		m.Data[0][col] = motor.Orientation.X
		m.Data[1][col] = motor.Orientation.Y
		m.Data[2][col] = motor.Orientation.Z
		m.Data[3][col] = torque.X
		m.Data[4][col] = torque.Y
		m.Data[5][col] = torque.Z
	}
	return m
}

// buildPseudoInverse computes M+ = M^T (M M^T + lambda I)^-1, the damped
// minimum-norm right pseudo-inverse, generic over numeric.Dual so it stays
// differentiable end to end. Grounded on the damped pseudo-inverse fallback
// in the thruster-allocation reference (itohio/EasyRobot's
// dampedPseudoInverse): compute M*M^T, regularise the diagonal, invert.
func buildPseudoInverse(m Matrix) PseudoInv {
	n := len(m.Cols)

	var mmt Mat6
	for r := 0; r < 6; r++ {
		for k := 0; k < 6; k++ {
			sum := numeric.Const(0)
			for col := 0; col < n; col++ {
				sum = sum.Add(m.Data[r][col].Mul(m.Data[k][col]))
			}
			if r == k {
				sum = sum.AddFloat(pseudoInverseDamping)
			}
			mmt[r][k] = sum
		}
	}

	inv, ok := Invert6(mmt)
	if !ok {
		// Degenerate (all-zero) geometry: return a zero pseudo-inverse, the
		// correct minimum-norm "solution" when M itself is the zero matrix.
		inv = Mat6{}
	}

	data := make(map[MotorID][6]numeric.Dual, n)
	for col, id := range m.Cols {
		var row [6]numeric.Dual
		for k := 0; k < 6; k++ {
			sum := numeric.Const(0)
			for j := 0; j < 6; j++ {
				sum = sum.Add(m.Data[j][col].Mul(inv[j][k]))
			}
			row[k] = sum
		}
		data[id] = row
	}

	return PseudoInv{Cols: m.Cols, Data: data}
}

// ForwardSolve computes the wrench resulting from a set of per-motor
// scalar thrusts: movement = M * thrusts.
func (c *Config) ForwardSolve(thrusts map[MotorID]numeric.Dual) Wrench {
	var col [6]numeric.Dual
	for i := range col {
		col[i] = numeric.Const(0)
	}
	for colIdx, id := range c.Matrix.Cols {
		t := thrusts[id]
		for r := 0; r < 6; r++ {
			col[r] = col[r].Add(c.Matrix.Data[r][colIdx].Mul(t))
		}
	}
	return WrenchFromColumn(col)
}

// ReverseSolve computes the minimum-norm per-motor thrusts realising the
// requested wrench: thrusts = M+ * movement.
func (c *Config) ReverseSolve(w Wrench) map[MotorID]numeric.Dual {
	col := w.Column()
	out := make(map[MotorID]numeric.Dual, len(c.PseudoInverse.Cols))
	for _, id := range c.PseudoInverse.Cols {
		row := c.PseudoInverse.Data[id]
		sum := numeric.Const(0)
		for k := 0; k < 6; k++ {
			sum = sum.Add(row[k].Mul(col[k]))
		}
		out[id] = sum
	}
	return out
}
