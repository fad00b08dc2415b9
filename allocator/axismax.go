package allocator

import (
	"thrustersim/geometry"
	"thrustersim/motordata"
	"thrustersim/numeric"
)

// axisTypeRatio scales the "unreachable" clamp threshold (spec section
// 4.C: "300/axis_type_ratio") for the force axes versus the torque axes.
// Force maxima are reported in kgf and routinely approach the low tens at
// this rig's amperage budget, so a ratio of 1 keeps the clamp at 300.
// Torque maxima are reported in kgf*m and are suppressed by the ~0.1-0.3m
// lever arms in section 4.B's torque column, so legitimate values rarely
// exceed single digits; a ratio of 10 tightens the clamp to 30 for the
// rotational axes, which is still generous relative to any physically
// sane configuration but still catches singular-geometry blowups. (The
// ratio values are this package's own choice; the original source does not
// fix them.)
func axisTypeRatio(axis geometry.Axis) float64 {
	switch axis {
	case geometry.XRot, geometry.YRot, geometry.ZRot:
		return 10
	default:
		return 1
	}
}

func unreachableClamp(axis geometry.Axis) float64 {
	return 300 / axisTypeRatio(axis)
}

// PerformanceVector maps each cardinal Axis to the maximum unit-wrench
// magnitude the configuration can sustain on that axis under the shared
// current budget (spec section 3).
type PerformanceVector map[geometry.Axis]numeric.Dual

// AxisMaxima probes the six cardinal unit wrenches and packages the
// resulting lambdas as the performance vector (spec section 4.D). This is
// the only handle the heuristic scorer has on the underlying physics.
func AxisMaxima(cfg *geometry.Config, data *motordata.Table, settings Settings) PerformanceVector {
	out := make(PerformanceVector, len(geometry.Axes))
	for _, axis := range geometry.Axes {
		lambda := Solve(cfg, geometry.UnitWrench(axis), data, settings)
		if lambda.Value > unreachableClamp(axis) {
			lambda = numeric.Const(0)
		}
		out[axis] = lambda
	}
	return out
}
