// Package allocator solves for per-motor thrusts realising a target wrench
// and searches for the largest scalar multiple of a unit wrench the
// current budget allows (spec section 4.C), the only handle the rest of
// the pipeline has on the motor-data table.
package allocator

import (
	"thrustersim/geometry"
	"thrustersim/motordata"
	"thrustersim/numeric"
)

// Settings are the allocator's two runtime knobs (spec section 6 defaults).
type Settings struct {
	AmperageCap float64
	Epsilon     float64
}

// DefaultSettings returns the reference values from spec section 6.
func DefaultSettings() Settings {
	return Settings{AmperageCap: 25.0, Epsilon: 1e-3}
}

const maxSearchIterations = 200

// Solve finds the scalar lambda such that scaling the motors' minimum-norm
// thrust solution for wrench movement by lambda drives aggregate current
// to Settings.AmperageCap within Settings.Epsilon (spec section 4.C).
//
// The search itself (step 3) runs on plain float64 values only: it has no
// bearing on the derivative path. Once the search converges to a lambda
// value, a single closed-form pass re-evaluates the converged fixed point
// with the differentiable reverse-solved thrusts to recover d(lambda)/d(params)
// by implicit differentiation of the (locally affine, since the motor
// curve interpolates piecewise-linearly) residual -- spec section 9: "no
// derivative needs to flow through the iterative refinement -- only the
// end state is differentiated".
func Solve(cfg *geometry.Config, movement geometry.Wrench, data *motordata.Table, settings Settings) numeric.Dual {
	rawThrusts := cfg.ReverseSolve(movement)
	motors := cfg.Motors()

	ids := cfg.IDs()
	thrustValue := make(map[geometry.MotorID]float64, len(ids))
	direction := make(map[geometry.MotorID]motordata.Direction, len(ids))
	for _, id := range ids {
		thrustValue[id] = rawThrusts[id].Value
		if motors[id].Direction == geometry.CounterClockwise {
			direction[id] = motordata.CounterClockwise
		} else {
			direction[id] = motordata.Clockwise
		}
	}

	currentSum := func(lambda float64) float64 {
		sum := 0.0
		for _, id := range ids {
			rec := data.LookupByForceDirectional(lambda*thrustValue[id], direction[id])
			sum += absf(rec.Current)
		}
		return sum
	}

	lambda0, degenerate := search(currentSum, settings)
	if degenerate {
		return numeric.Const(1)
	}

	return differentiateLambda(lambda0, ids, thrustValue, direction, rawThrusts, data, settings.AmperageCap)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// search performs the hybrid grow-then-interpolate scan of spec section 4.C
// step 3: grow lambda by the ratio amperage_cap/current_sum while no upper
// bound is known, then linearly interpolate the bracket by the current
// residual once both bounds exist.
func search(currentSum func(float64) float64, settings Settings) (lambda float64, degenerate bool) {
	const initialLambda = 1.0

	sum0 := currentSum(initialLambda)
	if sum0 == 0 {
		return 1, true
	}

	lowLambda, lowSum := 0.0, 0.0
	highLambda, highSum := initialLambda, sum0
	haveHigh := sum0 >= settings.AmperageCap

	iter := 0
	for !haveHigh && iter < maxSearchIterations {
		iter++
		ratio := settings.AmperageCap / highSum
		lowLambda, lowSum = highLambda, highSum
		highLambda *= ratio
		highSum = currentSum(highLambda)
		if highSum >= settings.AmperageCap {
			haveHigh = true
		}
		if highSum == 0 {
			return 1, true
		}
	}

	lambda = highLambda
	for iter = 0; iter < maxSearchIterations; iter++ {
		sum := currentSum(lambda)
		residual := sum - settings.AmperageCap
		if absf(residual) < settings.Epsilon {
			return lambda, false
		}
		if sum < settings.AmperageCap {
			lowLambda, lowSum = lambda, sum
		} else {
			highLambda, highSum = lambda, sum
		}
		if highSum == lowSum {
			break
		}
		lambda = lowLambda + (highLambda-lowLambda)*(settings.AmperageCap-lowSum)/(highSum-lowSum)
	}
	return lambda, false
}

// differentiateLambda recovers d(lambda)/d(params) by implicit
// differentiation of sum_i |Current_i(lambda*thrust_i(params))| = cap at
// the converged lambda0, using the local slope of each motor's (piecewise
// linear) current-by-force curve.
func differentiateLambda(
	lambda0 float64,
	ids []geometry.MotorID,
	thrustValue map[geometry.MotorID]float64,
	direction map[geometry.MotorID]motordata.Direction,
	rawThrusts map[geometry.MotorID]numeric.Dual,
	data *motordata.Table,
	cap float64,
) numeric.Dual {
	const bump = 1e-6

	dResidualDLambda := 0.0
	var dResidualDParams []float64

	for _, id := range ids {
		force := lambda0 * thrustValue[id]
		rec := data.LookupByForceDirectional(force, direction[id])
		recBumped := data.LookupByForceDirectional(force+bump, direction[id])
		slope := (recBumped.Current - rec.Current) / bump
		sign := 1.0
		if rec.Current < 0 {
			sign = -1.0
		}

		// d|current_i|/d(lambda) = sign * slope * thrust_i
		dResidualDLambda += sign * slope * thrustValue[id]

		// d|current_i|/d(params) = sign * slope * lambda0 * d(thrust_i)/d(params)
		t := rawThrusts[id]
		if t.Grad == nil {
			continue
		}
		if dResidualDParams == nil {
			dResidualDParams = make([]float64, len(t.Grad))
		}
		coeff := sign * slope * lambda0
		for i, g := range t.Grad {
			dResidualDParams[i] += coeff * g
		}
	}

	if dResidualDLambda == 0 || dResidualDParams == nil {
		return numeric.Const(lambda0)
	}

	grad := make([]float64, len(dResidualDParams))
	for i, dp := range dResidualDParams {
		grad[i] = -dp / dResidualDLambda
	}
	return numeric.Dual{Value: lambda0, Grad: grad}
}
