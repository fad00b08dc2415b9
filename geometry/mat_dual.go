package geometry

import "thrustersim/numeric"

// Mat6 is a fixed 6x6 matrix of differentiable scalars, used only to invert
// M*M^T when building the damped pseudo-inverse (see config.go). Kept as a
// small hand-rolled Gauss-Jordan solve -- rather than gonum -- because it
// must stay generic over numeric.Dual so the inverse participates in the
// forward-mode AD pass (gonum's mat.Dense is float64-only; see pinv_svd.go
// for the value-only SVD alternative used by tests).
type Mat6 [6][6]numeric.Dual

// Invert6 inverts m via Gauss-Jordan elimination with partial pivoting on
// the real (value) part. Returns ok=false if m is numerically singular even
// after damping -- callers are expected to have already added a damping
// term to the diagonal, so this should only fail on a degenerate all-zero
// matrix.
func Invert6(m Mat6) (Mat6, bool) {
	var aug [6][12]numeric.Dual
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			aug[r][c] = m[r][c]
		}
		aug[r][6+r] = numeric.Const(1)
	}

	for col := 0; col < 6; col++ {
		pivot := col
		best := aug[col][col].Abs().Value
		for r := col + 1; r < 6; r++ {
			if v := aug[r][col].Abs().Value; v > best {
				best = v
				pivot = r
			}
		}
		if best < 1e-18 {
			return Mat6{}, false
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		inv := numeric.Const(1).Div(aug[col][col])
		for c := 0; c < 12; c++ {
			aug[col][c] = aug[col][c].Mul(inv)
		}

		for r := 0; r < 6; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor.Value == 0 {
				continue
			}
			for c := 0; c < 12; c++ {
				aug[r][c] = aug[r][c].Sub(aug[col][c].Mul(factor))
			}
		}
	}

	var out Mat6
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			out[r][c] = aug[r][6+c]
		}
	}
	return out, true
}
