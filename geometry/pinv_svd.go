package geometry

import "gonum.org/v1/gonum/mat"

// ValueMatrix extracts the plain float64 6xN allocation matrix from a
// Matrix, discarding gradient information. Used by the SVD pseudo-inverse
// below and by tests that check the forward/reverse round-trip invariant
// (spec section 8 invariant 6) against a reference computed independently
// of the damped Dual pseudo-inverse used at runtime.
func (m Matrix) ValueMatrix() *mat.Dense {
	n := len(m.Cols)
	d := mat.NewDense(6, n, nil)
	for r := 0; r < 6; r++ {
		for c := 0; c < n; c++ {
			d.Set(r, c, m.Data[r][c].Value)
		}
	}
	return d
}

// svdPseudoInverseTolerance is the relative singular-value cutoff below
// which a singular direction is treated as zero -- the "small tolerance on
// singular values" of spec section 4.B.
const svdPseudoInverseTolerance = 1e-10

// PseudoInverseSVD computes the Moore-Penrose pseudo-inverse of M via SVD,
// using gonum's mat.SVD. This is the exact (non-damped) reference
// pseudo-inverse: correct at rank deficiency and used where test precision
// matters more than AD-differentiability. The runtime allocator instead
// uses the damped, differentiable pseudo-inverse on Config.PseudoInverse.
func PseudoInverseSVD(m *mat.Dense) *mat.Dense {
	var svd mat.SVD
	ok := svd.Factorize(m, mat.SVDThin)
	rows, cols := m.Dims()
	out := mat.NewDense(cols, rows, nil)
	if !ok {
		return out
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	maxValue := 0.0
	for _, v := range values {
		if v > maxValue {
			maxValue = v
		}
	}
	cutoff := maxValue * svdPseudoInverseTolerance

	k := len(values)
	sigmaInv := mat.NewDense(k, k, nil)
	for i, s := range values {
		if s > cutoff {
			sigmaInv.Set(i, i, 1/s)
		}
	}

	var vSigma mat.Dense
	vSigma.Mul(&v, sigmaInv)
	out.Mul(&vSigma, u.T())
	return out
}
