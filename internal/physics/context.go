package physics

import (
	"math"
	"math/cmplx"
)

// Context holds the read-only constants shared by every bin computation of a
// calculation pass: the PMNS mixing matrix, the vacuum mass-splitting matrix,
// the projector factor table derived from the mixing matrix, and the vacuum
// mass ordering used to track matter eigenstates back to vacuum eigenstates.
//
// A Context is built once by the orchestration layer and must not be mutated
// after parallel dispatch begins; all its methods used during a calculation
// are pure reads, which is what makes lock-free bin parallelism safe.
type Context struct {
	u  [3][3]complex128
	dm [3][3]float64

	// pf[n][m][i][j] = U[n][i] * conj(U[m][j]): the factors that sandwich a
	// mass-basis matrix between the mixing matrix and its adjoint.
	// Precomputed when the mixing matrix is set so the per-bin code never
	// recomputes trigonometric products.
	pf [3][3][3][3]complex128

	order    [2][3]int
	prepared [2]bool
}

// NewContext returns an empty context. The mixing matrix and mass splittings
// must be set, and PrepareEigensolver called, before any bin computation.
func NewContext() *Context {
	return &Context{}
}

// SetMixingAngles builds the PMNS matrix from the three mixing angles and the
// CP phase (all in radians) using the standard parameterisation.
func (c *Context) SetMixingAngles(theta12, theta13, theta23, deltaCP float64) {
	s12, c12 := math.Sincos(theta12)
	s13, c13 := math.Sincos(theta13)
	s23, c23 := math.Sincos(theta23)

	eid := cmplx.Exp(complex(0, deltaCP))

	var u [3][3]complex128
	u[0][0] = complex(c12*c13, 0)
	u[0][1] = complex(s12*c13, 0)
	u[0][2] = complex(s13, 0) * cmplx.Conj(eid)
	u[1][0] = complex(-s12*c23, 0) - complex(c12*s23*s13, 0)*eid
	u[1][1] = complex(c12*c23, 0) - complex(s12*s23*s13, 0)*eid
	u[1][2] = complex(s23*c13, 0)
	u[2][0] = complex(s12*s23, 0) - complex(c12*c23*s13, 0)*eid
	u[2][1] = complex(-c12*s23, 0) - complex(s12*c23*s13, 0)*eid
	u[2][2] = complex(c23*c13, 0)

	c.SetMixingMatrix(u)
}

// SetMixingMatrix installs an explicit mixing matrix and precomputes the
// projector factor table. The matrix is assumed unitary; no check is made.
func (c *Context) SetMixingMatrix(u [3][3]complex128) {
	c.u = u
	for n := 0; n < 3; n++ {
		for m := 0; m < 3; m++ {
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					c.pf[n][m][i][j] = u[n][i] * cmplx.Conj(u[m][j])
				}
			}
		}
	}
	c.prepared = [2]bool{}
}

// SetMassSplittings derives the antisymmetric mass-splitting matrix from the
// two input mass-squared differences (eV^2). Exactly degenerate inputs are
// perturbed by a fixed epsilon so the root reordering stays well defined.
func (c *Context) SetMassSplittings(dm21sq, dm32sq float64) {
	var mVac [3]float64
	mVac[0] = 0.0
	mVac[1] = dm21sq
	mVac[2] = dm21sq + dm32sq

	if dm21sq == 0.0 {
		mVac[0] -= DegeneracyEpsilon
	}
	if dm32sq == 0.0 {
		mVac[2] += DegeneracyEpsilon
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c.dm[i][j] = mVac[i] - mVac[j]
		}
	}
	c.prepared = [2]bool{}
}

// PrepareEigensolver derives the vacuum mass ordering for the given neutrino
// type. It must be called after the mixing matrix and mass splittings are set
// and before any bin computation for that type.
//
// The ordering is found by solving the characteristic cubic at zero density
// the same way the matter masses are solved, then matching each root to the
// closest vacuum mass. It depends only on the splitting matrix, so it is
// computed once here rather than once per bin.
func (c *Context) PrepareEigensolver(t NeutrinoType) {
	alpha := c.dm[0][1] + c.dm[0][2]
	beta := c.dm[0][1] * c.dm[0][2]

	tmp := alpha*alpha - 3.0*beta
	arg := (2.0*alpha*alpha*alpha - 9.0*alpha*beta) / (2.0 * math.Sqrt(tmp*tmp*tmp))
	arg = clampUnit(arg)

	theta0 := math.Acos(arg) / 3.0
	roots := [3]float64{
		cubicRoot(tmp, theta0, c.dm[0][0], alpha),
		cubicRoot(tmp, theta0-2.0*math.Pi/3.0, c.dm[0][0], alpha),
		cubicRoot(tmp, theta0+2.0*math.Pi/3.0, c.dm[0][0], alpha),
	}

	var order [3]int
	for i := 0; i < 3; i++ {
		best := math.Abs(c.dm[i][0] - roots[0])
		k := 0
		for j := 1; j < 3; j++ {
			if d := math.Abs(c.dm[i][0] - roots[j]); d < best {
				best = d
				k = j
			}
		}
		order[i] = k
	}

	c.order[t] = order
	c.prepared[t] = true
}

// Prepared reports whether PrepareEigensolver has run for the given type
// since the mixing matrix or mass splittings last changed.
func (c *Context) Prepared(t NeutrinoType) bool {
	return c.prepared[t]
}

// MixingMatrix returns a copy of the installed mixing matrix.
func (c *Context) MixingMatrix() [3][3]complex128 {
	return c.u
}

// MassSplittings returns a copy of the mass-splitting matrix.
func (c *Context) MassSplittings() [3][3]float64 {
	return c.dm
}

func cubicRoot(tmp, theta, dm00, alpha float64) float64 {
	return -(2.0/3.0)*math.Sqrt(tmp)*math.Cos(theta) + dm00 - alpha/3.0
}

// clampUnit absorbs floating-point overshoot of an arc-cosine argument.
func clampUnit(x float64) float64 {
	if x > 1.0 {
		return 1.0
	}
	if x < -1.0 {
		return -1.0
	}
	return x
}
