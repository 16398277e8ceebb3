package physics

import (
	"math"

	"github.com/nuphysics/oscprob/internal/cmat"
)

// Expansion is the spectral decomposition of a single-layer transition
// amplitude: A = sum_k Coeff[k] * exp(i*Arg[k]). Only the phase arguments
// depend on the traversed length; the coefficient matrices depend on the
// (energy, density, type) triple alone. This split is what lets the
// production-height averaging vary the path length without re-solving the
// eigensystem per height sample.
type Expansion struct {
	Arg   [3]float64
	Coeff [3]cmat.Matrix
}

// Amplitude collapses the expansion back into the transition amplitude.
// With all phase arguments zero the coefficients sum to the identity, so a
// zero-length layer yields the identity matrix by construction.
func (e *Expansion) Amplitude() cmat.Matrix {
	var a cmat.Matrix
	for k := 0; k < 3; k++ {
		cmat.AddPhased(&a, e.Arg[k], &e.Coeff[k])
	}
	return a
}

// product builds the three rank-one spectral projectors of eq. (11): for
// each eigenstate index k, the normalised product of (2EH - M_j) over the
// other two indices, expressed in the mass basis.
func (c *Context) product(energy, density float64, dmMatVac, dmMatMat *[3][3]float64, t NeutrinoType) (product [3][3][3]complex128) {
	fac := matterPotential(t, energy, density)

	// twoEHmM[n][m][k] = 2E*H - M_k in the mass basis: the matter potential
	// projected onto the electron row of U, minus the k-th matter mass shift
	// on the diagonal.
	var twoEHmM [3][3][3]complex128
	for n := 0; n < 3; n++ {
		for m := 0; m < 3; m++ {
			base := complex(-fac, 0) * conjMul(c.u[0][m], c.u[0][n])
			twoEHmM[n][m][0] = base
			twoEHmM[n][m][1] = base
			twoEHmM[n][m][2] = base
		}
	}
	for j := 0; j < 3; j++ {
		twoEHmM[0][0][j] -= complex(dmMatVac[j][0], 0)
		twoEHmM[1][1][j] -= complex(dmMatVac[j][1], 0)
		twoEHmM[2][2][j] -= complex(dmMatVac[j][2], 0)
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				product[i][j][0] += twoEHmM[i][k][1] * twoEHmM[k][j][2]
				product[i][j][1] += twoEHmM[i][k][2] * twoEHmM[k][j][0]
				product[i][j][2] += twoEHmM[i][k][0] * twoEHmM[k][j][1]
			}
			product[i][j][0] /= complex(dmMatMat[0][1]*dmMatMat[0][2], 0)
			product[i][j][1] /= complex(dmMatMat[1][2]*dmMatMat[1][0], 0)
			product[i][j][2] /= complex(dmMatMat[2][0]*dmMatMat[2][1], 0)
		}
	}
	return product
}

// phaseArgs fills the three expansion phase arguments for a layer of length
// lengthKm. The optional forced offset lands on the third term only.
func phaseArgs(lengthKm, energy float64, dmMatVac *[3][3]float64, phaseOffset float64) [3]float64 {
	var arg [3]float64
	for k := 0; k < 3; k++ {
		arg[k] = -LoverEFactor * dmMatVac[k][0] * lengthKm / energy
	}
	arg[2] += phaseOffset
	return arg
}

// TransitionExpansion returns the spectral expansion of the transition
// amplitude for a layer of constant electron density (g/cm^3) and length
// (km): three phase arguments and three complex coefficient matrices, with
// the coefficients sandwiched back into the flavor basis through the
// precomputed projector factor table.
func (c *Context) TransitionExpansion(t NeutrinoType, energy, density, lengthKm, phaseOffset float64) Expansion {
	dmMatMat, dmMatVac := c.MatterEigenstates(energy, density, t)
	product := c.product(energy, density, &dmMatVac, &dmMatMat, t)

	var e Expansion
	e.Arg = phaseArgs(lengthKm, energy, &dmMatVac, phaseOffset)
	for k := 0; k < 3; k++ {
		for n := 0; n < 3; n++ {
			for m := 0; m < 3; m++ {
				var sum complex128
				for i := 0; i < 3; i++ {
					for j := 0; j < 3; j++ {
						sum += c.pf[n][m][i][j] * product[i][j][k]
					}
				}
				e.Coeff[k][n][m] = sum
			}
		}
	}
	return e
}

// TransitionMatrix returns the direct 3x3 transition amplitude for a layer
// of constant electron density and length lengthKm, summing the three
// phase-weighted spectral terms in the mass basis before rotating to the
// flavor basis.
func (c *Context) TransitionMatrix(t NeutrinoType, energy, density, lengthKm, phaseOffset float64) cmat.Matrix {
	dmMatMat, dmMatVac := c.MatterEigenstates(energy, density, t)
	product := c.product(energy, density, &dmMatVac, &dmMatMat, t)
	arg := phaseArgs(lengthKm, energy, &dmMatVac, phaseOffset)

	var x cmat.Matrix
	for k := 0; k < 3; k++ {
		s, cth := math.Sincos(arg[k])
		w := complex(cth, s)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				x[i][j] += w * product[i][j][k]
			}
		}
	}

	var a cmat.Matrix
	for n := 0; n < 3; n++ {
		for m := 0; m < 3; m++ {
			var sum complex128
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					sum += c.pf[n][m][i][j] * x[i][j]
				}
			}
			a[n][m] = sum
		}
	}
	return a
}

// conjMul returns a * conj(b).
func conjMul(a, b complex128) complex128 {
	return a * complex(real(b), -imag(b))
}
