package physics

import "math"

// MatterEigenstates solves for the effective mass-squared values of the
// three matter eigenstates at the given energy (GeV) and electron density
// (g/cm^3), via the trigonometric closed form for the three real roots of
// the characteristic cubic of the effective Hamiltonian (Barger et al.,
// eqs. 21-22).
//
// It returns the pairwise differences between matter masses (dmMatMat) and
// the differences between matter and vacuum masses (dmMatVac), with roots
// reordered by the vacuum mass ordering prepared on the context so matter
// eigenstates track vacuum eigenstates continuously as density goes to zero.
//
// This is the hottest call in the pipeline: it runs once per
// (cosine, energy, layer) and has no failure path beyond domain clamping.
func (c *Context) MatterEigenstates(energy, density float64, t NeutrinoType) (dmMatMat, dmMatVac [3][3]float64) {
	fac := matterPotential(t, energy, density)

	u01sq := normSq(c.u[0][1])
	u02sq := normSq(c.u[0][2])
	u00sq := normSq(c.u[0][0])

	alpha := fac + c.dm[0][1] + c.dm[0][2]
	beta := c.dm[0][1]*c.dm[0][2] +
		fac*(c.dm[0][1]*(1.0-u01sq)+c.dm[0][2]*(1.0-u02sq))
	gamma := fac * c.dm[0][1] * c.dm[0][2] * u00sq

	tmp := alpha*alpha - 3.0*beta
	if tmp < 0 {
		tmp = 0
	}

	arg := (2.0*alpha*alpha*alpha - 9.0*alpha*beta + 27.0*gamma) /
		(2.0 * math.Sqrt(tmp*tmp*tmp))
	arg = clampUnit(arg)

	theta0 := math.Acos(arg) / 3.0
	unordered := [3]float64{
		cubicRoot(tmp, theta0, c.dm[0][0], alpha),
		cubicRoot(tmp, theta0-2.0*math.Pi/3.0, c.dm[0][0], alpha),
		cubicRoot(tmp, theta0+2.0*math.Pi/3.0, c.dm[0][0], alpha),
	}

	var mMat [3]float64
	order := c.order[t]
	for i := 0; i < 3; i++ {
		mMat[i] = unordered[order[i]]
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dmMatMat[i][j] = mMat[i] - mMat[j]
			dmMatVac[i][j] = mMat[i] - c.dm[j][0]
		}
	}
	return dmMatMat, dmMatVac
}

func normSq(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
