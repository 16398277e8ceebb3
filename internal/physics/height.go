package physics

import "math"

// shiftFactor is the cross-term weighting tensor produced by production
// height averaging, indexed [eigenstate i][eigenstate j][flavor before].
// The same-eigenstate diagonal is exactly one: a term interferes perfectly
// with itself regardless of where the neutrino was produced.
type shiftFactor [3][3][3]complex128

func newShiftFactor() shiftFactor {
	var s shiftFactor
	for e := 0; e < 3; e++ {
		for f := 0; f < 3; f++ {
			s[e][e][f] = 1
		}
	}
	return s
}

// heightPathLengths converts the production-height histogram bin edges (km)
// into total path lengths (cm) at the midpoint of each bin.
func heightPathLengths(j *Job, cosZ float64, out []float64) {
	for b := 0; b < j.HeightBins; b++ {
		midCm := KmToCm * (j.HeightEdges[b] + j.HeightEdges[b+1]) / 2.0
		out[b] = pathLengthCm(midCm, cosZ)
	}
}

// accumulateHeightAverage integrates the phase-coherence kernel across
// consecutive height-bin pairs. For each eigenstate pair the kernel is
// sinc(dArg*width/2) * exp(i*dArg*midpoint), where dArg is the difference of
// the per-eigenstate phase rates of the production layer; each contribution
// is weighted by the production probability of its bin. The result is
// symmetric under swapping the eigenstate pair.
func accumulateHeightAverage(j *Job, s *shiftFactor, dargDDistance *[3]float64, lengths []float64, energyIdx, cosineIdx int) {
	for b := 0; b+1 < j.HeightBins; b++ {
		h0 := lengths[b]
		h1 := lengths[b+1]
		hm := (h1 + h0) / 2.0
		hw := h1 - h0

		for ie := 0; ie < 3; ie++ {
			for je := 0; je < ie; je++ {
				d := dargDDistance[ie] - dargDDistance[je]
				w := sinc(0.5 * d * hw)
				sin, cos := math.Sincos(d * hm)
				factor := complex(w*cos, w*sin)

				for flavor := 0; flavor < 3; flavor++ {
					p := complex(j.heightProbAt(flavor, energyIdx, cosineIdx, b), 0)
					s[ie][je][flavor] += p * factor
					s[je][ie][flavor] += p * factor
				}
			}
		}
	}
}

// sinc is sin(x)/x with the removable singularity filled in: sinc(0) = 1.
// The series branch keeps the degenerate same-eigenstate and zero-width-bin
// cases exact.
func sinc(x float64) float64 {
	if math.Abs(x) < 1e-8 {
		return 1.0 - x*x/6.0
	}
	return math.Sin(x) / x
}
