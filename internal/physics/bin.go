package physics

import (
	"fmt"

	"github.com/nuphysics/oscprob/internal/cmat"
)

// ComputeBin runs the full per-bin pipeline for one (cosine, energy) sample:
// walk the crossed shells, chain the per-layer transition matrices, apply
// production-height averaging when configured, and assemble the 3x3
// probability matrix, indexed [flavor before][flavor after].
//
// It is a pure function of the read-only context and job plus the bin
// coordinates, which is the contract that lets both dispatch backends share
// it without synchronisation.
func ComputeBin(ctx *Context, job *Job, cosineIdx, energyIdx int) [3][3]float64 {
	cosZ := job.Cosines[cosineIdx]
	energy := job.Energies[energyIdx]
	maxLayer := job.MaxLayerIdx[cosineIdx]

	// Capacity is validated when the cosine grid is set; a violation here is
	// a programmer error, and truncating would silently corrupt the physics.
	if maxLayer > MaxLayers {
		panic(fmt.Sprintf("physics: ray crosses %d layers, capacity is %d", maxLayer, MaxLayers))
	}

	totalEarthLenCm := -2.0 * cosZ * EarthRadiusCm
	pathLenCm := pathLengthCm(job.ProductionHeightCm, cosZ)

	const phaseOffset = 0.0

	final := cmat.Matrix{}
	coreToMantle := cmat.Identity()
	var atmExp Expansion
	var dargDDistance [3]float64

	// Layer 0 is the production segment, traversed once. Layers 1..maxLayer-1
	// are crossed twice (inbound and outbound, collected in the core-to-mantle
	// accumulator); the innermost layer closes the running total.
	for layer := 0; layer <= maxLayer; layer++ {
		dist := layerDistance(job.Radii, layer, maxLayer, pathLenCm, totalEarthLenCm, cosZ)
		dens := layerDensity(job, layer, maxLayer, pathLenCm, totalEarthLenCm, cosZ)

		exp := ctx.TransitionExpansion(job.Type, energy, dens, dist/KmToCm, phaseOffset)
		tm := exp.Amplitude()

		switch {
		case layer == 0:
			final = tm
			atmExp = exp
			if dist != 0 {
				for k := 0; k < 3; k++ {
					dargDDistance[k] = exp.Arg[k] / dist
				}
			}
		case layer < maxLayer:
			var tmp cmat.Matrix
			cmat.Mul(&tmp, &tm, &final)
			final = tmp
			cmat.Mul(&tmp, &coreToMantle, &tm)
			coreToMantle = tmp
		default:
			var tmp cmat.Matrix
			cmat.Mul(&tmp, &tm, &final)
			final = tmp
		}
	}

	var tmp cmat.Matrix
	cmat.Mul(&tmp, &coreToMantle, &final)
	final = tmp

	var prob [3][3]float64 // [after][before], transposed on return

	if !job.UseHeightAveraging {
		// The coherence tensor collapses to all-ones cross factors, and the
		// spectral terms recombine into the plain squared amplitude.
		for after := 0; after < 3; after++ {
			for before := 0; before < 3; before++ {
				prob[after][before] = normSq(final[after][before])
			}
		}
		return transpose(prob)
	}

	shift := newShiftFactor()
	var lengths [MaxHeightBins]float64
	heightPathLengths(job, cosZ, lengths[:job.HeightBins])
	accumulateHeightAverage(job, &shift, &dargDDistance, lengths[:job.HeightBins], energyIdx, cosineIdx)

	// term[k] = final * C_k of the production layer: the k-th spectral
	// component of the full path amplitude.
	var term [3]cmat.Matrix
	for k := 0; k < 3; k++ {
		cmat.Mul(&term[k], &final, &atmExp.Coeff[k])
	}

	for iExp := 0; iExp < 3; iExp++ {
		for before := 0; before < 3; before++ {
			for after := 0; after < 3; after++ {
				prob[after][before] += normSq(term[iExp][after][before])
			}
		}

		for jExp := 0; jExp < iExp; jExp++ {
			for before := 0; before < 3; before++ {
				f := shift[iExp][jExp][before]
				for after := 0; after < 3; after++ {
					ti := term[iExp][after][before]
					tj := term[jExp][after][before]
					prob[after][before] += 2.0*(real(tj)*real(ti)+imag(tj)*imag(ti))*real(f) +
						2.0*(imag(tj)*real(ti)-real(tj)*imag(ti))*imag(f)
				}
			}
		}
	}

	return transpose(prob)
}

func transpose(p [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = p[j][i]
		}
	}
	return out
}
