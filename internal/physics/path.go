package physics

import "math"

// foldLayerIndex maps a traversal layer (1-based, atmosphere excluded) to a
// shell index, mirroring layers beyond the turning point back onto the shells
// crossed on the way in.
func foldLayerIndex(layer, maxLayer int) int {
	if layer <= maxLayer {
		return layer - 1
	}
	return 2*maxLayer - layer - 1
}

// layerDensity returns the effective electron density of a traversal layer in
// g/cm^3. Layer 0 is the production layer (vacuum). The raw matter density is
// scaled by twice the electron fraction so that the standard isoscalar
// Ye=0.5 reproduces the plain density under the TwoRootTwoGf convention.
func layerDensity(j *Job, layer, maxLayer int, pathLenCm, totalEarthLenCm, cosZ float64) float64 {
	if layer == 0 {
		return 0.0
	}
	i := foldLayerIndex(layer, maxLayer)
	if !j.UsePolyDensity {
		return j.Rho[i] * 2.0 * j.ElectronFrac[i]
	}
	return chordAveragedDensity(j, i, maxLayer, cosZ) * 2.0 * j.ElectronFrac[i]
}

// layerDistance returns the traversed distance of a layer in cm, from chord
// geometry between consecutive shell boundaries. The production layer is the
// remainder of the total path above the outer boundary; rays with
// non-negative cosine never enter the body and see the full path length.
func layerDistance(radii []float64, layer, maxLayer int, pathLenCm, totalEarthLenCm, cosZ float64) float64 {
	if cosZ >= 0 {
		return pathLenCm
	}
	if layer == 0 {
		return pathLenCm - totalEarthLenCm
	}

	var i int
	if layer >= maxLayer {
		i = 2*maxLayer - layer - 1
	} else {
		i = layer - 1
	}

	crossThis := 2.0 * halfChordKm(radii[i], cosZ)
	if i < maxLayer-1 {
		crossNext := 2.0 * halfChordKm(radii[i+1], cosZ)
		return 0.5 * (crossThis - crossNext) * KmToCm
	}
	// Innermost crossed shell: the full chord through it, in and out. When
	// every boundary is crossed this is the last shell index, so the next
	// boundary inward may not exist.
	return crossThis * KmToCm
}

// halfChordKm is the half chord length of a ray with zenith cosine cosZ
// through a shell of the given boundary radius, zero when the ray misses it.
func halfChordKm(radiusKm, cosZ float64) float64 {
	d := radiusKm*radiusKm - EarthRadiusKm*EarthRadiusKm*(1.0-cosZ*cosZ)
	if d <= 0 {
		return 0
	}
	return math.Sqrt(d)
}

// pathLengthCm is the full path length from a production point at the given
// height above the surface down to the detector, for a ray at cosZ.
func pathLengthCm(productionHeightCm, cosZ float64) float64 {
	rp := EarthRadiusCm + productionHeightCm
	return math.Sqrt(rp*rp-EarthRadiusCm*EarthRadiusCm*(1.0-cosZ*cosZ)) - EarthRadiusCm*cosZ
}

// chordAveragedDensity integrates the quadratic density profile
// a + b*r + c*r^2 of shell i along the traversed chord segment and returns
// the path-averaged density. The profile is a function of the radius, so the
// average is taken analytically over s, the coordinate along the chord
// measured from the point of closest approach, where r(s)^2 = p^2 + s^2 with
// p the impact parameter.
func chordAveragedDensity(j *Job, i, maxLayer int, cosZ float64) float64 {
	p := EarthRadiusKm * math.Sqrt(1.0-cosZ*cosZ)

	sOuter := halfChordKm(j.Radii[i], cosZ)
	var sInner float64
	if i < maxLayer-1 {
		sInner = halfChordKm(j.Radii[i+1], cosZ)
	}
	if sOuter <= sInner {
		// Tangent graze; fall back to the boundary-radius density.
		r := j.Radii[i]
		return j.PolyA[i] + j.PolyB[i]*r + j.PolyC[i]*r*r
	}

	integral := densityPrimitive(j.PolyA[i], j.PolyB[i], j.PolyC[i], p, sOuter) -
		densityPrimitive(j.PolyA[i], j.PolyB[i], j.PolyC[i], p, sInner)
	return integral / (sOuter - sInner)
}

// densityPrimitive is the antiderivative of a + b*sqrt(p^2+s^2) + c*(p^2+s^2)
// with respect to s.
func densityPrimitive(a, b, c, p, s float64) float64 {
	r := math.Sqrt(p*p + s*s)
	v := a*s + c*(p*p*s+s*s*s/3.0)
	if p > 1e-12 {
		v += 0.5 * b * (s*r + p*p*math.Log(s+r))
	} else {
		v += 0.5 * b * s * s
	}
	return v
}
