package physics

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/nuphysics/oscprob/internal/cmat"
	"github.com/nuphysics/oscprob/internal/earth"
)

// NuFIT-style normal ordering parameters used throughout.
const (
	testTheta12 = 0.5903
	testTheta13 = 0.1503
	testTheta23 = 0.8430
	testDeltaCP = 4.084
	testDm21Sq  = 7.41e-5
	testDm32Sq  = 2.437e-3
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx := NewContext()
	ctx.SetMixingAngles(testTheta12, testTheta13, testTheta23, testDeltaCP)
	ctx.SetMassSplittings(testDm21Sq, testDm32Sq)
	ctx.PrepareEigensolver(Neutrino)
	ctx.PrepareEigensolver(Antineutrino)
	return ctx
}

func newTestJob(t *testing.T, ctx *Context, cosines, energies []float64) *Job {
	t.Helper()
	model := earth.Default()
	maxLayers, err := model.MaxLayers(cosines, EarthRadiusKm, MaxLayers)
	if err != nil {
		t.Fatalf("max layers: %v", err)
	}
	return &Job{
		Type:               Neutrino,
		Cosines:            cosines,
		Energies:           energies,
		Radii:              model.Radii,
		Rho:                model.Rho,
		ElectronFrac:       model.Ye,
		MaxLayerIdx:        maxLayers,
		ProductionHeightCm: 22.0 * KmToCm,
	}
}

func TestMixingMatrixUnitarity(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)
	u := ctx.MixingMatrix()

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum complex128
			for k := 0; k < 3; k++ {
				sum += u[i][k] * cmplx.Conj(u[j][k])
			}
			want := complex128(0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(sum-want) > 1e-12 {
				t.Fatalf("(U U^dag)[%d][%d] = %v", i, j, sum)
			}
		}
	}
}

func TestMatterEigenstatesVacuumLimit(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	// At zero density the matter masses must coincide with the vacuum
	// splittings, so dmMatVac has zero diagonal.
	dmMatMat, dmMatVac := ctx.MatterEigenstates(5.0, 0.0, Neutrino)
	for i := 0; i < 3; i++ {
		if math.Abs(dmMatVac[i][i]) > 1e-12 {
			t.Fatalf("dmMatVac[%d][%d] = %g at zero density", i, i, dmMatVac[i][i])
		}
	}
	dm := ctx.MassSplittings()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(dmMatMat[i][j]-dm[i][j]) > 1e-12 {
				t.Fatalf("dmMatMat[%d][%d] = %g, vacuum %g", i, j, dmMatMat[i][j], dm[i][j])
			}
		}
	}
}

func TestMatterEigenstatesTraceInvariant(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	// The eigenvalue shifts must sum to the trace shift of the effective
	// Hamiltonian, which is -fac in the sign convention of the cubic.
	for _, nuType := range []NeutrinoType{Neutrino, Antineutrino} {
		for _, density := range []float64{1.0, 4.5, 13.0} {
			for _, energy := range []float64{0.5, 5.0, 50.0} {
				_, dmMatVac := ctx.MatterEigenstates(energy, density, nuType)
				got := dmMatVac[0][0] + dmMatVac[1][1] + dmMatVac[2][2]
				want := -matterPotential(nuType, energy, density)
				if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
					t.Fatalf("type %v E=%g rho=%g: trace shift %g, want %g",
						nuType, energy, density, got, want)
				}
			}
		}
	}
}

func TestExpansionMatchesDirectMatrix(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	for _, density := range []float64{0.0, 2.7, 13.0} {
		for _, energy := range []float64{1.0, 10.0} {
			exp := ctx.TransitionExpansion(Neutrino, energy, density, 1200.0, 0.0)
			direct := ctx.TransitionMatrix(Neutrino, energy, density, 1200.0, 0.0)
			a := exp.Amplitude()
			if d := cmat.MaxAbsDiff(&a, &direct); d > 1e-10 {
				t.Fatalf("rho=%g E=%g: expansion and direct amplitude differ by %g", density, energy, d)
			}
		}
	}
}

func TestZeroLengthAmplitudeIsIdentity(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	exp := ctx.TransitionExpansion(Neutrino, 3.0, 4.5, 0.0, 0.0)
	a := exp.Amplitude()
	id := cmat.Identity()
	if d := cmat.MaxAbsDiff(&a, &id); d > 1e-10 {
		t.Fatalf("zero-length amplitude differs from identity by %g", d)
	}
}

func TestTransitionMatrixUnitary(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	a := ctx.TransitionMatrix(Antineutrino, 2.0, 5.5, 3000.0, 0.0)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum complex128
			for k := 0; k < 3; k++ {
				sum += a[i][k] * cmplx.Conj(a[j][k])
			}
			want := complex128(0)
			if i == j {
				want = 1
			}
			if cmplx.Abs(sum-want) > 1e-9 {
				t.Fatalf("(A A^dag)[%d][%d] = %v", i, j, sum)
			}
		}
	}
}

func TestVacuumTwoFlavorFormula(t *testing.T) {
	t.Parallel()

	// With theta13 = 0 and dm21 = 0 the three-flavor system reduces to
	// two-flavor mu/tau mixing: P(mu->tau) = sin^2(2*theta23) *
	// sin^2(phi) with phi = (LoverEFactor/2) * dm32 * L / E.
	theta23 := 0.7
	dm32 := 2.5e-3

	ctx := NewContext()
	ctx.SetMixingAngles(0.0, 0.0, theta23, 0.0)
	ctx.SetMassSplittings(0.0, dm32)
	ctx.PrepareEigensolver(Neutrino)

	for _, tc := range []struct{ lengthKm, energy float64 }{
		{295, 0.6},
		{1300, 2.5},
		{8000, 5.0},
	} {
		a := ctx.TransitionMatrix(Neutrino, tc.energy, 0.0, tc.lengthKm, 0.0)
		got := normSq(a[2][1]) // P(mu -> tau)

		phi := (LoverEFactor / 2.0) * dm32 * tc.lengthKm / tc.energy
		s2 := math.Sin(2.0 * theta23)
		want := s2 * s2 * math.Pow(math.Sin(phi), 2)

		// Tolerance absorbs the epsilon perturbation of the degenerate
		// solar splitting.
		if math.Abs(got-want) > 1e-4 {
			t.Fatalf("L=%g E=%g: P(mu->tau) = %g, two-flavor formula gives %g",
				tc.lengthKm, tc.energy, got, want)
		}
	}
}

func zeroDensityJob(t *testing.T, cosines, energies []float64) *Job {
	t.Helper()
	model, err := earth.New(
		[]float64{1220, 3480, 5701, 6371},
		make([]float64, 4),
		[]float64{0.5, 0.5, 0.5, 0.5},
	)
	if err != nil {
		t.Fatalf("zero-density model: %v", err)
	}
	maxLayers, err := model.MaxLayers(cosines, EarthRadiusKm, MaxLayers)
	if err != nil {
		t.Fatalf("max layers: %v", err)
	}
	return &Job{
		Type:               Neutrino,
		Cosines:            cosines,
		Energies:           energies,
		Radii:              model.Radii,
		Rho:                model.Rho,
		ElectronFrac:       model.Ye,
		MaxLayerIdx:        maxLayers,
		ProductionHeightCm: 22.0 * KmToCm,
	}
}

func TestVacuumPipelineTwoFlavorFormula(t *testing.T) {
	t.Parallel()

	// Zero-density shells in the two-flavor limit: the chained per-layer
	// amplitudes must collapse to the closed-form vacuum probability over
	// the full path length, independent of how many boundaries are crossed.
	// The diametral bin crosses every boundary of the model.
	theta23 := 0.7
	dm32 := 2.5e-3

	ctx := NewContext()
	ctx.SetMixingAngles(0.0, 0.0, theta23, 0.0)
	ctx.SetMassSplittings(0.0, dm32)
	ctx.PrepareEigensolver(Neutrino)

	cosines := []float64{-1.0, -0.5, 0.0}
	energies := []float64{1.0, 5.0, 10.0}
	job := zeroDensityJob(t, cosines, energies)
	if got := job.MaxLayerIdx[0]; got != len(job.Radii) {
		t.Fatalf("diametral ray crosses %d of %d boundaries", got, len(job.Radii))
	}

	s2 := math.Sin(2.0 * theta23)
	for ci, cosZ := range cosines {
		lengthKm := pathLengthCm(job.ProductionHeightCm, cosZ) / KmToCm
		for ei, energy := range energies {
			p := ComputeBin(ctx, job, ci, ei)

			phi := (LoverEFactor / 2.0) * dm32 * lengthKm / energy
			want := s2 * s2 * math.Pow(math.Sin(phi), 2)
			if math.Abs(p[1][2]-want) > 1e-3 {
				t.Fatalf("cosZ=%g E=%g: P(mu->tau) = %g, vacuum formula gives %g",
					cosZ, energy, p[1][2], want)
			}

			// The electron flavor is decoupled at theta12 = theta13 = 0.
			if math.Abs(p[0][0]-1) > 1e-7 {
				t.Fatalf("cosZ=%g E=%g: P(e->e) = %g", cosZ, energy, p[0][0])
			}
			for before := 0; before < 3; before++ {
				sum := p[before][0] + p[before][1] + p[before][2]
				if math.Abs(sum-1) > 1e-8 {
					t.Fatalf("cosZ=%g E=%g: row %d sums to %g", cosZ, energy, before, sum)
				}
			}
		}
	}
}

func TestZeroDensityTypeSymmetry(t *testing.T) {
	t.Parallel()

	// With delta_CP = 0 vacuum oscillations cannot tell neutrinos from
	// antineutrinos; the potential sign flip is inert at zero density.
	ctx := NewContext()
	ctx.SetMixingAngles(testTheta12, testTheta13, testTheta23, 0.0)
	ctx.SetMassSplittings(testDm21Sq, testDm32Sq)
	ctx.PrepareEigensolver(Neutrino)
	ctx.PrepareEigensolver(Antineutrino)

	cosines := []float64{-1.0, -0.45}
	energies := []float64{1.2, 7.0}
	nuJob := zeroDensityJob(t, cosines, energies)
	nubarJob := *nuJob
	nubarJob.Type = Antineutrino

	for ci := range cosines {
		for ei := range energies {
			pn := ComputeBin(ctx, nuJob, ci, ei)
			pa := ComputeBin(ctx, &nubarJob, ci, ei)
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					if math.Abs(pn[i][j]-pa[i][j]) > 1e-9 {
						t.Fatalf("bin (%d,%d): P_nu[%d][%d]=%g, P_nubar[%d][%d]=%g",
							ci, ei, i, j, pn[i][j], i, j, pa[i][j])
					}
				}
			}
		}
	}
}

func TestComputeBinUnitarity(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	cosines := []float64{-0.95, -0.55, -0.15, 0.3}
	energies := []float64{0.8, 3.0, 12.0, 45.0}
	job := newTestJob(t, ctx, cosines, energies)

	for ci := range cosines {
		for ei := range energies {
			p := ComputeBin(ctx, job, ci, ei)
			for before := 0; before < 3; before++ {
				sum := 0.0
				for after := 0; after < 3; after++ {
					if p[before][after] < -1e-9 || p[before][after] > 1+1e-9 {
						t.Fatalf("bin (%d,%d): P[%d][%d] = %g out of range",
							ci, ei, before, after, p[before][after])
					}
					sum += p[before][after]
				}
				if math.Abs(sum-1) > 1e-8 {
					t.Fatalf("bin (%d,%d): row %d sums to %g", ci, ei, before, sum)
				}
			}
		}
	}
}

func TestComputeBinSymmetricAtZeroPhase(t *testing.T) {
	t.Parallel()

	// With delta_CP = 0 the effective Hamiltonian is real symmetric in every
	// layer, so P(i->j) = P(j->i) even through matter.
	ctx := NewContext()
	ctx.SetMixingAngles(testTheta12, testTheta13, testTheta23, 0.0)
	ctx.SetMassSplittings(testDm21Sq, testDm32Sq)
	ctx.PrepareEigensolver(Neutrino)

	cosines := []float64{-0.9, -0.4}
	energies := []float64{1.5, 8.0}
	job := newTestJob(t, ctx, cosines, energies)

	for ci := range cosines {
		for ei := range energies {
			p := ComputeBin(ctx, job, ci, ei)
			for i := 0; i < 3; i++ {
				for j := 0; j < i; j++ {
					if math.Abs(p[i][j]-p[j][i]) > 1e-8 {
						t.Fatalf("bin (%d,%d): P[%d][%d]=%g but P[%d][%d]=%g",
							ci, ei, i, j, p[i][j], j, i, p[j][i])
					}
				}
			}
		}
	}
}

func TestComputeBinDownGoing(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	// A down-going ray crosses no shells: vacuum oscillation over the
	// production path only.
	cosines := []float64{0.6}
	energies := []float64{1.0}
	job := newTestJob(t, ctx, cosines, energies)
	if job.MaxLayerIdx[0] != 0 {
		t.Fatalf("down-going ray reports %d crossed layers", job.MaxLayerIdx[0])
	}

	p := ComputeBin(ctx, job, 0, 0)
	for before := 0; before < 3; before++ {
		sum := p[before][0] + p[before][1] + p[before][2]
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("row %d sums to %g", before, sum)
		}
	}

	// Short vacuum path at 1 GeV: the survival probabilities stay dominant.
	if p[1][1] < 0.5 {
		t.Fatalf("P(mu->mu) = %g for a short vacuum path", p[1][1])
	}
}

func TestComputeBinDegenerateSplittings(t *testing.T) {
	t.Parallel()

	ctx := NewContext()
	ctx.SetMixingAngles(testTheta12, testTheta13, testTheta23, testDeltaCP)
	ctx.SetMassSplittings(0.0, 0.0)
	ctx.PrepareEigensolver(Neutrino)

	job := newTestJob(t, ctx, []float64{-0.7}, []float64{2.0})
	p := ComputeBin(ctx, job, 0, 0)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.IsNaN(p[i][j]) || math.IsInf(p[i][j], 0) {
				t.Fatalf("degenerate splittings: P[%d][%d] = %g", i, j, p[i][j])
			}
		}
	}
}

func uniformHeightJob(t *testing.T, ctx *Context, cosines, energies []float64, bins int) *Job {
	t.Helper()
	job := newTestJob(t, ctx, cosines, energies)
	job.UseHeightAveraging = true
	job.HeightBins = bins

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = 10.0 + 30.0*float64(i)/float64(bins)
	}
	job.HeightEdges = edges

	prob := make([]float64, bins*2*3*len(energies)*len(cosines))
	for i := range prob {
		prob[i] = 1.0 / float64(bins)
	}
	job.HeightProb = prob
	return job
}

func TestHeightAveragingProbabilities(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	cosines := []float64{-0.85, -0.25}
	energies := []float64{1.0, 6.0}
	job := uniformHeightJob(t, ctx, cosines, energies, 10)

	for ci := range cosines {
		for ei := range energies {
			avg := ComputeBin(ctx, job, ci, ei)
			for before := 0; before < 3; before++ {
				sum := 0.0
				for after := 0; after < 3; after++ {
					if avg[before][after] < -1e-6 || avg[before][after] > 1+1e-6 {
						t.Fatalf("bin (%d,%d): averaged P[%d][%d] = %g out of range",
							ci, ei, before, after, avg[before][after])
					}
					sum += avg[before][after]
				}
				// The diagonal spectral terms carry the full weight, so
				// averaging preserves total probability per initial flavor.
				if math.Abs(sum-1) > 1e-6 {
					t.Fatalf("bin (%d,%d): averaged row %d sums to %g", ci, ei, before, sum)
				}
			}
		}
	}
}

func TestAccumulateHeightAverage(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	cosines := []float64{-0.6}
	energies := []float64{2.0}
	const bins = 5
	job := uniformHeightJob(t, ctx, cosines, energies, bins)

	var lengths [bins]float64
	heightPathLengths(job, cosines[0], lengths[:])
	for b := 1; b < bins; b++ {
		if lengths[b] <= lengths[b-1] {
			t.Fatalf("path lengths not increasing with height: %v", lengths)
		}
	}

	// Zero production probability leaves the shift tensor at its identity
	// initialisation.
	zeroed := *job
	zeroed.HeightProb = make([]float64, len(job.HeightProb))
	shift := newShiftFactor()
	var darg [3]float64 = [3]float64{-1e-9, -2e-9, -3e-9}
	accumulateHeightAverage(&zeroed, &shift, &darg, lengths[:], 0, 0)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for f := 0; f < 3; f++ {
				want := complex128(0)
				if i == j {
					want = 1
				}
				if shift[i][j][f] != want {
					t.Fatalf("zero-probability shift[%d][%d][%d] = %v", i, j, f, shift[i][j][f])
				}
			}
		}
	}

	// Equal phase rates make every coherence factor exactly one, so the
	// off-diagonal accumulates the probability mass of the paired bins.
	shift = newShiftFactor()
	darg = [3]float64{-2e-9, -2e-9, -2e-9}
	accumulateHeightAverage(job, &shift, &darg, lengths[:], 0, 0)
	want := float64(bins-1) / float64(bins)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				continue
			}
			for f := 0; f < 3; f++ {
				got := shift[i][j][f]
				if math.Abs(real(got)-want) > 1e-12 || math.Abs(imag(got)) > 1e-12 {
					t.Fatalf("degenerate-rate shift[%d][%d][%d] = %v, want %g", i, j, f, got, want)
				}
			}
		}
	}
}

func TestSinc(t *testing.T) {
	t.Parallel()
	if got := sinc(0); got != 1.0 {
		t.Fatalf("sinc(0) = %g", got)
	}
	if got, want := sinc(math.Pi), 0.0; math.Abs(got-want) > 1e-15 {
		t.Fatalf("sinc(pi) = %g", got)
	}
	x := 1e-9
	if got, want := sinc(x), 1.0-x*x/6.0; math.Abs(got-want) > 1e-18 {
		t.Fatalf("sinc(%g) = %g, want %g", x, got, want)
	}
	if got, want := sinc(0.5), math.Sin(0.5)/0.5; got != want {
		t.Fatalf("sinc(0.5) = %g, want %g", got, want)
	}
}

func TestPathLength(t *testing.T) {
	t.Parallel()

	// Straight down from directly overhead: path length equals the height.
	h := 22.0 * KmToCm
	if got := pathLengthCm(h, 1.0); math.Abs(got-h) > 1e-3 {
		t.Fatalf("vertical path length = %g, want %g", got, h)
	}

	// Straight up through the center: height plus the full diameter.
	want := h + 2.0*EarthRadiusCm
	if got := pathLengthCm(h, -1.0); math.Abs(got-want) > 1e-3 {
		t.Fatalf("diametral path length = %g, want %g", got, want)
	}
}

func TestLayerDistancesSumToTotal(t *testing.T) {
	t.Parallel()
	ctx := newTestContext(t)

	cosines := []float64{-1.0, -0.99, -0.6, -0.05}
	energies := []float64{1.0}
	job := newTestJob(t, ctx, cosines, energies)

	for ci, cosZ := range cosines {
		maxLayer := job.MaxLayerIdx[ci]
		totalEarthLenCm := -2.0 * cosZ * EarthRadiusCm
		pathLen := pathLengthCm(job.ProductionHeightCm, cosZ)

		sum := 0.0
		for layer := 0; layer <= maxLayer; layer++ {
			sum += layerDistance(job.Radii, layer, maxLayer, pathLen, totalEarthLenCm, cosZ)
		}
		// The inner layers are mirrored, so add them again, minus the
		// production segment and the innermost chord counted once each.
		for layer := 1; layer < maxLayer; layer++ {
			sum += layerDistance(job.Radii, layer, maxLayer, pathLen, totalEarthLenCm, cosZ)
		}
		if math.Abs(sum-pathLen) > 1.0 { // cm tolerance over ~1e9 cm
			t.Fatalf("cosZ=%g: layer distances sum to %g, path length %g", cosZ, sum, pathLen)
		}
	}
}

func TestPolyDensityConstantProfile(t *testing.T) {
	t.Parallel()

	// A polynomial profile with only the constant coefficient set must give
	// the same effective density as the constant-density model.
	model := earth.Default()
	poly, err := earth.NewPoly(
		[]float64{6371, 5701, 3480, 1220},
		[]float64{3.3, 5.0, 11.3, 13.0},
		make([]float64, 4),
		make([]float64, 4),
		[]float64{0.4957, 0.4957, 0.4661, 0.4661},
	)
	if err != nil {
		t.Fatalf("poly model: %v", err)
	}

	cosines := []float64{-0.8}
	maxLayers, err := model.MaxLayers(cosines, EarthRadiusKm, MaxLayers)
	if err != nil {
		t.Fatalf("max layers: %v", err)
	}

	constJob := &Job{
		Cosines: cosines, Energies: []float64{1},
		Radii: model.Radii, Rho: model.Rho, ElectronFrac: model.Ye,
		MaxLayerIdx: maxLayers,
	}
	polyJob := &Job{
		Cosines: cosines, Energies: []float64{1},
		Radii: poly.Radii, PolyA: poly.A, PolyB: poly.B, PolyC: poly.C,
		ElectronFrac: poly.Ye, UsePolyDensity: true,
		MaxLayerIdx: maxLayers,
	}

	maxLayer := maxLayers[0]
	for layer := 1; layer <= maxLayer; layer++ {
		dc := layerDensity(constJob, layer, maxLayer, 0, 0, -0.8)
		dp := layerDensity(polyJob, layer, maxLayer, 0, 0, -0.8)
		if math.Abs(dc-dp) > 1e-9 {
			t.Fatalf("layer %d: constant %g, polynomial %g", layer, dc, dp)
		}
	}
}

func BenchmarkComputeBin(b *testing.B) {
	ctx := NewContext()
	ctx.SetMixingAngles(testTheta12, testTheta13, testTheta23, testDeltaCP)
	ctx.SetMassSplittings(testDm21Sq, testDm32Sq)
	ctx.PrepareEigensolver(Neutrino)

	model := earth.Default()
	cosines := []float64{-0.9}
	maxLayers, err := model.MaxLayers(cosines, EarthRadiusKm, MaxLayers)
	if err != nil {
		b.Fatalf("max layers: %v", err)
	}
	job := &Job{
		Type:               Neutrino,
		Cosines:            cosines,
		Energies:           []float64{5.0},
		Radii:              model.Radii,
		Rho:                model.Rho,
		ElectronFrac:       model.Ye,
		MaxLayerIdx:        maxLayers,
		ProductionHeightCm: 22.0 * KmToCm,
	}

	for b.Loop() {
		ComputeBin(ctx, job, 0, 0)
	}
}
