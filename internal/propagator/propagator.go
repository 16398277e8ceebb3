// Package propagator is the orchestration layer of the oscillation engine:
// it validates and stores all configuration (grids, mixing parameters, the
// earth density model, production-height inputs), builds the immutable
// calculation context, invokes the selected dispatch backend, and exposes
// probability lookups once a calculation pass completes.
//
// All configuration errors surface here, at setup time. By the time a job
// reaches the backend every precondition holds, which is what allows the
// per-bin pipeline to run without checks or locks.
package propagator

import (
	"fmt"
	"math"

	"github.com/nuphysics/oscprob/internal/backend"
	"github.com/nuphysics/oscprob/internal/earth"
	"github.com/nuphysics/oscprob/internal/logger"
	"github.com/nuphysics/oscprob/internal/physics"
)

// Propagator owns the configuration and result buffer of one oscillation
// calculation. It is created for fixed grid sizes; grids, model, and physics
// parameters are set once before Calculate and stay immutable during it.
// A Propagator is not safe for concurrent mutation, but Calculate itself
// parallelises internally.
type Propagator struct {
	nCosines  int
	nEnergies int

	cosines  []float64
	energies []float64

	model     *earth.Model
	maxLayers []int

	ctx *physics.Context

	productionHeightCm float64
	heightBins         int
	useHeightAveraging bool
	heightProb         []float64
	heightEdges        []float64

	isSetCosines  bool
	isSetEnergies bool
	isSetHeight   bool
	isSetModel    bool
	isSetMixing   bool
	isSetMasses   bool
	isSetHeights  bool

	backend backend.Backend
	log     logger.Logger

	result []float64
}

// New creates a propagator for the given grid sizes with the default (pool)
// backend.
func New(nCosines, nEnergies int) (*Propagator, error) {
	if nCosines < 1 || nEnergies < 1 {
		return nil, fmt.Errorf("%w: %d cosine and %d energy bins", ErrBinCount, nCosines, nEnergies)
	}
	b, _ := backend.New(backend.Auto)
	return &Propagator{
		nCosines:  nCosines,
		nEnergies: nEnergies,
		ctx:       physics.NewContext(),
		backend:   b,
		log:       logger.Default(),
		result:    make([]float64, nCosines*nEnergies*9),
	}, nil
}

// SetLogger replaces the propagator's logger.
func (p *Propagator) SetLogger(log logger.Logger) {
	if log != nil {
		p.log = log
	}
}

// SetBackend selects the dispatch strategy by name ("pool", "flat", "auto").
func (p *Propagator) SetBackend(name string) error {
	b, err := backend.New(name)
	if err != nil {
		return err
	}
	p.backend = b
	return nil
}

// BackendName reports the active dispatch strategy.
func (p *Propagator) BackendName() string { return p.backend.Name() }

// NCosines returns the cosine grid size.
func (p *Propagator) NCosines() int { return p.nCosines }

// NEnergies returns the energy grid size.
func (p *Propagator) NEnergies() int { return p.nEnergies }

// LayerBoundaryCount returns the number of shell boundary radii in the
// density model. The number of layers is one less.
func (p *Propagator) LayerBoundaryCount() int {
	if p.model == nil {
		return 0
	}
	return p.model.Shells()
}

// SetMixingAngles sets the three mixing angles and the CP phase in radians.
func (p *Propagator) SetMixingAngles(theta12, theta13, theta23, deltaCP float64) {
	p.ctx.SetMixingAngles(theta12, theta13, theta23, deltaCP)
	p.isSetMixing = true
}

// SetMassSplittings sets the two mass-squared differences in eV^2. No mass
// hierarchy is assumed; degenerate inputs are perturbed internally.
func (p *Propagator) SetMassSplittings(dm21sq, dm32sq float64) {
	p.ctx.SetMassSplittings(dm21sq, dm32sq)
	p.isSetMasses = true
}

// SetEnergies sets the energy grid in GeV.
func (p *Propagator) SetEnergies(list []float64) error {
	if len(list) != p.nEnergies {
		return fmt.Errorf("%w: %d energies, propagator built for %d", ErrBinCount, len(list), p.nEnergies)
	}
	for i, e := range list {
		if e <= 0 || math.IsNaN(e) {
			return fmt.Errorf("%w: energy[%d] = %g GeV", ErrBinRange, i, e)
		}
	}
	p.energies = append([]float64(nil), list...)
	p.isSetEnergies = true
	return nil
}

// SetCosines sets the zenith-cosine grid. Values must lie in [-1, 1]. The
// per-bin crossed-layer counts are recomputed if a density model is present.
func (p *Propagator) SetCosines(list []float64) error {
	if len(list) != p.nCosines {
		return fmt.Errorf("%w: %d cosines, propagator built for %d", ErrBinCount, len(list), p.nCosines)
	}
	for i, c := range list {
		if c < -1 || c > 1 || math.IsNaN(c) {
			return fmt.Errorf("%w: cosine[%d] = %g", ErrBinRange, i, c)
		}
	}
	p.cosines = append([]float64(nil), list...)
	p.isSetCosines = true
	if p.isSetModel {
		return p.refreshMaxLayers()
	}
	return nil
}

// SetDensity installs a constant-density layered model.
func (p *Propagator) SetDensity(radii, rhos, yps []float64) error {
	m, err := earth.New(radii, rhos, yps)
	if err != nil {
		return err
	}
	return p.setModel(m)
}

// SetDensityPoly installs a model with quadratic density profiles per layer.
func (p *Propagator) SetDensityPoly(radii, a, b, c, yps []float64) error {
	m, err := earth.NewPoly(radii, a, b, c, yps)
	if err != nil {
		return err
	}
	return p.setModel(m)
}

// SetDefaultDensity installs the built-in coarse PREM model.
func (p *Propagator) SetDefaultDensity() error {
	return p.setModel(earth.Default())
}

// SetDensityFromFile loads a 3- or 5-column density table.
func (p *Propagator) SetDensityFromFile(path string) error {
	m, err := earth.LoadFile(path)
	if err != nil {
		return err
	}
	p.log.Debug("loaded density table", "path", path, "shells", m.Shells(), "poly", m.Poly)
	return p.setModel(m)
}

// ScaleDensity replaces the inner boundary radii and scales per-layer
// densities by the given weights (innermost-first, one fewer entry than
// there are boundaries).
func (p *Propagator) ScaleDensity(radii, weights []float64) error {
	if p.model == nil {
		return fmt.Errorf("%w: no density model set", ErrNotConfigured)
	}
	if err := p.model.Scale(radii, weights); err != nil {
		return err
	}
	return p.setModel(p.model)
}

// SetElectronFractions replaces the per-shell electron fractions of the
// current model.
func (p *Propagator) SetElectronFractions(yps []float64) error {
	if p.model == nil {
		return fmt.Errorf("%w: no density model set", ErrNotConfigured)
	}
	return p.model.SetElectronFractions(yps)
}

func (p *Propagator) setModel(m *earth.Model) error {
	p.model = m
	p.isSetModel = true
	if p.isSetCosines {
		return p.refreshMaxLayers()
	}
	return nil
}

func (p *Propagator) refreshMaxLayers() error {
	maxLayers, err := p.model.MaxLayers(p.cosines, physics.EarthRadiusKm, physics.MaxLayers)
	if err != nil {
		return err
	}
	p.maxLayers = maxLayers
	return nil
}

// SetProductionHeight sets the neutrino production height in km above the
// surface. The cosine grid must be set first.
func (p *Propagator) SetProductionHeight(heightKm float64) error {
	if !p.isSetCosines {
		return fmt.Errorf("%w: cosine grid must be set before the production height", ErrOrder)
	}
	p.productionHeightCm = heightKm * physics.KmToCm
	p.isSetHeight = true
	return nil
}

// SetProductionHeightBins enables production-height averaging over the given
// number of histogram bins; zero disables it.
func (p *Propagator) SetProductionHeightBins(n int) error {
	if n < 0 || n > physics.MaxHeightBins {
		return fmt.Errorf("%w: %d bins, capacity %d", ErrHeightBins, n, physics.MaxHeightBins)
	}
	p.heightBins = n
	p.useHeightAveraging = n >= 1
	p.isSetHeights = false
	if p.useHeightAveraging {
		p.log.Debug("production height averaging enabled", "bins", n)
	}
	return nil
}

// SetProductionHeightHistogram supplies the per-bin production probabilities,
// indexed [type][flavor][energy][cosine][bin], and the bin edges in km.
func (p *Propagator) SetProductionHeightHistogram(prob, edges []float64) error {
	if !p.useHeightAveraging {
		return fmt.Errorf("%w: production height averaging not enabled", ErrOrder)
	}
	if want := p.heightBins * 2 * 3 * p.nEnergies * p.nCosines; len(prob) != want {
		return fmt.Errorf("%w: %d probabilities, want %d", ErrHeightBins, len(prob), want)
	}
	if len(edges) != p.heightBins+1 {
		return fmt.Errorf("%w: %d bin edges, want %d", ErrHeightBins, len(edges), p.heightBins+1)
	}
	p.heightProb = append([]float64(nil), prob...)
	p.heightEdges = append([]float64(nil), edges...)
	p.isSetHeights = true
	return nil
}

// Calculate runs one full calculation pass for the given neutrino type and
// stores the result buffer. It is all-or-nothing: on error the previous
// buffer contents are unspecified and must not be read.
func (p *Propagator) Calculate(t physics.NeutrinoType) error {
	switch {
	case !p.isSetMixing:
		return fmt.Errorf("%w: mixing angles not set", ErrNotConfigured)
	case !p.isSetMasses:
		return fmt.Errorf("%w: mass splittings not set", ErrNotConfigured)
	case !p.isSetEnergies:
		return fmt.Errorf("%w: energy grid not set", ErrNotConfigured)
	case !p.isSetCosines:
		return fmt.Errorf("%w: cosine grid not set", ErrNotConfigured)
	case !p.isSetModel:
		return fmt.Errorf("%w: density model not set", ErrNotConfigured)
	case !p.isSetHeight:
		return fmt.Errorf("%w: production height not set", ErrNotConfigured)
	case p.useHeightAveraging && !p.isSetHeights:
		return fmt.Errorf("%w: production height histogram not set", ErrNotConfigured)
	}

	p.ctx.PrepareEigensolver(t)

	job := &physics.Job{
		Type:               t,
		Cosines:            p.cosines,
		Energies:           p.energies,
		Radii:              p.model.Radii,
		Rho:                p.model.Rho,
		PolyA:              p.model.A,
		PolyB:              p.model.B,
		PolyC:              p.model.C,
		ElectronFrac:       p.model.Ye,
		UsePolyDensity:     p.model.Poly,
		MaxLayerIdx:        p.maxLayers,
		ProductionHeightCm: p.productionHeightCm,
		UseHeightAveraging: p.useHeightAveraging,
		HeightBins:         p.heightBins,
		HeightProb:         p.heightProb,
		HeightEdges:        p.heightEdges,
	}

	p.log.Debug("dispatching calculation",
		"type", t.String(),
		"backend", p.backend.Name(),
		"cosines", p.nCosines,
		"energies", p.nEnergies,
		"heightAveraging", p.useHeightAveraging)

	return p.backend.Calculate(p.ctx, job, p.result)
}

// Probability returns P(before -> after) for one (cosine, energy) bin of the
// last calculation pass.
func (p *Propagator) Probability(cosineIdx, energyIdx int, ch Channel) (float64, error) {
	if cosineIdx < 0 || cosineIdx >= p.nCosines || energyIdx < 0 || energyIdx >= p.nEnergies {
		return 0, fmt.Errorf("%w: bin (%d, %d)", ErrBinRange, cosineIdx, energyIdx)
	}
	if ch < 0 || ch > ChanTauTau {
		return 0, fmt.Errorf("%w: channel %d", ErrBinRange, ch)
	}
	return p.result[cosineIdx*p.nEnergies*9+energyIdx*9+int(ch)], nil
}

// ProbabilityGrid copies one channel of the last result into a flat slice,
// walking cosine-major within each energy.
func (p *Propagator) ProbabilityGrid(ch Channel) ([]float64, error) {
	if ch < 0 || ch > ChanTauTau {
		return nil, fmt.Errorf("%w: channel %d", ErrBinRange, ch)
	}
	out := make([]float64, 0, p.nCosines*p.nEnergies)
	for ei := 0; ei < p.nEnergies; ei++ {
		for ci := 0; ci < p.nCosines; ci++ {
			out = append(out, p.result[ci*p.nEnergies*9+ei*9+int(ch)])
		}
	}
	return out, nil
}

// Results returns the raw canonical result buffer of the last pass. The
// returned slice aliases internal storage and must be treated as read-only.
func (p *Propagator) Results() []float64 { return p.result }
