package physics

// Job carries the validated, read-only inputs of one calculation pass. The
// orchestration layer is responsible for size and ordering validation before
// a Job reaches the dispatch layer; nothing here is checked per bin.
type Job struct {
	Type NeutrinoType

	Cosines  []float64 // zenith cosines, in [-1, 1]
	Energies []float64 // GeV, strictly positive

	// Earth model, canonicalised to outer->inner boundary order. Rho holds
	// constant layer densities; with UsePolyDensity set, PolyA/B/C hold
	// quadratic density profile coefficients per layer instead.
	Radii          []float64
	Rho            []float64
	PolyA          []float64
	PolyB          []float64
	PolyC          []float64
	ElectronFrac   []float64
	UsePolyDensity bool

	// MaxLayerIdx[ci] is the number of shell boundaries crossed by a ray at
	// cosine bin ci, excluding the production layer.
	MaxLayerIdx []int

	ProductionHeightCm float64

	// Production-height averaging inputs. HeightProb is indexed
	// [type][flavor][energy][cosine][bin]; HeightEdges has HeightBins+1
	// entries in km. Both are ignored unless UseHeightAveraging is set.
	UseHeightAveraging bool
	HeightBins         int
	HeightProb         []float64
	HeightEdges        []float64
}

// NCosines returns the cosine grid size.
func (j *Job) NCosines() int { return len(j.Cosines) }

// NEnergies returns the energy grid size.
func (j *Job) NEnergies() int { return len(j.Energies) }

// heightProbAt looks up the production probability for one
// (type, flavor, energy, cosine, height-bin) coordinate.
func (j *Job) heightProbAt(flavor, energyIdx, cosineIdx, bin int) float64 {
	nb := j.HeightBins
	ne := len(j.Energies)
	nc := len(j.Cosines)
	idx := int(j.Type)*3*ne*nc*nb + flavor*ne*nc*nb + energyIdx*nc*nb + cosineIdx*nb + bin
	return j.HeightProb[idx]
}
