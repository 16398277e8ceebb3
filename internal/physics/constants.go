package physics

import "fmt"

// Physical constants and engine capacity limits. Units follow the caller
// contract: energies in GeV, radii in km, densities in g/cm^3, mass-squared
// splittings in eV^2.
const (
	// TwoRootTwoGf is 2*sqrt(2)*G_F*N_A in units of eV^2 per (GeV * g/cm^3),
	// assuming an electron fraction of 0.5.
	TwoRootTwoGf = 1.52588e-4

	// LoverEFactor is (1/2)*(1/(hbar*c)) in units of GeV/(eV^2 km): the
	// conversion between a mass splitting times a path length over an energy
	// and an oscillation phase.
	LoverEFactor = 2.534

	// EarthRadiusKm is the detector radius: rays are parameterised by the
	// zenith cosine seen from this radius.
	EarthRadiusKm = 6371.0

	KmToCm        = 1.0e5
	EarthRadiusCm = EarthRadiusKm * KmToCm

	// MaxLayers bounds the number of shell boundaries a single ray may
	// cross. Exceeding it is a capacity violation, not a per-bin error.
	MaxLayers = 8

	// MaxHeightBins bounds the production-height histogram resolution.
	MaxHeightBins = 20

	// DegeneracyEpsilon breaks exactly degenerate mass splittings so the
	// eigenvalue reordering never divides by zero.
	DegeneracyEpsilon = 5.0e-9
)

// NeutrinoType selects the sign of the matter potential term.
type NeutrinoType int

const (
	Neutrino NeutrinoType = iota
	Antineutrino
)

func (t NeutrinoType) String() string {
	switch t {
	case Neutrino:
		return "neutrino"
	case Antineutrino:
		return "antineutrino"
	default:
		return "unknown"
	}
}

// ParseNeutrinoType converts a type name ("neutrino", "antineutrino", or the
// short forms "nu" and "nubar") to a NeutrinoType.
func ParseNeutrinoType(s string) (NeutrinoType, error) {
	switch s {
	case "neutrino", "nu", "":
		return Neutrino, nil
	case "antineutrino", "nubar", "anti":
		return Antineutrino, nil
	default:
		return 0, fmt.Errorf("unknown neutrino type %q", s)
	}
}

// matterPotential returns the 2E*V term added to the effective Hamiltonian,
// negative for neutrinos and positive for antineutrinos.
func matterPotential(t NeutrinoType, energy, density float64) float64 {
	if t == Antineutrino {
		return TwoRootTwoGf * energy * density
	}
	return -TwoRootTwoGf * energy * density
}
