package backend

import (
	"fmt"
	"strings"

	"github.com/nuphysics/oscprob/internal/physics"
)

const (
	Pool = "pool"
	Flat = "flat"
	Auto = "auto"
)

// Backend runs the per-bin oscillation pipeline over the full cosine x energy
// grid and fills result with one 3x3 probability matrix per bin.
//
// Every backend writes the same canonical layout:
//
//	result[ci*nEnergies*9 + ei*9 + (flavorBefore*3 + flavorAfter)]
//
// so callers never need to know which scheduling strategy produced a buffer.
// Backends must produce identical contents for identical inputs: scheduling
// may reorder bins, but never the arithmetic within a bin.
type Backend interface {
	Name() string
	Calculate(ctx *physics.Context, job *physics.Job, result []float64) error
}

// New constructs the backend with the given name. Auto selects the
// bin-parallel pool backend.
func New(name string) (Backend, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	switch normalized {
	case Flat:
		return NewFlat(), nil
	default:
		return NewPool(), nil
	}
}

// Normalize canonicalises a backend name, mapping the empty string to Auto.
func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case Pool, Flat, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, pool, or flat)", backend)
	}
}

// Available returns a comma-separated list of selectable backends.
func Available() string {
	return strings.Join([]string{Pool, Flat}, ",")
}

func resultIndex(nEnergies, cosineIdx, energyIdx int) int {
	return cosineIdx*nEnergies*9 + energyIdx*9
}

// storeBin writes one probability matrix into its disjoint result slot.
func storeBin(result []float64, nEnergies, cosineIdx, energyIdx int, p [3][3]float64) {
	base := resultIndex(nEnergies, cosineIdx, energyIdx)
	for before := 0; before < 3; before++ {
		for after := 0; after < 3; after++ {
			result[base+before*3+after] = p[before][after]
		}
	}
}

func checkArgs(ctx *physics.Context, job *physics.Job, result []float64) error {
	if !ctx.Prepared(job.Type) {
		return fmt.Errorf("backend: eigensolver constants not prepared for %s", job.Type)
	}
	if want := job.NCosines() * job.NEnergies() * 9; len(result) != want {
		return fmt.Errorf("backend: result buffer has %d elements, want %d", len(result), want)
	}
	return nil
}
