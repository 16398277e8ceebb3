package backend

import (
	"runtime"
	"sync"

	"github.com/nuphysics/oscprob/internal/physics"
)

// flatBlockSize is the logical execution-unit granularity of the flat
// backend: energy bins are padded up to a multiple of it so that every
// cosine row occupies the same number of index slots.
const flatBlockSize = 64

// FlatBackend flattens (cosine, energy) into one global index space, padded
// to a fixed block granularity, and walks it with a grid-stride loop per
// worker. Padding indices fall outside the energy grid and perform no write.
// Results land in the same canonical layout as the pool backend.
type FlatBackend struct {
	workers int
}

// NewFlat returns a flat backend sized to GOMAXPROCS.
func NewFlat() *FlatBackend {
	return &FlatBackend{workers: runtime.GOMAXPROCS(0)}
}

// NewFlatWithWorkers returns a flat backend with a fixed worker count,
// mainly for tests.
func NewFlatWithWorkers(workers int) *FlatBackend {
	if workers < 1 {
		workers = 1
	}
	return &FlatBackend{workers: workers}
}

func (b *FlatBackend) Name() string { return Flat }

func (b *FlatBackend) Calculate(ctx *physics.Context, job *physics.Job, result []float64) error {
	if err := checkArgs(ctx, job, result); err != nil {
		return err
	}

	nCosines := job.NCosines()
	nEnergies := job.NEnergies()

	paddedEnergies := (nEnergies + flatBlockSize - 1) / flatBlockSize * flatBlockSize
	total := nCosines * paddedEnergies

	workers := b.workers
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			for idx := start; idx < total; idx += workers {
				ei := idx % paddedEnergies
				ci := idx / paddedEnergies
				if ei >= nEnergies {
					continue
				}
				storeBin(result, nEnergies, ci, ei, physics.ComputeBin(ctx, job, ci, ei))
			}
		}(w)
	}
	wg.Wait()
	return nil
}
