package backend

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/nuphysics/oscprob/internal/physics"
)

// PoolBackend partitions work by cosine bin across a worker pool. Each worker
// claims the next unprocessed cosine bin from a shared counter and sweeps all
// energy bins for it sequentially, so bins with deep-crossing rays (large
// maxLayer) do not stall a static partition.
type PoolBackend struct {
	workers int
}

// NewPool returns a pool backend sized to GOMAXPROCS.
func NewPool() *PoolBackend {
	return &PoolBackend{workers: runtime.GOMAXPROCS(0)}
}

// NewPoolWithWorkers returns a pool backend with a fixed worker count,
// mainly for tests.
func NewPoolWithWorkers(workers int) *PoolBackend {
	if workers < 1 {
		workers = 1
	}
	return &PoolBackend{workers: workers}
}

func (b *PoolBackend) Name() string { return Pool }

func (b *PoolBackend) Calculate(ctx *physics.Context, job *physics.Job, result []float64) error {
	if err := checkArgs(ctx, job, result); err != nil {
		return err
	}

	nCosines := job.NCosines()
	nEnergies := job.NEnergies()

	workers := b.workers
	if workers > nCosines {
		workers = nCosines
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				ci := int(next.Add(1)) - 1
				if ci >= nCosines {
					return
				}
				for ei := 0; ei < nEnergies; ei++ {
					storeBin(result, nEnergies, ci, ei, physics.ComputeBin(ctx, job, ci, ei))
				}
			}
		}()
	}
	wg.Wait()
	return nil
}
