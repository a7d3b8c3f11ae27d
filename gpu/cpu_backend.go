// Package gpu provides the kernel backends implementing sim.Backend: a CPU
// worker pool that always works, and an OpenCL backend stub whose
// constructor always fails, so backend selection falls back to the CPU.
package gpu

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"elastowave/sim"
)

// CPUBackend runs the stress and velocity kernels by parallelizing over
// Z-planes within a chunk, one goroutine per worker draining a shared work
// queue of plane indices.
type CPUBackend struct {
	numWorkers int
	log        logrus.FieldLogger
}

// NewCPUBackend creates a CPU backend sized to the host's core count.
func NewCPUBackend(log logrus.FieldLogger) *CPUBackend {
	if log == nil {
		log = logrus.StandardLogger()
	}
	workers := runtime.NumCPU()
	log.WithField("workers", workers).Info("initializing CPU compute backend")
	return &CPUBackend{numWorkers: workers, log: log}
}

func (b *CPUBackend) Name() string { return "cpu" }

func (b *CPUBackend) RunStress(c *sim.WaveFieldChunk, ctx sim.StepContext) error {
	b.parallelForEachPlane(c, func(lz int) { sim.StressPlane(c, lz, ctx) })
	return nil
}

func (b *CPUBackend) RunVelocity(c *sim.WaveFieldChunk, ctx sim.StepContext) error {
	b.parallelForEachPlane(c, func(lz int) { sim.VelocityPlane(c, lz, ctx) })
	return nil
}

func (b *CPUBackend) Close() {}

// parallelForEachPlane fans a Z-plane work queue out across numWorkers
// goroutines and blocks until every plane has run. A single-plane or
// single-worker chunk degrades to running inline on the calling goroutine,
// matching the scalar fallback spec.md §5 requires.
func (b *CPUBackend) parallelForEachPlane(c *sim.WaveFieldChunk, fn func(lz int)) {
	depth := c.Depth()
	if depth <= 1 || b.numWorkers <= 1 {
		for lz := 0; lz < depth; lz++ {
			fn(lz)
		}
		return
	}

	work := make(chan int, depth)
	for lz := 0; lz < depth; lz++ {
		work <- lz
	}
	close(work)

	var wg sync.WaitGroup
	workers := b.numWorkers
	if workers > depth {
		workers = depth
	}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for lz := range work {
				fn(lz)
			}
		}()
	}
	wg.Wait()
}
