package sim

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// ChunkUpdate is the §6 "on_chunk_updated" sink payload: one chunk's
// velocity arrays plus its placement in the global volume and the
// simulated time they were observed at. Per spec.md §4.7 step 3 it is
// emitted after each chunk's velocity kernel completes, throttled to every
// chunkUpdateStride steps. The slices alias the chunk's live arrays; a
// sink must not retain them past the callback, since a sliding-window run
// may offload (and reuse the backing memory of) this chunk immediately
// afterward.
type ChunkUpdate struct {
	StartZ, Depth int
	Step          int
	SimTime       float64
	Vx, Vy, Vz    []float32
}

const chunkUpdateStride = 5

// RunOptions bundles the collaborators the Scheduler needs beyond the
// physics inputs: the kernel backend, a logger, and an optional progress
// sink. All fields but Backend have usable zero values.
type RunOptions struct {
	Backend  Backend
	Log      logrus.FieldLogger
	OnUpdate func(ChunkUpdate)
	Snapshot SnapshotSink
}

// Scheduler drives the whole run: source evaluation, the stress pass, the
// velocity pass, halo exchange and boundary conditions, chunk residency,
// and arrival detection, for every step n = 1..TimeSteps (spec.md §4.7).
type Scheduler struct {
	params   *SimulationParameters
	mats     *MaterialVolume
	dens     *DensityField
	elastics *PerVoxelElastics
	dt       float64
	backend  Backend
	log      logrus.FieldLogger
	onUpdate func(ChunkUpdate)
	snapshot SnapshotSink

	source   *SourceGenerator
	arrival  *ArrivalDetector
	chunks   []*WaveFieldChunk
	rxX      int
	rxY      int
	rxZ      int
}

// NewScheduler builds a scheduler for one run. dt should come from
// AnalyzeCFL. The chunk set is allocated (and, if EnableOffloading is set,
// nothing is offloaded yet) at construction time.
func NewScheduler(p *SimulationParameters, mats *MaterialVolume, dens *DensityField, elastics *PerVoxelElastics, dt float64, opts RunOptions) *Scheduler {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	rxX, rxY, rxZ := ReceiverVoxel(p)
	return &Scheduler{
		params:   p,
		mats:     mats,
		dens:     dens,
		elastics: elastics,
		dt:       dt,
		backend:  opts.Backend,
		log:      log,
		onUpdate: opts.OnUpdate,
		snapshot: opts.Snapshot,
		source:   NewSourceGenerator(p, dt),
		arrival:  NewArrivalDetector(p.Axis),
		chunks:   allocateChunks(p),
		rxX:      rxX, rxY: rxY, rxZ: rxZ,
	}
}

// Chunks exposes the scheduler's chunk set, for the reducer to walk after
// Run returns (reloading any still-offloaded chunk as it goes).
func (s *Scheduler) Chunks() []*WaveFieldChunk { return s.chunks }

// Arrival exposes the populated arrival detector after Run returns.
func (s *Scheduler) Arrival() *ArrivalDetector { return s.arrival }

// Run executes every step until TimeSteps is reached or ctx is cancelled.
// Cancellation is not an error: Run returns nil and the caller gets the
// partial field state accumulated so far, per spec.md §7. A chunk
// offload/reload failure is likewise not fatal (spec.md §7 IoFailure) and
// never aborts Run; it is logged and the affected chunk reverts to
// in-memory residency. ctx is checked once per step rather than per voxel
// so the cancellation check never has to thread through the kernel call
// stack.
func (s *Scheduler) Run(ctx context.Context) error {
	sliding := s.params.EnableOffloading && len(s.chunks) > 1

	if sliding {
		// Sliding-window mode starts with only the first two chunks resident;
		// everything else begins offloaded to free memory up front.
		for i := 2; i < len(s.chunks); i++ {
			s.offloadOrKeepResident(s.chunks[i])
		}
	}

	for n := 1; n <= s.params.TimeSteps; n++ {
		select {
		case <-ctx.Done():
			s.log.WithField("step", n-1).Info("run cancelled, returning partial results")
			return nil
		default:
		}

		sourceVal := s.source.Eval(n)

		if err := s.runPass(StressPass, n, sourceVal, sliding); err != nil {
			return err
		}
		if err := s.runPass(VelocityPass, n, sourceVal, sliding); err != nil {
			return err
		}

		// Best-effort: in sliding-window mode a snapshot only covers
		// whichever chunks happen to be resident at end of step, since
		// forcing every chunk resident here would defeat offloading.
		if err := maybeSnapshot(s.snapshot, n, s.params.SnapshotInterval, float64(n)*s.dt, s.chunks); err != nil {
			s.log.WithError(err).Warn("snapshot write failed")
		}
	}

	return nil
}

// Dispose removes every scratch file this run's sliding window may have
// written (spec.md §4.1 delete_scratch), regardless of whether offloading
// was ever enabled or the run finished, was cancelled, or hit an I/O
// failure along the way. Safe to call more than once.
func (s *Scheduler) Dispose() {
	deleteScratch(s.params.OffloadDirectory, s.chunks)
}

// runPass runs one half-step (stress or velocity) over every chunk in Z
// order, exchanging halos and applying boundaries between chunks, and
// managing sliding-window residency around each chunk's processing turn.
func (s *Scheduler) runPass(pass Pass, step int, sourceVal float64, sliding bool) error {
	for i, c := range s.chunks {
		if sliding {
			s.ensureResident(c)
		}

		isFirst := i == 0
		isLast := i == len(s.chunks)-1

		if i > 0 {
			if pass == StressPass {
				ExchangeVelocityHalo(s.chunks[i-1], c)
			} else {
				ExchangeStressHalo(s.chunks[i-1], c)
			}
		}
		ApplyGlobalBoundaries(c, isFirst, isLast, pass)

		ctxStep := StepContext{
			Params:     s.params,
			Materials:  s.mats,
			Density:    s.dens,
			Elastics:   s.elastics,
			Source:     s.source,
			Dt:         s.dt,
			Step:       step,
			SourceVal:  sourceVal,
			TotalDepth: s.params.Depth,
		}

		var err error
		if pass == StressPass {
			err = s.backend.RunStress(c, ctxStep)
		} else {
			err = s.backend.RunVelocity(c, ctxStep)
		}
		if err != nil {
			return err
		}

		if pass == VelocityPass {
			// The receiver sample must be taken while its chunk is transiently
			// resident during the velocity pass; by the time the full step
			// finishes, a sliding-window run may have already offloaded it
			// again.
			if s.rxZ >= c.StartZ && s.rxZ < c.EndZ {
				lz := s.rxZ - c.StartZ
				idx := c.idx(s.rxX, s.rxY, lz)
				s.arrival.Probe(step, float64(c.Vx[idx]), float64(c.Vy[idx]), float64(c.Vz[idx]))
			}

			// spec.md §4.7 step 3: emitted after each chunk's velocity kernel
			// completes, throttled to every chunkUpdateStride steps.
			if step%chunkUpdateStride == 0 && s.onUpdate != nil {
				s.onUpdate(ChunkUpdate{
					StartZ:  c.StartZ,
					Depth:   c.Depth(),
					Step:    step,
					SimTime: float64(step) * s.dt,
					Vx:      c.Vx,
					Vy:      c.Vy,
					Vz:      c.Vz,
				})
			}
		}

		// Once chunk i has exchanged its halo with i-1 and run its kernel,
		// i-1 is done for this pass: nothing later in the pass touches it,
		// so the sliding window drops it, leaving chunk i resident until the
		// next iteration loads i+1 beside it.
		if sliding && i > 0 {
			s.offloadOrKeepResident(s.chunks[i-1])
		}
	}

	// The last chunk is never offloaded inside the loop above (there is no
	// i+1 iteration to trigger it); offload it here so every pass ends with
	// no chunk resident and the window never grows past two residents.
	if sliding && len(s.chunks) > 0 {
		s.offloadOrKeepResident(s.chunks[len(s.chunks)-1])
	}
	return nil
}

// ensureResident reloads c if it isn't already resident. A reload
// *IoFailure (spec.md §7) is not fatal: it is logged, the chunk's offload
// path is cleared, and the chunk is reinitialized resident (zero-filled,
// since its on-disk state is unreachable) so the pass can proceed — "the
// run continues but those chunks revert to in-memory residency."
func (s *Scheduler) ensureResident(c *WaveFieldChunk) {
	if c.IsResident {
		return
	}
	if err := reloadChunk(c); err != nil {
		s.logIoFailure(err)
		c.OffloadPath = ""
		c.allocate()
	}
}

// offloadOrKeepResident offloads c, or, on an *IoFailure, logs it and
// leaves c resident (offloadChunk never releases a chunk's arrays unless
// the write fully succeeds, so the chunk's in-memory state is already
// intact — this just declines to propagate the error). Not fatal per
// spec.md §7.
func (s *Scheduler) offloadOrKeepResident(c *WaveFieldChunk) {
	if err := offloadChunk(c, s.params.OffloadDirectory); err != nil {
		s.logIoFailure(err)
		c.OffloadPath = ""
	}
}

func (s *Scheduler) logIoFailure(err error) {
	var ioErr *IoFailure
	if errors.As(err, &ioErr) {
		s.log.WithFields(logrus.Fields{
			"startZ": ioErr.StartZ, "endZ": ioErr.EndZ, "op": ioErr.Op,
		}).WithError(err).Warn("chunk i/o failed, keeping chunk resident")
		return
	}
	s.log.WithError(err).Warn("chunk i/o failed, keeping chunk resident")
}

func (s *Scheduler) residentCount() int {
	n := 0
	for _, c := range s.chunks {
		if c.IsResident {
			n++
		}
	}
	return n
}
