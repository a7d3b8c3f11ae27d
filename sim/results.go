package sim

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WaveFieldSnapshot is a periodic capture of the per-voxel peak velocity
// fields, emitted every SnapshotInterval steps when it is nonzero (SPEC_FULL
// §12's supplemented snapshot feature). It is not downsampled.
type WaveFieldSnapshot struct {
	Step         int
	SimulatedSec float64
	// MaxAbsV* arrays of the chunks resident at snapshot time, concatenated
	// in Z order at full resolution; offloaded chunks are left out.
	Vx, Vy, Vz []float32
}

// Summary holds run-level diagnostic statistics derived from the
// reconstructed fields, additive to the canonical result fields (SPEC_FULL
// §12): a gonum/stat-backed population summary a caller can log or persist
// without re-scanning the raw arrays itself.
type Summary struct {
	MaxAbsVelocity     float64
	MeanMaxAbsVelocity float64
	DamagedVoxelCount  int
	MeanDamage         float64
}

// SimulationResults is the complete output of one run: the canonical
// fields spec.md §5 names, plus the SPEC_FULL-added diagnostic summary.
// ReconstructResults does not fill Snapshots; snapshots reach the caller
// only through the scheduler's SnapshotSink.
type SimulationResults struct {
	PWaveVelocity   float64
	SWaveVelocity   float64
	VpVsRatio       float64
	PWaveTravelTime float64
	SWaveTravelTime float64

	TotalTimeSteps  int
	ComputationTime time.Duration

	WaveFieldVx, WaveFieldVy, WaveFieldVz []float32 // MaxAbsV*, global W*H*D
	DamageField                           []float32 // global W*H*D

	Snapshots []WaveFieldSnapshot

	Summary Summary
}

// ReconstructResults walks every chunk in Z order, reloading any that are
// still offloaded, and assembles the global W*H*D output arrays plus the
// P/S arrival-derived velocities and travel times, per spec.md §4.8. It is
// the terminal step of a run: chunks are left resident afterward, since the
// caller's run is ending anyway.
func ReconstructResults(p *SimulationParameters, chunks []*WaveFieldChunk, arrival *ArrivalDetector, dt float64, computationTime time.Duration) (*SimulationResults, error) {
	n := p.Width * p.Height * p.Depth
	res := &SimulationResults{
		TotalTimeSteps:  p.TimeSteps,
		ComputationTime: computationTime,
		WaveFieldVx:     make([]float32, n),
		WaveFieldVy:     make([]float32, n),
		WaveFieldVz:     make([]float32, n),
		DamageField:     make([]float32, n),
	}

	for _, c := range chunks {
		if !c.IsResident {
			if err := reloadChunk(c); err != nil {
				return nil, err
			}
		}
		for lz := 0; lz < c.Depth(); lz++ {
			globalZ := c.StartZ + lz
			for y := 0; y < c.H; y++ {
				for x := 0; x < c.W; x++ {
					li := c.idx(x, y, lz)
					gi := voxelIndex(p.Width, p.Height, x, y, globalZ)
					res.WaveFieldVx[gi] = c.MaxAbsVx[li]
					res.WaveFieldVy[gi] = c.MaxAbsVy[li]
					res.WaveFieldVz[gi] = c.MaxAbsVz[li]
					res.DamageField[gi] = c.Damage[li]
				}
			}
		}
	}

	res.PWaveTravelTime = float64(arrival.PArrivalStep) * dt
	res.SWaveTravelTime = float64(arrival.SArrivalStep) * dt

	offset := travelDistance(p)
	if arrival.PArrivalStep > 0 {
		res.PWaveVelocity = offset / res.PWaveTravelTime
	}
	if arrival.SArrivalStep > 0 {
		res.SWaveVelocity = offset / res.SWaveTravelTime
	}
	if res.SWaveVelocity > 0 {
		res.VpVsRatio = res.PWaveVelocity / res.SWaveVelocity
	}

	res.Summary = summarize(res)
	return res, nil
}

// travelDistance is the straight-line distance, in meters, between the
// transducer and receiver positions (normalized coordinates scaled by the
// grid size, without clamping to voxels), used to turn an arrival step into
// a velocity.
func travelDistance(p *SimulationParameters) float64 {
	tx := Vec3{X: p.TxPosition.X * float64(p.Width), Y: p.TxPosition.Y * float64(p.Height), Z: p.TxPosition.Z * float64(p.Depth)}
	rx := Vec3{X: p.RxPosition.X * float64(p.Width), Y: p.RxPosition.Y * float64(p.Height), Z: p.RxPosition.Z * float64(p.Depth)}
	dx, dy, dz := (rx.X-tx.X)*p.PixelSize, (rx.Y-tx.Y)*p.PixelSize, (rx.Z-tx.Z)*p.PixelSize
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// summarize computes the gonum/stat-backed diagnostic summary over the
// reconstructed fields.
func summarize(res *SimulationResults) Summary {
	magnitudes := make([]float64, len(res.WaveFieldVx))
	for i := range magnitudes {
		vx, vy, vz := float64(res.WaveFieldVx[i]), float64(res.WaveFieldVy[i]), float64(res.WaveFieldVz[i])
		magnitudes[i] = math.Sqrt(vx*vx + vy*vy + vz*vz)
	}

	damages := make([]float64, len(res.DamageField))
	damaged := 0
	for i, d := range res.DamageField {
		damages[i] = float64(d)
		if d > 0 {
			damaged++
		}
	}

	s := Summary{DamagedVoxelCount: damaged}
	if len(magnitudes) > 0 {
		s.MaxAbsVelocity = floats.Max(magnitudes)
		s.MeanMaxAbsVelocity = stat.Mean(magnitudes, nil)
		s.MeanDamage = stat.Mean(damages, nil)
	}
	return s
}
