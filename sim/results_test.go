package sim

import "testing"

func TestReconstructResultsAssemblesGlobalFields(t *testing.T) {
	p := testParams()
	chunks := allocateChunks(p)
	c := chunks[0]
	for i := range c.MaxAbsVx {
		c.MaxAbsVx[i] = 3
		c.Damage[i] = 0.25
	}

	arrival := NewArrivalDetector(p.Axis)
	arrival.PArrivalStep = 10
	arrival.SArrivalStep = 20

	res, err := ReconstructResults(p, chunks, arrival, 1e-7, 0)
	if err != nil {
		t.Fatalf("ReconstructResults failed: %v", err)
	}
	if len(res.WaveFieldVx) != p.Width*p.Height*p.Depth {
		t.Fatalf("expected global field length %d, got %d", p.Width*p.Height*p.Depth, len(res.WaveFieldVx))
	}
	for _, v := range res.WaveFieldVx {
		if v != 3 {
			t.Fatalf("expected every voxel reconstructed to 3, got %v", v)
		}
	}
	if res.PWaveTravelTime <= 0 {
		t.Fatalf("expected positive P travel time, got %v", res.PWaveTravelTime)
	}
	if res.SWaveTravelTime <= res.PWaveTravelTime {
		t.Fatalf("expected S travel time (%v) after P travel time (%v)", res.SWaveTravelTime, res.PWaveTravelTime)
	}
	if res.Summary.DamagedVoxelCount != len(res.DamageField) {
		t.Fatalf("expected every voxel damaged, got %d of %d", res.Summary.DamagedVoxelCount, len(res.DamageField))
	}
}

func TestReconstructResultsReloadsOffloadedChunks(t *testing.T) {
	p := testParams()
	dir := t.TempDir()
	chunks := allocateChunks(p)
	for i := range chunks[0].MaxAbsVy {
		chunks[0].MaxAbsVy[i] = 9
	}
	if err := offloadChunk(chunks[0], dir); err != nil {
		t.Fatalf("offloadChunk failed: %v", err)
	}

	arrival := NewArrivalDetector(p.Axis)
	res, err := ReconstructResults(p, chunks, arrival, 1e-7, 0)
	if err != nil {
		t.Fatalf("ReconstructResults failed to reload an offloaded chunk: %v", err)
	}
	for _, v := range res.WaveFieldVy {
		if v != 9 {
			t.Fatalf("expected reloaded value 9, got %v", v)
		}
	}
}
