package sim

import "testing"

func TestExchangeVelocityHaloCopiesNeighborPlanes(t *testing.T) {
	lo := &WaveFieldChunk{StartZ: 0, EndZ: 6, W: 3, H: 3}
	hi := &WaveFieldChunk{StartZ: 6, EndZ: 12, W: 3, H: 3}
	lo.allocate()
	hi.allocate()

	plane := 3 * 3
	for i := 0; i < plane; i++ {
		hi.Vx[1*plane+i] = float32(100 + i) // hi's local z=1 plane
		lo.Vx[(lo.Depth()-2)*plane+i] = float32(200 + i)
	}

	ExchangeVelocityHalo(lo, hi)

	for i := 0; i < plane; i++ {
		if lo.Vx[(lo.Depth()-1)*plane+i] != float32(100+i) {
			t.Fatalf("lo's last plane[%d] = %v, want copy of hi's z=1 plane value %v", i, lo.Vx[(lo.Depth()-1)*plane+i], 100+i)
		}
		if hi.Vx[0*plane+i] != float32(200+i) {
			t.Fatalf("hi's z=0 plane[%d] = %v, want copy of lo's z=depth-2 plane value %v", i, hi.Vx[0*plane+i], 200+i)
		}
	}
}

func TestApplyGlobalBoundariesMirrorsXFaceEveryChunk(t *testing.T) {
	c := &WaveFieldChunk{StartZ: 0, EndZ: 4, W: 5, H: 5}
	c.allocate()
	for i := range c.Vx {
		c.Vx[i] = 7
	}
	// Perturb the interior so the mirror actually has to do work.
	c.Vx[c.idx(1, 1, 1)] = 42

	ApplyGlobalBoundaries(c, false, false, StressPass)

	if c.Vx[c.idx(0, 1, 1)] != c.Vx[c.idx(1, 1, 1)] {
		t.Fatalf("x=0 face must mirror its nearest interior neighbor")
	}
}

func TestApplyGlobalBoundariesOnlyMirrorsZFaceAtDomainEnds(t *testing.T) {
	// An interior chunk (neither first nor last) must not have its Z face
	// touched, since it doesn't own a domain Z boundary.
	c := &WaveFieldChunk{StartZ: 10, EndZ: 14, W: 4, H: 4}
	c.allocate()
	for i := range c.Vz {
		c.Vz[i] = 5
	}
	c.Vz[c.idx(1, 1, 1)] = 99

	ApplyGlobalBoundaries(c, false, false, StressPass)

	for i, v := range c.Vz {
		if v != 5 && i != c.idx(1, 1, 1) {
			t.Fatalf("interior chunk must not mirror its Z face, found unexpected change at index %d", i)
		}
	}

	ApplyGlobalBoundaries(c, true, false, StressPass)
	if c.Vz[c.idx(1, 1, 0)] != c.Vz[c.idx(1, 1, 1)] {
		t.Fatalf("first chunk must mirror its z=0 face")
	}
}
