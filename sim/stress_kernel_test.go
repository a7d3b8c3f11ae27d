package sim

import "testing"

func testParams() *SimulationParameters {
	p := &SimulationParameters{
		Width: 6, Height: 6, Depth: 6,
		PixelSize:               1e-3,
		YoungsModulusMPa:        50000,
		PoissonRatio:            0.25,
		ConfiningPressureMPa:    10,
		CohesionMPa:             5,
		FailureAngleDeg:         30,
		ArtificialDampingFactor: 0.05,
		IsMaterialSelected:      func(id byte) bool { return id == 1 },
	}
	return p
}

func testStepContext(p *SimulationParameters, mats *MaterialVolume, dens *DensityField, dt float64) StepContext {
	return StepContext{
		Params:    p,
		Materials: mats,
		Density:   dens,
		Source:    NewSourceGenerator(p, dt),
		Dt:        dt,
		Step:      1,
		SourceVal: 0,
	}
}

func uniformVolumes(p *SimulationParameters, density float64) (*MaterialVolume, *DensityField) {
	mats := NewMaterialVolume(p.Width, p.Height, p.Depth)
	for i := range mats.Labels {
		mats.Labels[i] = 1
	}
	dens := NewDensityField(p.Width, p.Height, p.Depth)
	for i := range dens.Rho {
		dens.Rho[i] = float32(density)
	}
	return mats, dens
}

func TestStressPlaneSkipsUnselectedVoxels(t *testing.T) {
	p := testParams()
	mats, dens := uniformVolumes(p, 2500)
	// Deselect everything: kernel must leave every stress component at zero.
	p.IsMaterialSelected = func(id byte) bool { return false }

	c := allocateChunks(p)[0]
	for i := range c.Vx {
		c.Vx[i] = 1
	}
	ctx := testStepContext(p, mats, dens, 1e-7)
	StressPlane(c, 2, ctx)

	for i, v := range c.Sxx {
		if v != 0 {
			t.Fatalf("Sxx[%d] = %v, want 0 for an unselected-material kernel", i, v)
		}
	}
}

func TestStressPlaneDamageStaysInUnitRange(t *testing.T) {
	p := testParams()
	p.UseBrittleModel = true
	mats, dens := uniformVolumes(p, 2500)
	c := allocateChunks(p)[0]

	// Large velocity gradients push the voxel well past the yield surface,
	// exercising the damage accumulation branch.
	for lz := 0; lz < c.Depth(); lz++ {
		for y := 0; y < c.H; y++ {
			for x := 0; x < c.W; x++ {
				i := c.idx(x, y, lz)
				c.Vx[i] = float32(x) * 1e6
				c.Vy[i] = float32(y) * 1e6
				c.Vz[i] = float32(lz) * 1e6
			}
		}
	}

	ctx := testStepContext(p, mats, dens, 1e-6)
	for lz := 1; lz <= c.Depth()-2; lz++ {
		StressPlane(c, lz, ctx)
	}

	for i, d := range c.Damage {
		if d < 0 || d > 1 {
			t.Fatalf("Damage[%d] = %v, want value in [0,1]", i, d)
		}
	}
}

func TestStressPlaneOutOfRangePlaneIsNoop(t *testing.T) {
	p := testParams()
	mats, dens := uniformVolumes(p, 2500)
	c := allocateChunks(p)[0]
	ctx := testStepContext(p, mats, dens, 1e-7)

	StressPlane(c, 0, ctx)              // boundary plane, excluded by bounds check
	StressPlane(c, c.Depth()-1, ctx)     // boundary plane
	StressPlane(c, c.Depth(), ctx)       // out of range entirely

	for i, v := range c.Sxx {
		if v != 0 {
			t.Fatalf("Sxx[%d] = %v, want 0: boundary/out-of-range planes must be untouched", i, v)
		}
	}
}
