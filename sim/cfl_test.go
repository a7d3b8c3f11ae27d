package sim

import "testing"

func TestAnalyzeCFLFallsBackWhenNoVoxelQualifies(t *testing.T) {
	p := testParams()
	p.IsMaterialSelected = func(id byte) bool { return false }
	mats, dens := uniformVolumes(p, 2500)

	res := AnalyzeCFL(p, mats, dens, nil, 5e-8, nil)
	if !res.Fallback {
		t.Fatal("expected Fallback=true when no voxel qualifies")
	}
	if res.Dt != 5e-8 {
		t.Fatalf("expected fallback dt 5e-8, got %v", res.Dt)
	}
}

func TestAnalyzeCFLUsesDefaultFallbackWhenNoneProvided(t *testing.T) {
	p := testParams()
	p.IsMaterialSelected = func(id byte) bool { return false }
	mats, dens := uniformVolumes(p, 2500)

	res := AnalyzeCFL(p, mats, dens, nil, 0, nil)
	if res.Dt != fallbackDt {
		t.Fatalf("expected default fallback dt %v, got %v", fallbackDt, res.Dt)
	}
}

func TestAnalyzeCFLProducesPositiveStableDt(t *testing.T) {
	p := testParams()
	mats, dens := uniformVolumes(p, 2500)

	res := AnalyzeCFL(p, mats, dens, nil, 0, nil)
	if res.Fallback {
		t.Fatal("expected a real CFL analysis, not a fallback")
	}
	if res.Dt <= 0 {
		t.Fatalf("expected dt > 0, got %v", res.Dt)
	}
	if res.VpMax <= 0 {
		t.Fatalf("expected VpMax > 0, got %v", res.VpMax)
	}
	if res.SampleCount == 0 {
		t.Fatal("expected at least one sampled voxel")
	}
}
