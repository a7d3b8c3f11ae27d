package sim

import (
	"math"
	"testing"
)

func TestMaterialVolumeAtSetRoundTrip(t *testing.T) {
	m := NewMaterialVolume(4, 4, 4)
	m.Set(1, 2, 3, 7)
	if got := m.At(1, 2, 3); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestDensityFieldAtSetRoundTrip(t *testing.T) {
	d := NewDensityField(4, 4, 4)
	d.Set(1, 2, 3, 2500)
	if got := d.At(1, 2, 3); got != 2500 {
		t.Fatalf("expected 2500, got %v", got)
	}
}

func TestClampedDensityEnforcesFloor(t *testing.T) {
	if got := clampedDensity(0); got != 100 {
		t.Fatalf("expected floor of 100, got %v", got)
	}
	if got := clampedDensity(5000); got != 5000 {
		t.Fatalf("expected 5000 to pass through unchanged, got %v", got)
	}
}

func TestElasticsAtPrefersPerVoxelField(t *testing.T) {
	p := testParams()
	elastics := NewPerVoxelElastics(p.Width, p.Height, p.Depth)
	elastics.E[0] = 70000
	elastics.Nu[0] = 0.3

	e, nu, ok := elasticsAt(p, elastics, 0, 0, 0)
	if !ok {
		t.Fatal("expected the per-voxel elastics to be valid")
	}
	if e != 70000 || nu != float64(float32(0.3)) {
		t.Fatalf("expected per-voxel (E,nu) = (70000, 0.3), got (%v, %v)", e, nu)
	}
}

func TestElasticsAtFallsBackToBulkWhenNil(t *testing.T) {
	p := testParams()
	e, nu, ok := elasticsAt(p, nil, 0, 0, 0)
	if !ok {
		t.Fatal("expected the bulk elastics to be valid")
	}
	if e != p.YoungsModulusMPa || nu != p.PoissonRatio {
		t.Fatalf("expected bulk (E,nu) = (%v, %v), got (%v, %v)", p.YoungsModulusMPa, p.PoissonRatio, e, nu)
	}
}

func TestElasticsAtRejectsNonPhysicalValues(t *testing.T) {
	p := testParams()
	elastics := NewPerVoxelElastics(p.Width, p.Height, p.Depth)
	elastics.E[0] = 0 // non-positive modulus
	elastics.Nu[0] = 0.1
	if _, _, ok := elasticsAt(p, elastics, 0, 0, 0); ok {
		t.Fatal("expected a non-positive modulus to be rejected")
	}

	elastics.E[0] = 50000
	elastics.Nu[0] = 0.5 // at the disallowed boundary
	if _, _, ok := elasticsAt(p, elastics, 0, 0, 0); ok {
		t.Fatal("expected nu=0.5 to be rejected")
	}
}

func TestLameParametersMatchKnownIsotropicIdentities(t *testing.T) {
	mu, lambda := lameParameters(1e6, 0.25)
	wantMu := 1e6 / (2 * 1.25)
	wantLambda := 1e6 * 0.25 / (1.25 * 0.5)
	if math.Abs(mu-wantMu) > 1e-6 {
		t.Fatalf("mu = %v, want %v", mu, wantMu)
	}
	if math.Abs(lambda-wantLambda) > 1e-6 {
		t.Fatalf("lambda = %v, want %v", lambda, wantLambda)
	}
}

func TestMpaToPascalsScalesByOneMillion(t *testing.T) {
	if got := mpaToPascals(50); got != 50e6 {
		t.Fatalf("expected 50e6, got %v", got)
	}
}
