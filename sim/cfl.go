package sim

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

const fallbackDt = 1e-7

// CFLResult carries the derived timestep plus a small diagnostic summary of
// the P-wave speed population that produced it (SPEC_FULL §11/§12: a
// gonum/stat-backed summary, additive to the canonical dt value).
type CFLResult struct {
	Dt          float64
	VpMax       float64
	VpMean      float64
	Fallback    bool
	SampleCount int
}

// AnalyzeCFL scans every selected, elastically-valid voxel, derives the
// maximum P-wave speed, and emits a stable timestep per spec.md §4.3. If no
// voxel qualifies it falls back to fallbackTimeStep (or fallbackDt) and
// logs a warning; this is the NumericallyUninitializable condition from
// spec.md §7, which is not fatal.
func AnalyzeCFL(p *SimulationParameters, mats *MaterialVolume, dens *DensityField, elastics *PerVoxelElastics, fallbackTimeStep float64, log logrus.FieldLogger) CFLResult {
	if log == nil {
		log = logrus.StandardLogger()
	}

	var vpSamples []float64
	for z := 0; z < p.Depth; z++ {
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				if !p.IsMaterialSelected(mats.At(x, y, z)) {
					continue
				}
				rho := dens.At(x, y, z)
				if rho <= 0 {
					continue
				}
				e, nu, ok := elasticsAt(p, elastics, x, y, z)
				if !ok {
					continue
				}
				mu, lambda := lameParameters(mpaToPascals(e), nu)
				vp := math.Sqrt((lambda + 2*mu) / clampedDensity(rho))
				vpSamples = append(vpSamples, vp)
			}
		}
	}

	if len(vpSamples) == 0 {
		dt := fallbackTimeStep
		if dt <= 0 {
			dt = fallbackDt
		}
		log.WithField("fallback_dt", dt).Warn("CFL analysis found no selected voxel meeting stability criteria; using fallback timestep")
		return CFLResult{Dt: dt, Fallback: true}
	}

	vpMax := vpSamples[0]
	for _, v := range vpSamples {
		vpMax = maxFloat(vpMax, v)
	}
	vpMean := stat.Mean(vpSamples, nil)

	dt := 0.25 * p.PixelSize / (math.Sqrt(3) * vpMax)
	log.WithFields(logrus.Fields{
		"vp_max": vpMax, "vp_mean": vpMean, "samples": len(vpSamples), "dt": dt,
	}).Info("CFL analysis complete")

	return CFLResult{Dt: dt, VpMax: vpMax, VpMean: vpMean, SampleCount: len(vpSamples)}
}
