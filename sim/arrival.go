package sim

import "math"

const arrivalThreshold = 1e-12

// ArrivalDetector tracks the first P-wave and S-wave breaks at the
// receiver voxel, per spec.md §4.8.
type ArrivalDetector struct {
	axis Axis

	PArrivalStep int // 0 until the longitudinal component first crosses threshold
	SArrivalStep int // 0 until the transverse magnitude first crosses threshold, after P
}

func NewArrivalDetector(axis Axis) *ArrivalDetector {
	return &ArrivalDetector{axis: axis}
}

// Probe evaluates one step's velocity sample at the receiver voxel and
// records the step index of the first P and S breaks.
func (d *ArrivalDetector) Probe(step int, vx, vy, vz float64) {
	longitudinal, t1, t2 := d.components(vx, vy, vz)

	if d.PArrivalStep == 0 && absFloat(longitudinal) > arrivalThreshold {
		d.PArrivalStep = step
	}
	if d.PArrivalStep != 0 && d.SArrivalStep == 0 {
		transverse := hypot(t1, t2)
		if transverse > arrivalThreshold {
			d.SArrivalStep = step
		}
	}
}

func (d *ArrivalDetector) components(vx, vy, vz float64) (longitudinal, t1, t2 float64) {
	switch d.axis {
	case AxisX:
		return vx, vy, vz
	case AxisY:
		return vy, vx, vz
	default:
		return vz, vx, vy
	}
}

func hypot(a, b float64) float64 {
	return math.Sqrt(a*a + b*b)
}

// ReceiverVoxel clamps the normalized receiver position to voxel
// coordinates, per spec.md §4.7 step 4: "r = clamp(Rx*{W,H,D}, 1, size-2)".
func ReceiverVoxel(p *SimulationParameters) (x, y, z int) {
	x = clampInt(int(p.RxPosition.X*float64(p.Width)), 1, p.Width-2)
	y = clampInt(int(p.RxPosition.Y*float64(p.Height)), 1, p.Height-2)
	z = clampInt(int(p.RxPosition.Z*float64(p.Depth)), 1, p.Depth-2)
	return
}

