package sim

import "math"

// SourceGenerator computes the scalar source amplitude at each step and
// knows how to fold it into a voxel's stress state (full-face or point
// injection), per spec.md §4.2.
type SourceGenerator struct {
	p  *SimulationParameters
	dt float64

	amplitude float64 // A = SourceAmplitude * sqrt(max(eps, SourceEnergyJ)) * 1e6
	t0        float64 // Ricker delay, only meaningful when UseRickerWavelet

	srcX, srcY, srcZGlobal int // full-face plane coordinates
}

const sourceEnergyEpsilon = 1e-12

// NewSourceGenerator precomputes the amplitude scale and (for full-face
// mode) the face coordinates the source plane sits on.
func NewSourceGenerator(p *SimulationParameters, dt float64) *SourceGenerator {
	energy := maxFloat(sourceEnergyEpsilon, p.SourceEnergyJ)
	g := &SourceGenerator{
		p:         p,
		dt:        dt,
		amplitude: p.SourceAmplitude * math.Sqrt(energy) * 1e6,
	}

	freqHz := maxFloat(1000, p.SourceFrequencyKHz*1000)
	g.t0 = 1.2 / freqHz

	if p.TxPosition.X*float64(p.Width) < float64(p.Width)/2 {
		g.srcX = 2
	} else {
		g.srcX = p.Width - 3
	}
	if p.TxPosition.Y*float64(p.Height) < float64(p.Height)/2 {
		g.srcY = 2
	} else {
		g.srcY = p.Height - 3
	}
	if p.TxPosition.Z*float64(p.Depth) < float64(p.Depth)/2 {
		g.srcZGlobal = 2
	} else {
		g.srcZGlobal = p.Depth - 3
	}

	return g
}

// Eval returns the scalar source amplitude for step n >= 1.
func (g *SourceGenerator) Eval(n int) float64 {
	if g.p.UseRickerWavelet {
		return g.evalRicker(n)
	}
	return g.evalStep(n)
}

func (g *SourceGenerator) evalRicker(n int) float64 {
	t := float64(n) * g.dt
	if t > 2*g.t0 {
		return 0
	}
	freqHz := maxFloat(1000, g.p.SourceFrequencyKHz*1000)
	x := math.Pi * freqHz * (t - g.t0)
	x2 := x * x
	return g.amplitude * (1 - 2*x2) * math.Exp(-x2)
}

func (g *SourceGenerator) evalStep(n int) float64 {
	if n >= 1 && n <= 3 {
		return g.amplitude
	}
	return 0
}

// TxVoxel returns the point-source transducer location clamped to voxel
// coordinates.
func (g *SourceGenerator) TxVoxel() (x, y, z int) {
	x = clampInt(int(g.p.TxPosition.X*float64(g.p.Width)), 0, g.p.Width-1)
	y = clampInt(int(g.p.TxPosition.Y*float64(g.p.Height)), 0, g.p.Height-1)
	z = clampInt(int(g.p.TxPosition.Z*float64(g.p.Depth)), 0, g.p.Depth-1)
	return
}

// FaceVoxel returns the full-face source plane coordinate for the
// configured axis.
func (g *SourceGenerator) FaceVoxel() (x, y, z int) {
	return g.srcX, g.srcY, g.srcZGlobal
}

// sourceStressDelta computes the additive contribution of the source to
// (Sxx, Syy, Szz) at global voxel (x, y, z) for the current step's scalar
// amplitude s, per spec.md §4.2. It is evaluated once per interior voxel by
// the stress kernel, before the constitutive update runs on that voxel.
func (g *SourceGenerator) sourceStressDelta(s float64, mats *MaterialVolume, x, y, z int) (dxx, dyy, dzz float64) {
	if s == 0 {
		return 0, 0, 0
	}
	if g.p.UseFullFaceTransducers {
		return g.fullFaceDelta(s, x, y, z)
	}
	return g.pointDelta(s, mats, x, y, z)
}

func (g *SourceGenerator) fullFaceDelta(s float64, x, y, z int) (dxx, dyy, dzz float64) {
	switch g.p.Axis {
	case AxisX:
		if x == g.srcX {
			return s, s, s
		}
	case AxisY:
		if y == g.srcY {
			return s, s, s
		}
	case AxisZ:
		if z == g.srcZGlobal {
			return s, s, s
		}
	}
	return 0, 0, 0
}

func (g *SourceGenerator) pointDelta(s float64, mats *MaterialVolume, x, y, z int) (dxx, dyy, dzz float64) {
	txX, txY, txZ := g.TxVoxel()
	dx, dy, dz := x-txX, y-txY, z-txZ
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 || dz < -1 || dz > 1 {
		return 0, 0, 0
	}
	// The caller only evaluates this for voxels already inside the current
	// chunk's interior, satisfying the "strictly inside the chunk interior"
	// restriction without needing chunk bounds here.
	if !g.p.IsMaterialSelected(mats.At(x, y, z)) {
		return 0, 0, 0
	}
	r2 := float64(dx*dx + dy*dy + dz*dz)
	w := math.Exp(-0.5 * r2)
	return s * w, s * w, s * w
}
