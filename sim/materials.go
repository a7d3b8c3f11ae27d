package sim

// MaterialVolume is the read-only, dense W*H*D per-voxel material id field.
// IsMaterialSelected gates whether a voxel participates in the simulation.
type MaterialVolume struct {
	W, H, D int
	Labels  []byte // len == W*H*D
}

func NewMaterialVolume(w, h, d int) *MaterialVolume {
	return &MaterialVolume{W: w, H: h, D: d, Labels: make([]byte, w*h*d)}
}

func (m *MaterialVolume) At(x, y, z int) byte {
	return m.Labels[voxelIndex(m.W, m.H, x, y, z)]
}

func (m *MaterialVolume) Set(x, y, z int, id byte) {
	m.Labels[voxelIndex(m.W, m.H, x, y, z)] = id
}

// DensityField is the read-only, dense W*H*D density field in kg/m^3.
// Values <= 0 disable the voxel; the kernels clamp to >= 100 kg/m^3 before
// dividing by density.
type DensityField struct {
	W, H, D int
	Rho     []float32
}

func NewDensityField(w, h, d int) *DensityField {
	return &DensityField{W: w, H: h, D: d, Rho: make([]float32, w*h*d)}
}

func (d *DensityField) At(x, y, z int) float64 {
	return float64(d.Rho[voxelIndex(d.W, d.H, x, y, z)])
}

func (d *DensityField) Set(x, y, z int, rho float64) {
	d.Rho[voxelIndex(d.W, d.H, x, y, z)] = float32(rho)
}

// clampedDensity enforces the "clamp to >= 100 kg/m^3 for stability" rule
// used throughout the stress and velocity kernels.
func clampedDensity(rho float64) float64 {
	return maxFloat(100, rho)
}

// PerVoxelElastics is the optional, dense W*H*D per-voxel (E, nu) pair. When
// absent, SimulationParameters' bulk YoungsModulusMPa/PoissonRatio apply
// uniformly everywhere.
type PerVoxelElastics struct {
	W, H, D int
	E       []float32 // YoungsModulusMPa
	Nu      []float32 // PoissonRatio
}

func NewPerVoxelElastics(w, h, d int) *PerVoxelElastics {
	return &PerVoxelElastics{W: w, H: h, D: d, E: make([]float32, w*h*d), Nu: make([]float32, w*h*d)}
}

func (p *PerVoxelElastics) At(x, y, z int) (e, nu float64) {
	idx := voxelIndex(p.W, p.H, x, y, z)
	return float64(p.E[idx]), float64(p.Nu[idx])
}

// elasticsAt resolves the local (E, nu) pair for a voxel, preferring the
// per-voxel field when present, and reports whether the voxel is elastically
// valid (E>0, -1<nu<0.5).
func elasticsAt(p *SimulationParameters, elastics *PerVoxelElastics, x, y, z int) (e, nu float64, ok bool) {
	if elastics != nil {
		e, nu = elastics.At(x, y, z)
	} else {
		e, nu = p.YoungsModulusMPa, p.PoissonRatio
	}
	if e <= 0 || nu <= -1 || nu >= 0.5 {
		return 0, 0, false
	}
	return e, nu, true
}

// lameParameters converts (E, nu) to the Lame parameters mu and lambda, in
// whatever unit E was supplied in. Callers needing SI units pass
// mpaToPascals(e) first.
func lameParameters(e, nu float64) (mu, lambda float64) {
	mu = e / (2 * (1 + nu))
	lambda = e * nu / ((1 + nu) * (1 - 2*nu))
	return
}

// mpaToPascals converts a megapascal quantity to pascals, used whenever the
// stress/velocity kernels need SI-consistent units for the wave-speed and
// stress-update math.
func mpaToPascals(mpa float64) float64 {
	return mpa * 1e6
}
