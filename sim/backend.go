package sim

// Backend is the dynamic-dispatch boundary between the CPU and GPU kernel
// implementations (spec.md §9: "two tagged variants plus a strategy
// interface"). It is defined here, in sim, rather than in the gpu package,
// so that sim.Scheduler can depend on the interface without sim importing
// gpu — the gpu package imports sim and implements this interface, the
// same inversion the teacher uses for its core/physics split
// (core.PhysicsInterface implemented by the physics package).
type Backend interface {
	// Name identifies the backend for logging ("cpu", "opencl").
	Name() string
	// RunStress executes the stress kernel (spec.md §4.4) over chunk c's
	// interior voxels.
	RunStress(c *WaveFieldChunk, ctx StepContext) error
	// RunVelocity executes the velocity kernel (spec.md §4.5) over chunk
	// c's deep-interior voxels.
	RunVelocity(c *WaveFieldChunk, ctx StepContext) error
	// Close releases backend resources (device buffers, contexts).
	Close()
}

// StepContext bundles everything a kernel invocation needs beyond the
// chunk's own arrays: the borrowed read-only inputs, the derived timestep,
// and this step's scalar source sample. It mirrors the GPU kernel dispatch
// contract of spec.md §6 (dt, Δx, W, H, depth, chunkStartZ, damage/yield
// constants, source parameters, totalDepth) so the same struct can be
// marshaled into device buffers by a real GPU backend without change.
type StepContext struct {
	Params    *SimulationParameters
	Materials *MaterialVolume
	Density   *DensityField
	Elastics  *PerVoxelElastics // nil when bulk elastics apply everywhere
	Source    *SourceGenerator

	Dt         float64
	Step       int // n >= 1
	SourceVal  float64
	TotalDepth int
}
