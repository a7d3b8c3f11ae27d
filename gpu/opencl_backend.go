package gpu

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"elastowave/sim"
)

// OpenCLBackend is a placeholder for a real device-backed kernel backend.
// No OpenCL binding exists in this module's dependency set, so
// NewOpenCLBackend always fails; the caller (the CLI's backend selection)
// treats that as sim.GpuInitFailure and falls back to CPUBackend, per
// spec.md §7.
type OpenCLBackend struct{}

func NewOpenCLBackend() (*OpenCLBackend, error) {
	return nil, fmt.Errorf("opencl compute not implemented")
}

func (o *OpenCLBackend) Name() string { return "opencl" }

func (o *OpenCLBackend) RunStress(c *sim.WaveFieldChunk, ctx sim.StepContext) error {
	return fmt.Errorf("opencl compute not implemented")
}

func (o *OpenCLBackend) RunVelocity(c *sim.WaveFieldChunk, ctx sim.StepContext) error {
	return fmt.Errorf("opencl compute not implemented")
}

func (o *OpenCLBackend) Close() {}

// SelectBackend returns the GPU backend when useGPU is requested and
// available, otherwise the CPU backend. A GPU init failure is logged and
// never fatal (spec.md §7's GpuInitFailure classification): the run
// continues on CPU.
func SelectBackend(useGPU bool, log logrus.FieldLogger) sim.Backend {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if !useGPU {
		return NewCPUBackend(log)
	}
	gpuBackend, err := NewOpenCLBackend()
	if err != nil {
		log.WithError(&sim.GpuInitFailure{Err: err}).Warn("gpu backend init failed, falling back to cpu")
		return NewCPUBackend(log)
	}
	return gpuBackend
}
