// Package config loads run configuration from a YAML file, applying
// defaults and then overlaying whatever the file specifies, the way the
// teacher's settings.json loader does it for JSON.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"elastowave/sim"
)

// RunConfig is the on-disk representation of sim.SimulationParameters. It
// mirrors the field names of SimulationParameters but omits
// IsMaterialSelected (a predicate, not serializable) and SelectedMaterials
// names that predicate instead.
type RunConfig struct {
	Width     int     `yaml:"width,omitempty"`
	Height    int     `yaml:"height,omitempty"`
	Depth     int     `yaml:"depth,omitempty"`
	PixelSize float64 `yaml:"pixelSize,omitempty"`
	TimeSteps int     `yaml:"timeSteps,omitempty"`

	SourceFrequencyKHz float64 `yaml:"sourceFrequencyKHz,omitempty"`
	SourceAmplitude    float64 `yaml:"sourceAmplitude,omitempty"`
	SourceEnergyJ      float64 `yaml:"sourceEnergyJ,omitempty"`

	TxPosition [3]float64 `yaml:"txPosition,omitempty"`
	RxPosition [3]float64 `yaml:"rxPosition,omitempty"`
	Axis       string     `yaml:"axis,omitempty"` // "x", "y" or "z"

	UseRickerWavelet       bool `yaml:"useRickerWavelet"`
	UseFullFaceTransducers bool `yaml:"useFullFaceTransducers"`
	UseGPU                 bool `yaml:"useGPU"`
	EnableOffloading       bool `yaml:"enableOffloading"`
	UsePlasticModel        bool `yaml:"usePlasticModel"`
	UseBrittleModel        bool `yaml:"useBrittleModel"`

	YoungsModulusMPa float64 `yaml:"youngsModulusMPa,omitempty"`
	PoissonRatio     float64 `yaml:"poissonRatio,omitempty"`

	ConfiningPressureMPa float64 `yaml:"confiningPressureMPa,omitempty"`
	CohesionMPa          float64 `yaml:"cohesionMPa,omitempty"`
	FailureAngleDeg      float64 `yaml:"failureAngleDeg,omitempty"`

	ArtificialDampingFactor float64 `yaml:"artificialDampingFactor,omitempty"`

	ChunkSizeMB      float64 `yaml:"chunkSizeMB,omitempty"`
	OffloadDirectory string  `yaml:"offloadDirectory,omitempty"`
	SnapshotInterval int     `yaml:"snapshotInterval,omitempty"`

	SelectedMaterials []int `yaml:"selectedMaterials,omitempty"`

	// VolumeDirectory, if set, holds materials.bin (one byte per voxel) and
	// density.bin (one little-endian float32 per voxel), both x-major,y,
	// z-major, W*H*D long. If empty, a homogeneous test volume is built from
	// YoungsModulusMPa/PoissonRatio and a nominal rock density.
	VolumeDirectory string `yaml:"volumeDirectory,omitempty"`
	DefaultDensity  float64 `yaml:"defaultDensity,omitempty"`
}

// Defaults returns the baseline RunConfig every loaded file is overlaid
// onto: a 64^3 grid of 1 mm voxels, one selected material at 2500 kg/m^3.
func Defaults() RunConfig {
	return RunConfig{
		Width: 64, Height: 64, Depth: 64,
		PixelSize: 1e-3,
		TimeSteps: 2000,

		SourceFrequencyKHz: 500,
		SourceAmplitude:    1.0,
		SourceEnergyJ:      1.0,

		TxPosition: [3]float64{0.5, 0.5, 0.05},
		RxPosition: [3]float64{0.5, 0.5, 0.95},
		Axis:       "z",

		UseRickerWavelet: true,

		YoungsModulusMPa: 50000,
		PoissonRatio:     0.25,

		ConfiningPressureMPa: 10,
		CohesionMPa:          5,
		FailureAngleDeg:      30,

		ArtificialDampingFactor: 0.05,

		ChunkSizeMB:      256,
		OffloadDirectory: os.TempDir(),
		SnapshotInterval: 0,

		SelectedMaterials: []int{1},
		DefaultDensity:    2500,
	}
}

// Load reads a YAML file and overlays it onto Defaults(). A missing file is
// not an error: the caller gets the defaults back, matching the teacher's
// "no settings.json found, using defaults" behavior.
func Load(path string) (RunConfig, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, for runs that want to persist an
// effective configuration alongside their output.
func Save(path string, cfg RunConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ToParameters converts a RunConfig into sim.SimulationParameters, wiring
// the material selection list into a predicate closure.
func (c RunConfig) ToParameters() (*sim.SimulationParameters, error) {
	axis, err := parseAxis(c.Axis)
	if err != nil {
		return nil, err
	}

	selected := make(map[byte]bool, len(c.SelectedMaterials))
	for _, id := range c.SelectedMaterials {
		selected[byte(id)] = true
	}

	return &sim.SimulationParameters{
		Width: c.Width, Height: c.Height, Depth: c.Depth,
		PixelSize: c.PixelSize,
		TimeSteps: c.TimeSteps,

		SourceFrequencyKHz: c.SourceFrequencyKHz,
		SourceAmplitude:    c.SourceAmplitude,
		SourceEnergyJ:      c.SourceEnergyJ,

		TxPosition: sim.Vec3{X: c.TxPosition[0], Y: c.TxPosition[1], Z: c.TxPosition[2]},
		RxPosition: sim.Vec3{X: c.RxPosition[0], Y: c.RxPosition[1], Z: c.RxPosition[2]},
		Axis:       axis,

		UseRickerWavelet:       c.UseRickerWavelet,
		UseFullFaceTransducers: c.UseFullFaceTransducers,
		UseGPU:                 c.UseGPU,
		EnableOffloading:       c.EnableOffloading,
		UsePlasticModel:        c.UsePlasticModel,
		UseBrittleModel:        c.UseBrittleModel,

		YoungsModulusMPa: c.YoungsModulusMPa,
		PoissonRatio:     c.PoissonRatio,

		ConfiningPressureMPa: c.ConfiningPressureMPa,
		CohesionMPa:          c.CohesionMPa,
		FailureAngleDeg:      c.FailureAngleDeg,

		ArtificialDampingFactor: c.ArtificialDampingFactor,

		ChunkSizeMB:      c.ChunkSizeMB,
		OffloadDirectory: c.OffloadDirectory,
		SnapshotInterval: c.SnapshotInterval,

		IsMaterialSelected: func(id byte) bool { return selected[id] },
	}, nil
}

func parseAxis(s string) (sim.Axis, error) {
	switch s {
	case "", "x", "X":
		return sim.AxisX, nil
	case "y", "Y":
		return sim.AxisY, nil
	case "z", "Z":
		return sim.AxisZ, nil
	default:
		return 0, fmt.Errorf("unknown axis %q, want x, y or z", s)
	}
}
