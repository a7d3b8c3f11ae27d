package config

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"elastowave/sim"
)

// BuildVolumes constructs the material, density and elastics inputs a run
// needs. When VolumeDirectory is set it reads materials.bin and
// density.bin (raw, no header, x-major/y/z-major, matching the offload
// binary convention); otherwise it fills a homogeneous volume so a bare
// config file is still runnable end to end. Per-voxel elastics are never
// loaded here: a homogeneous run relies on SimulationParameters' bulk
// YoungsModulusMPa/PoissonRatio, so the returned *sim.PerVoxelElastics is
// nil.
func BuildVolumes(c RunConfig, p *sim.SimulationParameters) (*sim.MaterialVolume, *sim.DensityField, *sim.PerVoxelElastics, error) {
	if c.VolumeDirectory == "" {
		mats, dens := homogeneousVolumes(p, c.DefaultDensity)
		return mats, dens, nil, nil
	}

	mats := sim.NewMaterialVolume(p.Width, p.Height, p.Depth)
	if err := readRaw(filepath.Join(c.VolumeDirectory, "materials.bin"), mats.Labels); err != nil {
		return nil, nil, nil, fmt.Errorf("loading materials volume: %w", err)
	}

	dens := sim.NewDensityField(p.Width, p.Height, p.Depth)
	if err := readFloats(filepath.Join(c.VolumeDirectory, "density.bin"), dens.Rho); err != nil {
		return nil, nil, nil, fmt.Errorf("loading density volume: %w", err)
	}

	return mats, dens, nil, nil
}

func homogeneousVolumes(p *sim.SimulationParameters, density float64) (*sim.MaterialVolume, *sim.DensityField) {
	mats := sim.NewMaterialVolume(p.Width, p.Height, p.Depth)
	for i := range mats.Labels {
		mats.Labels[i] = 1
	}
	dens := sim.NewDensityField(p.Width, p.Height, p.Depth)
	for i := range dens.Rho {
		dens.Rho[i] = float32(density)
	}
	return mats, dens
}

func readRaw(path string, into []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.ReadFull(bufio.NewReader(f), into)
	return err
}

func readFloats(path string, into []float32) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return binary.Read(bufio.NewReader(f), binary.LittleEndian, into)
}
