// Package main is the CLI entrypoint: Execute() dispatches to the
// cobra command tree defined alongside it.
package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"elastowave/config"
	"elastowave/gpu"
	"elastowave/sim"
)

var (
	configPath   string
	logLevel     string
	snapshotPath string
)

var rootCmd = &cobra.Command{
	Use:   "elastowave",
	Short: "Chunked, out-of-core elastodynamic wave propagation simulator",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation from a YAML configuration",
	Run:   runSimulation,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML run configuration (defaults used if omitted)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&snapshotPath, "snapshot-log", "", "Optional path to append periodic field snapshots as YAML")

	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("invalid log level %q", logLevel)
	}
	log := logrus.New()
	log.SetLevel(level)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	params, err := cfg.ToParameters()
	if err != nil {
		log.WithError(err).Fatal("failed to build simulation parameters")
	}
	if err := params.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	mats, dens, elastics, err := config.BuildVolumes(cfg, params)
	if err != nil {
		log.WithError(err).Fatal("failed to build input volumes")
	}

	cflFallback := 0.0
	cfl := sim.AnalyzeCFL(params, mats, dens, elastics, cflFallback, log)
	if cfl.Fallback {
		log.Warn("CFL analysis could not find a stable voxel population; using fallback timestep")
	}

	backend := gpu.SelectBackend(params.UseGPU, log)
	defer backend.Close()

	var snapshotSink sim.SnapshotSink
	if snapshotPath != "" {
		f, err := os.Create(snapshotPath)
		if err != nil {
			log.WithError(err).Fatal("failed to open snapshot log")
		}
		defer f.Close()
		writer := config.NewYAMLSnapshotWriter(f)
		defer writer.Close()
		snapshotSink = writer
	}

	sched := sim.NewScheduler(params, mats, dens, elastics, cfl.Dt, sim.RunOptions{
		Backend:  backend,
		Log:      log,
		Snapshot: snapshotSink,
		OnUpdate: func(u sim.ChunkUpdate) {
			log.WithFields(logrus.Fields{
				"step": u.Step, "simTime": u.SimTime, "startZ": u.StartZ, "depth": u.Depth,
			}).Debug("chunk updated")
		},
	})

	start := time.Now()
	if err := sched.Run(context.Background()); err != nil {
		sched.Dispose()
		log.WithError(err).Fatal("simulation run failed")
	}
	elapsed := time.Since(start)

	results, err := sim.ReconstructResults(params, sched.Chunks(), sched.Arrival(), cfl.Dt, elapsed)
	if err != nil {
		sched.Dispose()
		log.WithError(err).Fatal("failed to reconstruct results")
	}
	sched.Dispose()

	log.WithFields(logrus.Fields{
		"p_wave_velocity":   results.PWaveVelocity,
		"s_wave_velocity":   results.SWaveVelocity,
		"vp_vs_ratio":       results.VpVsRatio,
		"total_time_steps":  results.TotalTimeSteps,
		"computation_time":  results.ComputationTime,
		"damaged_voxels":    results.Summary.DamagedVoxelCount,
	}).Info("simulation complete")
}
