package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"opticalct/pkg/config"
	"opticalct/pkg/logging"
	"opticalct/pkg/reconstruction"
	"opticalct/pkg/visualization"
	"opticalct/pkg/visualization/gui"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "YAML session file")
	writeConfig := flag.String("write-config", "", "Write a default session file to this path and exit")
	inputDir := flag.String("input", "", "Directory containing the projection images")
	angleStep := flag.Float64("angle-step", 0, "Rotation in degrees between consecutive projections")
	scale := flag.Float64("scale", 1, "Resize factor applied after cropping")
	stdRange := flag.Float64("std-range", 1, "Clip voxels to median ± k·std")
	channelWise := flag.Bool("channel-wise", true, "Reconstruct every colour channel separately")
	save := flag.Bool("save", true, "Save reconstructed slices")
	outputDir := flag.String("output", "", "Output directory (default: <parent of input>/volumes)")
	numCores := flag.Int("cores", runtime.NumCPU(), "Number of slices reconstructed concurrently")
	solverName := flag.String("solver", "sart", "Reconstruction algorithm: sart or fbp")
	iterations := flag.Int("iterations", 1, "SART iterations")
	relaxation := flag.Float64("relaxation", 0.15, "SART relaxation")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save preprocessed projections and sinograms")
	intermediaryDir := flag.String("intermediary-dir", "", "Directory for intermediary results")
	extractSlices := flag.Bool("extract-slices", false, "Export the final volume along all three planes")
	slicesDir := flag.String("slices-dir", "", "Directory for exported planes (default: <output>/planes)")
	explore := flag.Bool("explore", false, "Open the volume explorer on the result")
	cmap := flag.String("cmap", "", "Explorer colormap")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *writeConfig)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}

	// Explicit flags win over the file and the environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Directory = *inputDir
		case "angle-step":
			cfg.AngleStep = *angleStep
		case "scale":
			cfg.Scale = *scale
		case "std-range":
			cfg.StdRange = *stdRange
		case "channel-wise":
			cfg.ChannelWise = *channelWise
		case "save":
			cfg.Save = *save
		case "output":
			cfg.Output.Directory = *outputDir
		case "cores":
			cfg.Processing.Workers = *numCores
		case "solver":
			cfg.Solver.Algorithm = *solverName
		case "iterations":
			cfg.Solver.Iterations = *iterations
		case "relaxation":
			cfg.Solver.Relaxation = *relaxation
		case "save-intermediary":
			cfg.Output.SaveIntermediary = *saveIntermediary
		case "intermediary-dir":
			cfg.Output.IntermediaryDir = *intermediaryDir
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		flag.Usage()
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.NewConsole(logging.ParseLevel(cfg.Output.LogLevel, cfg.Output.Verbose))

	params, err := buildParams(cfg, &logger)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().
		Str("input", cfg.Directory).
		Float64("angle_step", cfg.AngleStep).
		Str("solver", cfg.Solver.Algorithm).
		Int("workers", cfg.Processing.Workers).
		Msg("Starting reconstruction")

	startTime := time.Now()
	result, err := reconstruction.NewReconstructor(params).Process(ctx)
	if err != nil {
		log.Fatalf("Reconstruction failed: %v", err)
	}
	final := result.Final()

	logger.Info().
		Str("shape", final.Shape()).
		Dur("elapsed", time.Since(startTime)).
		Strs("saved", result.Persisted).
		Msg("Reconstruction completed")

	if !*extractSlices && !*explore {
		return
	}

	explorer, err := visualization.NewExplorer(final, *cmap, nil)
	if err != nil {
		log.Fatalf("Failed to open explorer: %v", err)
	}

	if *extractSlices {
		dir := *slicesDir
		if dir == "" {
			dir = filepath.Join(cfg.OutputDirectory(), "planes")
		}
		if err := explorer.Export(dir); err != nil {
			logger.Warn().Err(err).Msg("Failed to export planes")
		} else {
			logger.Info().Str("dir", dir).Msg("Exported planes")
		}
	}

	if *explore {
		w := gui.New(explorer, "Volume Explorer", logger)
		w.Bind()
		w.Run()
	}
}
