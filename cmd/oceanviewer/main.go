// Command oceanviewer opens a window and renders the simulated ocean.
package main

import (
	"flag"
	"os"

	"OceanFFT/internal/engine"
	"OceanFFT/internal/logger"
	"OceanFFT/internal/ocean"
	"OceanFFT/internal/water"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	configFlag      = flag.String("config", "", "path to a JSON or YAML ocean config")
	logLevelFlag    = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	widthFlag       = flag.Int("width", 1280, "window width")
	heightFlag      = flag.Int("height", 720, "window height")
	gridFlag        = flag.Int("grid", 512, "grid quads per side (even)")
	spacingFlag     = flag.Float64("spacing", 4, "world distance between grid vertices")
	heightScaleFlag = flag.Float64("height-scale", 1, "vertical exaggeration of the waves")
)

func main() {
	flag.Parse()
	logger.InitWithLevel(*logLevelFlag)
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file loaded", zap.Error(err))
	}

	cfg, err := ocean.ResolveConfig(*configFlag, os.LookupEnv)
	if err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	sim, err := water.NewSimulation(cfg)
	if err != nil {
		logger.Log.Fatal("Could not create ocean simulation", zap.Error(err))
	}
	defer sim.Close()

	viewer := engine.NewViewer(sim)
	viewer.Width = int32(*widthFlag)
	viewer.Height = int32(*heightFlag)
	viewer.GridDim = *gridFlag
	viewer.GridSpacing = float32(*spacingFlag)
	viewer.HeightScale = float32(*heightScaleFlag)
	viewer.Behaviours.Add(sim)

	if err := viewer.Run(); err != nil {
		logger.Log.Error("Viewer failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
