package main

import "flag"

// Command-line flags. Values given here win over the config file and the
// OCEAN_* environment.
var (
	// configFlag points at a JSON or YAML config file.
	configFlag = flag.String("config", "", "path to a JSON or YAML ocean config")

	// framesFlag is the number of frames to simulate; 0 runs until interrupted.
	framesFlag = flag.Int("frames", 120, "frames to simulate (0 = until interrupted)")

	// dtFlag is the simulated time between frames.
	dtFlag = flag.Float64("dt", 1.0/30.0, "simulated seconds per frame")

	// dumpFlag writes every frame as a snapshot into the given directory.
	dumpFlag = flag.String("dump", "", "directory to write frame snapshots into")

	// serveFlag starts the websocket stream on this address and paces
	// frames in real time.
	serveFlag = flag.String("serve", "", "address for the websocket frame stream, e.g. :8080")

	strategyFlag = flag.String("strategy", "", "FFT strategy override (pingpong or butterfly)")

	logLevelFlag = flag.String("log-level", "info", "log level (debug, info, warn, error)")

	// saveConfigFlag writes the resolved configuration and continues.
	saveConfigFlag = flag.String("save-config", "", "write the resolved config to this path")
)
