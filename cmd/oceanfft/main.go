// Command oceanfft runs the ocean simulation headless. It can log frame
// statistics, dump snapshots and stream frames to websocket clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OceanFFT/internal/behaviour"
	"OceanFFT/internal/logger"
	"OceanFFT/internal/ocean"
	"OceanFFT/internal/stream"
	"OceanFFT/internal/water"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	flag.Parse()
	logger.InitWithLevel(*logLevelFlag)
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Log.Error("oceanfft failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file loaded", zap.Error(err))
	}

	cfg, err := ocean.ResolveConfig(*configFlag, os.LookupEnv)
	if err != nil {
		return err
	}
	if *strategyFlag != "" {
		cfg.FFTStrategy = *strategyFlag
	}
	if *dtFlag <= 0 {
		return fmt.Errorf("-dt must be positive, got %v", *dtFlag)
	}
	if *saveConfigFlag != "" {
		if err := cfg.Save(*saveConfigFlag); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		logger.Log.Info("Config written", zap.String("path", *saveConfigFlag))
	}

	sim, err := water.NewSimulation(cfg)
	if err != nil {
		return err
	}
	defer sim.Close()

	step := time.Duration(*dtFlag * float64(time.Second))
	sim.FixedStep = step
	sim.AddSink(&statsSink{})

	if *dumpFlag != "" {
		dump, err := newDumpSink(*dumpFlag)
		if err != nil {
			return err
		}
		sim.AddSink(dump)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ticker *time.Ticker
	if *serveFlag != "" {
		hub := stream.NewHub()
		hub.OnControl = func(c stream.Control) {
			if err := sim.ApplyControl(c); err != nil {
				logger.Log.Warn("Control message rejected", zap.Error(err))
			}
		}
		sim.AddSink(hub)

		srv := serve(*serveFlag, hub)
		defer func() {
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		ticker = time.NewTicker(step)
		defer ticker.Stop()
	}

	manager := behaviour.NewManager()
	manager.Add(sim)

	start := time.Now()
	frames := 0
	for *framesFlag == 0 || frames < *framesFlag {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return finish(sim, frames, start)
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break
		}

		manager.UpdateAllFixed()
		if err := sim.Err(); err != nil {
			return err
		}
		frames++
	}
	return finish(sim, frames, start)
}

func serve(addr string, hub *stream.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Log.Info("Frame stream listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Frame stream stopped", zap.Error(err))
		}
	}()
	return srv
}

func finish(sim *water.Simulation, frames int, start time.Time) error {
	for _, s := range sim.Pipeline.Stats() {
		logger.Log.Info("Stage stats",
			zap.String("stage", s.Stage),
			zap.Int("dispatches", s.Dispatches),
			zap.Int("fences", s.Fences),
			zap.Int("items", s.Items),
			zap.Duration("elapsed", s.Elapsed))
	}
	logger.Log.Info("Simulation finished",
		zap.Int("frames", frames),
		zap.Float64("sim_time", sim.Time()),
		zap.Uint64("table_generation", sim.Pipeline.TableGeneration()),
		zap.Duration("wall", time.Since(start)))
	return nil
}
