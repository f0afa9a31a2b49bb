package ocean

import (
	"OceanFFT/internal/noise"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Noise source names accepted in Config.Noise.
const (
	NoiseSeeded  = "seeded"
	NoisePerlin  = "perlin"
	NoiseSimplex = "simplex"
	NoiseImages  = "images"
)

// Config is the file/environment form of the simulation settings.
// Angles are in degrees here and radians in Params.
type Config struct {
	GridResolution  int     `json:"grid_resolution" yaml:"grid_resolution"`
	PatchSize       float64 `json:"patch_size" yaml:"patch_size"`
	WindSpeed       float64 `json:"wind_speed" yaml:"wind_speed"`
	WindDirection   float64 `json:"wind_direction" yaml:"wind_direction"`
	Choppiness      float64 `json:"choppiness" yaml:"choppiness"`
	Amplitude       float64 `json:"amplitude" yaml:"amplitude"`
	SmallWaveCutoff float64 `json:"small_wave_cutoff" yaml:"small_wave_cutoff"`
	Gravity         float64 `json:"gravity" yaml:"gravity"`
	Depth           float64 `json:"depth" yaml:"depth"`
	LoopPeriod      float64 `json:"loop_period" yaml:"loop_period"`
	FFTStrategy     string  `json:"fft_strategy" yaml:"fft_strategy"`
	NormalMode      string  `json:"normal_mode" yaml:"normal_mode"`

	Seed        int64     `json:"seed" yaml:"seed"`
	Noise       string    `json:"noise" yaml:"noise"`
	NoiseImages [4]string `json:"noise_images,omitempty" yaml:"noise_images,omitempty"`

	Workers   int     `json:"workers" yaml:"workers"`
	TimeScale float64 `json:"time_scale" yaml:"time_scale"`
}

// DefaultConfig mirrors DefaultParams with a seeded noise source.
func DefaultConfig() Config {
	p := DefaultParams()
	return Config{
		GridResolution:  p.GridResolution,
		PatchSize:       p.PatchSize,
		WindSpeed:       p.WindSpeed,
		WindDirection:   p.WindDirection * 180 / math.Pi,
		Choppiness:      p.Choppiness,
		Amplitude:       p.Amplitude,
		SmallWaveCutoff: p.SmallWaveCutoff,
		Gravity:         p.Gravity,
		Depth:           p.Depth,
		LoopPeriod:      p.LoopPeriod,
		FFTStrategy:     p.FFTStrategy,
		NormalMode:      p.NormalMode,
		Seed:            1,
		Noise:           NoiseSeeded,
		TimeScale:       1,
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("ocean: read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("ocean: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveConfig loads path (or the defaults when path is empty) and applies
// OCEAN_* overrides from lookup.
func ResolveConfig(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Save writes the config as JSON or YAML depending on the extension.
func (c Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from OCEAN_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"OCEAN_GRID_RESOLUTION": &c.GridResolution,
		"OCEAN_WORKERS":         &c.Workers,
	}
	floats := map[string]*float64{
		"OCEAN_PATCH_SIZE":     &c.PatchSize,
		"OCEAN_WIND_SPEED":     &c.WindSpeed,
		"OCEAN_WIND_DIRECTION": &c.WindDirection,
		"OCEAN_CHOPPINESS":     &c.Choppiness,
		"OCEAN_AMPLITUDE":      &c.Amplitude,
		"OCEAN_DEPTH":          &c.Depth,
		"OCEAN_TIME_SCALE":     &c.TimeScale,
	}
	strs := map[string]*string{
		"OCEAN_FFT_STRATEGY": &c.FFTStrategy,
		"OCEAN_NORMAL_MODE":  &c.NormalMode,
		"OCEAN_NOISE":        &c.Noise,
	}

	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return &ConfigError{key, v, "must be an integer"}
			}
			*dst = n
		}
	}
	for key, dst := range floats {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return &ConfigError{key, v, "must be a number"}
			}
			*dst = f
		}
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup("OCEAN_SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return &ConfigError{"OCEAN_SEED", v, "must be an integer"}
		}
		c.Seed = seed
	}
	return nil
}

// Params converts and validates the simulation part of the config.
func (c Config) Params() (Params, error) {
	p := Params{
		GridResolution:  c.GridResolution,
		PatchSize:       c.PatchSize,
		WindSpeed:       c.WindSpeed,
		WindDirection:   c.WindDirection * math.Pi / 180,
		Choppiness:      c.Choppiness,
		Amplitude:       c.Amplitude,
		SmallWaveCutoff: c.SmallWaveCutoff,
		Gravity:         c.Gravity,
		Depth:           c.Depth,
		LoopPeriod:      c.LoopPeriod,
		Seed:            c.Seed,
		FFTStrategy:     c.FFTStrategy,
		NormalMode:      c.NormalMode,
	}
	return p, p.Validate()
}

// NoiseSource builds the configured noise source.
func (c Config) NoiseSource() (noise.Source, error) {
	switch c.Noise {
	case "", NoiseSeeded:
		return noise.NewSeeded(c.Seed), nil
	case NoisePerlin:
		return noise.NewPerlin(c.Seed), nil
	case NoiseSimplex:
		return noise.NewSimplex(c.Seed), nil
	case NoiseImages:
		for i, path := range c.NoiseImages {
			if path == "" {
				return nil, &ConfigError{"noise_images", i, "all four image paths are required"}
			}
		}
		return noise.FromImages(c.NoiseImages), nil
	default:
		return nil, &ConfigError{"noise", c.Noise, "must be seeded, perlin, simplex or images"}
	}
}
