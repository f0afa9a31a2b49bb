package ocean

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"OceanFFT/internal/noise"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParamsValid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("Default params should be valid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		param  string
		mutate func(*Params)
	}{
		{"grid_resolution", func(p *Params) { p.GridResolution = 100 }},
		{"grid_resolution", func(p *Params) { p.GridResolution = 0 }},
		{"grid_resolution", func(p *Params) { p.GridResolution = 8192 }},
		{"patch_size", func(p *Params) { p.PatchSize = 0 }},
		{"patch_size", func(p *Params) { p.PatchSize = math.Inf(1) }},
		{"wind_speed", func(p *Params) { p.WindSpeed = -1 }},
		{"wind_direction", func(p *Params) { p.WindDirection = math.NaN() }},
		{"choppiness", func(p *Params) { p.Choppiness = math.Inf(-1) }},
		{"amplitude", func(p *Params) { p.Amplitude = -1 }},
		{"small_wave_cutoff", func(p *Params) { p.SmallWaveCutoff = -0.1 }},
		{"gravity", func(p *Params) { p.Gravity = 0 }},
		{"depth", func(p *Params) { p.Depth = -5 }},
		{"loop_period", func(p *Params) { p.LoopPeriod = -1 }},
		{"fft_strategy", func(p *Params) { p.FFTStrategy = "radix4" }},
		{"normal_mode", func(p *Params) { p.NormalMode = "sobel" }},
	}

	for _, c := range cases {
		p := DefaultParams()
		c.mutate(&p)

		var cfgErr *ConfigError
		err := p.Validate()
		if !errors.As(err, &cfgErr) {
			t.Errorf("%s: expected ConfigError, got %v", c.param, err)
			continue
		}
		if cfgErr.Param != c.param {
			t.Errorf("Expected param %q, got %q", c.param, cfgErr.Param)
		}
		if cfgErr.Limit == "" {
			t.Errorf("%s: error should state the limit", c.param)
		}
	}
}

func TestChangeClassification(t *testing.T) {
	base := DefaultParams()

	resized := base
	resized.GridResolution = 128
	assert.True(t, resized.NeedsTable(base))
	assert.True(t, resized.NeedsSpectrum(base))

	windier := base
	windier.WindSpeed = 30
	assert.False(t, windier.NeedsTable(base))
	assert.True(t, windier.NeedsSpectrum(base))

	choppier := base
	choppier.Choppiness = 2
	assert.False(t, choppier.NeedsTable(base))
	assert.False(t, choppier.NeedsSpectrum(base))

	reseeded := base
	reseeded.Seed = base.Seed + 1
	assert.False(t, reseeded.NeedsTable(base))
	assert.True(t, reseeded.NeedsSpectrum(base))
}

func TestConfigParamsConvertsDegrees(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindDirection = 90

	p, err := cfg.Params()
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, p.WindDirection, 1e-12)
	assert.Equal(t, cfg.Seed, p.Seed)
}

func TestLoadConfigJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "ocean.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"grid_resolution": 128, "wind_speed": 12.5, "fft_strategy": "pingpong"}`), 0o644))
	cfg, err := LoadConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.GridResolution)
	assert.Equal(t, 12.5, cfg.WindSpeed)
	assert.Equal(t, "pingpong", cfg.FFTStrategy)
	assert.Equal(t, DefaultConfig().PatchSize, cfg.PatchSize, "unset fields keep defaults")

	yamlPath := filepath.Join(dir, "ocean.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("grid_resolution: 64\npatch_size: 250\nnoise: perlin\n"), 0o644))
	cfg, err = LoadConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.GridResolution)
	assert.Equal(t, 250.0, cfg.PatchSize)
	assert.Equal(t, NoisePerlin, cfg.Noise)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yml")
	cfg := DefaultConfig()
	cfg.Choppiness = 1.7
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"OCEAN_GRID_RESOLUTION": "512",
		"OCEAN_WIND_SPEED":      " 7.5 ",
		"OCEAN_FFT_STRATEGY":    "pingpong",
		"OCEAN_SEED":            "99",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 512, cfg.GridResolution)
	assert.Equal(t, 7.5, cfg.WindSpeed)
	assert.Equal(t, "pingpong", cfg.FFTStrategy)
	assert.Equal(t, int64(99), cfg.Seed)

	env["OCEAN_PATCH_SIZE"] = "wide"
	var cfgErr *ConfigError
	require.ErrorAs(t, cfg.ApplyEnv(lookup), &cfgErr)
	assert.Equal(t, "OCEAN_PATCH_SIZE", cfgErr.Param)
}

func TestConfigNoiseSource(t *testing.T) {
	cfg := DefaultConfig()

	src, err := cfg.NoiseSource()
	require.NoError(t, err)
	assert.IsType(t, &noise.Seeded{}, src)

	cfg.Noise = NoisePerlin
	src, err = cfg.NoiseSource()
	require.NoError(t, err)
	assert.IsType(t, &noise.Perlin{}, src)

	cfg.Noise = NoiseSimplex
	src, err = cfg.NoiseSource()
	require.NoError(t, err)
	assert.IsType(t, &noise.Simplex{}, src)

	cfg.Noise = NoiseImages
	_, err = cfg.NoiseSource()
	assert.Error(t, err, "images without paths must be rejected")

	cfg.Noise = "white"
	_, err = cfg.NoiseSource()
	assert.Error(t, err)
}

func TestResolveConfig(t *testing.T) {
	cfg, err := ResolveConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "ocean.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wind_speed: 12\n"), 0o644))
	cfg, err = ResolveConfig(path, func(k string) (string, bool) {
		if k == "OCEAN_CHOPPINESS" {
			return "0.5", true
		}
		return "", false
	})
	require.NoError(t, err)
	assert.Equal(t, 12.0, cfg.WindSpeed)
	assert.Equal(t, 0.5, cfg.Choppiness)

	_, err = ResolveConfig(filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Error(t, err)
}
