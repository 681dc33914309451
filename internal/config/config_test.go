package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Trainer.VectorSize)
	assert.Equal(t, 5, cfg.Trainer.Window)
	assert.Equal(t, 2, cfg.Trainer.MinCount)
	assert.Equal(t, 5, cfg.Trainer.Epochs)
	assert.Equal(t, uint64(42), cfg.Trainer.Seed)
	assert.Equal(t, 1, cfg.Trainer.Workers)
	assert.Equal(t, 5000, cfg.Catalog.MaxRows)
	assert.Equal(t, uint64(42), cfg.Catalog.SampleSeed)
	assert.Equal(t, 10, cfg.Server.DefaultTopK)
	assert.True(t, cfg.Normalizer.LemmatizeEnabled())
	assert.True(t, cfg.Normalizer.RemoveShortEnabled())
	assert.False(t, cfg.Normalizer.Stem)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
trainer:
  vector_size: 32
  epochs: 2
normalizer:
  lemmatize: false
  stem: true
artifact:
  path: /tmp/custom.json.gz
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Trainer.VectorSize)
	assert.Equal(t, 2, cfg.Trainer.Epochs)
	assert.Equal(t, 5, cfg.Trainer.Window, "unset fields fall back to defaults")
	assert.False(t, cfg.Normalizer.LemmatizeEnabled())
	assert.True(t, cfg.Normalizer.Stem)
	assert.True(t, cfg.Normalizer.RemoveShortEnabled())
	assert.Equal(t, "/tmp/custom.json.gz", cfg.Artifact.Path)
}

func TestLoad_ExplicitZerosKept(t *testing.T) {
	tests := map[string]struct {
		yaml       string
		sampleSeed uint64
		seed       uint64
		minAlpha   float64
		sample     float64
	}{
		"explicit-zeros": {
			yaml:       "catalog:\n  sample_seed: 0\ntrainer:\n  seed: 0\n  min_alpha: 0\n  sample: 0\n",
			sampleSeed: 0,
			seed:       0,
			minAlpha:   0,
			sample:     0,
		},
		"omitted-keys-use-defaults": {
			yaml:       "trainer:\n  epochs: 3\n",
			sampleSeed: 42,
			seed:       42,
			minAlpha:   0.0001,
			sample:     1e-3,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, tt.sampleSeed, cfg.Catalog.SampleSeed)
			assert.Equal(t, tt.seed, cfg.Trainer.Seed)
			assert.Equal(t, tt.minAlpha, cfg.Trainer.MinAlpha)
			assert.Equal(t, tt.sample, cfg.Trainer.Sample)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOOKREC_ARTIFACT_PATH", "/srv/artifact.json.gz")
	t.Setenv("BOOKREC_ARTIFACT_URL", "https://example.com/artifact.json.gz")
	t.Setenv("BOOKREC_ADDR", ":9999")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/srv/artifact.json.gz", cfg.Artifact.Path)
	assert.Equal(t, "https://example.com/artifact.json.gz", cfg.Artifact.RemoteURL)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trainer: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Server.Addr = ":7000"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", loaded.Server.Addr)
	assert.Equal(t, cfg.Trainer, loaded.Trainer)
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*AppConfig)
		wantErr string
	}{
		"defaults-are-valid": {
			mutate: func(*AppConfig) {},
		},
		"parallel-workers-rejected": {
			mutate:  func(c *AppConfig) { c.Trainer.Workers = 4 },
			wantErr: "trainer.workers must be 1 for reproducible builds, got 4",
		},
		"zero-vector-size-rejected": {
			mutate:  func(c *AppConfig) { c.Trainer.VectorSize = 0 },
			wantErr: "trainer.vector_size must be positive, got 0",
		},
		"zero-default-top-k-rejected": {
			mutate:  func(c *AppConfig) { c.Server.DefaultTopK = 0 },
			wantErr: "server.default_top_k must be at least 1, got 0",
		},
		"zero-max-rows-rejected": {
			mutate:  func(c *AppConfig) { c.Catalog.MaxRows = 0 },
			wantErr: "catalog.max_rows must be positive, got 0",
		},
		"missing-artifact-path-rejected": {
			mutate:  func(c *AppConfig) { c.Artifact.Path = "" },
			wantErr: "artifact.path is required",
		},
		"negative-breaker-failures-rejected": {
			mutate:  func(c *AppConfig) { c.Artifact.BreakerFailures = -1 },
			wantErr: "artifact.breaker_failures must be positive, got -1",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
