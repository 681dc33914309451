package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CatalogConfig locates the raw catalog and controls the sampling cap.
type CatalogConfig struct {
	Path       string `yaml:"path"`
	MaxRows    int    `yaml:"max_rows"`
	SampleSeed uint64 `yaml:"sample_seed"`
}

// NormalizerConfig holds the text preprocessing switches.
type NormalizerConfig struct {
	Lemmatize    *bool  `yaml:"lemmatize,omitempty"`
	Stem         bool   `yaml:"stem"`
	RemoveShort  *bool  `yaml:"remove_short,omitempty"`
	TokenPattern string `yaml:"token_pattern,omitempty"`
}

// TrainerConfig holds word2vec hyperparameters.
type TrainerConfig struct {
	VectorSize int     `yaml:"vector_size"`
	Window     int     `yaml:"window"`
	MinCount   int     `yaml:"min_count"`
	Epochs     int     `yaml:"epochs"`
	Seed       uint64  `yaml:"seed"`
	Workers    int     `yaml:"workers"`
	Negative   int     `yaml:"negative"`
	Alpha      float64 `yaml:"alpha"`
	MinAlpha   float64 `yaml:"min_alpha"`
	Sample     float64 `yaml:"sample"`
}

// ArtifactConfig locates the persisted artifact and its remote source.
type ArtifactConfig struct {
	Path               string `yaml:"path"`
	RemoteURL          string `yaml:"remote_url,omitempty"`
	FetchTimeoutSecs   int    `yaml:"fetch_timeout_secs"`
	BreakerFailures    int    `yaml:"breaker_failures"`
	BreakerTimeoutSecs int    `yaml:"breaker_timeout_secs"`
}

// ServerConfig configures the HTTP serving layer.
type ServerConfig struct {
	Addr               string `yaml:"addr"`
	DefaultTopK        int    `yaml:"default_top_k"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog    CatalogConfig    `yaml:"catalog"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Trainer    TrainerConfig    `yaml:"trainer"`
	Artifact   ArtifactConfig   `yaml:"artifact"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// LemmatizeEnabled reports the effective lemmatize switch (default on).
func (c NormalizerConfig) LemmatizeEnabled() bool {
	return c.Lemmatize == nil || *c.Lemmatize
}

// RemoveShortEnabled reports the effective short-token filter switch (default on).
func (c NormalizerConfig) RemoveShortEnabled() bool {
	return c.RemoveShort == nil || *c.RemoveShort
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	// Decode over the defaults so keys left out keep them and explicit zeros stay zero.
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/bookrec/config.yaml.
// If neither exists, it writes defaults to ~/.config/bookrec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values the build or the server cannot run with.
func (c *AppConfig) Validate() error {
	t := c.Trainer
	switch {
	case t.VectorSize < 1:
		return fmt.Errorf("trainer.vector_size must be positive, got %d", t.VectorSize)
	case t.Window < 1:
		return fmt.Errorf("trainer.window must be positive, got %d", t.Window)
	case t.MinCount < 1:
		return fmt.Errorf("trainer.min_count must be positive, got %d", t.MinCount)
	case t.Epochs < 1:
		return fmt.Errorf("trainer.epochs must be positive, got %d", t.Epochs)
	case t.Workers != 1:
		return fmt.Errorf("trainer.workers must be 1 for reproducible builds, got %d", t.Workers)
	case t.Negative < 1:
		return fmt.Errorf("trainer.negative must be positive, got %d", t.Negative)
	}
	if c.Catalog.MaxRows < 1 {
		return fmt.Errorf("catalog.max_rows must be positive, got %d", c.Catalog.MaxRows)
	}
	if c.Server.DefaultTopK < 1 {
		return fmt.Errorf("server.default_top_k must be at least 1, got %d", c.Server.DefaultTopK)
	}
	if c.Artifact.Path == "" {
		return errors.New("artifact.path is required")
	}
	if c.Artifact.BreakerFailures < 1 {
		return fmt.Errorf("artifact.breaker_failures must be positive, got %d", c.Artifact.BreakerFailures)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bookrec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Catalog: CatalogConfig{Path: "data/books.csv", MaxRows: 5000, SampleSeed: 42},
		Trainer: TrainerConfig{
			VectorSize: 100,
			Window:     5,
			MinCount:   2,
			Epochs:     5,
			Seed:       42,
			Workers:    1,
			Negative:   5,
			Alpha:      0.025,
			MinAlpha:   0.0001,
			Sample:     1e-3,
		},
		Artifact: ArtifactConfig{
			Path:               "data/books_w2v.json.gz",
			FetchTimeoutSecs:   60,
			BreakerFailures:    3,
			BreakerTimeoutSecs: 30,
		},
		Server: ServerConfig{Addr: ":8000", DefaultTopK: 10, RequestTimeoutSecs: 10, RateLimitPerMinute: 120},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
	return cfg
}

// applyConfigDefaults fills fields where zero is never a usable value. Seeds,
// min_alpha and sample accept zero and are left as decoded.
func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = def.Catalog.Path
	}
	if cfg.Catalog.MaxRows == 0 {
		cfg.Catalog.MaxRows = def.Catalog.MaxRows
	}
	t := &cfg.Trainer
	if t.VectorSize == 0 {
		t.VectorSize = def.Trainer.VectorSize
	}
	if t.Window == 0 {
		t.Window = def.Trainer.Window
	}
	if t.MinCount == 0 {
		t.MinCount = def.Trainer.MinCount
	}
	if t.Epochs == 0 {
		t.Epochs = def.Trainer.Epochs
	}
	if t.Workers == 0 {
		t.Workers = def.Trainer.Workers
	}
	if t.Negative == 0 {
		t.Negative = def.Trainer.Negative
	}
	if t.Alpha == 0 {
		t.Alpha = def.Trainer.Alpha
	}
	if cfg.Artifact.Path == "" {
		cfg.Artifact.Path = def.Artifact.Path
	}
	if cfg.Artifact.FetchTimeoutSecs == 0 {
		cfg.Artifact.FetchTimeoutSecs = def.Artifact.FetchTimeoutSecs
	}
	if cfg.Artifact.BreakerFailures == 0 {
		cfg.Artifact.BreakerFailures = def.Artifact.BreakerFailures
	}
	if cfg.Artifact.BreakerTimeoutSecs == 0 {
		cfg.Artifact.BreakerTimeoutSecs = def.Artifact.BreakerTimeoutSecs
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.DefaultTopK == 0 {
		cfg.Server.DefaultTopK = def.Server.DefaultTopK
	}
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = def.Server.RequestTimeoutSecs
	}
	if cfg.Server.RateLimitPerMinute == 0 {
		cfg.Server.RateLimitPerMinute = def.Server.RateLimitPerMinute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("BOOKREC_ARTIFACT_PATH"); v != "" {
		cfg.Artifact.Path = v
	}
	if v := os.Getenv("BOOKREC_ARTIFACT_URL"); v != "" {
		cfg.Artifact.RemoteURL = v
	}
	if v := os.Getenv("BOOKREC_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("BOOKREC_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BOOKREC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
