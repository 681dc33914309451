package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Manish3451/Book-Recommendation-System/internal/artifact"
	"github.com/Manish3451/Book-Recommendation-System/internal/catalog"
	"github.com/Manish3451/Book-Recommendation-System/internal/config"
	"github.com/Manish3451/Book-Recommendation-System/internal/embedding/word2vec"
	"github.com/Manish3451/Book-Recommendation-System/internal/logging"
	"github.com/Manish3451/Book-Recommendation-System/internal/normalizer"
)

func loadConfig(path string) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.Debug().Str("path", path).Msg("config loaded")
	return cfg, nil
}

func newNormalizer(cfg *config.AppConfig) *normalizer.Normalizer {
	return normalizer.New(normalizer.Options{
		Lemmatize:    cfg.Normalizer.LemmatizeEnabled(),
		Stem:         cfg.Normalizer.Stem,
		RemoveShort:  cfg.Normalizer.RemoveShortEnabled(),
		TokenPattern: cfg.Normalizer.TokenPattern,
	})
}

func catalogOptions(cfg *config.AppConfig) catalog.Options {
	return catalog.Options{MaxRows: cfg.Catalog.MaxRows, Seed: cfg.Catalog.SampleSeed}
}

func trainerConfig(cfg *config.AppConfig) word2vec.Config {
	t := cfg.Trainer
	return word2vec.Config{
		VectorSize: t.VectorSize,
		Window:     t.Window,
		MinCount:   t.MinCount,
		Epochs:     t.Epochs,
		Seed:       t.Seed,
		Workers:    t.Workers,
		Negative:   t.Negative,
		Alpha:      t.Alpha,
		MinAlpha:   t.MinAlpha,
		Sample:     t.Sample,
	}
}

func newLoader(cfg *config.AppConfig, onLoad func(*artifact.Artifact)) *artifact.Loader {
	lc := artifact.LoaderConfig{
		Path:            cfg.Artifact.Path,
		BreakerFailures: uint32(cfg.Artifact.BreakerFailures),
		BreakerTimeout:  time.Duration(cfg.Artifact.BreakerTimeoutSecs) * time.Second,
		OnLoad:          onLoad,
	}
	if cfg.Artifact.RemoteURL != "" {
		lc.Fetcher = artifact.NewFetcher(artifact.FetcherConfig{
			URL:     cfg.Artifact.RemoteURL,
			Timeout: time.Duration(cfg.Artifact.FetchTimeoutSecs) * time.Second,
		})
	}
	return artifact.NewLoader(lc)
}

// normalizerDrift lists the preprocessing switches that differ between the
// artifact's build and the serving normalizer. Artifacts without recorded
// settings report nothing.
func normalizerDrift(a *artifact.Artifact, serving normalizer.Settings) []string {
	built := a.Build.Normalizer
	if built == (normalizer.Settings{}) {
		return nil
	}
	return built.Mismatches(serving)
}

// warnOnNormalizerDrift returns a load hook that warns when query tokens would
// no longer line up with the artifact vocabulary.
func warnOnNormalizerDrift(serving normalizer.Settings) func(*artifact.Artifact) {
	return func(a *artifact.Artifact) {
		diff := normalizerDrift(a, serving)
		if len(diff) == 0 {
			return
		}
		logging.Warn().Strs("mismatched", diff).
			Str("built_pattern", a.Build.Normalizer.TokenPattern).
			Bool("built_lemmatize", a.Build.Normalizer.Lemmatize).
			Bool("serving_lemmatize", serving.Lemmatize).
			Msg("serving normalizer differs from the artifact build; queries may miss the vocabulary")
	}
}

// reloadOn reloads the artifact each time sig fires until ctx is done. A
// failed reload keeps the current artifact.
func reloadOn(ctx context.Context, sig <-chan os.Signal, loader *artifact.Loader) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			if _, err := loader.Load(ctx); err != nil {
				logging.Warn().Err(err).Msg("artifact reload failed, keeping current artifact")
			}
		}
	}
}
