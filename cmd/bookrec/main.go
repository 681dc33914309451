package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/Manish3451/Book-Recommendation-System/internal/api"
	"github.com/Manish3451/Book-Recommendation-System/internal/artifact"
	"github.com/Manish3451/Book-Recommendation-System/internal/catalog"
	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
	"github.com/Manish3451/Book-Recommendation-System/internal/logging"
	"github.com/Manish3451/Book-Recommendation-System/internal/service"
	"github.com/Manish3451/Book-Recommendation-System/internal/tui"
)

const usage = `Usage: bookrec <command> [flags]

Commands:
  build   train embeddings over the catalog and write the artifact
  serve   serve recommendations over HTTP
  tui     browse recommendations in the terminal
`

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logging.Fatal().Err(err).Msg("bookrec failed")
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}
	switch args[0] {
	case "build":
		return runBuild(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	case "tui":
		return runTUI(ctx, args[1:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stderr, usage)
		return nil
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

func runBuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/bookrec/config.yaml)")
	catalogPath := fs.String("catalog", "", "Catalog CSV (overrides catalog.path)")
	outPath := fs.String("out", "", "Artifact output path (overrides artifact.path)")
	previewSeed := fs.Int("preview-seed", 0, "Catalog index to preview recommendations for after the build; -1 disables")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *outPath != "" {
		cfg.Artifact.Path = *outPath
	}

	raw, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	norm := newNormalizer(cfg)
	builder := service.NewBuilder(norm, catalogOptions(cfg), trainerConfig(cfg))

	a, err := builder.Build(ctx, raw)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if err := artifact.Save(cfg.Artifact.Path, a); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	logging.Info().Str("path", cfg.Artifact.Path).Int("rows", a.Rows()).Int("vocab", a.Model.Len()).
		Msg("artifact saved")

	if *previewSeed < 0 {
		return nil
	}
	loader := newLoader(cfg, nil)
	loader.Swap(a)
	return preview(ctx, service.NewRecommendService(loader, norm), *previewSeed, cfg.Server.DefaultTopK)
}

func preview(ctx context.Context, rec domain.Recommender, seed, topK int) error {
	out, err := rec.Recommend(ctx, domain.RecommendRequest{SeedIndex: &seed, TopK: topK})
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	logging.Info().Int("seed", seed).Str("title", out.SeedInfo.Title).Str("author", out.SeedInfo.Author).
		Msg("preview recommendations")
	for _, r := range out.Results {
		logging.Info().Int("rank", r.Rank).Int("idx", r.Index).Str("title", r.Title).
			Str("author", r.Author).Float64("score", r.Score).Msg("preview")
	}
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/bookrec/config.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	norm := newNormalizer(cfg)
	loader := newLoader(cfg, warnOnNormalizerDrift(norm.Settings()))
	if _, err := loader.Get(ctx); err != nil {
		// Keep serving; /health reports not-ok and /recommend returns 503 until an artifact appears.
		logging.Warn().Err(err).Str("path", cfg.Artifact.Path).Msg("artifact not loaded at startup")
	}

	// SIGHUP re-reads the artifact, e.g. after a fresh build.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go reloadOn(ctx, hup, loader)

	svc := service.NewRecommendService(loader, norm)
	srv := api.NewServer(svc, api.Config{
		Addr:               cfg.Server.Addr,
		DefaultTopK:        cfg.Server.DefaultTopK,
		RequestTimeout:     time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	})
	return srv.Run(ctx)
}

func runTUI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/bookrec/config.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	// The TUI writes to the terminal; keep logs out of its way.
	if cfg.Log.Level == "info" || cfg.Log.Level == "debug" {
		logging.Init(logging.Config{Level: "warn", Format: cfg.Log.Format})
	}

	norm := newNormalizer(cfg)
	loader := newLoader(cfg, warnOnNormalizerDrift(norm.Settings()))
	if _, err := loader.Get(ctx); err != nil {
		return fmt.Errorf("load artifact: %w", err)
	}
	m := tui.New(service.NewRecommendService(loader, norm), cfg.Server.DefaultTopK)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
