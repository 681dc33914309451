package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Manish3451/Book-Recommendation-System/internal/artifact"
	"github.com/Manish3451/Book-Recommendation-System/internal/catalog"
	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
	"github.com/Manish3451/Book-Recommendation-System/internal/embedding"
	"github.com/Manish3451/Book-Recommendation-System/internal/embedding/word2vec"
	"github.com/Manish3451/Book-Recommendation-System/internal/logging"
	"github.com/Manish3451/Book-Recommendation-System/internal/metrics"
	"github.com/Manish3451/Book-Recommendation-System/internal/normalizer"
	"github.com/Manish3451/Book-Recommendation-System/internal/vectorstore/memory"
)

// ErrNoUsableRows is returned when no catalog row has a description.
var ErrNoUsableRows = errors.New("catalog has no rows with a description")

// settingsReporter is implemented by normalizers that can describe their switches.
type settingsReporter interface {
	Settings() normalizer.Settings
}

// Builder runs the offline pipeline: catalog preparation, normalization,
// word2vec training and per-item aggregation. Builds must not run concurrently
// against the same output path.
type Builder struct {
	normalizer domain.Normalizer
	catalog    catalog.Options
	trainer    word2vec.Config
	now        func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder(normalizer domain.Normalizer, catalogOpts catalog.Options, trainerCfg word2vec.Config) *Builder {
	return &Builder{
		normalizer: normalizer,
		catalog:    catalogOpts,
		trainer:    trainerCfg,
		now:        time.Now,
	}
}

// Build produces a fresh artifact from raw catalog rows.
func (b *Builder) Build(ctx context.Context, raw []domain.CatalogItem) (*artifact.Artifact, error) {
	start := b.now()
	log := logging.With().Str("component", "build").Logger()

	items := catalog.Prepare(raw, b.catalog)
	if len(items) == 0 {
		return nil, ErrNoUsableRows
	}
	log.Info().Int("raw_rows", len(raw)).Int("rows", len(items)).Msg("catalog prepared")

	corpus := make([][]string, len(items))
	empty := 0
	for i, it := range items {
		corpus[i] = b.normalizer.Normalize(it.Description)
		if len(corpus[i]) == 0 {
			empty++
		}
	}
	if empty > 0 {
		log.Warn().Int("empty_documents", empty).Int("rows", len(items)).
			Msg("some descriptions have no tokens after preprocessing")
	}

	model, err := word2vec.Train(ctx, corpus, b.trainer)
	if err != nil {
		return nil, fmt.Errorf("train embeddings: %w", err)
	}
	log.Info().Int("vocab", model.Len()).Int("dimension", model.Dimension()).Msg("embeddings trained")

	// One row per item, zero when no token is in the vocabulary.
	matrix := make([][]float64, len(items))
	nonzero := 0
	for i, tokens := range corpus {
		matrix[i] = embedding.Average(model, tokens)
		if !embedding.IsZero(matrix[i]) {
			nonzero++
		}
	}
	log.Info().Int("nonzero_rows", nonzero).Int("rows", len(matrix)).Msg("item vectors aggregated")

	store, err := memory.NewStorage(model.Dimension(), items, matrix)
	if err != nil {
		return nil, err
	}
	info := artifact.BuildInfo{
		BuiltAt:        b.now().UTC(),
		SourceRows:     len(raw),
		Rows:           len(items),
		MaxRows:        b.catalog.MaxRows,
		SampleSeed:     b.catalog.Seed,
		VocabSize:      model.Len(),
		Dimension:      model.Dimension(),
		EmptyDocuments: empty,
		NonzeroRows:    nonzero,
		Trainer:        b.trainer,
	}
	if r, ok := b.normalizer.(settingsReporter); ok {
		info.Normalizer = r.Settings()
	}
	a, err := artifact.New(model, store, info)
	if err != nil {
		return nil, err
	}
	metrics.RecordBuild(b.now().Sub(start))
	return a, nil
}
