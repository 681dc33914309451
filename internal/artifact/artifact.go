// Package artifact bundles the trained model with the catalog matrix and
// handles persisting, fetching and hot-swapping it.
package artifact

import (
	"errors"
	"fmt"
	"time"

	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
	"github.com/Manish3451/Book-Recommendation-System/internal/embedding/word2vec"
	"github.com/Manish3451/Book-Recommendation-System/internal/normalizer"
	"github.com/Manish3451/Book-Recommendation-System/internal/vectorstore/memory"
)

var (
	// ErrNotFound is returned when no artifact exists at the configured location.
	ErrNotFound = errors.New("artifact not found")
	// ErrCorrupt is returned when an artifact exists but cannot be decoded.
	ErrCorrupt = errors.New("artifact corrupt")
)

// BuildInfo records how an artifact was produced.
type BuildInfo struct {
	BuiltAt        time.Time           `json:"built_at"`
	SourceRows     int                 `json:"source_rows"`
	Rows           int                 `json:"rows"`
	MaxRows        int                 `json:"max_rows"`
	SampleSeed     uint64              `json:"sample_seed"`
	VocabSize      int                 `json:"vocab_size"`
	Dimension      int                 `json:"dimension"`
	EmptyDocuments int                 `json:"empty_documents"`
	NonzeroRows    int                 `json:"nonzero_rows"`
	Trainer        word2vec.Config     `json:"trainer"`
	Normalizer     normalizer.Settings `json:"normalizer"`
}

// Artifact is the immutable bundle served by the online path.
type Artifact struct {
	Model *word2vec.Model
	Store *memory.Storage
	Build BuildInfo
}

// New checks that model and store agree on dimension.
func New(model *word2vec.Model, store *memory.Storage, build BuildInfo) (*Artifact, error) {
	if model == nil || store == nil {
		return nil, errors.New("artifact needs both a model and a store")
	}
	if model.Dimension() != store.Dimension() {
		return nil, fmt.Errorf("model dimension %d does not match matrix dimension %d", model.Dimension(), store.Dimension())
	}
	return &Artifact{Model: model, Store: store, Build: build}, nil
}

// Rows returns the catalog size.
func (a *Artifact) Rows() int { return a.Store.Len() }

// Item returns the catalog entry at index.
func (a *Artifact) Item(index int) (domain.CatalogItem, bool) { return a.Store.Item(index) }
