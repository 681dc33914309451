package artifact

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
	"github.com/Manish3451/Book-Recommendation-System/internal/embedding/word2vec"
	"github.com/Manish3451/Book-Recommendation-System/internal/vectorstore/memory"
)

// Schema identifies the on-disk format.
const (
	Schema  = "bookrec.artifact"
	Version = 1
)

type envelope struct {
	Schema  string               `json:"schema"`
	Version int                  `json:"version"`
	Model   *wireModel           `json:"model"`
	Matrix  [][]float64          `json:"matrix"`
	Items   []domain.CatalogItem `json:"items"`
	Build   BuildInfo            `json:"build"`
}

type wireModel struct {
	Vocab   []string    `json:"vocab"`
	Vectors [][]float64 `json:"vectors"`
}

// Encode writes a as gzip-compressed JSON.
func Encode(w io.Writer, a *Artifact) error {
	zw := gzip.NewWriter(w)
	env := envelope{
		Schema:  Schema,
		Version: Version,
		Model: &wireModel{
			Vocab:   a.Model.Vocabulary(),
			Vectors: a.Model.Vectors(),
		},
		Matrix: a.Store.Vectors(),
		Items:  a.Store.Items(),
		Build:  a.Build,
	}
	if err := json.NewEncoder(zw).Encode(&env); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	return zw.Close()
}

// Decode reads an artifact written by Encode. Every failure wraps ErrCorrupt.
func Decode(r io.Reader) (*Artifact, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, corrupt(err)
	}
	defer zr.Close()

	var env envelope
	if err := json.NewDecoder(zr).Decode(&env); err != nil {
		return nil, corrupt(err)
	}
	if env.Schema != Schema || env.Version != Version {
		return nil, corrupt(fmt.Errorf("unsupported schema %q version %d", env.Schema, env.Version))
	}
	switch {
	case env.Model == nil:
		return nil, corrupt(errors.New("missing model"))
	case env.Matrix == nil:
		return nil, corrupt(errors.New("missing matrix"))
	case env.Items == nil:
		return nil, corrupt(errors.New("missing items"))
	}

	model, err := word2vec.NewModel(env.Model.Vocab, env.Model.Vectors)
	if err != nil {
		return nil, corrupt(err)
	}
	store, err := memory.NewStorage(model.Dimension(), env.Items, env.Matrix)
	if err != nil {
		return nil, corrupt(err)
	}
	return New(model, store, env.Build)
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %w", ErrCorrupt, err)
}
