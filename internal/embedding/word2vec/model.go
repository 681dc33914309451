package word2vec

import (
	"errors"
	"fmt"
)

// Model is a trained, read-only word embedding table.
type Model struct {
	dim     int
	vocab   []string
	index   map[string]int
	vectors [][]float64
}

// NewModel assembles a model from aligned vocabulary and vector rows.
func NewModel(vocab []string, vectors [][]float64) (*Model, error) {
	if len(vocab) == 0 {
		return nil, errors.New("model has no vocabulary")
	}
	if len(vocab) != len(vectors) {
		return nil, fmt.Errorf("vocabulary has %d tokens but %d vectors", len(vocab), len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("model vectors are empty")
	}
	index := make(map[string]int, len(vocab))
	for i, tok := range vocab {
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("vector for %q has dimension %d, want %d", tok, len(vectors[i]), dim)
		}
		if _, dup := index[tok]; dup {
			return nil, fmt.Errorf("duplicate vocabulary token %q", tok)
		}
		index[tok] = i
	}
	return &Model{dim: dim, vocab: vocab, index: index, vectors: vectors}, nil
}

// Dimension returns the embedding size.
func (m *Model) Dimension() int { return m.dim }

// Len returns the vocabulary size.
func (m *Model) Len() int { return len(m.vocab) }

// Vector returns the embedding for token. The returned slice must not be modified.
func (m *Model) Vector(token string) ([]float64, bool) {
	i, ok := m.index[token]
	if !ok {
		return nil, false
	}
	return m.vectors[i], true
}

// Vocabulary returns tokens in model order. The slice must not be modified.
func (m *Model) Vocabulary() []string { return m.vocab }

// Vectors returns rows aligned with Vocabulary. The slice must not be modified.
func (m *Model) Vectors() [][]float64 { return m.vectors }
