package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
	"github.com/Manish3451/Book-Recommendation-System/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage is an immutable in-memory catalog matrix using brute-force cosine similarity.
// Row i of the matrix belongs to items[i].
type Storage struct {
	dimension int
	vectors   [][]float64
	norms     []float64
	items     []domain.CatalogItem
}

// NewStorage validates alignment and takes ownership of items and vectors.
func NewStorage(dimension int, items []domain.CatalogItem, vectors [][]float64) (*Storage, error) {
	if dimension <= 0 {
		return nil, errors.New("invalid dimension")
	}
	if len(items) != len(vectors) {
		return nil, fmt.Errorf("items and vectors length mismatch: %d != %d", len(items), len(vectors))
	}
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dimension)
		}
		if items[i].Index != i {
			return nil, fmt.Errorf("item at position %d has index %d", i, items[i].Index)
		}
		norms[i] = norm(v)
	}
	return &Storage{dimension: dimension, vectors: vectors, norms: norms, items: items}, nil
}

// Len returns the number of rows.
func (s *Storage) Len() int { return len(s.vectors) }

// Dimension returns the row width.
func (s *Storage) Dimension() int { return s.dimension }

// Item returns the catalog item at index.
func (s *Storage) Item(index int) (domain.CatalogItem, bool) {
	if index < 0 || index >= len(s.items) {
		return domain.CatalogItem{}, false
	}
	return s.items[index], true
}

// Items returns all catalog items in index order. The slice must not be modified.
func (s *Storage) Items() []domain.CatalogItem { return s.items }

// Vectors returns all rows in index order. The slice must not be modified.
func (s *Storage) Vectors() [][]float64 { return s.vectors }

// Search ranks every row by cosine similarity to vector and returns the best topK.
// A zero query returns no results. Row exclude (if >= 0) never appears; ties
// are broken by ascending index.
func (s *Storage) Search(vector []float64, topK int, exclude int) ([]domain.QueryResult, error) {
	if topK < 1 {
		return nil, domain.NewValidationErr(fmt.Sprintf("top_k must be at least 1, got %d", topK))
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d does not match store dimension %d", len(vector), s.dimension)
	}
	qnorm := norm(vector)
	if qnorm == 0 {
		return []domain.QueryResult{}, nil
	}

	scores := make([]float64, len(s.vectors))
	idxs := make([]int, 0, len(s.vectors))
	for i := range s.vectors {
		if i == exclude {
			scores[i] = -1.0
			continue
		}
		scores[i] = s.cosine(vector, qnorm, i)
		idxs = append(idxs, i)
	}

	// idxs is in ascending order, so a stable sort keeps lower indexes first on ties.
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })

	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.QueryResult, 0, topK)
	for rank, j := range idxs[:topK] {
		it := s.items[j]
		results = append(results, domain.QueryResult{
			Rank:   rank + 1,
			Index:  j,
			Title:  it.Title,
			Author: it.Author,
			Genre:  it.Genre,
			Score:  scores[j],
		})
	}
	return results, nil
}

// cosine treats a zero row as similarity 0.
func (s *Storage) cosine(q []float64, qnorm float64, i int) float64 {
	if s.norms[i] == 0 {
		return 0
	}
	return dot(q, s.vectors[i]) / (qnorm * s.norms[i])
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}
