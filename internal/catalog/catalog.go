// Package catalog reads the raw book catalog and prepares it for indexing.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
)

// Options controls catalog preparation.
type Options struct {
	// MaxRows caps the catalog; larger inputs are sampled down to exactly MaxRows.
	MaxRows int
	// Seed drives the sampling permutation.
	Seed uint64
}

// DefaultOptions returns the 5000-row cap with seed 42.
func DefaultOptions() Options {
	return Options{MaxRows: 5000, Seed: 42}
}

// column names accepted for each field, lowercase.
var columns = map[string][]string{
	"title":       {"title"},
	"author":      {"authors", "author"},
	"genre":       {"genres", "genre"},
	"description": {"description"},
}

// Load opens path and reads it as CSV.
func Load(path string) ([]domain.CatalogItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return items, nil
}

// ReadCSV parses a headed CSV. Missing columns and null-like cells become "".
func ReadCSV(r io.Reader) ([]domain.CatalogItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, err
	}
	pos := make(map[string]int, len(columns))
	for field, names := range columns {
		pos[field] = -1
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
			if containsString(names, h) {
				pos[field] = i
				break
			}
		}
	}

	var items []domain.CatalogItem
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		cell := func(field string) string {
			i := pos[field]
			if i < 0 || i >= len(rec) {
				return ""
			}
			return SafeText(rec[i])
		}
		items = append(items, domain.CatalogItem{
			Index:       len(items),
			Title:       cell("title"),
			Author:      cell("author"),
			Genre:       cell("genre"),
			Description: cell("description"),
		})
	}
	return items, nil
}

// SafeText maps null-like values (blank, "nan", "null") to "".
func SafeText(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") || strings.EqualFold(trimmed, "null") {
		return ""
	}
	return s
}

// Prepare drops rows without a description, samples down to opts.MaxRows and
// re-derives a dense 0-based Index. The input slice is not modified.
func Prepare(items []domain.CatalogItem, opts Options) []domain.CatalogItem {
	kept := make([]domain.CatalogItem, 0, len(items))
	for _, it := range items {
		it.Title = SafeText(it.Title)
		it.Author = SafeText(it.Author)
		it.Genre = SafeText(it.Genre)
		it.Description = SafeText(it.Description)
		if it.Description == "" {
			continue
		}
		kept = append(kept, it)
	}

	if opts.MaxRows > 0 && len(kept) > opts.MaxRows {
		rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
		perm := rng.Perm(len(kept))
		sampled := make([]domain.CatalogItem, opts.MaxRows)
		for i := range sampled {
			sampled[i] = kept[perm[i]]
		}
		kept = sampled
	}

	for i := range kept {
		kept[i].Index = i
	}
	return kept
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
