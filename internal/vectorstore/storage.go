package vectorstore

import "github.com/Manish3451/Book-Recommendation-System/internal/domain"

// NoExclusion disables seed exclusion in Search.
const NoExclusion = -1

// Storage is a read-only catalog matrix supporting exhaustive similarity search.
type Storage interface {
	Len() int
	Dimension() int
	Item(index int) (domain.CatalogItem, bool)
	Search(vector []float64, topK int, exclude int) ([]domain.QueryResult, error)
}
