package domain

import "context"

// Recommendation modes reported in SeedInfo.
const (
	ModeSeed   = "seed"
	ModeCustom = "custom"
)

// CatalogItem is one book in the catalog. Index is its dense 0-based position.
type CatalogItem struct {
	Index       int    `json:"idx"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
}

// QueryResult is a ranked catalog item with its cosine similarity score.
type QueryResult struct {
	Rank   int     `json:"rank"`
	Index  int     `json:"idx"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Genre  string  `json:"genre"`
	Score  float64 `json:"score"`
}

// SeedInfo describes what a recommendation was anchored on.
type SeedInfo struct {
	Mode   string `json:"mode"`
	Index  *int   `json:"idx"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

// Recommendation is the payload returned for a recommend request.
type Recommendation struct {
	SeedInfo SeedInfo      `json:"seed_info"`
	Results  []QueryResult `json:"results"`
}

// RecommendRequest carries exactly one of SeedIndex or Text.
type RecommendRequest struct {
	SeedIndex *int
	Text      *string
	TopK      int
}

// Normalizer turns free text into cleaned tokens.
type Normalizer interface {
	Normalize(text string) []string
}

// Recommender defines the online operations exposed by the application core.
type Recommender interface {
	Recommend(ctx context.Context, req RecommendRequest) (Recommendation, error)
	Health() (ok bool, rows int)
}
