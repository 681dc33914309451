package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Manish3451/Book-Recommendation-System/internal/artifact"
	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
	"github.com/Manish3451/Book-Recommendation-System/internal/embedding"
	"github.com/Manish3451/Book-Recommendation-System/internal/metrics"
	"github.com/Manish3451/Book-Recommendation-System/internal/vectorstore"
)

// ArtifactProvider hands out the active artifact.
type ArtifactProvider interface {
	Get(ctx context.Context) (*artifact.Artifact, error)
	Health() (bool, int)
}

var _ domain.Recommender = (*RecommendService)(nil)

// RecommendService answers seed and free-text queries against the active artifact.
type RecommendService struct {
	artifacts  ArtifactProvider
	normalizer domain.Normalizer
}

// NewRecommendService creates a RecommendService. normalizer must match the
// one used to build the artifact.
func NewRecommendService(artifacts ArtifactProvider, normalizer domain.Normalizer) *RecommendService {
	return &RecommendService{artifacts: artifacts, normalizer: normalizer}
}

// Health reports whether an artifact is loaded and how many rows it has.
func (s *RecommendService) Health() (bool, int) {
	return s.artifacts.Health()
}

// Recommend returns the topK most similar items for exactly one of a seed
// index or custom text.
func (s *RecommendService) Recommend(ctx context.Context, req domain.RecommendRequest) (rec domain.Recommendation, err error) {
	start := time.Now()
	mode := requestMode(req)
	defer func() {
		metrics.RecordRecommend(mode, outcome(err), time.Since(start))
	}()

	switch {
	case req.SeedIndex == nil && req.Text == nil:
		return rec, domain.NewValidationErr("one of seed_index or text is required")
	case req.SeedIndex != nil && req.Text != nil:
		return rec, domain.NewValidationErr("seed_index and text are mutually exclusive")
	case req.TopK < 1:
		return rec, domain.NewValidationErr(fmt.Sprintf("top_k must be at least 1, got %d", req.TopK))
	}

	a, err := s.artifacts.Get(ctx)
	if err != nil {
		return rec, domain.NewUnavailableErr("recommendations unavailable", err)
	}

	var (
		text    string
		exclude = vectorstore.NoExclusion
	)
	if req.SeedIndex != nil {
		seed := *req.SeedIndex
		item, ok := a.Item(seed)
		if !ok {
			return rec, domain.NewRangeErr(fmt.Sprintf("seed_index %d out of range [0, %d)", seed, a.Rows()))
		}
		text = item.Description
		exclude = seed
		rec.SeedInfo = domain.SeedInfo{
			Mode:   domain.ModeSeed,
			Index:  &seed,
			Title:  item.Title,
			Author: item.Author,
			Genre:  item.Genre,
		}
	} else {
		text = *req.Text
		rec.SeedInfo = domain.SeedInfo{Mode: domain.ModeCustom}
	}

	query := embedding.Average(a.Model, s.normalizer.Normalize(text))
	results, err := a.Store.Search(query, req.TopK, exclude)
	if err != nil {
		return domain.Recommendation{}, err
	}
	rec.Results = results
	return rec, nil
}

func requestMode(req domain.RecommendRequest) string {
	switch {
	case req.SeedIndex != nil && req.Text == nil:
		return domain.ModeSeed
	case req.Text != nil && req.SeedIndex == nil:
		return domain.ModeCustom
	}
	return ""
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case domain.IsBadRequest(err):
		return metrics.OutcomeBadRequest
	case domain.IsUnavailable(err):
		return metrics.OutcomeUnavailable
	}
	return metrics.OutcomeError
}
