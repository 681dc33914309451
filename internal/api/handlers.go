package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// HealthResp is the /health payload.
type HealthResp struct {
	OK   bool `json:"ok"`
	Rows int  `json:"rows"`
}

// recommendParams are the /recommend query parameters after parsing.
type recommendParams struct {
	SeedIndex *int `validate:"omitempty,min=0"`
	Text      *string
	TopK      int `validate:"min=1"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok, rows := s.recommender.Health()
	respondJSON(w, http.StatusOK, HealthResp{OK: ok, Rows: rows})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	params, err := parseRecommendParams(r.URL.Query(), s.cfg.DefaultTopK)
	if err != nil {
		respondError(w, CodeBadRequest, err.Error())
		return
	}

	rec, err := s.recommender.Recommend(r.Context(), domain.RecommendRequest{
		SeedIndex: params.SeedIndex,
		Text:      params.Text,
		TopK:      params.TopK,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if rec.Results == nil {
		rec.Results = []domain.QueryResult{}
	}
	respondJSON(w, http.StatusOK, rec)
}

// parseRecommendParams reads seed_index (alias seed_idx), text (alias desc) and top_k.
func parseRecommendParams(q url.Values, defaultTopK int) (recommendParams, error) {
	p := recommendParams{TopK: defaultTopK}

	if raw, ok := firstParam(q, "seed_index", "seed_idx"); ok {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return p, fmt.Errorf("seed_index must be an integer, got %q", raw)
		}
		p.SeedIndex = &v
	}
	if raw, ok := firstParam(q, "text", "desc"); ok {
		p.Text = &raw
	}
	if raw, ok := firstParam(q, "top_k"); ok {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return p, fmt.Errorf("top_k must be an integer, got %q", raw)
		}
		p.TopK = v
	}

	if err := getValidator().Struct(&p); err != nil {
		return p, translateValidationError(err)
	}
	return p, nil
}

func firstParam(q url.Values, names ...string) (string, bool) {
	for _, name := range names {
		if vs, ok := q[name]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

var paramNames = map[string]string{
	"SeedIndex": "seed_index",
	"Text":      "text",
	"TopK":      "top_k",
}

func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name := paramNames[fe.Field()]
	if name == "" {
		name = fe.Field()
	}
	switch fe.Tag() {
	case "min":
		return fmt.Errorf("%s must be at least %s", name, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", name)
	}
}
