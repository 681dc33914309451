package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Manish3451/Book-Recommendation-System/internal/domain"
	"github.com/Manish3451/Book-Recommendation-System/internal/logging"
)

// Error codes carried in error responses.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResp wraps ErrorBody under an "error" key.
type ErrorResp struct {
	Error ErrorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code, message string) {
	statusCode := http.StatusInternalServerError
	switch code {
	case CodeBadRequest:
		statusCode = http.StatusBadRequest
	case CodeServiceUnavailable:
		statusCode = http.StatusServiceUnavailable
	}
	respondJSON(w, statusCode, ErrorResp{Error: ErrorBody{Code: code, Message: message}})
}

// respondDomainError maps recommender errors onto HTTP responses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsBadRequest(err):
		respondError(w, CodeBadRequest, err.Error())
	case domain.IsUnavailable(err):
		respondError(w, CodeServiceUnavailable, err.Error())
	default:
		logging.Error().Err(err).Msg("recommend failed")
		respondError(w, CodeInternal, "internal error")
	}
}
