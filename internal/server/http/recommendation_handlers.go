package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/readcircle/book-recommendation-service/internal/domain"
	"github.com/readcircle/book-recommendation-service/internal/repository"
)

type postRecommendationRequest struct {
	ExternalID string `json:"external_id" validate:"required,max=128"`
	Comment    string `json:"comment" validate:"required,max=4096"`
}

// postRecommendation handles POST /api/v1/recommendations.
func (s *Server) postRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r)
	if !ok {
		return
	}

	var req postRecommendationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	rec, err := s.svc.Recommend(r.Context(), userID, req.ExternalID, req.Comment)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainRecommendationToResponse(rec))
}

// listRecommendations handles GET /api/v1/recommendations.
// Supported query parameters: genre, min_rating, sort_by.
func (s *Server) listRecommendations(w http.ResponseWriter, r *http.Request) {
	filter := repository.RecommendationFilter{
		Genre:  r.URL.Query().Get("genre"),
		SortBy: domain.ParseSortKey(r.URL.Query().Get("sort_by")),
	}

	if raw := r.URL.Query().Get("min_rating"); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_rating must be a number")
			return
		}
		filter.MinRating = &minRating
	}

	recs, err := s.svc.ListRecommendations(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := listRecommendationsResponse{
		Recommendations: make([]recommendationResponse, 0, len(recs)),
		TotalCount:      len(recs),
	}
	for _, rec := range recs {
		resp.Recommendations = append(resp.Recommendations, domainRecommendationToResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// toggleLike handles POST /api/v1/recommendations/{recommendationID}/like.
func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r)
	if !ok {
		return
	}

	recID, ok := parseUUID(w, chi.URLParam(r, "recommendationID"), "recommendation_id")
	if !ok {
		return
	}

	liked, count, err := s.svc.ToggleLike(r.Context(), userID, recID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleLikeResponse{
		Liked:     liked,
		LikeCount: count,
	})
}
