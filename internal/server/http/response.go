package httpserver

import (
	"time"

	"github.com/google/uuid"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

// Response types for JSON serialization.

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type bookResponse struct {
	ID            string   `json:"id,omitempty"`
	ExternalID    string   `json:"external_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Description   string   `json:"description,omitempty"`
	CoverImageURL string   `json:"cover_image_url,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Local         bool     `json:"local"`
}

type searchBooksResponse struct {
	Books      []bookResponse `json:"books"`
	TotalCount int            `json:"total_count"`
}

type recommendationResponse struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Comment   string        `json:"comment"`
	LikeCount int64         `json:"like_count"`
	CreatedAt time.Time     `json:"created_at"`
	Book      *bookResponse `json:"book,omitempty"`
}

type listRecommendationsResponse struct {
	Recommendations []recommendationResponse `json:"recommendations"`
	TotalCount      int                      `json:"total_count"`
}

type toggleLikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// Converter functions

func domainUserToResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func domainBookToResponse(b *domain.Book) bookResponse {
	resp := bookResponse{
		ExternalID:    b.ExternalID,
		Title:         b.Title,
		Authors:       domain.SplitList(b.Authors),
		Description:   b.Description,
		CoverImageURL: b.CoverImageURL,
		AverageRating: b.AverageRating,
		Categories:    domain.SplitList(b.Categories),
		Local:         b.IsLocalID(),
	}
	// Provider-only results have no catalog row yet.
	if b.ID != uuid.Nil {
		resp.ID = b.ID.String()
	}
	return resp
}

func domainRecommendationToResponse(r *domain.Recommendation) recommendationResponse {
	resp := recommendationResponse{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		Comment:   r.Comment,
		LikeCount: r.LikeCount,
		CreatedAt: r.CreatedAt,
	}
	if r.Book != nil {
		book := domainBookToResponse(r.Book)
		resp.Book = &book
	}
	return resp
}
