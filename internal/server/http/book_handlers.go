package httpserver

import (
	"net/http"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

type createBookRequest struct {
	ExternalID    string   `json:"external_id" validate:"omitempty,max=128"`
	Title         string   `json:"title" validate:"required,max=512"`
	Authors       []string `json:"authors" validate:"omitempty,dive,max=256"`
	Description   string   `json:"description"`
	CoverImageURL string   `json:"cover_image_url" validate:"omitempty,url"`
	AverageRating *float64 `json:"average_rating" validate:"omitempty,gte=0,lte=5"`
	Categories    []string `json:"categories" validate:"omitempty,dive,max=256"`
}

// searchBooks handles GET /api/v1/books/search.
func (s *Server) searchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	books, err := s.svc.SearchBooks(r.Context(), query)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := searchBooksResponse{
		Books:      make([]bookResponse, 0, len(books)),
		TotalCount: len(books),
	}
	for _, book := range books {
		resp.Books = append(resp.Books, domainBookToResponse(book))
	}

	writeJSON(w, http.StatusOK, resp)
}

// createBook handles POST /api/v1/books.
func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUserID(w, r)
	if !ok {
		return
	}

	var req createBookRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	book := &domain.Book{
		ExternalID:    req.ExternalID,
		Title:         req.Title,
		Authors:       domain.JoinList(req.Authors),
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		AverageRating: req.AverageRating,
		Categories:    domain.JoinList(req.Categories),
	}

	created, err := s.svc.CreateBook(r.Context(), userID, book)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainBookToResponse(created))
}
