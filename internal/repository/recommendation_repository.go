package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

// RecommendationFilter defines filtering and ordering for recommendation listings.
type RecommendationFilter struct {
	// Genre, when non-empty, keeps only recommendations whose book
	// categories contain the value, case-insensitively.
	Genre string

	// MinRating, when set, keeps only recommendations whose book has an
	// average rating at or above the value. Books without a rating are
	// excluded.
	MinRating *float64

	// SortBy selects the listing order. Zero value sorts by creation time.
	SortBy domain.SortKey
}

// Validate normalizes the filter, falling back to the default sort order
// for unrecognized sort keys.
func (f *RecommendationFilter) Validate() error {
	f.SortBy = domain.ParseSortKey(string(f.SortBy))
	if f.MinRating != nil && (*f.MinRating < 0 || *f.MinRating > 5) {
		return domain.NewValidationError("min_rating", "minimum rating must be between 0 and 5")
	}
	return nil
}

// RecommendationRepository defines data access operations for recommendations.
type RecommendationRepository interface {
	// Upsert creates a recommendation or, when the user already recommended
	// the book, replaces its comment in place. The existing row's identity
	// and creation time are preserved. The second return value reports
	// whether a new row was created.
	Upsert(ctx context.Context, rec *domain.Recommendation) (*domain.Recommendation, bool, error)

	// GetByID retrieves a recommendation with its book and like count.
	// Returns domain.NotFoundError if no such recommendation exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Recommendation, error)

	// List retrieves recommendations matching the filter, each carrying its
	// book and current like count.
	List(ctx context.Context, filter RecommendationFilter) ([]*domain.Recommendation, error)
}
