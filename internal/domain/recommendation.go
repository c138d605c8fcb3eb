package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SortKey selects the ordering of aggregated recommendation listings.
type SortKey string

// Supported sort keys. Exactly one mode is active per listing; anything
// unrecognized falls back to SortByCreatedAt.
const (
	// SortByCreatedAt orders by recommendation recency, newest first.
	SortByCreatedAt SortKey = "created_at"

	// SortByRating orders by the book's average rating, highest first,
	// with unrated books last.
	SortByRating SortKey = "rating"

	// SortByLikes orders by like count, most liked first.
	SortByLikes SortKey = "likes"
)

// ParseSortKey normalizes a raw sort parameter. Unknown values map to
// SortByCreatedAt, matching the listing contract.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case SortByRating:
		return SortByRating
	case SortByLikes:
		return SortByLikes
	default:
		return SortByCreatedAt
	}
}

// Recommendation is a user's recommendation of a book with a free-text
// comment. At most one recommendation exists per (user, book) pair; a
// repeated post overwrites the comment and keeps the original creation
// timestamp.
type Recommendation struct {
	// ID is the internal identifier.
	ID uuid.UUID `json:"id"`

	// UserID references the recommending user.
	UserID uuid.UUID `json:"user_id"`

	// BookID references the recommended book.
	BookID uuid.UUID `json:"book_id"`

	// Comment is the recommendation text.
	Comment string `json:"comment"`

	// CreatedAt is the server-assigned creation timestamp. It survives
	// comment updates.
	CreatedAt time.Time `json:"created_at"`

	// LikeCount is computed at query time, never stored.
	LikeCount int64 `json:"like_count"`

	// Book is the associated book, populated on aggregated reads.
	Book *Book `json:"book,omitempty"`
}

// Validate checks the fields required to persist a recommendation.
func (r *Recommendation) Validate() error {
	if r.UserID == uuid.Nil {
		return NewValidationError("user_id", "user ID is required")
	}
	if r.BookID == uuid.Nil {
		return NewValidationError("book_id", "book ID is required")
	}
	if strings.TrimSpace(r.Comment) == "" {
		return NewValidationError("comment", "comment is required")
	}
	return nil
}

// Like marks that a user liked a recommendation. Existence of the row is
// the liked state; there is no flag to flip. At most one like exists per
// (user, recommendation) pair.
type Like struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	RecommendationID uuid.UUID `json:"recommendation_id"`
	CreatedAt        time.Time `json:"created_at"`
}
