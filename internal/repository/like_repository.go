package repository

import (
	"context"

	"github.com/google/uuid"
)

// LikeRepository defines data access operations for recommendation likes.
type LikeRepository interface {
	// Toggle flips the like state of a recommendation for a user: liking it
	// when no like exists, removing the like otherwise. The return value
	// reports whether the like now exists.
	// Returns domain.NotFoundError if the recommendation does not exist.
	Toggle(ctx context.Context, userID, recommendationID uuid.UUID) (bool, error)

	// CountForRecommendation returns the number of likes on a recommendation.
	CountForRecommendation(ctx context.Context, recommendationID uuid.UUID) (int64, error)
}
