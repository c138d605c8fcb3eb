package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

// Compile-time interface verification.
var _ LikeRepository = (*PgLikeRepository)(nil)

// PgLikeRepository is a PostgreSQL implementation of LikeRepository.
type PgLikeRepository struct {
	db DBTX
}

// NewPgLikeRepository creates a new PostgreSQL like repository.
func NewPgLikeRepository(db DBTX) *PgLikeRepository {
	return &PgLikeRepository{db: db}
}

// Toggle removes the user's like if present, otherwise records one.
// The unique constraint on (user_id, recommendation_id) backstops
// concurrent toggles for the same pair.
func (r *PgLikeRepository) Toggle(ctx context.Context, userID, recommendationID uuid.UUID) (bool, error) {
	deleteQuery := `
		DELETE FROM likes
		WHERE user_id = $1 AND recommendation_id = $2`

	result, err := r.db.Exec(ctx, deleteQuery, userID, recommendationID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	if result.RowsAffected() > 0 {
		return false, nil
	}

	insertQuery := `
		INSERT INTO likes (id, user_id, recommendation_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err = r.db.Exec(ctx, insertQuery, uuid.New(), userID, recommendationID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgErrForeignKeyViolation {
				return false, domain.NewNotFoundError("recommendation", recommendationID.String())
			}
			if pgErr.Code == pgErrUniqueViolation {
				// A concurrent toggle won the insert.
				return false, domain.NewAlreadyExistsError("like", recommendationID.String())
			}
		}
		return false, fmt.Errorf("failed to add like: %w", err)
	}

	return true, nil
}

// CountForRecommendation returns the number of likes on a recommendation.
func (r *PgLikeRepository) CountForRecommendation(ctx context.Context, recommendationID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM likes
		WHERE recommendation_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, recommendationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}

	return count, nil
}
