package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/readcircle/book-recommendation-service/internal/domain"
)

// Compile-time interface verification.
var _ RecommendationRepository = (*PgRecommendationRepository)(nil)

// PgRecommendationRepository is a PostgreSQL implementation of RecommendationRepository.
type PgRecommendationRepository struct {
	db DBTX
}

// NewPgRecommendationRepository creates a new PostgreSQL recommendation repository.
func NewPgRecommendationRepository(db DBTX) *PgRecommendationRepository {
	return &PgRecommendationRepository{db: db}
}

// Upsert creates a recommendation or replaces the comment of the user's
// existing recommendation for the same book. The (xmax = 0) projection
// distinguishes a fresh insert from a conflict update.
func (r *PgRecommendationRepository) Upsert(ctx context.Context, rec *domain.Recommendation) (*domain.Recommendation, bool, error) {
	if rec == nil {
		return nil, false, domain.NewValidationError("recommendation", "recommendation cannot be nil")
	}
	if err := rec.Validate(); err != nil {
		return nil, false, err
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	query := `
		INSERT INTO recommendations (id, user_id, book_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			comment = EXCLUDED.comment
		RETURNING id, created_at, (xmax = 0) AS inserted`

	now := time.Now().UTC()

	var created bool
	err := r.db.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.BookID,
		rec.Comment,
		now,
	).Scan(&rec.ID, &rec.CreatedAt, &created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			return nil, false, domain.NewNotFoundError("book", rec.BookID.String())
		}
		return nil, false, fmt.Errorf("failed to upsert recommendation: %w", err)
	}

	return rec, created, nil
}

const recommendationSelect = `
	SELECT r.id, r.user_id, r.book_id, r.comment, r.created_at,
		b.id, b.external_id, b.title, b.authors, b.description,
		b.cover_image_url, b.average_rating, b.categories, b.created_by, b.created_at,
		COUNT(l.id) AS like_count
	FROM recommendations r
	INNER JOIN books b ON b.id = r.book_id
	LEFT JOIN likes l ON l.recommendation_id = r.id`

const recommendationGroupBy = `GROUP BY r.id, b.id`

// GetByID retrieves a recommendation with its book and like count.
func (r *PgRecommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Recommendation, error) {
	query := fmt.Sprintf("%s\n\tWHERE r.id = $1\n\t%s", recommendationSelect, recommendationGroupBy)

	row := r.db.QueryRow(ctx, query, id)
	rec, err := scanRecommendation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("recommendation", id.String())
		}
		return nil, fmt.Errorf("failed to get recommendation by ID: %w", err)
	}

	return rec, nil
}

// List retrieves recommendations matching the filter criteria.
func (r *PgRecommendationRepository) List(ctx context.Context, filter RecommendationFilter) ([]*domain.Recommendation, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	// Build dynamic WHERE clause
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Genre != "" {
		conditions = append(conditions, fmt.Sprintf("b.categories ILIKE '%%' || $%d || '%%'", argIndex))
		args = append(args, filter.Genre)
		argIndex++
	}

	if filter.MinRating != nil {
		// Implicitly excludes books without a rating: NULL fails the comparison.
		conditions = append(conditions, fmt.Sprintf("b.average_rating >= $%d", argIndex))
		args = append(args, *filter.MinRating)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var orderClause string
	switch filter.SortBy {
	case domain.SortByRating:
		orderClause = "ORDER BY b.average_rating DESC NULLS LAST, r.created_at DESC"
	case domain.SortByLikes:
		orderClause = "ORDER BY like_count DESC, r.created_at DESC"
	default:
		orderClause = "ORDER BY r.created_at DESC"
	}

	query := fmt.Sprintf("%s\n\t%s\n\t%s\n\t%s", recommendationSelect, whereClause, recommendationGroupBy, orderClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	recs := make([]*domain.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendationFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}

	return recs, nil
}

// recommendationScanDest holds the destination pointers for scanning a
// recommendation row joined with its book and like count.
type recommendationScanDest struct {
	rec  domain.Recommendation
	book domain.Book
}

// destinations returns the slice of pointers for Scan operations.
func (d *recommendationScanDest) destinations() []interface{} {
	return []interface{}{
		&d.rec.ID, &d.rec.UserID, &d.rec.BookID, &d.rec.Comment, &d.rec.CreatedAt,
		&d.book.ID, &d.book.ExternalID, &d.book.Title, &d.book.Authors, &d.book.Description,
		&d.book.CoverImageURL, &d.book.AverageRating, &d.book.Categories, &d.book.CreatedBy,
		&d.book.CreatedAt,
		&d.rec.LikeCount,
	}
}

// finalize attaches the joined book to the recommendation.
func (d *recommendationScanDest) finalize() *domain.Recommendation {
	d.rec.Book = &d.book
	return &d.rec
}

// scanRecommendation scans a single row into a Recommendation.
func scanRecommendation(row pgx.Row) (*domain.Recommendation, error) {
	var dest recommendationScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanRecommendationFromRows scans the current row from pgx.Rows into a Recommendation.
func scanRecommendationFromRows(rows pgx.Rows) (*domain.Recommendation, error) {
	var dest recommendationScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}
